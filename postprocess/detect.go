package postprocess

import (
	"fmt"
	"sort"

	"github.com/swdee/go-yolocore/geometry"
)

// BoxRect are the dimensions of the bounding box of a detect object
type BoxRect struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// TLBR returns the box in (top, left, bottom, right) order
func (b BoxRect) TLBR() geometry.Box {
	return geometry.Box{float32(b.Top), float32(b.Left), float32(b.Bottom),
		float32(b.Right)}
}

// DetectResult defines the attributes of a single object detected
type DetectResult struct {
	// Class is the line number in the labels file the Model was trained on
	// defining the Class of the detected object
	Class int
	// Box are the bounding box dimensions of the object location
	Box BoxRect
	// Probability is the confidence score of the object detected
	Probability float32
}

// DetectionSet holds candidate detections as parallel slices.  Boxes are
// corner-form (x1, y1, x2, y2)
type DetectionSet struct {
	Boxes   []geometry.Box
	Scores  []float32
	Classes []int
}

// Len returns the number of detections in the set
func (d *DetectionSet) Len() int {
	return len(d.Scores)
}

// Add appends a detection to the set
func (d *DetectionSet) Add(box geometry.Box, score float32, class int) {
	d.Boxes = append(d.Boxes, box)
	d.Scores = append(d.Scores, score)
	d.Classes = append(d.Classes, class)
}

// Validate checks the parallel slices have equal length
func (d *DetectionSet) Validate() error {

	if len(d.Boxes) != len(d.Scores) || len(d.Classes) != len(d.Scores) {
		return fmt.Errorf("%w: %d boxes, %d scores, %d classes", ErrLengthMismatch,
			len(d.Boxes), len(d.Scores), len(d.Classes))
	}

	return nil
}

// Select returns a new set holding the detections at the given indices in
// that order
func (d *DetectionSet) Select(indices []int) *DetectionSet {

	out := &DetectionSet{
		Boxes:   make([]geometry.Box, 0, len(indices)),
		Scores:  make([]float32, 0, len(indices)),
		Classes: make([]int, 0, len(indices)),
	}

	for _, i := range indices {
		out.Add(d.Boxes[i], d.Scores[i], d.Classes[i])
	}

	return out
}

// TLBR returns the boxes of the set in (top, left, bottom, right) order as
// expected by the renderer
func (d *DetectionSet) TLBR() []geometry.Box {

	out := make([]geometry.Box, len(d.Boxes))

	for i, b := range d.Boxes {
		out[i] = geometry.SwapAxes(b)
	}

	return out
}

// Suppress runs class agnostic Non-Maximum Suppression over the set and
// returns the surviving detections in descending score order
func (d *DetectionSet) Suppress(iouThreshold float32, maxOutputs int) (*DetectionSet, error) {

	if err := d.Validate(); err != nil {
		return nil, err
	}

	keep, err := Suppress(d.Boxes, d.Scores, iouThreshold, maxOutputs)

	if err != nil {
		return nil, err
	}

	return d.Select(keep), nil
}

// SuppressPerClass runs Non-Maximum Suppression separately for each class so
// boxes of different classes never suppress each other.  The survivors of
// all classes are merged in descending score order and cut to maxOutputs
func (d *DetectionSet) SuppressPerClass(iouThreshold float32, maxOutputs int) (*DetectionSet, error) {

	if err := d.Validate(); err != nil {
		return nil, err
	}

	if d.Len() == 0 {
		return d.Suppress(iouThreshold, maxOutputs)
	}

	// group detection indices by class
	byClass := make(map[int][]int)

	for i, c := range d.Classes {
		byClass[c] = append(byClass[c], i)
	}

	classes := make([]int, 0, len(byClass))

	for c := range byClass {
		classes = append(classes, c)
	}

	sort.Ints(classes)

	var keep []int

	for _, c := range classes {
		members := byClass[c]
		sub := d.Select(members)

		selected, err := Suppress(sub.Boxes, sub.Scores, iouThreshold, maxOutputs)

		if err != nil {
			return nil, fmt.Errorf("class %d: %w", c, err)
		}

		for _, s := range selected {
			keep = append(keep, members[s])
		}
	}

	// lower original index first on equal scores
	sort.Slice(keep, func(a, b int) bool {
		if d.Scores[keep[a]] != d.Scores[keep[b]] {
			return d.Scores[keep[a]] > d.Scores[keep[b]]
		}
		return keep[a] < keep[b]
	})

	if maxOutputs > 0 && len(keep) > maxOutputs {
		keep = keep[:maxOutputs]
	}

	return d.Select(keep), nil
}

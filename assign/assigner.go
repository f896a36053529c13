package assign

import (
	"errors"
	"fmt"
	"sync"

	"github.com/swdee/go-yolocore/geometry"
	"gonum.org/v1/gonum/floats"
)

var (
	// ErrMalformedLabel is returned for a label with fewer than four fields
	ErrMalformedLabel = errors.New("malformed label")
	// ErrCellOutOfRange is returned when a label center falls outside the grid
	ErrCellOutOfRange = errors.New("label center outside grid")
	// ErrClassOutOfRange is returned for a class id outside [0, NumClasses)
	ErrClassOutOfRange = errors.New("class id out of range")
	// ErrInvalidParams is returned when the assigner parameters are unusable
	ErrInvalidParams = errors.New("invalid assigner parameters")
)

// GridSpec is the number of columns (Width) and rows (Height) a detection
// head produces
type GridSpec struct {
	Width  int
	Height int
}

// Params defines the anchor assignment parameters for one detection scale
type Params struct {
	// Anchors are the prior box shapes of the detection scale in label units
	Anchors []geometry.Anchor
	// Grid is the output grid of the detection head
	Grid GridSpec
	// NumClasses is the number of object classes the Model is trained with
	NumClasses int
	// Workers is the number of goroutines the batch is split across.  Values
	// below 2 assign serially
	Workers int
	// Pool optionally supplies the Target arenas
	Pool *TargetPool
}

// YOLOv2VOCParams returns Params for a YOLOv2 Model trained on Pascal VOC:
//   - Anchors: geometry.YOLOv2VOCAnchors()
//   - Grid: 13x13 (416x416 input, stride 32)
//   - Object Classes: 20
func YOLOv2VOCParams() Params {
	return Params{
		Anchors:    geometry.YOLOv2VOCAnchors(),
		Grid:       GridSpec{Width: 13, Height: 13},
		NumClasses: 20,
		Workers:    1,
	}
}

// Assigner maps batches of ground truth labels onto anchor slots
type Assigner struct {
	Params Params
}

// NewAssigner returns an Assigner after validating the parameters
func NewAssigner(p Params) (*Assigner, error) {

	if len(p.Anchors) == 0 {
		return nil, fmt.Errorf("%w: no anchors", ErrInvalidParams)
	}

	if p.Grid.Width <= 0 || p.Grid.Height <= 0 {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrInvalidParams,
			p.Grid.Width, p.Grid.Height)
	}

	if p.NumClasses < 0 {
		return nil, fmt.Errorf("%w: %d classes", ErrInvalidParams, p.NumClasses)
	}

	return &Assigner{Params: p}, nil
}

// Assign builds the training target for a batch of labels with the given
// anchors and grid.  labels[b] holds the labels of batch element b
func Assign(labels [][]Label, anchors []geometry.Anchor, grid GridSpec,
	numClasses int) (*Target, error) {

	a, err := NewAssigner(Params{
		Anchors:    anchors,
		Grid:       grid,
		NumClasses: numClasses,
	})

	if err != nil {
		return nil, err
	}

	return a.Assign(labels)
}

// Assign builds the training target for a batch of labels.  Every label is
// validated before anything is written, an error means no target is
// returned
func (a *Assigner) Assign(labels [][]Label) (*Target, error) {

	if err := a.validate(labels); err != nil {
		return nil, err
	}

	var t *Target

	if a.Params.Pool != nil {
		t = a.Params.Pool.Get(len(labels), a.Params.Grid.Height,
			a.Params.Grid.Width, len(a.Params.Anchors), a.Params.NumClasses)
	} else {
		t = NewTarget(len(labels), a.Params.Grid.Height, a.Params.Grid.Width,
			len(a.Params.Anchors), a.Params.NumClasses)
	}

	workers := a.Params.Workers

	if workers > len(labels) {
		workers = len(labels)
	}

	if workers < 2 {
		ious := make([]float64, len(a.Params.Anchors))

		for b := range labels {
			a.assignImage(t, b, labels[b], ious)
		}

		return t, nil
	}

	// each batch element writes a disjoint region of the arena
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func(start int) {
			defer wg.Done()

			ious := make([]float64, len(a.Params.Anchors))

			for b := start; b < len(labels); b += workers {
				a.assignImage(t, b, labels[b], ious)
			}
		}(w)
	}

	wg.Wait()

	return t, nil
}

// cell returns the label center scaled to the grid and the cell it falls
// in.  Field 0 scales by the grid height and field 1 by the width
func (a *Assigner) cell(l Label) (sx, sy float64, i, j int) {

	sx = l[0] * float64(a.Params.Grid.Height)
	sy = l[1] * float64(a.Params.Grid.Width)

	// truncation, a center scaled to 2.99 belongs to cell 2
	return sx, sy, int(sx), int(sy)
}

// validate checks every label of the batch
func (a *Assigner) validate(labels [][]Label) error {

	for b, image := range labels {
		for n, l := range image {

			if len(l) < 4 {
				return fmt.Errorf("%w: batch %d label %d has %d fields",
					ErrMalformedLabel, b, n, len(l))
			}

			_, _, i, j := a.cell(l)

			if i < 0 || i >= a.Params.Grid.Height || j < 0 || j >= a.Params.Grid.Width {
				return fmt.Errorf("%w: batch %d label %d cell (%d, %d) grid %dx%d",
					ErrCellOutOfRange, b, n, i, j, a.Params.Grid.Width, a.Params.Grid.Height)
			}

			for _, k := range l.Classes() {
				if k < 0 || k >= a.Params.NumClasses {
					return fmt.Errorf("%w: batch %d label %d class %d",
						ErrClassOutOfRange, b, n, k)
				}
			}
		}
	}

	return nil
}

// assignImage writes the labels of batch element b into the target.  ious
// is scratch space with one entry per anchor
func (a *Assigner) assignImage(t *Target, b int, labels []Label, ious []float64) {

	for _, l := range labels {

		sx, sy, i, j := a.cell(l)
		_, _, w, h := l.Box()

		for k, anchor := range a.Params.Anchors {
			ious[k] = float64(geometry.ShapeIoU(w, h, anchor))
		}

		// first occurrence wins on ties
		best := floats.MaxIdx(ious)

		// a later label on the same slot overwrites this one
		slot := t.Slot(b, i, j, best)
		slot[ChannelX] = float32(sx / float64(a.Params.Grid.Height))
		slot[ChannelY] = float32(sy / float64(a.Params.Grid.Width))
		slot[ChannelW] = w
		slot[ChannelH] = h
		slot[ChannelObjectness] = 1

		for _, k := range l.Classes() {
			slot[ChannelClassOffset+k] = 1
		}
	}
}

package postprocess

import (
	"errors"
	"fmt"
	"sort"

	"github.com/swdee/go-yolocore/geometry"
)

var (
	// ErrLengthMismatch is returned when boxes, scores or classes differ in
	// length
	ErrLengthMismatch = errors.New("detection slices differ in length")
	// ErrDegenerateBox is returned when a box handed to Suppress does not have
	// strictly positive area
	ErrDegenerateBox = errors.New("box has non-positive area")
)

// Suppress implements greedy Non-Maximum Suppression.  boxes are corner-form
// (x1, y1, x2, y2) and must all have strictly positive area.  Candidates are
// visited in descending score order, equal scores keep their input order.
// Each visited box is selected and every remaining box whose IoU with it is
// at least iouThreshold is dropped.  Selection stops when no candidates
// remain or maxOutputs boxes are selected, a maxOutputs of zero or less
// means no limit.
//
// The indices of the selected boxes are returned in selection order.  An
// empty input is not an error and returns an empty selection
func Suppress(boxes []geometry.Box, scores []float32, iouThreshold float32,
	maxOutputs int) ([]int, error) {

	if len(boxes) != len(scores) {
		return nil, fmt.Errorf("%w: %d boxes and %d scores", ErrLengthMismatch,
			len(boxes), len(scores))
	}

	if len(scores) == 0 {
		log.Warn("no boxes need to be filtered by nms")
		return []int{}, nil
	}

	for i, b := range boxes {
		if !b.Valid() {
			return nil, fmt.Errorf("%w: box %d %v", ErrDegenerateBox, i, b)
		}
	}

	if maxOutputs <= 0 {
		maxOutputs = len(scores) + 1
	}

	order := make([]int, len(scores))

	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	selected := make([]int, 0, min(len(scores), maxOutputs))
	remaining := order

	for len(remaining) > 0 && len(selected) < maxOutputs {

		idx := remaining[0]
		selected = append(selected, idx)

		// filter in place, the write position never passes the read position
		kept := remaining[:0]

		for _, r := range remaining[1:] {
			if geometry.IoUStrict(boxes[idx], boxes[r]) < iouThreshold {
				kept = append(kept, r)
			}
		}

		remaining = kept
	}

	return selected, nil
}

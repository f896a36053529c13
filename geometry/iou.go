package geometry

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// Epsilon is added to the union area by the stabilized IoU variants so two
// degenerate boxes compare as 0 instead of NaN
const Epsilon float32 = 1e-8

// ErrLengthMismatch is returned when batched inputs differ in length
var ErrLengthMismatch = errors.New("box slices differ in length")

// intersection returns the overlapping area of two corner-form boxes
func intersection(a, b Box) float32 {

	x1 := math32.Max(a[0], b[0])
	y1 := math32.Max(a[1], b[1])
	x2 := math32.Min(a[2], b[2])
	y2 := math32.Min(a[3], b[3])

	return math32.Max(x2-x1, 0) * math32.Max(y2-y1, 0)
}

// IoUStrict calculates the Intersection over Union of two corner-form boxes.
// Areas are the signed products (x1-x2)*(y1-y2) so both boxes must satisfy
// x2>=x1 and y2>=y1.  There is no guard on the union, comparing two
// zero-area boxes returns NaN
func IoUStrict(a, b Box) float32 {

	ins := intersection(a, b)
	uni := a.Area() + b.Area() - ins

	return ins / uni
}

// IoUStabilized is IoUStrict with Epsilon added to the union
func IoUStabilized(a, b Box) float32 {

	ins := intersection(a, b)
	uni := a.Area() + b.Area() - ins

	return ins / (uni + Epsilon)
}

// IoUElementwise calculates IoUStrict(as[i], bs[i]) for every pair and
// stores the scores in dst, which is grown when needed and returned
func IoUElementwise(dst []float32, as, bs []Box) ([]float32, error) {

	if len(as) != len(bs) {
		return nil, fmt.Errorf("%w: %d and %d", ErrLengthMismatch, len(as), len(bs))
	}

	if cap(dst) < len(as) {
		dst = make([]float32, len(as))
	}

	dst = dst[:len(as)]

	for i := range as {
		dst[i] = IoUStrict(as[i], bs[i])
	}

	return dst, nil
}

// ShapeIoU calculates the IoU between a box shape (w, h) and an anchor when
// both are placed at the same center.  The union carries Epsilon
func ShapeIoU(w, h float32, anchor Anchor) float32 {

	ins := math32.Min(w, anchor.W) * math32.Min(h, anchor.H)
	uni := w*h + anchor.Area() - ins

	return ins / (uni + Epsilon)
}

package geometry

// Box represents a 1x4 matrix of box coordinates.  Whether it holds a
// center-form (cx, cy, w, h) or corner-form (x1, y1, x2, y2) box, and in
// which reference frame (pixels or normalized), is tracked by the caller
type Box [4]float32

// Format is the encoding of a Box
type Format int

const (
	// CenterForm boxes are (center, center, size, size)
	CenterForm Format = 1
	// CornerForm boxes are (x1, y1, x2, y2)
	CornerForm Format = 2
)

// AxisOrder selects which axis the first coordinate of a box refers to
// during conversion
type AxisOrder int

const (
	// AxisXY treats the first coordinate as the column (x) axis and the
	// second as the row (y) axis
	AxisXY AxisOrder = 1
	// AxisYX treats the first coordinate as the row (y) axis and the second
	// as the column (x) axis.  Converting with AxisYX is the same as swapping
	// the axes of the input and converting with AxisXY
	AxisYX AxisOrder = 2
)

// String returns the name of the axis order
func (o AxisOrder) String() string {
	switch o {
	case AxisXY:
		return "xy"
	case AxisYX:
		return "yx"
	}
	return "unknown"
}

// X1 returns the left coordinate of a corner-form box
func (b Box) X1() float32 {
	return b[0]
}

// Y1 returns the top coordinate of a corner-form box
func (b Box) Y1() float32 {
	return b[1]
}

// X2 returns the right coordinate of a corner-form box
func (b Box) X2() float32 {
	return b[2]
}

// Y2 returns the bottom coordinate of a corner-form box
func (b Box) Y2() float32 {
	return b[3]
}

// Width returns the width of a corner-form box
func (b Box) Width() float32 {
	return b[2] - b[0]
}

// Height returns the height of a corner-form box
func (b Box) Height() float32 {
	return b[3] - b[1]
}

// Area returns the signed area (x1-x2)*(y1-y2) of a corner-form box.  The
// result is only meaningful when the box satisfies x2>=x1 and y2>=y1, this
// is not checked here
func (b Box) Area() float32 {
	return (b[0] - b[2]) * (b[1] - b[3])
}

// Valid reports whether a corner-form box has strictly positive area
func (b Box) Valid() bool {
	return b[2] > b[0] && b[3] > b[1]
}

// SwapAxes exchanges the axes of a box, (b0, b1, b2, b3) becomes
// (b1, b0, b3, b2).  For a corner-form box this converts between
// (x1, y1, x2, y2) and (top, left, bottom, right)
func SwapAxes(b Box) Box {
	return Box{b[1], b[0], b[3], b[2]}
}

// Scale multiplies the x coordinates of a corner-form box by sx and the y
// coordinates by sy
func (b Box) Scale(sx, sy float32) Box {
	return Box{b[0] * sx, b[1] * sy, b[2] * sx, b[3] * sy}
}

// Anchor is a prior box shape (width, height) normalized to the same frame
// as the labels it is matched against
type Anchor struct {
	W float32
	H float32
}

// Area returns the area of the anchor shape
func (a Anchor) Area() float32 {
	return a.W * a.H
}

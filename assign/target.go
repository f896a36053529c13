package assign

import (
	"gorgonia.org/tensor"
)

const (
	// ChannelX holds label field 0 re-divided by the grid height
	ChannelX = 0
	// ChannelY holds label field 1 re-divided by the grid width
	ChannelY = 1
	// ChannelW holds the label width unchanged
	ChannelW = 2
	// ChannelH holds the label height unchanged
	ChannelH = 3
	// ChannelObjectness is set to 1 for slots a label was assigned to
	ChannelObjectness = 4
	// ChannelClassOffset is the first class flag channel
	ChannelClassOffset = 5
)

// Target is the dense training target of shape
// [Batch, Height, Width, Anchors, Channels] stored in a single pre-sized
// arena.  Channels is 5 plus the number of classes
type Target struct {
	Batch    int
	Height   int
	Width    int
	Anchors  int
	Channels int
	// Data is the row major backing arena
	Data []float32
}

// NewTarget returns a zeroed Target for the given dimensions
func NewTarget(batch, height, width, anchors, numClasses int) *Target {

	t := &Target{
		Batch:    batch,
		Height:   height,
		Width:    width,
		Anchors:  anchors,
		Channels: ChannelClassOffset + numClasses,
	}

	t.Data = make([]float32, t.Len())

	return t
}

// Len returns the number of elements in the target
func (t *Target) Len() int {
	return t.Batch * t.Height * t.Width * t.Anchors * t.Channels
}

// Shape returns the target dimensions
func (t *Target) Shape() []int {
	return []int{t.Batch, t.Height, t.Width, t.Anchors, t.Channels}
}

// NumClasses returns the number of class flag channels
func (t *Target) NumClasses() int {
	return t.Channels - ChannelClassOffset
}

// Index returns the arena offset of element (b, i, j, a, c)
func (t *Target) Index(b, i, j, a, c int) int {
	return (((b*t.Height+i)*t.Width+j)*t.Anchors+a)*t.Channels + c
}

// At returns element (b, i, j, a, c)
func (t *Target) At(b, i, j, a, c int) float32 {
	return t.Data[t.Index(b, i, j, a, c)]
}

// Set stores v at element (b, i, j, a, c)
func (t *Target) Set(b, i, j, a, c int, v float32) {
	t.Data[t.Index(b, i, j, a, c)] = v
}

// Slot returns the channel vector of anchor slot (b, i, j, a).  The slice
// aliases the arena
func (t *Target) Slot(b, i, j, a int) []float32 {
	off := t.Index(b, i, j, a, 0)
	return t.Data[off : off+t.Channels : off+t.Channels]
}

// Image returns the arena region of batch element b
func (t *Target) Image(b int) []float32 {
	size := t.Height * t.Width * t.Anchors * t.Channels
	return t.Data[b*size : (b+1)*size]
}

// Reset zeroes the arena
func (t *Target) Reset() {
	clear(t.Data)
}

// Tensor returns a tensor view of the target backed by the same arena, no
// data is copied
func (t *Target) Tensor() *tensor.Dense {
	return tensor.New(
		tensor.WithShape(t.Shape()...),
		tensor.WithBacking(t.Data),
	)
}

// Objects returns the number of slots with objectness set
func (t *Target) Objects() int {

	n := 0

	for off := ChannelObjectness; off < len(t.Data); off += t.Channels {
		if t.Data[off] == 1 {
			n++
		}
	}

	return n
}

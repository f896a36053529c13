package preprocess

import (
	"fmt"

	"gorgonia.org/tensor"
)

// Batch defines a struct used for concatenating a batch of prepared images
// together into a single [B, 3, H, W] tensor for use with image batching on
// a Model
type Batch struct {
	data []float32
	// size of the batch
	size int
	// shape is the Model input size
	shape Shape
	// cnt is a counter for how many images have been added with Add()
	cnt int
	// imgSize stores an images size made up from its elements
	imgSize int
}

// NewBatch creates a batch for the given input shape and batch size
func NewBatch(batchSize int, shape Shape) *Batch {

	imgSize := 3 * shape.Width * shape.Height

	return &Batch{
		data:    make([]float32, batchSize*imgSize),
		size:    batchSize,
		shape:   shape,
		imgSize: imgSize,
	}
}

// Add an image to the batch
func (b *Batch) Add(in *Input) error {

	// check if batch is full
	if b.cnt >= b.size {
		return fmt.Errorf("batch full")
	}

	if err := b.addAt(b.cnt, in); err != nil {
		return err
	}

	b.cnt++
	return nil
}

// AddAt adds an image to the batch at the specific index location
func (b *Batch) AddAt(idx int, in *Input) error {

	if idx < 0 || idx >= b.size {
		return fmt.Errorf("index %d out of range [0-%d)", idx, b.size)
	}

	return b.addAt(idx, in)
}

// addAt copies the image tensor into the specified index location
func (b *Batch) addAt(idx int, in *Input) error {

	shape := in.Tensor.Shape()

	if len(shape) != 4 || shape[0] != 1 || shape[1] != 3 ||
		shape[2] != b.shape.Height || shape[3] != b.shape.Width {
		return fmt.Errorf("image tensor %v does not match batch shape", shape)
	}

	src, ok := in.Tensor.Data().([]float32)

	if !ok {
		return fmt.Errorf("image tensor is not float32")
	}

	copy(b.data[idx*b.imgSize:], src)

	return nil
}

// Len returns the number of images added
func (b *Batch) Len() int {
	return b.cnt
}

// Tensor returns the batch as a [B, 3, H, W] tensor sharing the batch memory
func (b *Batch) Tensor() *tensor.Dense {
	return tensor.New(
		tensor.WithShape(b.size, 3, b.shape.Height, b.shape.Width),
		tensor.WithBacking(b.data),
	)
}

// OutputAt returns the part of a batched Model output belonging to the
// image at idx, where each image produced size values
func (b *Batch) OutputAt(idx int, output []float32, size int) ([]float32, error) {

	if idx < 0 || idx >= b.size {
		return nil, fmt.Errorf("index %d out of range [0-%d)", idx, b.size)
	}

	offset := idx * size

	if offset+size > len(output) {
		return nil, fmt.Errorf("offset %d out of range [%d,%d)", offset, len(output), offset+size)
	}

	return output[offset : offset+size], nil
}

// Clear the batch so it can be reused again
func (b *Batch) Clear() {
	// only the counter is reset, the data is overwritten by the next Add()
	b.cnt = 0
}

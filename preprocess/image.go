package preprocess

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gorgonia.org/tensor"
)

// Shape is the Model input size in pixels
type Shape struct {
	Width  int
	Height int
}

// DefaultShape is the 416x416 input of YOLOv2
func DefaultShape() Shape {
	return Shape{Width: 416, Height: 416}
}

// Input is an image prepared for inference
type Input struct {
	// Original is the unresized source image
	Original image.Image
	// Tensor is the resized image as [1, 3, Height, Width] float32 values in
	// the range [0, 1], channels in RGB order
	Tensor *tensor.Dense
	// Width is the width of the source image
	Width int
	// Height is the height of the source image
	Height int
}

// LoadImage reads an image file and prepares it for inference
func LoadImage(file string, shape Shape) (*Input, error) {

	img, err := imaging.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error loading image: %w", err)
	}

	return FromImage(img, shape)
}

// FromImage resizes the image to the Model input shape, without keeping the
// aspect ratio, and converts it to a normalized channel first tensor with a
// leading batch dimension of 1
func FromImage(img image.Image, shape Shape) (*Input, error) {

	if shape.Width <= 0 || shape.Height <= 0 {
		return nil, fmt.Errorf("invalid input shape %dx%d", shape.Width, shape.Height)
	}

	bounds := img.Bounds()

	if bounds.Empty() {
		return nil, fmt.Errorf("image has no pixels")
	}

	resized := imaging.Resize(img, shape.Width, shape.Height, imaging.Linear)

	return &Input{
		Original: img,
		Tensor:   toTensor(resized, shape),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// toTensor converts an image of the given shape into a [1, 3, H, W] tensor
func toTensor(img *image.NRGBA, shape Shape) *tensor.Dense {

	channelSize := shape.Width * shape.Height
	data := make([]float32, 3*channelSize)

	for y := 0; y < shape.Height; y++ {
		row := img.Pix[y*img.Stride:]

		for x := 0; x < shape.Width; x++ {
			i := y*shape.Width + x
			px := row[x*4:]

			data[i] = float32(px[0]) / 255.0
			data[channelSize+i] = float32(px[1]) / 255.0
			data[channelSize*2+i] = float32(px[2]) / 255.0
		}
	}

	return tensor.New(
		tensor.WithShape(1, 3, shape.Height, shape.Width),
		tensor.WithBacking(data),
	)
}

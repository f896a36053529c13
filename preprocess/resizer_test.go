package preprocess

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/swdee/go-yolocore/geometry"
	"gocv.io/x/gocv"
)

var (
	black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

func TestLetterBoxResize(t *testing.T) {

	tests := []struct {
		srcWidth      int
		srcHeight     int
		resizeWidth   int
		resizeHeight  int
		expectedXPad  int
		expectedYPad  int
		expectedScale float32
	}{
		{1280, 720, 640, 640, 0, 140, 0.50},
		{800, 1000, 640, 640, 64, 0, 0.64},
		{800, 800, 640, 640, 0, 0, 0.8},
	}

	for _, tc := range tests {
		img := gocv.NewMatWithSize(tc.srcHeight, tc.srcWidth, gocv.MatTypeCV8UC3)

		resizedImg := gocv.NewMat()

		resizer := NewResizer(tc.srcWidth, tc.srcHeight, tc.resizeWidth, tc.resizeHeight)

		resizer.LetterBoxResize(img, &resizedImg, black)

		assert.Equal(t, tc.expectedXPad, resizer.XPad(), "src (%d, %d)", tc.srcWidth, tc.srcHeight)
		assert.Equal(t, tc.expectedYPad, resizer.YPad(), "src (%d, %d)", tc.srcWidth, tc.srcHeight)
		assert.InDelta(t, tc.expectedScale, resizer.ScaleFactor(), 1e-6)
		assert.Equal(t, tc.resizeWidth, resizedImg.Cols())
		assert.Equal(t, tc.resizeHeight, resizedImg.Rows())

		img.Close()
		resizedImg.Close()
		resizer.Close()
	}
}

func TestResizerTensor(t *testing.T) {

	img := gocv.NewMatWithSize(200, 400, gocv.MatTypeCV8UC3)
	defer img.Close()

	resizer := NewResizer(400, 200, 64, 64)
	defer resizer.Close()

	out, err := resizer.Tensor(img, black)
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 3, 64, 64}, []int(out.Shape()))

	small := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer small.Close()

	_, err = resizer.Tensor(small, black)
	assert.Error(t, err)
}

func TestResizerScaleBox(t *testing.T) {

	// 800x400 into 400x400, scale 0.5 with 100 pixels of padding top and bottom
	resizer := NewResizer(800, 400, 400, 400)
	defer resizer.Close()

	box := resizer.ScaleBox(geometry.Box{10, 110, 210, 310})
	assert.InDeltaSlice(t, []float32{20, 20, 420, 420}, box[:], 1e-4)

	// parts in the padding clip to the source bounds
	box = resizer.ScaleBox(geometry.Box{0, 50, 400, 350})
	assert.InDeltaSlice(t, []float32{0, 0, 800, 400}, box[:], 1e-4)
}

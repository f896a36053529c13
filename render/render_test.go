package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-yolocore/geometry"
	"github.com/swdee/go-yolocore/postprocess"
	"golang.org/x/image/font/gofont/goregular"
)

func TestGenerateColors(t *testing.T) {

	a := GenerateColors(20, NewColorRand())
	b := GenerateColors(20, NewColorRand())

	require.Len(t, a, 20)
	assert.Equal(t, a, b)
	assert.Contains(t, a, color.RGBA{R: 255, G: 0, B: 0, A: 255})

	seen := make(map[color.RGBA]bool)

	for _, c := range a {
		assert.Equal(t, uint8(255), c.A)
		seen[c] = true
	}

	assert.Len(t, seen, 20)
	assert.Empty(t, GenerateColors(0, NewColorRand()))
}

func TestFontSize(t *testing.T) {

	tests := []struct {
		height int
		expect float64
	}{
		{416, 12},
		{300, 9},
		{1080, 32},
		{10, 0},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expect, FontSize(tc.height), "height %d", tc.height)
	}
}

func TestLoadFontMissing(t *testing.T) {

	_, err := LoadFont("testdata/missing.ttf", 416)
	assert.Error(t, err)

	_, err = ParseFont([]byte("not a font"), 416)
	assert.Error(t, err)
}

func TestLabelOrigin(t *testing.T) {

	rect := image.Rect(50, 100, 200, 150)
	assert.Equal(t, image.Pt(50, 88), labelOrigin(rect, 12))

	// no room above the box
	rect = image.Rect(50, 5, 200, 150)
	assert.Equal(t, image.Pt(50, 6), labelOrigin(rect, 12))
}

func TestPixelRect(t *testing.T) {

	bounds := image.Rect(0, 0, 300, 200)

	rect := pixelRect(geometry.Box{10.4, 20.5, 50.49, 60.6}, bounds)
	assert.Equal(t, image.Rectangle{Min: image.Pt(21, 10), Max: image.Pt(61, 50)}, rect)

	rect = pixelRect(geometry.Box{-5, -3, 250, 400}, bounds)
	assert.Equal(t, image.Rectangle{Min: image.Pt(0, 0), Max: image.Pt(300, 200)}, rect)
}

func newCanvas(w, h int) *image.RGBA {

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(White), image.Point{}, draw.Src)

	return img
}

func TestDetectionBoxes(t *testing.T) {

	img := newCanvas(300, 300)

	f, err := ParseFont(goregular.TTF, 300)
	require.NoError(t, err)
	defer f.Close()

	colors := []color.RGBA{{R: 255, A: 255}, {G: 255, A: 255}}

	err = DetectionBoxes(img,
		[]float32{0.9},
		[]geometry.Box{{100, 50, 200, 150}},
		[]int{1},
		[]string{"cat", "dog"},
		colors, f)
	require.NoError(t, err)

	// outline on the left edge and one pixel inside it
	assert.Equal(t, colors[1], img.RGBAAt(50, 175))
	assert.Equal(t, colors[1], img.RGBAAt(51, 175))
	assert.Equal(t, White, img.RGBAAt(52, 175))

	// label background sits above the box
	assert.NotEqual(t, White, img.RGBAAt(50, 99))

	// inside of the box is untouched
	assert.Equal(t, White, img.RGBAAt(100, 150))
}

func TestDetectionBoxesErrors(t *testing.T) {

	img := newCanvas(100, 100)

	f, err := ParseFont(goregular.TTF, 100)
	require.NoError(t, err)
	defer f.Close()

	err = DetectionBoxes(img, []float32{0.5}, nil, []int{0}, []string{"a"},
		[]color.RGBA{White}, f)
	assert.True(t, errors.Is(err, ErrLengthMismatch))

	err = DetectionBoxes(img, []float32{0.5}, []geometry.Box{{0, 0, 10, 10}},
		[]int{3}, []string{"a"}, []color.RGBA{White}, f)
	assert.True(t, errors.Is(err, ErrUnknownClass))
}

func TestDetectionBoxesUnknownClassDrawsNothing(t *testing.T) {

	img := newCanvas(300, 300)

	f, err := ParseFont(goregular.TTF, 300)
	require.NoError(t, err)
	defer f.Close()

	// the valid detection is drawn first as drawing runs last to first
	err = DetectionBoxes(img,
		[]float32{0.9, 0.8},
		[]geometry.Box{{10, 10, 50, 50}, {100, 50, 200, 150}},
		[]int{5, 0},
		[]string{"cat"},
		[]color.RGBA{{R: 255, A: 255}}, f)
	assert.True(t, errors.Is(err, ErrUnknownClass))

	assert.Equal(t, White, img.RGBAAt(50, 150))
	assert.Equal(t, White, img.RGBAAt(50, 99))
}

func TestDetections(t *testing.T) {

	img := newCanvas(300, 300)

	f, err := ParseFont(goregular.TTF, 300)
	require.NoError(t, err)
	defer f.Close()

	results := []postprocess.DetectResult{
		{Class: 0, Probability: 0.8,
			Box: postprocess.BoxRect{Left: 20, Top: 40, Right: 120, Bottom: 140}},
	}

	err = Detections(img, results, []string{"person"}, GenerateColors(1, NewColorRand()), f)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(20, 100))
}

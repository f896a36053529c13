package render

import (
	"fmt"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// Font is the type face used to write detection labels
type Font struct {
	Face font.Face
	// Size is the font size in points at 72 DPI
	Size float64
}

// FontSize returns the label font size for an image of the given height
func FontSize(imageHeight int) float64 {
	return math.Floor(0.03*float64(imageHeight) + 0.5)
}

// LoadFont loads a TTF/OTF font file sized for an image of imageHeight pixels
func LoadFont(path string, imageHeight int) (*Font, error) {

	fontBytes, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	return ParseFont(fontBytes, imageHeight)
}

// ParseFont creates a Font from TTF/OTF data sized for an image of
// imageHeight pixels
func ParseFont(data []byte, imageHeight int) (*Font, error) {

	f, err := opentype.Parse(data)

	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	size := FontSize(imageHeight)

	if size < 1 {
		size = 1
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create type face: %w", err)
	}

	return &Font{
		Face: face,
		Size: size,
	}, nil
}

// Close releases the font face
func (f *Font) Close() error {
	return f.Face.Close()
}

// textSize returns the width and height in pixels of the rendered text
func (f *Font) textSize(text string) (int, int) {

	width := font.MeasureString(f.Face, text).Ceil()
	metrics := f.Face.Metrics()

	return width, (metrics.Ascent + metrics.Descent).Ceil()
}

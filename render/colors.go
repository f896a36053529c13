package render

import (
	"image/color"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorSeed is the seed NewColorRand uses so every run paints each class
// with the same color
const ColorSeed = 10101

var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// NewColorRand returns the random generator used for shuffling class colors
func NewColorRand() *rand.Rand {
	return rand.New(rand.NewSource(ColorSeed))
}

// GenerateColors returns n distinct colors, one per object class.  Hues are
// spread evenly around the HSV color wheel at full saturation and value, then
// shuffled with rng so neighbouring classes don't get similar colors
func GenerateColors(n int, rng *rand.Rand) []color.RGBA {

	if n <= 0 {
		return []color.RGBA{}
	}

	colors := make([]color.RGBA, n)

	for i := range colors {
		c := colorful.Hsv(360*float64(i)/float64(n), 1, 1)

		colors[i] = color.RGBA{
			R: uint8(c.R * 255),
			G: uint8(c.G * 255),
			B: uint8(c.B * 255),
			A: 255,
		}
	}

	rng.Shuffle(len(colors), func(i, j int) {
		colors[i], colors[j] = colors[j], colors[i]
	})

	return colors
}

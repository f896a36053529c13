package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/chewxy/math32"
	"github.com/swdee/go-yolocore/geometry"
	"github.com/swdee/go-yolocore/postprocess"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var (
	// ErrLengthMismatch is returned when the scores, boxes and classes given
	// to DetectionBoxes differ in length
	ErrLengthMismatch = errors.New("detection slices differ in length")
	// ErrUnknownClass is returned when a class has no name or color
	ErrUnknownClass = errors.New("class has no name or color")
)

// LineThickness returns the box outline thickness for an image, zero for
// images smaller than 300 pixels across both sides
func LineThickness(bounds image.Rectangle) int {
	return (bounds.Dx() + bounds.Dy()) / 300
}

// DetectionBoxes renders the bounding boxes around the objects detected with
// a label of the class name and score.  Boxes are in (top, left, bottom,
// right) pixel order, see geometry.SwapAxes.  Detections are drawn from the
// last to the first so the highest scoring labels end up on top
func DetectionBoxes(img draw.Image, scores []float32, boxes []geometry.Box,
	classes []int, classNames []string, colors []color.RGBA, f *Font) error {

	if len(scores) != len(boxes) || len(classes) != len(boxes) {
		return fmt.Errorf("%w: %d scores, %d boxes, %d classes", ErrLengthMismatch,
			len(scores), len(boxes), len(classes))
	}

	// nothing is drawn unless every class can be labelled
	for _, class := range classes {
		if class < 0 || class >= len(classNames) || class >= len(colors) {
			return fmt.Errorf("%w: %d", ErrUnknownClass, class)
		}
	}

	bounds := img.Bounds()
	thickness := LineThickness(bounds)

	for i := len(boxes) - 1; i >= 0; i-- {

		class := classes[i]
		clr := colors[class]
		text := fmt.Sprintf("%s %.2f", classNames[class], scores[i])
		labelW, labelH := f.textSize(text)

		rect := pixelRect(boxes[i], bounds)
		origin := labelOrigin(rect, labelH)

		// outline grows inwards one pixel per step
		for k := 0; k < thickness; k++ {
			outline(img, image.Rectangle{
				Min: image.Pt(rect.Min.X+k, rect.Min.Y+k),
				Max: image.Pt(rect.Max.X-k, rect.Max.Y-k),
			}, clr)
		}

		label := image.Rect(origin.X, origin.Y, origin.X+labelW, origin.Y+labelH)
		draw.Draw(img, label.Intersect(bounds), image.NewUniform(clr),
			image.Point{}, draw.Src)

		dr := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(Black),
			Face: f.Face,
			Dot: fixed.Point26_6{
				X: fixed.I(origin.X),
				Y: fixed.I(origin.Y) + f.Face.Metrics().Ascent,
			},
		}
		dr.DrawString(text)
	}

	return nil
}

// Detections renders the results of YOLOv2.DetectObjects
func Detections(img draw.Image, results []postprocess.DetectResult,
	classNames []string, colors []color.RGBA, f *Font) error {

	scores := make([]float32, len(results))
	boxes := make([]geometry.Box, len(results))
	classes := make([]int, len(results))

	for i, res := range results {
		scores[i] = res.Probability
		boxes[i] = res.Box.TLBR()
		classes[i] = res.Class
	}

	return DetectionBoxes(img, scores, boxes, classes, classNames, colors, f)
}

// pixelRect rounds a (top, left, bottom, right) box to the nearest pixels
// and clamps it to the image bounds
func pixelRect(box geometry.Box, bounds image.Rectangle) image.Rectangle {

	round := func(v float32) int {
		return int(math32.Floor(v + 0.5))
	}

	top := max(bounds.Min.Y, round(box[0]))
	left := max(bounds.Min.X, round(box[1]))
	bottom := min(bounds.Max.Y, round(box[2]))
	right := min(bounds.Max.X, round(box[3]))

	return image.Rectangle{Min: image.Pt(left, top), Max: image.Pt(right, bottom)}
}

// labelOrigin returns the top left corner of the label, above the box when
// there is room for it otherwise just inside the top edge
func labelOrigin(rect image.Rectangle, labelH int) image.Point {

	if rect.Min.Y-labelH >= 0 {
		return image.Pt(rect.Min.X, rect.Min.Y-labelH)
	}

	return image.Pt(rect.Min.X, rect.Min.Y+1)
}

// outline draws the one pixel border of rect, corners inclusive
func outline(img draw.Image, rect image.Rectangle, clr color.Color) {

	if rect.Dx() < 0 || rect.Dy() < 0 {
		return
	}

	for x := rect.Min.X; x <= rect.Max.X; x++ {
		img.Set(x, rect.Min.Y, clr)
		img.Set(x, rect.Max.Y, clr)
	}

	for y := rect.Min.Y; y <= rect.Max.Y; y++ {
		img.Set(rect.Min.X, y, clr)
		img.Set(rect.Max.X, y, clr)
	}
}

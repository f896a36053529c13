package preprocess

import (
	"fmt"
	"image"
	"image/color"

	"github.com/swdee/go-yolocore/geometry"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"
)

// Resizer defines the struct used for handling letterbox image resizing of
// gocv Mats
type Resizer struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// destWidth is the width to scale to
	destWidth int
	// destHeight is the height to scale to
	destHeight int
	// tempMat is a Mat used during the resize process
	tempMat gocv.Mat
	// letterbox parameters used in scaling
	xPad  int
	yPad  int
	scale float32
	// resize dimensions
	resizeW int
	resizeH int
}

// NewResizer returns a resizer used for scaling an image to the needed
// dimensions for input tensor size
func NewResizer(srcWidth, srcHeight, destWidth, destHeight int) *Resizer {
	r := &Resizer{
		srcWidth:   srcWidth,
		srcHeight:  srcHeight,
		destWidth:  destWidth,
		destHeight: destHeight,
		tempMat:    gocv.NewMat(),
	}

	// precalculate scaling dimensions
	r.preCalc()

	return r
}

// Close frees memory allocated during resize process
func (r *Resizer) Close() error {
	return r.tempMat.Close()
}

// preCalc the scaling factors for source and destination Mats
func (r *Resizer) preCalc() {

	r.resizeW = r.destWidth
	r.resizeH = r.destHeight

	scaleW := float32(r.destWidth) / float32(r.srcWidth)
	scaleH := float32(r.destHeight) / float32(r.srcHeight)
	r.scale = scaleH

	if scaleW < scaleH {
		r.scale = scaleW
		r.resizeH = int(float32(r.srcHeight) * r.scale)
	} else {
		r.resizeW = int(float32(r.srcWidth) * r.scale)
	}

	r.yPad = (r.destHeight - r.resizeH) / 2 // padding height / 2
	r.xPad = (r.destWidth - r.resizeW) / 2  // padding width / 2
}

// LetterBoxResize resizes the input image to the dimensions needed for the input
// tensor size whilst maintaining image aspect.  Color is that used for letter
// box padding
func (r *Resizer) LetterBoxResize(src gocv.Mat, dest *gocv.Mat, color color.RGBA) {

	gocv.Resize(src, &r.tempMat, image.Pt(r.resizeW, r.resizeH),
		0, 0, gocv.InterpolationArea)

	gocv.CopyMakeBorder(r.tempMat, dest, r.yPad, r.destHeight-r.resizeH-r.yPad,
		r.xPad, r.destWidth-r.resizeW-r.xPad, gocv.BorderConstant, color)
}

// Tensor letterbox resizes a BGR image read by gocv and returns it as a
// [1, 3, H, W] float32 tensor with values in [0, 1] and channels in RGB
// order, the same layout FromImage produces
func (r *Resizer) Tensor(src gocv.Mat, padColor color.RGBA) (*tensor.Dense, error) {

	if src.Cols() != r.srcWidth || src.Rows() != r.srcHeight {
		return nil, fmt.Errorf("image is %dx%d, resizer expects %dx%d",
			src.Cols(), src.Rows(), r.srcWidth, r.srcHeight)
	}

	resized := gocv.NewMat()
	defer resized.Close()

	r.LetterBoxResize(src, &resized, padColor)

	blob := gocv.BlobFromImage(resized, 1.0/255.0,
		image.Pt(r.destWidth, r.destHeight), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	ptr, err := blob.DataPtrFloat32()

	if err != nil {
		return nil, fmt.Errorf("error accessing blob data: %w", err)
	}

	data := make([]float32, len(ptr))
	copy(data, ptr)

	return tensor.New(
		tensor.WithShape(1, 3, r.destHeight, r.destWidth),
		tensor.WithBacking(data),
	), nil
}

// ScaleBox maps a corner-form box in letterboxed input pixels back onto the
// source image, clipped to its bounds
func (r *Resizer) ScaleBox(b geometry.Box) geometry.Box {

	unpad := func(v float32, pad int, limit int) float32 {
		v = (v - float32(pad)) / r.scale

		if v < 0 {
			return 0
		}

		if v > float32(limit) {
			return float32(limit)
		}

		return v
	}

	return geometry.Box{
		unpad(b[0], r.xPad, r.srcWidth),
		unpad(b[1], r.yPad, r.srcHeight),
		unpad(b[2], r.xPad, r.srcWidth),
		unpad(b[3], r.yPad, r.srcHeight),
	}
}

// ScaleFactor returns the scale factor used in letterbox resize
func (r *Resizer) ScaleFactor() float32 {
	return r.scale
}

// XPad returns the x padding used in letterbox resize
func (r *Resizer) XPad() int {
	return r.xPad
}

// YPad returns the y padding used in letterbox resize
func (r *Resizer) YPad() int {
	return r.yPad
}

// SrcWidth returns the width of the source image
func (r *Resizer) SrcWidth() int {
	return r.srcWidth
}

// SrcHeight returns the height of the source image
func (r *Resizer) SrcHeight() int {
	return r.srcHeight
}

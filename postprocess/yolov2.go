package postprocess

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/swdee/go-yolocore/geometry"
)

// YOLOv2 defines the struct for YOLOv2 model inference post processing
type YOLOv2 struct {
	// Params are the Model configuration parameters
	Params YOLOv2Params
}

// YOLOv2Params defines the struct containing the YOLOv2 parameters to use
// for post processing operations
type YOLOv2Params struct {
	// Anchors are the Anchor Box shapes normalized to the input image size,
	// the same anchors the training targets were assigned with
	Anchors []geometry.Anchor
	// GridWidth is the number of columns of the output grid
	GridWidth int
	// GridHeight is the number of rows of the output grid
	GridHeight int
	// BoxThreshold is the minimum score (objectness times class
	// probability) required for a box to be considered for processing
	BoxThreshold float32
	// NMSThreshold is the Non-Maximum Suppression threshold, a box whose IoU
	// with a higher scoring box is at least this value is dropped
	NMSThreshold float32
	// ObjectClassNum is the number of different object classes the Model has
	// been trained with
	ObjectClassNum int
	// MaxObjectNumber is the maximum number of objects detected that can be
	// returned, zero means no limit
	MaxObjectNumber int
	// ClassAgnostic runs suppression across all classes at once instead of
	// per class
	ClassAgnostic bool
}

// YOLOv2VOCParams returns an instance of YOLOv2Params configured with
// default values for a Model trained on the Pascal VOC dataset featuring:
//   - Object Classes: 20
//   - Anchor Boxes: geometry.YOLOv2VOCAnchors()
//   - Grid: 13x13
//   - Box Threshold: 0.3
//   - NMS Threshold: 0.5
//   - Maximum Object Number: 10
func YOLOv2VOCParams() YOLOv2Params {
	return YOLOv2Params{
		Anchors:         geometry.YOLOv2VOCAnchors(),
		GridWidth:       13,
		GridHeight:      13,
		BoxThreshold:    0.3,
		NMSThreshold:    0.5,
		ObjectClassNum:  20,
		MaxObjectNumber: 10,
	}
}

// NewYOLOv2 returns an instance of the YOLOv2 post processor
func NewYOLOv2(p YOLOv2Params) *YOLOv2 {
	return &YOLOv2{
		Params: p,
	}
}

// ProbBoxSize returns the number of channels per anchor slot, the 5 box
// attributes plus one per object class
func (y *YOLOv2) ProbBoxSize() int {
	return 5 + y.Params.ObjectClassNum
}

// OutputLen returns the number of elements the head output must hold
func (y *YOLOv2) OutputLen() int {
	return y.Params.GridHeight * y.Params.GridWidth * len(y.Params.Anchors) *
		y.ProbBoxSize()
}

// Decode converts the raw head output into candidate detections scaled to
// an image of imgWidth x imgHeight pixels.
//
// The output layout matches the training target, [GridHeight, GridWidth,
// Anchors, 5+ObjectClassNum] row major with each slot holding raw
// (tx, ty, tw, th, to, class logits...).  tx pairs with the first grid
// index and ty with the second, as label fields 0 and 1 do during
// assignment.  Boxes are clipped to the image and boxes left without area
// are dropped so the set can be passed to Suppress directly
func (y *YOLOv2) Decode(output []float32, imgWidth, imgHeight int) (*DetectionSet, error) {

	if y.Params.ObjectClassNum <= 0 || len(y.Params.Anchors) == 0 {
		return nil, fmt.Errorf("invalid YOLOv2 parameters: %d classes, %d anchors",
			y.Params.ObjectClassNum, len(y.Params.Anchors))
	}

	if len(output) != y.OutputLen() {
		return nil, fmt.Errorf("%w: head output has %d elements, expected %d",
			ErrLengthMismatch, len(output), y.OutputLen())
	}

	gridH := float32(y.Params.GridHeight)
	gridW := float32(y.Params.GridWidth)
	imgW := float32(imgWidth)
	imgH := float32(imgHeight)
	size := y.ProbBoxSize()

	set := &DetectionSet{}
	off := 0

	for i := 0; i < y.Params.GridHeight; i++ {
		for j := 0; j < y.Params.GridWidth; j++ {
			for _, anchor := range y.Params.Anchors {

				slot := output[off : off+size]
				off += size

				objConf := sigmoid(slot[4])

				if objConf < y.Params.BoxThreshold {
					// the score can not exceed the objectness
					continue
				}

				classID, classProb := softmaxMax(slot[5:])
				score := objConf * classProb

				if score < y.Params.BoxThreshold {
					continue
				}

				center := geometry.Box{
					(sigmoid(slot[0]) + float32(i)) / gridH,
					(sigmoid(slot[1]) + float32(j)) / gridW,
					math32.Exp(slot[2]) * anchor.W,
					math32.Exp(slot[3]) * anchor.H,
				}

				box := geometry.CenterToCorners(center, geometry.AxisXY).Scale(imgW, imgH)

				box = geometry.Box{
					clamp(box[0], 0, imgW),
					clamp(box[1], 0, imgH),
					clamp(box[2], 0, imgW),
					clamp(box[3], 0, imgH),
				}

				if !box.Valid() {
					continue
				}

				set.Add(box, score, classID)
			}
		}
	}

	return set, nil
}

// DetectObjects decodes the raw head output, runs Non-Maximum Suppression
// and returns the results in source image pixels
func (y *YOLOv2) DetectObjects(output []float32, imgWidth, imgHeight int) ([]DetectResult, error) {

	set, err := y.Decode(output, imgWidth, imgHeight)

	if err != nil {
		return nil, err
	}

	if set.Len() == 0 {
		// no object detected
		return nil, nil
	}

	kept, err := y.Suppress(set)

	if err != nil {
		return nil, err
	}

	return Collate(kept), nil
}

// Suppress runs Non-Maximum Suppression over decoded detections, per class
// unless ClassAgnostic is set, keeping at most MaxObjectNumber
func (y *YOLOv2) Suppress(set *DetectionSet) (*DetectionSet, error) {

	var kept *DetectionSet
	var err error

	if y.Params.ClassAgnostic {
		kept, err = set.Suppress(y.Params.NMSThreshold, y.Params.MaxObjectNumber)
	} else {
		kept, err = set.SuppressPerClass(y.Params.NMSThreshold, y.Params.MaxObjectNumber)
	}

	if err != nil {
		return nil, fmt.Errorf("error suppressing detections: %w", err)
	}

	return kept, nil
}

// Collate converts a DetectionSet into DetectResults with integer pixel
// boxes
func Collate(set *DetectionSet) []DetectResult {

	group := make([]DetectResult, 0, set.Len())

	for i, box := range set.Boxes {
		group = append(group, DetectResult{
			Box: BoxRect{
				Left:   int(box.X1()),
				Top:    int(box.Y1()),
				Right:  int(box.X2()),
				Bottom: int(box.Y2()),
			},
			Probability: set.Scores[i],
			Class:       set.Classes[i],
		})
	}

	return group
}

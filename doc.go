/*
go-yolocore provides the geometry and label assignment core of anchor based
YOLO object detectors in Go.  It converts between box encodings, scores box
overlap, assigns ground truth boxes to grid cells and anchors to build
training targets, and suppresses duplicate detections at inference time.

The neural network itself is treated as an opaque producer and consumer of
float32 tensors.  Subpackages cover each stage:

  - geometry: center/corner conversion and IoU
  - assign: ground truth labels to dense training targets
  - postprocess: YOLOv2 head decoding and Non-Maximum Suppression
  - preprocess: image loading and resizing to the Model input tensor
  - render: drawing detections onto images

See example code and usage in the examples subdirectory.
*/
package yolocore

package geometry

// YOLOv2VOCAnchors returns the five YOLOv2 anchor shapes used for the
// Pascal VOC dataset normalized to image size.  They are the published
// grid cell unit anchors divided by the 13x13 output grid of a 416x416
// input
func YOLOv2VOCAnchors() []Anchor {
	return []Anchor{
		{W: 1.08 / 13, H: 1.19 / 13},
		{W: 3.42 / 13, H: 4.41 / 13},
		{W: 6.63 / 13, H: 11.38 / 13},
		{W: 9.42 / 13, H: 5.11 / 13},
		{W: 16.62 / 13, H: 10.52 / 13},
	}
}

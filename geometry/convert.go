package geometry

// CenterToCorners converts a center-form box into corner-form.  With AxisXY
// the input is (cx, cy, w, h) and the result (x1, y1, x2, y2).  With AxisYX
// the first coordinate is taken as the row axis, so the result is
// (b1-b3/2, b0-b2/2, b1+b3/2, b0+b2/2)
func CenterToCorners(b Box, order AxisOrder) Box {

	if order == AxisYX {
		b = SwapAxes(b)
	}

	return Box{
		b[0] - b[2]/2,
		b[1] - b[3]/2,
		b[0] + b[2]/2,
		b[1] + b[3]/2,
	}
}

// CornersToCenter is the inverse of CenterToCorners for the same AxisOrder
func CornersToCenter(b Box, order AxisOrder) Box {

	c := Box{
		(b[0] + b[2]) / 2,
		(b[1] + b[3]) / 2,
		b[2] - b[0],
		b[3] - b[1],
	}

	if order == AxisYX {
		return SwapAxes(c)
	}

	return c
}

// Convert converts a box between formats using the given axis order.  When
// from and to are the same format the box is returned unchanged
func Convert(b Box, from, to Format, order AxisOrder) Box {

	switch {
	case from == CenterForm && to == CornerForm:
		return CenterToCorners(b, order)
	case from == CornerForm && to == CenterForm:
		return CornersToCenter(b, order)
	}

	return b
}

// CentersToCorners converts every center-form box in src into corner-form
// boxes in dst.  dst is grown when it is shorter than src and the slice
// holding the results is returned
func CentersToCorners(dst, src []Box, order AxisOrder) []Box {

	if cap(dst) < len(src) {
		dst = make([]Box, len(src))
	}

	dst = dst[:len(src)]

	for i, b := range src {
		dst[i] = CenterToCorners(b, order)
	}

	return dst
}

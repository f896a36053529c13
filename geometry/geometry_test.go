package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boxesEqual compares boxes within epsilon
func boxesEqual(a, b Box, epsilon float32) bool {
	for i := range a {
		if diff := a[i] - b[i]; diff > epsilon || diff < -epsilon {
			return false
		}
	}
	return true
}

func TestCenterToCorners(t *testing.T) {

	tests := []struct {
		name   string
		box    Box
		order  AxisOrder
		expect Box
	}{
		{"xy", Box{5, 10, 4, 6}, AxisXY, Box{3, 7, 7, 13}},
		{"yx", Box{5, 10, 4, 6}, AxisYX, Box{7, 3, 13, 7}},
		{"xy zero size", Box{1, 1, 0, 0}, AxisXY, Box{1, 1, 1, 1}},
	}

	for _, tc := range tests {
		got := CenterToCorners(tc.box, tc.order)
		assert.Equal(t, tc.expect, got, tc.name)
	}
}

func TestConvertRoundTrip(t *testing.T) {

	boxes := []Box{
		{0.5, 0.5, 0.2, 0.4},
		{0.1, 0.9, 0.05, 0.3},
		{120.5, 33.25, 64, 17},
		{0, 0, 0, 0},
	}

	for _, order := range []AxisOrder{AxisXY, AxisYX} {
		for _, b := range boxes {
			corners := Convert(b, CenterForm, CornerForm, order)
			back := Convert(corners, CornerForm, CenterForm, order)

			if !boxesEqual(b, back, 1e-4) {
				t.Errorf("order %s: expected %v, got %v", order, b, back)
			}
		}
	}
}

func TestConvertSameFormat(t *testing.T) {
	b := Box{1, 2, 3, 4}
	assert.Equal(t, b, Convert(b, CornerForm, CornerForm, AxisYX))
	assert.Equal(t, b, Convert(b, CenterForm, CenterForm, AxisXY))
}

func TestAxisYXIsSwappedXY(t *testing.T) {
	b := Box{0.3, 0.7, 0.2, 0.1}
	assert.Equal(t, CenterToCorners(SwapAxes(b), AxisXY), CenterToCorners(b, AxisYX))
}

func TestCentersToCorners(t *testing.T) {
	src := []Box{{5, 10, 4, 6}, {0, 0, 2, 2}}
	got := CentersToCorners(nil, src, AxisXY)

	require.Len(t, got, 2)
	assert.Equal(t, Box{3, 7, 7, 13}, got[0])
	assert.Equal(t, Box{-1, -1, 1, 1}, got[1])
}

func TestIoUStrict(t *testing.T) {

	a := Box{0, 0, 10, 10}
	b := Box{5, 5, 15, 15}

	// intersection 25, union 100+100-25
	assert.InDelta(t, 25.0/175.0, IoUStrict(a, b), 1e-6)
	assert.InDelta(t, 1.0, IoUStrict(a, a), 1e-6)
	assert.Equal(t, float32(0), IoUStrict(a, Box{20, 20, 30, 30}))
}

func TestIoUProperties(t *testing.T) {

	boxes := []Box{
		{0, 0, 10, 10},
		{5, 5, 15, 15},
		{1, 1, 11, 11},
		{50, 50, 60, 60},
		{2, 3, 4, 9},
		{0.1, 0.2, 0.3, 0.25},
		{-5, -5, 5, 5},
	}

	for i, a := range boxes {

		assert.InDelta(t, 1.0, IoUStrict(a, a), 1e-5, "self iou of box %d", i)

		for j, b := range boxes {
			ab := IoUStrict(a, b)
			ba := IoUStrict(b, a)

			assert.Equal(t, ab, ba, "symmetry for %d,%d", i, j)
			assert.GreaterOrEqual(t, ab, float32(0), "lower bound for %d,%d", i, j)
			assert.LessOrEqual(t, ab, float32(1)+1e-6, "upper bound for %d,%d", i, j)
		}
	}
}

func TestIoUDegenerate(t *testing.T) {

	p := Box{3, 3, 3, 3}

	strict := IoUStrict(p, p)
	assert.True(t, math.IsNaN(float64(strict)), "expected NaN, got %f", strict)

	assert.Equal(t, float32(0), IoUStabilized(p, p))
}

func TestIoUElementwise(t *testing.T) {

	as := []Box{{0, 0, 10, 10}, {0, 0, 10, 10}}
	bs := []Box{{5, 5, 15, 15}, {0, 0, 10, 10}}

	got, err := IoUElementwise(nil, as, bs)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{25.0 / 175.0, 1}, got, 1e-6)

	_, err = IoUElementwise(nil, as, bs[:1])
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}

func TestShapeIoU(t *testing.T) {

	tests := []struct {
		w, h   float32
		anchor Anchor
		expect float32
	}{
		{0.2, 0.2, Anchor{W: 0.2, H: 0.2}, 1},
		{0.2, 0.2, Anchor{W: 0.1, H: 0.1}, 0.25},
		{0.1, 0.4, Anchor{W: 0.4, H: 0.1}, 0.01 / 0.07},
		{0, 0, Anchor{W: 0, H: 0}, 0},
	}

	for _, tc := range tests {
		got := ShapeIoU(tc.w, tc.h, tc.anchor)
		assert.InDelta(t, tc.expect, got, 1e-5, "w=%f h=%f anchor=%v", tc.w, tc.h, tc.anchor)
	}
}

func TestBoxValid(t *testing.T) {
	assert.True(t, Box{0, 0, 1, 1}.Valid())
	assert.False(t, Box{0, 0, 0, 1}.Valid())
	assert.False(t, Box{2, 0, 1, 1}.Valid())
}

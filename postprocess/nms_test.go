package postprocess

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-yolocore/geometry"
)

func TestSuppress(t *testing.T) {

	boxes := []geometry.Box{
		{0, 0, 10, 10},
		{1, 1, 11, 11},
		{50, 50, 60, 60},
	}
	scores := []float32{0.9, 0.8, 0.7}

	keep, err := Suppress(boxes, scores, 0.5, 0)
	require.NoError(t, err)

	// second box overlaps the first with IoU 81/119, third is disjoint
	assert.Equal(t, []int{0, 2}, keep)
}

func TestSuppressScoreOrder(t *testing.T) {

	boxes := []geometry.Box{
		{50, 50, 60, 60},
		{1, 1, 11, 11},
		{0, 0, 10, 10},
	}
	scores := []float32{0.7, 0.8, 0.9}

	keep, err := Suppress(boxes, scores, 0.5, 0)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 0}, keep)
}

func TestSuppressEmpty(t *testing.T) {

	hook := test.NewGlobal()
	defer hook.Reset()

	keep, err := Suppress(nil, nil, 0.5, 0)
	require.NoError(t, err)
	assert.NotNil(t, keep)
	assert.Empty(t, keep)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestSuppressErrors(t *testing.T) {

	_, err := Suppress([]geometry.Box{{0, 0, 1, 1}}, []float32{0.5, 0.4}, 0.5, 0)
	assert.True(t, errors.Is(err, ErrLengthMismatch))

	_, err = Suppress([]geometry.Box{{0, 0, 1, 1}, {2, 2, 2, 5}}, []float32{0.5, 0.4}, 0.5, 0)
	assert.True(t, errors.Is(err, ErrDegenerateBox))

	_, err = Suppress([]geometry.Box{{3, 0, 1, 1}}, []float32{0.5}, 0.5, 0)
	assert.True(t, errors.Is(err, ErrDegenerateBox))
}

func TestSuppressMaxOutputs(t *testing.T) {

	boxes := []geometry.Box{
		{0, 0, 10, 10},
		{20, 20, 30, 30},
		{40, 40, 50, 50},
		{60, 60, 70, 70},
	}
	scores := []float32{0.2, 0.9, 0.5, 0.7}

	tests := []struct {
		maxOutputs int
		expect     []int
	}{
		{0, []int{1, 3, 2, 0}},
		{-1, []int{1, 3, 2, 0}},
		{1, []int{1}},
		{2, []int{1, 3}},
		{10, []int{1, 3, 2, 0}},
	}

	for _, tc := range tests {
		keep, err := Suppress(boxes, scores, 0.5, tc.maxOutputs)
		require.NoError(t, err)
		assert.Equal(t, tc.expect, keep, "maxOutputs %d", tc.maxOutputs)
	}
}

func TestSuppressTiesKeepInputOrder(t *testing.T) {

	boxes := []geometry.Box{
		{0, 0, 10, 10},
		{100, 100, 110, 110},
		{0, 0, 10, 10},
	}
	scores := []float32{0.5, 0.5, 0.5}

	keep, err := Suppress(boxes, scores, 0.5, 0)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, keep)
}

// clusterBoxes returns boxes arranged in overlapping clusters
func clusterBoxes() ([]geometry.Box, []float32) {

	boxes := []geometry.Box{
		{0, 0, 10, 10},
		{1, 1, 11, 11},
		{2, 0, 12, 10},
		{50, 50, 60, 60},
		{52, 53, 61, 64},
		{100, 0, 140, 30},
		{105, 2, 138, 35},
		{0, 100, 5, 105},
	}
	scores := []float32{0.9, 0.85, 0.6, 0.7, 0.65, 0.4, 0.95, 0.3}

	return boxes, scores
}

func TestSuppressIdempotent(t *testing.T) {

	boxes, scores := clusterBoxes()

	for _, threshold := range []float32{0.1, 0.3, 0.5, 0.7} {

		keep, err := Suppress(boxes, scores, threshold, 0)
		require.NoError(t, err)

		set := (&DetectionSet{Boxes: boxes, Scores: scores,
			Classes: make([]int, len(boxes))}).Select(keep)

		again, err := Suppress(set.Boxes, set.Scores, threshold, 0)
		require.NoError(t, err)

		expect := make([]int, len(keep))

		for i := range expect {
			expect[i] = i
		}

		assert.Equal(t, expect, again, "threshold %f", threshold)
	}
}

func TestSuppressThresholdMonotonic(t *testing.T) {

	boxes, scores := clusterBoxes()

	prev := len(boxes) + 1

	for _, threshold := range []float32{1, 0.9, 0.7, 0.5, 0.3, 0.1, 0} {

		keep, err := Suppress(boxes, scores, threshold, 0)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(keep), prev, "threshold %f", threshold)
		prev = len(keep)
	}

	// a zero threshold drops everything after the first pick
	assert.Equal(t, 1, prev)
}

func TestDetectionSetSuppressPerClass(t *testing.T) {

	set := &DetectionSet{}
	set.Add(geometry.Box{0, 0, 10, 10}, 0.9, 0)
	set.Add(geometry.Box{1, 1, 11, 11}, 0.8, 1)
	set.Add(geometry.Box{1, 0, 11, 10}, 0.7, 0)
	set.Add(geometry.Box{50, 50, 60, 60}, 0.95, 1)

	perClass, err := set.SuppressPerClass(0.5, 0)
	require.NoError(t, err)

	assert.Equal(t, []float32{0.95, 0.9, 0.8}, perClass.Scores)
	assert.Equal(t, []int{1, 0, 1}, perClass.Classes)

	agnostic, err := set.Suppress(0.5, 0)
	require.NoError(t, err)

	assert.Equal(t, []float32{0.95, 0.9}, agnostic.Scores)

	limited, err := set.SuppressPerClass(0.5, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.95, 0.9}, limited.Scores)
}

func TestDetectionSetValidate(t *testing.T) {

	set := &DetectionSet{
		Boxes:   []geometry.Box{{0, 0, 1, 1}},
		Scores:  []float32{0.5},
		Classes: []int{},
	}

	_, err := set.SuppressPerClass(0.5, 0)
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}

func TestDetectionSetTLBR(t *testing.T) {

	set := &DetectionSet{}
	set.Add(geometry.Box{1, 2, 3, 4}, 0.5, 0)

	assert.Equal(t, []geometry.Box{{2, 1, 4, 3}}, set.TLBR())
}

package postprocess

import (
	"github.com/chewxy/math32"
	"github.com/sirupsen/logrus"
)

// log is the logger used by post processing
var log = logrus.WithField("component", "postprocess")

// sigmoid is the logistic function
func sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}

// softmaxMax applies softmax over logits and returns the index of the
// highest probability and that probability.  Ties resolve to the lowest
// index
func softmaxMax(logits []float32) (int, float32) {

	maxLogit := logits[0]
	maxIdx := 0

	for k := 1; k < len(logits); k++ {
		if logits[k] > maxLogit {
			maxLogit = logits[k]
			maxIdx = k
		}
	}

	// shift by the max logit so exp cannot overflow
	sum := float32(0)

	for _, l := range logits {
		sum += math32.Exp(l - maxLogit)
	}

	return maxIdx, 1 / sum
}

// clamp restricts the value x to be within the range min and max
func clamp(val, min, max float32) float32 {

	if val > min {

		if val < max {
			return val
		}

		return max
	}

	return min
}

package reception

import (
	"math"

	"github.com/moviedata/reception/internal/domain"
)

const (
	polarSteepness  = 12.0
	polarInflection = 0.65
	neutralScale    = 0.3
	neutralExponent = 0.7
)

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// EmotionWeight maps a (label, probability) pair to a signed weight.
// POSITIVE lies in [0.5, 1], NEGATIVE in [-1, -0.5] and NEUTRAL in
// [-0.3, 0.3], tilting positive only above p = 0.5. Unknown labels weigh 0.
func EmotionWeight(label domain.Label, p float64) float64 {
	switch label {
	case domain.LabelPositive:
		return 0.5 + 0.5*sigmoid(polarSteepness*(p-polarInflection))
	case domain.LabelNegative:
		return -0.5 - 0.5*sigmoid(polarSteepness*(p-polarInflection))
	case domain.LabelNeutral:
		if p > 0.5 {
			return neutralScale * math.Pow(2*(p-0.5), neutralExponent)
		}
		return -neutralScale * math.Pow(2*(0.5-p), neutralExponent)
	default:
		return 0
	}
}

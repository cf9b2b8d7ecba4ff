package reception

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/moviedata/reception/internal/domain"
)

// VerdictSize is the number of ranked entries blended per review.
const VerdictSize = 3

const probabilityExponent = 0.85

// RankVerdict returns a copy of v sorted by probability descending, with ties
// kept in classifier order, after checking that it holds each label of the
// label space exactly once with a probability in [0, 1].
func RankVerdict(v domain.Verdict) (domain.Verdict, error) {
	if len(v) != VerdictSize {
		return nil, fmt.Errorf("%w: want %d entries, got %d", domain.ErrInvalidVerdict, VerdictSize, len(v))
	}

	seen := make(map[domain.Label]bool, VerdictSize)
	for _, p := range v {
		if !p.Label.Valid() {
			return nil, fmt.Errorf("%w: unknown label %q", domain.ErrInvalidVerdict, p.Label)
		}
		if seen[p.Label] {
			return nil, fmt.Errorf("%w: duplicate label %s", domain.ErrInvalidVerdict, p.Label)
		}
		seen[p.Label] = true
		if math.IsNaN(p.Probability) || p.Probability < 0 || p.Probability > 1 {
			return nil, fmt.Errorf("%w: probability %v for %s out of range", domain.ErrInvalidVerdict, p.Probability, p.Label)
		}
	}

	ranked := slices.Clone(v)
	slices.SortStableFunc(ranked, func(a, b domain.Prediction) int {
		return cmp.Compare(b.Probability, a.Probability)
	})
	return ranked, nil
}

// Weigh attaches EmotionWeight to every entry of a ranked verdict.
func Weigh(v domain.Verdict) []domain.WeightedEntry {
	entries := make([]domain.WeightedEntry, len(v))
	for i, p := range v {
		entries[i] = domain.WeightedEntry{
			Label:       p.Label,
			Probability: p.Probability,
			Weight:      EmotionWeight(p.Label, p.Probability),
		}
	}
	return entries
}

// CompositeScore blends the three ranked entries of one review. The lower the
// gap between the top two probabilities, the more the second and third
// entries contribute. The result is clipped to [-1, 1].
func CompositeScore(entries []domain.WeightedEntry) float64 {
	if len(entries) < VerdictSize {
		return 0
	}

	confidence := entries[0].Probability - entries[1].Probability
	secondaryCoef := 0.5 - 0.4*confidence
	tertiaryCoef := 0.2 - 0.15*confidence

	primary := entries[0].Weight * math.Pow(entries[0].Probability, probabilityExponent)
	secondary := entries[1].Weight * math.Pow(entries[1].Probability, probabilityExponent) * secondaryCoef
	tertiary := entries[2].Weight * math.Pow(entries[2].Probability, probabilityExponent) * tertiaryCoef

	return clip(primary+secondary+tertiary, -1, 1)
}

// ScoreVerdict ranks, validates, weighs and blends one classifier verdict.
func ScoreVerdict(v domain.Verdict) (float64, error) {
	ranked, err := RankVerdict(v)
	if err != nil {
		return 0, err
	}
	return CompositeScore(Weigh(ranked)), nil
}

func clip(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

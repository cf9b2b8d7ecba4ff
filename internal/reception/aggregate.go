package reception

import (
	"math"
	"slices"

	"github.com/moviedata/reception/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultTemperature is the softmax temperature used when none is configured.
const DefaultTemperature = 1.0

const (
	strongThreshold = 0.7
	weakThreshold   = 0.15
)

// BucketOf places a composite score in its severity band. Boundaries at
// ±0.15 belong to neutral and boundaries at ±0.7 to the weak bands.
func BucketOf(score float64) domain.Bucket {
	switch {
	case score < -strongThreshold:
		return domain.BucketStrongNegative
	case score < -weakThreshold:
		return domain.BucketWeakNegative
	case score <= weakThreshold:
		return domain.BucketNeutral
	case score <= strongThreshold:
		return domain.BucketWeakPositive
	default:
		return domain.BucketStrongPositive
	}
}

// SoftmaxAggregate returns Σ s·w where w is the softmax of (s+1)/temperature.
// A single score is returned unchanged. Non-positive temperatures fall back
// to DefaultTemperature.
func SoftmaxAggregate(scores []float64, temperature float64) float64 {
	switch len(scores) {
	case 0:
		return 0
	case 1:
		return scores[0]
	}
	if temperature <= 0 {
		temperature = DefaultTemperature
	}

	weights := slices.Clone(scores)
	floats.AddConst(1, weights)
	floats.Scale(1/temperature, weights)
	floats.AddConst(-floats.Max(weights), weights)
	for i, x := range weights {
		weights[i] = math.Exp(x)
	}
	floats.Scale(1/floats.Sum(weights), weights)

	return floats.Dot(scores, weights)
}

// Median returns the middle value of x, averaging the two middle values when
// len(x) is even.
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	sorted := slices.Clone(x)
	slices.Sort(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Aggregate summarizes the composite scores of one film. It returns
// domain.ErrNoSentimentData when scores is empty.
func Aggregate(scores []float64, temperature float64) (domain.CorpusStats, error) {
	if len(scores) == 0 {
		return domain.CorpusStats{}, domain.ErrNoSentimentData
	}

	mean, std := stat.PopMeanStdDev(scores, nil)

	counts := make(map[domain.Bucket]int, len(domain.Buckets))
	for _, b := range domain.Buckets {
		counts[b] = 0
	}
	for _, s := range scores {
		counts[BucketOf(s)]++
	}

	total := float64(len(scores))
	ratios := make(map[domain.Bucket]float64, len(domain.Buckets))
	for b, c := range counts {
		ratios[b] = float64(c) / total
	}

	return domain.CorpusStats{
		Count:   len(scores),
		Mean:    mean,
		Median:  Median(scores),
		StdDev:  std,
		Softmax: SoftmaxAggregate(scores, temperature),
		Counts:  counts,
		Ratios:  ratios,
	}, nil
}

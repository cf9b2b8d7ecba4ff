package reception

import (
	"math"

	"github.com/moviedata/reception/internal/domain"
)

type rule struct {
	filmType domain.FilmType
	matches  func(s domain.CorpusStats) bool
}

// cascade is evaluated top to bottom and the first match wins. Several rules
// overlap, so the order decides the label.
var cascade = []rule{
	{domain.FilmTypeUniversalAcclaim, func(s domain.CorpusStats) bool {
		return s.Mean > 0.7 && s.Ratios[domain.BucketStrongPositive] > 0.8
	}},
	{domain.FilmTypeHiddenControversy, func(s domain.CorpusStats) bool {
		return s.Mean > -0.1 && s.Ratios[domain.BucketStrongNegative] > 0.3
	}},
	{domain.FilmTypePolarizing, func(s domain.CorpusStats) bool {
		return s.Ratios[domain.BucketStrongPositive] > 0.3 && s.Ratios[domain.BucketStrongNegative] > 0.3
	}},
	{domain.FilmTypeUnderwhelming, func(s domain.CorpusStats) bool {
		return s.Mean < 0 && s.Ratios[domain.BucketWeakPositive] > 0.4
	}},
	{domain.FilmTypeSolidAverage, func(s domain.CorpusStats) bool {
		return math.Abs(s.Mean) < 0.2 && s.Ratios[domain.BucketNeutral] > 0.6
	}},
	{domain.FilmTypeDivisive, func(s domain.CorpusStats) bool {
		return s.Counts[domain.BucketStrongPositive] > 0 && s.Counts[domain.BucketStrongNegative] > 0 && s.StdDev > 0.75
	}},
	{domain.FilmTypeMildlyPositive, func(s domain.CorpusStats) bool {
		return s.Mean > 0.2 && s.Mean < 0.5 && s.Ratios[domain.BucketWeakPositive] > 0.5
	}},
}

// ClassifyReception maps corpus statistics to a film type. When no archetype
// matches, the spread of the scores decides between consistent reception and
// positive or negative outliers, and otherwise the type stays undefined.
func ClassifyReception(s domain.CorpusStats) domain.FilmType {
	for _, r := range cascade {
		if r.matches(s) {
			return r.filmType
		}
	}

	switch {
	case s.StdDev < 0.3:
		return domain.FilmTypeConsistentReception
	case s.Median > s.Mean+0.3:
		return domain.FilmTypePositiveOutliers
	case s.Median < s.Mean-0.3:
		return domain.FilmTypeNegativeOutliers
	default:
		return domain.FilmTypeUndefined
	}
}

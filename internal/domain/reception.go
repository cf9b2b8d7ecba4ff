package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
)

// Bucket is one of the five severity bands of a composite score.
type Bucket string

const (
	BucketStrongNegative Bucket = "strong_negative"
	BucketWeakNegative   Bucket = "weak_negative"
	BucketNeutral        Bucket = "neutral"
	BucketWeakPositive   Bucket = "weak_positive"
	BucketStrongPositive Bucket = "strong_positive"
)

// Buckets lists the bands from most negative to most positive.
var Buckets = []Bucket{
	BucketStrongNegative,
	BucketWeakNegative,
	BucketNeutral,
	BucketWeakPositive,
	BucketStrongPositive,
}

// FilmType is the categorical reception label.
type FilmType string

const (
	FilmTypeUniversalAcclaim    FilmType = "universal_acclaim"
	FilmTypeHiddenControversy   FilmType = "hidden_controversy"
	FilmTypePolarizing          FilmType = "polarizing"
	FilmTypeUnderwhelming       FilmType = "underwhelming"
	FilmTypeSolidAverage        FilmType = "solid_average"
	FilmTypeDivisive            FilmType = "divisive"
	FilmTypeMildlyPositive      FilmType = "mildly_positive"
	FilmTypeConsistentReception FilmType = "consistent_reception"
	FilmTypePositiveOutliers    FilmType = "positive_outliers"
	FilmTypeNegativeOutliers    FilmType = "negative_outliers"
	FilmTypeUndefined           FilmType = "undefined"
)

var filmTypeDescriptions = map[FilmType]string{
	FilmTypeUniversalAcclaim:    "Overwhelming positive reception from all audiences",
	FilmTypeHiddenControversy:   "Generally neutral/mild scores but with passionate haters",
	FilmTypePolarizing:          "Strongly divided between love and hate",
	FilmTypeUnderwhelming:       "Disappointing compared to expectations",
	FilmTypeSolidAverage:        "Neither remarkable nor terrible",
	FilmTypeDivisive:            "Extreme opinions on both ends",
	FilmTypeMildlyPositive:      "Generally liked but few strong supporters",
	FilmTypeConsistentReception: "Opinions cluster closely together",
	FilmTypePositiveOutliers:    "Few extremely positive reviews inflate average",
	FilmTypeNegativeOutliers:    "Few extremely negative reviews drag down average",
	FilmTypeUndefined:           "Reception pattern does not match any archetype",
}

// FilmTypes lists every label in cascade order, fallbacks last.
var FilmTypes = []FilmType{
	FilmTypeUniversalAcclaim,
	FilmTypeHiddenControversy,
	FilmTypePolarizing,
	FilmTypeUnderwhelming,
	FilmTypeSolidAverage,
	FilmTypeDivisive,
	FilmTypeMildlyPositive,
	FilmTypeConsistentReception,
	FilmTypePositiveOutliers,
	FilmTypeNegativeOutliers,
	FilmTypeUndefined,
}

func (t FilmType) Valid() bool {
	_, ok := filmTypeDescriptions[t]
	return ok
}

// Description returns the fixed human-readable text for the label.
func (t FilmType) Description() string {
	if d, ok := filmTypeDescriptions[t]; ok {
		return d
	}
	return filmTypeDescriptions[FilmTypeUndefined]
}

func ParseFilmType(s string) (FilmType, error) {
	t := FilmType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown film type %q", s)
	}
	return t, nil
}

// CorpusStats summarizes the composite scores of one film.
type CorpusStats struct {
	Count   int
	Mean    float64
	Median  float64
	StdDev  float64
	Softmax float64
	Counts  map[Bucket]int
	Ratios  map[Bucket]float64
}

// ReceptionProfile is the engine's result for one film. Numeric fields hold
// full precision; MarshalJSON applies output rounding.
type ReceptionProfile struct {
	Keywords           []string           `json:"keywords"`
	Softmax            float64            `json:"softmax"`
	MeanSentiment      float64            `json:"mean_sentiment"`
	MedianSentiment    float64            `json:"median_sentiment"`
	StdDeviation       float64            `json:"std_deviation"`
	DistributionRatios map[Bucket]float64 `json:"distribution_ratios"`
	FilmType           FilmType           `json:"film_type"`
	TotalReviews       int                `json:"total_reviews"`
	Sentiments         []float64          `json:"sentiments"`
	// Error is set, and the statistics are zero, when no review was scored.
	Error string `json:"error,omitempty"`
}

// HasData reports whether the profile carries statistics.
func (p ReceptionProfile) HasData() bool { return p.Error == "" }

type profileFields ReceptionProfile

type profileJSON struct {
	profileFields
	FilmTypeDescription string `json:"film_type_description"`
}

type noDataProfileJSON struct {
	Error        string    `json:"error"`
	Keywords     []string  `json:"keywords"`
	TotalReviews int       `json:"total_reviews"`
	Sentiments   []float64 `json:"sentiments"`
}

func (p ReceptionProfile) MarshalJSON() ([]byte, error) {
	keywords := p.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	if !p.HasData() {
		return json.Marshal(noDataProfileJSON{
			Error:        p.Error,
			Keywords:     keywords,
			TotalReviews: p.TotalReviews,
			Sentiments:   []float64{},
		})
	}

	out := profileJSON{
		profileFields:       profileFields(p),
		FilmTypeDescription: p.FilmType.Description(),
	}
	out.Keywords = keywords
	out.MeanSentiment = Round3(p.MeanSentiment)
	out.MedianSentiment = Round3(p.MedianSentiment)
	out.StdDeviation = Round3(p.StdDeviation)
	out.DistributionRatios = make(map[Bucket]float64, len(Buckets))
	for _, b := range Buckets {
		out.DistributionRatios[b] = Round3(p.DistributionRatios[b])
	}
	if out.Sentiments == nil {
		out.Sentiments = []float64{}
	}
	return json.Marshal(out)
}

// Round3 rounds to three decimals, half to even.
func Round3(x float64) float64 {
	return math.RoundToEven(x*1000) / 1000
}

// ReceptionEngine turns the reviews of one film into its profile.
type ReceptionEngine interface {
	Process(ctx context.Context, reviews []string) ReceptionProfile
}

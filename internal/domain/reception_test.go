package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilmType_Description(t *testing.T) {
	for _, ft := range FilmTypes {
		assert.NotEmpty(t, ft.Description(), ft)
		assert.True(t, ft.Valid())
	}
	assert.Equal(t, "Strongly divided between love and hate", FilmTypePolarizing.Description())
	assert.Equal(t, FilmTypeUndefined.Description(), FilmType("nonsense").Description())
	assert.Len(t, FilmTypes, 11)
}

func TestParseFilmType(t *testing.T) {
	ft, err := ParseFilmType("divisive")
	require.NoError(t, err)
	assert.Equal(t, FilmTypeDivisive, ft)

	_, err = ParseFilmType("blockbuster")
	assert.Error(t, err)
}

func TestParseLabel(t *testing.T) {
	l, err := ParseLabel(" positive ")
	require.NoError(t, err)
	assert.Equal(t, LabelPositive, l)

	_, err = ParseLabel("LABEL_9")
	assert.ErrorIs(t, err, ErrInvalidVerdict)
}

func TestReceptionProfile_MarshalJSON_Rounds(t *testing.T) {
	p := ReceptionProfile{
		Keywords:        []string{"сюжет"},
		Softmax:         0.123456,
		MeanSentiment:   0.17351,
		MedianSentiment: 0.88649,
		StdDeviation:    0.87123,
		DistributionRatios: map[Bucket]float64{
			BucketStrongPositive: 2.0 / 3.0,
			BucketStrongNegative: 1.0 / 3.0,
		},
		FilmType:     FilmTypeHiddenControversy,
		TotalReviews: 3,
		Sentiments:   []float64{0.886491, 0.886491, -0.893999},
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.InDelta(t, 0.174, got["mean_sentiment"], 1e-12)
	assert.InDelta(t, 0.886, got["median_sentiment"], 1e-12)
	assert.InDelta(t, 0.871, got["std_deviation"], 1e-12)
	assert.InDelta(t, 0.123456, got["softmax"], 1e-12)
	assert.Equal(t, "hidden_controversy", got["film_type"])
	assert.Equal(t, FilmTypeHiddenControversy.Description(), got["film_type_description"])
	assert.NotContains(t, got, "error")

	ratios := got["distribution_ratios"].(map[string]any)
	assert.Len(t, ratios, 5)
	assert.InDelta(t, 0.667, ratios["strong_positive"], 1e-12)
	assert.InDelta(t, 0.333, ratios["strong_negative"], 1e-12)
	assert.InDelta(t, 0.0, ratios["neutral"], 1e-12)

	sentiments := got["sentiments"].([]any)
	assert.InDelta(t, 0.886491, sentiments[0], 1e-12)
}

func TestReceptionProfile_MarshalJSON_NoData(t *testing.T) {
	p := ReceptionProfile{
		Error:        NoSentimentDataMessage,
		TotalReviews: 2,
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"No valid sentiment data","keywords":[],"total_reviews":2,"sentiments":[]}`, string(data))
	assert.False(t, p.HasData())
}

func TestReceptionProfile_UnmarshalRoundtrip(t *testing.T) {
	p := ReceptionProfile{
		Keywords:           []string{"актёр", "сюжет"},
		MeanSentiment:      0.5,
		DistributionRatios: map[Bucket]float64{BucketWeakPositive: 1},
		FilmType:           FilmTypeConsistentReception,
		TotalReviews:       1,
		Sentiments:         []float64{0.5},
	}
	data, err := json.Marshal(p)
	require.NoError(t, err)

	var back ReceptionProfile
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p.FilmType, back.FilmType)
	assert.Equal(t, p.Keywords, back.Keywords)
	assert.True(t, back.HasData())
}

func TestRound3(t *testing.T) {
	assert.InDelta(t, 0.942, Round3(0.94159), 1e-12)
	assert.InDelta(t, -0.894, Round3(-0.89399), 1e-12)
	assert.InDelta(t, 0.0, Round3(0.0004), 1e-12)
}

func TestRound3_HalfToEven(t *testing.T) {
	// exact binary halves at the third decimal
	assert.InDelta(t, 0.062, Round3(0.0625), 1e-12)
	assert.InDelta(t, 0.188, Round3(0.1875), 1e-12)
	assert.InDelta(t, -0.062, Round3(-0.0625), 1e-12)
}

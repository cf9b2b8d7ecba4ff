package classifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonreiter/govader"
	"github.com/moviedata/reception/internal/domain"
)

const BackendVader = "vader"

// Vader is an offline lexicon classifier. Its pos/neu/neg proportions become
// the POSITIVE/NEUTRAL/NEGATIVE probabilities. The lexicon is English, so
// non-English text mostly reads as neutral.
type Vader struct {
	sia      *govader.SentimentIntensityAnalyzer
	mu       sync.Mutex
	recorder Recorder
}

var _ domain.Classifier = (*Vader)(nil)

func NewVader(recorder Recorder) *Vader {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Vader{
		sia:      govader.NewSentimentIntensityAnalyzer(),
		recorder: recorder,
	}
}

func (v *Vader) Classify(ctx context.Context, text string) (domain.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	v.mu.Lock()
	scores := v.sia.PolarityScores(text)
	v.mu.Unlock()

	verdict, err := verdictFromProportions(scores.Positive, scores.Neutral, scores.Negative)
	result := "ok"
	if err != nil {
		result = "invalid"
	}
	v.recorder.ObserveRequest(BackendVader, result, time.Since(start))
	return verdict, err
}

// verdictFromProportions normalizes the three proportions to sum to 1.
func verdictFromProportions(pos, neu, neg float64) (domain.Verdict, error) {
	sum := pos + neu + neg
	if sum <= 0 {
		return nil, fmt.Errorf("%w: no scorable tokens", domain.ErrInvalidVerdict)
	}
	return domain.Verdict{
		{Label: domain.LabelPositive, Probability: pos / sum},
		{Label: domain.LabelNeutral, Probability: neu / sum},
		{Label: domain.LabelNegative, Probability: neg / sum},
	}, nil
}

package domain

import (
	"context"
	"fmt"
	"strings"
)

// Label is one class of the classifier's label space.
type Label string

const (
	LabelPositive Label = "POSITIVE"
	LabelNeutral  Label = "NEUTRAL"
	LabelNegative Label = "NEGATIVE"
)

// Labels is the full label space.
var Labels = []Label{LabelPositive, LabelNeutral, LabelNegative}

func (l Label) Valid() bool {
	switch l {
	case LabelPositive, LabelNeutral, LabelNegative:
		return true
	}
	return false
}

// ParseLabel matches a label name case-insensitively.
func ParseLabel(s string) (Label, error) {
	l := Label(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: unknown label %q", ErrInvalidVerdict, s)
	}
	return l, nil
}

// Prediction is one (label, probability) pair of a verdict.
type Prediction struct {
	Label       Label   `json:"label"`
	Probability float64 `json:"score"`
}

// Verdict is a classifier's output for one text, ranked by probability
// descending once it has passed through the engine.
type Verdict []Prediction

// WeightedEntry is a verdict entry with its emotion weight.
type WeightedEntry struct {
	Label       Label
	Probability float64
	Weight      float64
}

// Classifier assigns a verdict to one text. Implementations must be safe for
// concurrent use.
type Classifier interface {
	Classify(ctx context.Context, text string) (Verdict, error)
}

// VerdictCache stores verdicts by an opaque key.
type VerdictCache interface {
	Get(ctx context.Context, key string) (Verdict, bool, error)
	Set(ctx context.Context, key string, verdict Verdict) error
}

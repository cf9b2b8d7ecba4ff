package reception

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/moviedata/reception/internal/domain"
)

// Skip reasons reported to the Recorder.
const (
	SkipClassifierError = "classifier_error"
	SkipInvalidVerdict  = "invalid_verdict"
	SkipCancelled       = "cancelled"
)

// DefaultWorkers is the per-review parallelism used when none is configured.
const DefaultWorkers = 4

// KeywordExtractor ranks representative terms of a set of texts.
type KeywordExtractor interface {
	Extract(texts []string) []string
}

// Recorder receives engine measurements.
type Recorder interface {
	ReviewScored()
	ReviewSkipped(reason string)
	ProfileBuilt(filmType domain.FilmType, elapsed time.Duration)
}

type Options struct {
	Workers     int
	Temperature float64
	Keywords    KeywordExtractor
	Recorder    Recorder
	Clock       clockwork.Clock
}

// Engine is safe for concurrent use by multiple films.
type Engine struct {
	classifier  domain.Classifier
	workers     int
	temperature float64
	keywords    KeywordExtractor
	recorder    Recorder
	clock       clockwork.Clock
}

var _ domain.ReceptionEngine = (*Engine)(nil)

func NewEngine(classifier domain.Classifier, opts Options) *Engine {
	e := &Engine{
		classifier:  classifier,
		workers:     opts.Workers,
		temperature: opts.Temperature,
		keywords:    opts.Keywords,
		recorder:    opts.Recorder,
		clock:       opts.Clock,
	}
	if e.workers < 1 {
		e.workers = DefaultWorkers
	}
	if e.temperature <= 0 {
		e.temperature = DefaultTemperature
	}
	if e.recorder == nil {
		e.recorder = noopRecorder{}
	}
	if e.clock == nil {
		e.clock = clockwork.NewRealClock()
	}
	return e
}

// Process builds the reception profile for the reviews of one film. Reviews
// that fail classification are skipped. When none can be scored the profile
// carries domain.NoSentimentDataMessage instead of statistics.
func (e *Engine) Process(ctx context.Context, reviews []string) domain.ReceptionProfile {
	start := e.clock.Now()
	texts := FilterReviews(reviews)

	keywordsCh := make(chan []string, 1)
	go func() {
		keywordsCh <- e.extractKeywords(texts)
	}()

	scores := e.scoreAll(ctx, texts)
	keywords := <-keywordsCh

	profile := domain.ReceptionProfile{
		Keywords:     keywords,
		TotalReviews: len(texts),
		Sentiments:   scores,
	}

	stats, err := Aggregate(scores, e.temperature)
	if err != nil {
		profile.Error = domain.NoSentimentDataMessage
		profile.Sentiments = []float64{}
		slog.DebugContext(ctx, "No reviews could be scored",
			"reviews", len(reviews),
			"filtered", len(texts),
		)
		return profile
	}

	profile.Softmax = stats.Softmax
	profile.MeanSentiment = stats.Mean
	profile.MedianSentiment = stats.Median
	profile.StdDeviation = stats.StdDev
	profile.DistributionRatios = stats.Ratios
	profile.FilmType = ClassifyReception(stats)

	elapsed := e.clock.Since(start)
	e.recorder.ProfileBuilt(profile.FilmType, elapsed)
	slog.DebugContext(ctx, "Reception profile built",
		"reviews", len(reviews),
		"filtered", len(texts),
		"scored", stats.Count,
		"film_type", profile.FilmType,
		"duration", elapsed,
	)
	return profile
}

func (e *Engine) extractKeywords(texts []string) []string {
	if e.keywords == nil || len(texts) == 0 {
		return []string{}
	}
	return e.keywords.Extract(texts)
}

// scoreAll classifies texts with at most e.workers calls in flight and
// returns the successful scores in input order.
func (e *Engine) scoreAll(ctx context.Context, texts []string) []float64 {
	results := make([]float64, len(texts))
	ok := make([]bool, len(texts))

	semaphore := make(chan struct{}, e.workers)
	var wg sync.WaitGroup

dispatch:
	for i, text := range texts {
		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
			for range texts[i:] {
				e.recorder.ReviewSkipped(SkipCancelled)
			}
			slog.WarnContext(ctx, "Scoring cancelled", "remaining", len(texts)-i, "error", ctx.Err())
			break dispatch
		}

		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			defer func() { <-semaphore }()
			results[i], ok[i] = e.scoreOne(ctx, i, text)
		}(i, text)
	}

	wg.Wait()

	scores := make([]float64, 0, len(texts))
	for i, s := range results {
		if ok[i] {
			scores = append(scores, s)
		}
	}
	return scores
}

func (e *Engine) scoreOne(ctx context.Context, index int, text string) (float64, bool) {
	verdict, err := e.classifier.Classify(ctx, Truncate(text, MaxClassifierInput))
	if err != nil {
		reason := SkipClassifierError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			reason = SkipCancelled
		}
		e.recorder.ReviewSkipped(reason)
		slog.WarnContext(ctx, "Review classification failed", "review_index", index, "error", err)
		return 0, false
	}

	score, err := ScoreVerdict(verdict)
	if err != nil {
		e.recorder.ReviewSkipped(SkipInvalidVerdict)
		slog.WarnContext(ctx, "Review verdict rejected", "review_index", index, "error", err)
		return 0, false
	}

	e.recorder.ReviewScored()
	return score, true
}

type noopRecorder struct{}

func (noopRecorder) ReviewScored()                               {}
func (noopRecorder) ReviewSkipped(string)                        {}
func (noopRecorder) ProfileBuilt(domain.FilmType, time.Duration) {}

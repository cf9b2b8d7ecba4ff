package classifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/moviedata/reception/internal/domain"
	"github.com/moviedata/reception/internal/platform/config"
)

// New builds the configured classifier. A non-nil cache wraps it in Cached.
func New(cfg *config.Config, cache domain.VerdictCache, recorder Recorder) (domain.Classifier, error) {
	var c domain.Classifier
	model := cfg.ClassifierModel

	switch cfg.ClassifierBackend {
	case config.BackendHTTP:
		c = NewHTTP(HTTPConfig{
			URL:         cfg.ClassifierURL,
			APIKey:      cfg.ClassifierAPIKey,
			Timeout:     cfg.ClassifierTimeout,
			RateLimit:   cfg.ClassifierRateLimit,
			Burst:       cfg.ClassifierBurst,
			MaxAttempts: cfg.ClassifierMaxAttempts,
			Recorder:    recorder,
		})
	case config.BackendVader:
		c = NewVader(recorder)
		model = BackendVader
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", cfg.ClassifierBackend)
	}

	slog.Info("Classifier configured", "backend", cfg.ClassifierBackend, "model", model, "cached", cache != nil)

	if cache != nil {
		c = NewCached(c, cache, model)
	}
	return c, nil
}

type readinessChecker interface {
	Ready(ctx context.Context) error
}

// Ready reports whether c can currently serve requests. Classifiers without
// a readiness notion, such as the in-process lexicon, are always ready.
func Ready(ctx context.Context, c domain.Classifier) error {
	if rc, ok := c.(readinessChecker); ok {
		return rc.Ready(ctx)
	}
	return nil
}

package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"github.com/moviedata/reception/internal/domain"
)

// Cached consults a VerdictCache before delegating to the wrapped
// classifier. Cache failures are logged and bypassed.
type Cached struct {
	inner domain.Classifier
	cache domain.VerdictCache
	model string
}

var _ domain.Classifier = (*Cached)(nil)

func NewCached(inner domain.Classifier, cache domain.VerdictCache, model string) *Cached {
	return &Cached{inner: inner, cache: cache, model: model}
}

// CacheKey identifies a verdict by model and exact input text.
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return model + ":" + hex.EncodeToString(sum[:])
}

// Ready reports the readiness of the wrapped classifier.
func (c *Cached) Ready(ctx context.Context) error {
	return Ready(ctx, c.inner)
}

func (c *Cached) Classify(ctx context.Context, text string) (domain.Verdict, error) {
	key := CacheKey(c.model, text)

	verdict, found, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "Verdict cache read failed", "error", err)
	} else if found {
		return verdict, nil
	}

	verdict, err = c.inner.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, verdict); err != nil {
		slog.WarnContext(ctx, "Verdict cache write failed", "error", err)
	}
	return verdict, nil
}

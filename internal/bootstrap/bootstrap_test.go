package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/moviedata/reception/internal/domain"
	"github.com/moviedata/reception/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vaderConfig() *config.Config {
	return &config.Config{
		ClassifierBackend:     config.BackendVader,
		ScoringWorkers:        2,
		SoftmaxTemperature:    1,
		KeywordLimit:          5,
		VerdictMemoryCacheTTL: time.Minute,
		FilmWorkers:           1,
		ReviewsKey:            "reviews",
		ProfileKey:            "profile",
	}
}

func TestBuild_VaderWithoutBackends(t *testing.T) {
	c, err := Build(context.Background(), vaderConfig(), Options{Storage: true})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	assert.Nil(t, c.Pool)
	assert.Nil(t, c.Redis)
	assert.Nil(t, c.Breaker)
	assert.False(t, c.Service.StorageEnabled())
	require.NotNil(t, c.Engine)
	require.NotNil(t, c.Registry)

	profile := c.Service.Analyze(context.Background(), []string{
		"An absolutely wonderful film with a brilliant cast, a moving story and beautiful music throughout. I would gladly watch it again with friends.",
	})
	assert.True(t, profile.HasData())
	assert.Equal(t, 1, profile.TotalReviews)
}

func TestBuild_WithoutMemoryCache(t *testing.T) {
	cfg := vaderConfig()
	cfg.VerdictMemoryCacheTTL = 0

	c, err := Build(context.Background(), cfg, Options{})
	require.NoError(t, err)
	c.Close()
	c.Close()
}

func TestBuild_UnknownBackend(t *testing.T) {
	cfg := vaderConfig()
	cfg.ClassifierBackend = "gpu"

	_, err := Build(context.Background(), cfg, Options{})
	assert.ErrorContains(t, err, "failed to create classifier")
}

func TestBuild_RedisUnreachable(t *testing.T) {
	cfg := vaderConfig()
	cfg.RedisURL = "redis://127.0.0.1:1/0"

	_, err := Build(context.Background(), cfg, Options{})
	assert.ErrorContains(t, err, "failed to connect to Redis")
}

func TestComponents_HealthChecks(t *testing.T) {
	c, err := Build(context.Background(), vaderConfig(), Options{})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	checks := c.HealthChecks()
	require.Len(t, checks, 1)
	assert.Equal(t, "classifier", checks[0].Name)
	assert.NoError(t, checks[0].Check(context.Background()))
}

func TestComponents_HealthChecks_OpenBreaker(t *testing.T) {
	cfg := vaderConfig()
	cfg.ClassifierBackend = config.BackendHTTP
	cfg.ClassifierURL = "http://127.0.0.1:1/model"
	cfg.ClassifierMaxAttempts = 1

	c, err := Build(context.Background(), cfg, Options{})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	for range 5 {
		_, _ = c.Classifier.Classify(context.Background(), "text")
	}

	err = c.HealthChecks()[0].Check(context.Background())
	assert.ErrorIs(t, err, domain.ErrClassifierUnavailable)
}

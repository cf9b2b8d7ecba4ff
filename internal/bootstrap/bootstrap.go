// Package bootstrap assembles the reception engine and its optional storage
// and cache backends from configuration. Both binaries share it.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moviedata/reception/internal/adapter/classifier"
	"github.com/moviedata/reception/internal/adapter/metrics"
	"github.com/moviedata/reception/internal/adapter/postgres"
	"github.com/moviedata/reception/internal/adapter/redis"
	"github.com/moviedata/reception/internal/app"
	"github.com/moviedata/reception/internal/domain"
	"github.com/moviedata/reception/internal/keywords"
	"github.com/moviedata/reception/internal/platform/config"
	"github.com/moviedata/reception/internal/reception"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
)

const (
	connectTimeout        = 10 * time.Second
	cacheEvictionInterval = time.Minute
)

type Options struct {
	// Storage connects to DATABASE_URL when it is set.
	Storage bool
	// Migrate applies pending migrations after connecting.
	Migrate bool
	// Registry receives all metric groups. A fresh one is created when nil.
	Registry *prometheus.Registry
}

// Components holds everything a binary needs. Pool and Redis are nil when
// the corresponding backend is not configured.
type Components struct {
	Config     *config.Config
	Registry   *prometheus.Registry
	Metrics    *metrics.Set
	Pool       *pgxpool.Pool
	Redis      *goredis.Client
	Breaker    *redis.CircuitBreakerHook
	Classifier domain.Classifier
	Engine     *reception.Engine
	Service    *app.Service

	closers []func()
}

func Build(ctx context.Context, cfg *config.Config, opts Options) (*Components, error) {
	reg := opts.Registry
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	c := &Components{
		Config:   cfg,
		Registry: reg,
		Metrics:  metrics.NewSet(reg),
	}

	cache, err := c.setupCache(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	clf, err := classifier.New(cfg, cache, c.Metrics.Classifier)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}
	c.Classifier = clf

	c.Engine = reception.NewEngine(clf, reception.Options{
		Workers:     cfg.ScoringWorkers,
		Temperature: cfg.SoftmaxTemperature,
		Keywords: keywords.NewExtractor(keywords.Options{
			Limit:             cfg.KeywordLimit,
			LanguageStopwords: cfg.KeywordLanguageStopwords,
		}),
		Recorder: c.Metrics.Reception,
	})

	var films domain.FilmRepository
	if opts.Storage && cfg.StorageEnabled() {
		repo, err := c.setupStorage(ctx, opts.Migrate)
		if err != nil {
			c.Close()
			return nil, err
		}
		films = repo
	}

	c.Service = app.NewService(c.Engine, films, app.Options{
		ReviewsKey:  cfg.ReviewsKey,
		ProfileKey:  cfg.ProfileKey,
		FilmWorkers: cfg.FilmWorkers,
	})
	return c, nil
}

// setupCache returns nil when neither cache layer is configured.
func (c *Components) setupCache(ctx context.Context) (domain.VerdictCache, error) {
	cfg := c.Config
	opts := redis.VerdictCacheOptions{
		TTL:       cfg.VerdictCacheTTL,
		MemoryTTL: cfg.VerdictMemoryCacheTTL,
		Recorder:  c.Metrics.Cache,
	}

	var cache *redis.VerdictCache
	switch {
	case cfg.CacheEnabled():
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()

		c.Breaker = redis.NewCircuitBreakerHook(c.Metrics.Redis)
		client, err := redis.NewClient(connectCtx, cfg.RedisURL, redis.NewMetricsHook(c.Metrics.Redis), c.Breaker)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Redis = client
		c.closers = append(c.closers, func() { _ = client.Close() })
		cache = redis.NewVerdictCache(client, opts)
	case cfg.VerdictMemoryCacheTTL > 0:
		cache = redis.NewVerdictCache(nil, opts)
	default:
		return nil, nil
	}

	c.closers = append(c.closers, cache.StartEvictionTimer(cacheEvictionInterval))
	return cache, nil
}

func (c *Components) setupStorage(ctx context.Context, migrate bool) (*postgres.FilmRepo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := postgres.Connect(connectCtx, c.Config.DatabaseURL, postgres.NewMetricsTracer(c.Metrics.DB))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.Pool = pool
	c.closers = append(c.closers, pool.Close)

	if migrate {
		if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return postgres.NewFilmRepo(pool), nil
}

// Close releases backends in reverse order of acquisition.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
	slog.Debug("Components closed")
}

package bootstrap

import (
	"context"

	"github.com/moviedata/reception/internal/adapter/classifier"
	"github.com/moviedata/reception/internal/adapter/httpserver"
)

// HealthChecks lists the dependencies a reception request can fail on: the
// classifier always, Postgres and Redis when they are configured.
func (c *Components) HealthChecks() []httpserver.HealthCheck {
	checks := []httpserver.HealthCheck{{
		Name:  "classifier",
		Check: func(ctx context.Context) error { return classifier.Ready(ctx, c.Classifier) },
	}}
	if c.Pool != nil {
		checks = append(checks, httpserver.HealthCheck{Name: "postgres", Check: c.Pool.Ping})
	}
	if c.Redis != nil {
		checks = append(checks, httpserver.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return c.Redis.Ping(ctx).Err() },
		})
	}
	return checks
}

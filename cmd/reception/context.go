package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/moviedata/reception/internal/bootstrap"
	"github.com/moviedata/reception/internal/platform/config"
	"github.com/moviedata/reception/internal/platform/logging"
	"github.com/spf13/cobra"
)

var (
	errStorageRequired = errors.New("DATABASE_URL is required for this command")
	errRedisRequired   = errors.New("REDIS_URL is required for this command")
)

type commandContext struct {
	verbose *bool
	cfg     *config.Config
}

func newCommandContext(verbose *bool) *commandContext {
	return &commandContext{verbose: verbose}
}

// init loads configuration and sends logs to stderr so stdout stays
// reserved for command output.
func (c *commandContext) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := cfg.LogLevel
	if c.verbose != nil && *c.verbose {
		level = "debug"
	}
	logging.InitLoggerTo(cmd.ErrOrStderr(), level, cfg.LogFormat)
	return nil
}

func (c *commandContext) build(ctx context.Context, opts bootstrap.Options) (*bootstrap.Components, error) {
	if c.cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	components, err := bootstrap.Build(ctx, c.cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return components, nil
}

// buildWithStorage fails early when DATABASE_URL is not set.
func (c *commandContext) buildWithStorage(ctx context.Context) (*bootstrap.Components, error) {
	if c.cfg == nil || !c.cfg.StorageEnabled() {
		return nil, errStorageRequired
	}
	return c.build(ctx, bootstrap.Options{Storage: true, Migrate: true})
}

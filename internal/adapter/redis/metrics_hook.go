package redis

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// CommandRecorder receives one observation per Redis command or pipeline.
type CommandRecorder interface {
	CommandDone(operation string, failed bool, elapsed time.Duration)
	DialFailed()
}

// MetricsHook implements goredis.Hook to collect metrics on all Redis operations.
type MetricsHook struct {
	recorder CommandRecorder
}

var _ goredis.Hook = (*MetricsHook)(nil)

func NewMetricsHook(recorder CommandRecorder) *MetricsHook {
	return &MetricsHook{recorder: recorder}
}

func (h *MetricsHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.recorder.DialFailed()
		}
		return conn, err
	}
}

func (h *MetricsHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		failed := err != nil && !errors.Is(err, goredis.Nil)
		h.recorder.CommandDone(strings.ToLower(cmd.Name()), failed, time.Since(start))
		return err
	}
}

// ProcessPipelineHook records a pipeline as a single operation.
func (h *MetricsHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		h.recorder.CommandDone("pipeline", err != nil, time.Since(start))
		return err
	}
}

package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const purgeScanCount = 100

type PurgeOptions struct {
	// Model restricts the purge to verdicts of one classifier model.
	// Empty purges every cached verdict.
	Model  string
	DryRun bool
}

type PurgeSummary struct {
	Scanned int
	Deleted int
}

// PurgeVerdicts removes cached verdicts from Redis page by page using SCAN.
// The in-process layer of running servers is not affected.
func PurgeVerdicts(ctx context.Context, rdb goredis.Cmdable, opts PurgeOptions) (PurgeSummary, error) {
	start := time.Now()
	pattern := verdictKeyPrefix + "*"
	if opts.Model != "" {
		pattern = verdictKeyPrefix + opts.Model + ":*"
	}

	slog.Info("Starting verdict purge", "pattern", pattern, "dry_run", opts.DryRun)

	var summary PurgeSummary
	var cursor uint64
	for {
		keys, next, err := rdb.Scan(ctx, cursor, pattern, purgeScanCount).Result()
		if err != nil {
			return summary, fmt.Errorf("scan failed: %w", err)
		}
		summary.Scanned += len(keys)

		if len(keys) > 0 {
			if opts.DryRun {
				summary.Deleted += len(keys)
			} else {
				n, err := rdb.Del(ctx, keys...).Result()
				if err != nil {
					return summary, fmt.Errorf("failed to delete verdicts: %w", err)
				}
				summary.Deleted += int(n)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	slog.Info("Verdict purge summary",
		"scanned", summary.Scanned,
		"deleted", summary.Deleted,
		"dry_run", opts.DryRun,
		"duration_ms", time.Since(start).Milliseconds())
	return summary, nil
}

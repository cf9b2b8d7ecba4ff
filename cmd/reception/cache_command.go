package main

import (
	"github.com/moviedata/reception/internal/adapter/redis"
	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the shared verdict cache",
	}
	cmd.AddCommand(newCachePurgeCommand(ctx))
	return cmd
}

func newCachePurgeCommand(ctx *commandContext) *cobra.Command {
	var opts redis.PurgeOptions

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete cached verdicts from Redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.cfg == nil || !ctx.cfg.CacheEnabled() {
				return errRedisRequired
			}
			client, err := redis.NewClient(cmd.Context(), ctx.cfg.RedisURL)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			summary, err := redis.PurgeVerdicts(cmd.Context(), client, opts)
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Scanned", itoa(summary.Scanned)},
				{"Deleted", itoa(summary.Deleted)},
			}
			if opts.DryRun {
				rows[1][0] = "Would delete"
			}
			return printRows(cmd, []string{"Keys", "Count"}, rows, summary)
		},
	}

	cmd.Flags().StringVar(&opts.Model, "model", "", "Only purge verdicts of this classifier model")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Count matching keys without deleting them")
	return cmd
}

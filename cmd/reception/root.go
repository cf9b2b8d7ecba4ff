package main

import (
	"github.com/moviedata/reception/internal/platform/version"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var verbose bool
	ctx := newCommandContext(&verbose)

	rootCmd := &cobra.Command{
		Use:           "reception",
		Short:         "Build reception profiles from audience reviews",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(newProcessCommand(ctx))
	rootCmd.AddCommand(newAnalyzeCommand(ctx))
	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newAnalyzePendingCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newCacheCommand(ctx))

	return rootCmd
}

package main

import (
	"fmt"
	"strings"

	"github.com/moviedata/reception/internal/adapter/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.cfg == nil || !ctx.cfg.StorageEnabled() {
				return errStorageRequired
			}
			pool, err := postgres.Connect(cmd.Context(), ctx.cfg.DatabaseURL, nil)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.RunMigrationsWithLock(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var title, url string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Store a film and its pending reviews",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title = strings.TrimSpace(title)
			if title == "" {
				return fmt.Errorf("--title must not be empty")
			}
			reviews, err := readReviews(cmd, args)
			if err != nil {
				return err
			}

			components, err := ctx.buildWithStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer components.Close()

			film, err := components.Service.ImportFilm(cmd.Context(), title, strings.TrimSpace(url), reviews)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored film %d (%s) with %d reviews\n", film.ID, film.Title, len(film.Reviews))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Film title")
	cmd.Flags().StringVar(&url, "url", "", "Film page URL")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newAnalyzePendingCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "analyze-pending",
		Short: "Analyze stored films that have reviews but no profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1")
			}
			components, err := ctx.buildWithStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer components.Close()

			summary, err := components.Service.AnalyzePending(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printSummary(cmd, summary)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of films to analyze")
	return cmd
}

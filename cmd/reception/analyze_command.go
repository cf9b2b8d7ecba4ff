package main

import (
	"fmt"
	"io"
	"os"

	"github.com/moviedata/reception/internal/bootstrap"
	"github.com/moviedata/reception/internal/catalog"
	"github.com/spf13/cobra"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [file]",
		Short: "Print the reception profile of one list of reviews",
		Long: "Reads reviews as a JSON array of strings or one review per line, from the\n" +
			"given file or from stdin, and prints the profile as JSON.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviews, err := readReviews(cmd, args)
			if err != nil {
				return err
			}

			components, err := ctx.build(cmd.Context(), bootstrap.Options{})
			if err != nil {
				return err
			}
			defer components.Close()

			profile := components.Service.Analyze(cmd.Context(), reviews)
			return writeJSON(cmd, profile)
		},
	}
}

func readReviews(cmd *cobra.Command, args []string) ([]string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to open reviews: %w", err)
		}
		defer f.Close()
		r = f
	}
	return catalog.DecodeReviews(r)
}

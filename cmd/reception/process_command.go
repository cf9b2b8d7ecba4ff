package main

import (
	"fmt"

	"github.com/moviedata/reception/internal/bootstrap"
	"github.com/moviedata/reception/internal/catalog"
	"github.com/spf13/cobra"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Analyze every film of a JSON catalog",
		Long: "Reads a catalog of film records, replaces the reviews of each film with its\n" +
			"reception profile and writes the catalog to --output. --output may equal --input.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := catalog.Load(input)
			if err != nil {
				return err
			}

			components, err := ctx.build(cmd.Context(), bootstrap.Options{})
			if err != nil {
				return err
			}
			defer components.Close()

			summary, err := components.Service.ProcessCatalog(cmd.Context(), records)
			if err != nil {
				return err
			}
			if err := catalog.Save(output, records); err != nil {
				return fmt.Errorf("failed to write catalog: %w", err)
			}
			return printSummary(cmd, summary)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Catalog JSON file to read")
	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write the processed catalog to")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

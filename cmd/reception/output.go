package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/moviedata/reception/internal/app"
	"github.com/moviedata/reception/internal/domain"
	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func itoa(n int) string { return strconv.Itoa(n) }

// printRows renders a table on a terminal and v as JSON otherwise.
func printRows(cmd *cobra.Command, headers []string, rows [][]string, v any) error {
	out := cmd.OutOrStdout()
	if !isTerminal(out) {
		return writeJSON(cmd, v)
	}
	_, err := fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignLeft, alignRight}))
	return err
}

type summaryJSON struct {
	RunID    string         `json:"run_id"`
	Total    int            `json:"total"`
	Analyzed int            `json:"analyzed"`
	NoData   int            `json:"no_data"`
	Skipped  int            `json:"skipped"`
	Failed   int            `json:"failed"`
	ByType   map[string]int `json:"by_film_type"`
}

func toSummaryJSON(s *app.RunSummary) summaryJSON {
	byType := make(map[string]int, len(s.ByType))
	for t, n := range s.ByType {
		byType[string(t)] = n
	}
	return summaryJSON{
		RunID:    s.RunID,
		Total:    s.Total,
		Analyzed: s.Analyzed,
		NoData:   s.NoData,
		Skipped:  s.Skipped,
		Failed:   s.Failed,
		ByType:   byType,
	}
}

// summaryRows lists the outcome counts followed by one row per film type
// that occurred, in cascade order.
func summaryRows(s *app.RunSummary) [][]string {
	rows := [][]string{
		{"Films", itoa(s.Total)},
		{"Analyzed", itoa(s.Analyzed)},
		{"No sentiment data", itoa(s.NoData)},
		{"Skipped", itoa(s.Skipped)},
		{"Failed", itoa(s.Failed)},
	}
	for _, t := range domain.FilmTypes {
		if n := s.ByType[t]; n > 0 {
			rows = append(rows, []string{string(t), itoa(n)})
		}
	}
	return rows
}

func printSummary(cmd *cobra.Command, s *app.RunSummary) error {
	return printRows(cmd, []string{"Run " + s.RunID[:8], "Count"}, summaryRows(s), toSummaryJSON(s))
}

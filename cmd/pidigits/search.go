package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/pidigits/internal/model"
	"github.com/verte-zerg/pidigits/internal/search"
	"github.com/verte-zerg/pidigits/internal/stats"
)

const defaultShowPositions = 10

var (
	searchBirthday string
	searchPhone    string
	searchFamous   bool
	searchStats    bool
	searchShow     int
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [PATTERN]",
		Short: "Find digit sequences in the corpus",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSearchCmd,
	}
	cmd.Flags().StringVar(&searchBirthday, "birthday", "", "search a date given as MM/DD/YYYY")
	cmd.Flags().StringVar(&searchPhone, "phone", "", "search a phone number, punctuation ignored")
	cmd.Flags().BoolVar(&searchFamous, "famous", false, "search well-known sequences")
	cmd.Flags().BoolVar(&searchStats, "stats", false, "print distribution statistics for PATTERN")
	cmd.Flags().IntVar(&searchShow, "show", defaultShowPositions, "positions to print per result (0 prints all)")
	return cmd
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	selected := 0
	for _, set := range []bool{len(args) == 1, searchBirthday != "", searchPhone != "", searchFamous} {
		if set {
			selected++
		}
	}
	if selected != 1 {
		return fmt.Errorf("give exactly one of PATTERN, --birthday, --phone, or --famous")
	}
	if searchStats && len(args) == 0 {
		return fmt.Errorf("--stats requires PATTERN")
	}
	if searchShow < 0 {
		return fmt.Errorf("--show must be >= 0")
	}

	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	settings, err := resolveCorpusSettings(fileCfg)
	if err != nil {
		return err
	}
	ctx := context.Background()
	reader, err := openReader(ctx, settings)
	if err != nil {
		return err
	}
	defer closeReader(reader)

	searcher := search.New(reader)
	out := cmd.OutOrStdout()
	var results []model.SearchResult
	switch {
	case searchFamous:
		results, err = searcher.FamousSequences(ctx)
	case searchBirthday != "":
		var month, day, year int
		month, day, year, err = search.ParseBirthday(searchBirthday)
		if err != nil {
			return err
		}
		var res model.SearchResult
		res, err = searcher.SearchBirthday(ctx, month, day, year)
		results = []model.SearchResult{res}
	case searchPhone != "":
		var res model.SearchResult
		res, err = searcher.SearchPhoneNumber(ctx, searchPhone)
		results = []model.SearchResult{res}
	case searchStats:
		var st model.PatternStatistics
		st, err = searcher.Statistics(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to search: %w", err)
		}
		return renderPatternStatistics(out, st, reader.TotalDigits())
	default:
		var res model.SearchResult
		res, err = searcher.Search(ctx, args[0])
		results = []model.SearchResult{res}
	}
	if err != nil {
		return fmt.Errorf("failed to search: %w", err)
	}
	return renderSearchResults(out, results, searchShow)
}

// renderSearchResults prints one table row per result. Positions are shown
// as 1-based digit numbers after the decimal point.
func renderSearchResults(w io.Writer, results []model.SearchResult, show int) error {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		label := r.Label
		if label == "" {
			label = r.Pattern
		}
		rows = append(rows, []string{
			label,
			r.Pattern,
			humanize.Comma(int64(len(r.Positions))),
			formatPositions(r.Positions, show),
		})
	}
	for _, line := range stats.FormatTable([]string{"Search", "Pattern", "Matches", "Digit positions"}, rows, map[int]bool{2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func formatPositions(positions []int, show int) string {
	if len(positions) == 0 {
		return "not found"
	}
	n := len(positions)
	if show > 0 {
		n = min(n, show)
	}
	parts := make([]string, n)
	for i := range n {
		parts[i] = humanize.Comma(int64(positions[i] + 1))
	}
	out := strings.Join(parts, ", ")
	if n < len(positions) {
		out += fmt.Sprintf(", ... (+%s more)", humanize.Comma(int64(len(positions)-n)))
	}
	return out
}

func renderPatternStatistics(w io.Writer, st model.PatternStatistics, corpusDigits int) error {
	lines := []string{
		fmt.Sprintf("Pattern: %s", st.Pattern),
		fmt.Sprintf("Searched: %s digits", humanize.Comma(int64(corpusDigits))),
		fmt.Sprintf("Occurrences: %s", humanize.Comma(int64(st.Occurrences))),
		fmt.Sprintf("Average gap: %s", humanize.CommafWithDigits(st.AverageGap, 1)),
		fmt.Sprintf("Expected probability: %.3g", st.TheoreticalProbability),
		fmt.Sprintf("Observed probability: %.3g", st.ActualProbability),
	}
	if st.Occurrences > 0 {
		lines = append(lines, fmt.Sprintf("First at digit: %s", humanize.Comma(int64(st.Positions[0]+1))))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/pidigits/internal/viewer"
)

var (
	viewOffset int
	viewStats  bool
)

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Scroll through the digit corpus",
		Args:  cobra.NoArgs,
		RunE:  runViewCmd,
	}
	cmd.Flags().IntVar(&viewOffset, "offset", 0, "first digit offset to show")
	cmd.Flags().BoolVar(&viewStats, "stats", false, "show chunk cache statistics")
	return cmd
}

func runViewCmd(_ *cobra.Command, _ []string) error {
	if viewOffset < 0 {
		return fmt.Errorf("--offset must be >= 0")
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	settings, err := resolveCorpusSettings(fileCfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader, err := openReader(ctx, settings)
	if err != nil {
		return err
	}
	defer closeReader(reader)

	m := viewer.NewModel(ctx, reader, viewOffset,
		viewer.WithStats(viewStats),
		viewer.WithWindowLines(settings.preloadWindow/viewer.DigitsPerLine),
	)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = program.Run()
	// Stop outstanding preloads before the reader closes.
	cancel()
	if err != nil {
		return fmt.Errorf("failed to run viewer: %w", err)
	}
	return nil
}

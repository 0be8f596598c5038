// Package main provides the CLI entrypoint for pidigits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/pidigits/internal/config"
	"github.com/verte-zerg/pidigits/internal/memorize"
	"github.com/verte-zerg/pidigits/internal/model"
	"github.com/verte-zerg/pidigits/internal/stats"
	"github.com/verte-zerg/pidigits/internal/store"
	"github.com/verte-zerg/pidigits/internal/tui"
)

const (
	defaultMode        = "practice"
	defaultAlgorithm   = "machin"
	defaultPaceScale   = 1.0
	defaultCurveWindow = 5
)

var (
	memorizeMode      string
	memorizeStart     int
	memorizeTarget    int
	memorizeTimeLimit int
	memorizeColorize  bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pidigits",
		Short:         "Explore, search, and memorize the digits of pi",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runMemorizeCmd,
	}
	addMemorizeFlags(rootCmd)

	rootCmd.PersistentFlags().StringVar(&corpusPath, "corpus", "", "path to the digit corpus file")

	rootCmd.AddCommand(newMemorizeCmd())
	rootCmd.AddCommand(newViewCmd())
	rootCmd.AddCommand(newCalcCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newMemorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memorize",
		Short: "Practice reciting digits",
		Args:  cobra.NoArgs,
		RunE:  runMemorizeCmd,
	}
	addMemorizeFlags(cmd)
	return cmd
}

func addMemorizeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&memorizeMode, "mode", defaultMode, "practice, test, or timed")
	cmd.Flags().IntVar(&memorizeStart, "start", 0, "first digit offset after the decimal point")
	cmd.Flags().IntVar(&memorizeTarget, "target-digits", memorize.DefaultTargetDigits, "digits per session")
	cmd.Flags().IntVar(&memorizeTimeLimit, "time-limit", int(memorize.DefaultTimeLimit.Seconds()), "timed challenge limit in seconds")
	cmd.Flags().BoolVar(&memorizeColorize, "color", false, "color recalled digits with the memory-aid palette")
}

func runMemorizeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "mode", &memorizeMode, fileCfg.Memorize.Mode)
	applyIntConfig(cmd, "start", &memorizeStart, fileCfg.Memorize.Start)
	applyIntConfig(cmd, "target-digits", &memorizeTarget, fileCfg.Memorize.TargetDigits)

	mode, err := model.ParseMode(memorizeMode)
	if err != nil {
		return err
	}
	if memorizeStart < 0 {
		return fmt.Errorf("--start must be >= 0")
	}
	if memorizeTarget <= 0 {
		return fmt.Errorf("--target-digits must be > 0")
	}
	if memorizeTimeLimit <= 0 {
		return fmt.Errorf("--time-limit must be > 0")
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

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	seed, err := stats.LoadStats(ctx, st)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	cfg := tui.Config{
		Mode:         mode,
		Start:        memorizeStart,
		TargetDigits: memorizeTarget,
		TimeLimit:    secondsToDuration(memorizeTimeLimit),
		Colorize:     memorizeColorize,
	}
	m := tui.NewModel(ctx, reader, st, cfg, seed)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func secondsToDuration(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func loadFileConfig() (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return fileCfg, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# pidigits configuration
# Uncomment a value to enable it. CLI flags override config values.

[corpus]
# path = %q
# source = "mmap"           # mmap or memory
# fallback-digits = %d      # Digits computed when the corpus cannot be loaded

[cache]
# chunk-size = %d
# capacity = %d             # Chunks kept in memory
# policy = "fifo"           # fifo or lru
# preload-window = %d       # Digits warmed around the viewer position

[calculator]
# algorithm = %q            # machin, agm, or spigot
# pace-scale = %.1f         # 0 disables the reveal delay

[memorize]
# mode = %q                 # practice, test, or timed
# target-digits = %d
# start = 0
`,
		config.DefaultCorpusPath(),
		digitsFallbackDefault,
		windowChunkDefault,
		windowCacheDefault,
		windowPreloadDefault,
		defaultAlgorithm,
		defaultPaceScale,
		defaultMode,
		memorize.DefaultTargetDigits,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

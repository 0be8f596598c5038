package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/pidigits/internal/calcui"
	"github.com/verte-zerg/pidigits/internal/calculator"
	"github.com/verte-zerg/pidigits/internal/model"
)

const defaultCalcDigits = 1000

var (
	calcDigits    int
	calcAlgorithm string
	calcPaceScale float64
	calcPlain     bool
)

func newCalcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Stream pi digits with a live progress display",
		Args:  cobra.NoArgs,
		RunE:  runCalcCmd,
	}
	cmd.Flags().IntVar(&calcDigits, "digits", defaultCalcDigits, "number of digits after the decimal point")
	cmd.Flags().StringVar(&calcAlgorithm, "algorithm", defaultAlgorithm, "machin, agm, or spigot")
	cmd.Flags().Float64Var(&calcPaceScale, "pace-scale", defaultPaceScale, "reveal delay multiplier (0 disables delays)")
	cmd.Flags().BoolVar(&calcPlain, "plain", false, "print progress lines instead of the TUI")
	return cmd
}

func runCalcCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "algorithm", &calcAlgorithm, fileCfg.Calculator.Algorithm)
	applyFloatConfig(cmd, "pace-scale", &calcPaceScale, fileCfg.Calculator.PaceScale)

	algorithm, err := model.ParseAlgorithm(calcAlgorithm)
	if err != nil {
		return err
	}
	if calcDigits < 0 {
		return fmt.Errorf("--digits must be >= 0")
	}
	if calcPaceScale < 0 {
		return fmt.Errorf("--pace-scale must be >= 0")
	}

	settings, err := resolveCorpusSettings(fileCfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	reader, err := openReader(ctx, settings)
	if err != nil {
		return err
	}
	defer closeReader(reader)

	calc := calculator.New(reader, calculator.WithPaceScale(calcPaceScale))
	if calcDigits > calc.Available() {
		logErrf("only %s digits available; truncating\n", humanize.Comma(int64(calc.Available())))
	}

	if calcPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runCalcPlain(ctx, calc, algorithm, cmd.OutOrStdout(), os.Stderr)
	}

	m := calcui.NewModel(ctx, calc, calcDigits, algorithm)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run calc TUI: %w", err)
	}
	if err := m.Err(); err != nil {
		return err
	}
	if res, ok := m.Result(); ok {
		logErrf("%s: %s digits in %s\n", algorithm.DisplayName(), humanize.Comma(int64(len(res.Digits)-2)), res.Elapsed.Round(time.Millisecond))
	}
	return nil
}

// runCalcPlain reports progress on errOut at most every tenth of the target
// and writes the final digits to out.
func runCalcPlain(ctx context.Context, calc *calculator.Calculator, algorithm model.Algorithm, out, errOut io.Writer) error {
	lastDecile := -1
	res, err := calc.Calculate(ctx, calcDigits, algorithm, func(p model.CalculationProgress) {
		if p.TargetDigits == 0 {
			return
		}
		decile := p.CurrentDigits * 10 / p.TargetDigits
		if decile == lastDecile {
			return
		}
		lastDecile = decile
		if _, err := fmt.Fprintf(errOut, "%s/%s digits (eta %s)\n",
			humanize.Comma(int64(p.CurrentDigits)), humanize.Comma(int64(p.TargetDigits)), p.EstimatedRemain.Round(time.Second)); err != nil {
			// Best-effort progress output.
			_ = err
		}
	})
	if err != nil {
		return fmt.Errorf("failed to calculate: %w", err)
	}
	if _, err := fmt.Fprintln(out, res.Digits); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !res.Complete {
		return fmt.Errorf("calculation cancelled after %s digits", humanize.Comma(int64(len(res.Digits)-2)))
	}
	return nil
}

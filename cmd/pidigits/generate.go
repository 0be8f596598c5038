package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/pidigits/internal/config"
	"github.com/verte-zerg/pidigits/internal/generator"
)

const defaultGenerateDigits = 100000

var (
	generateDigits int
	generateOut    string
	generateWrap   int
	generateForce  bool
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Compute a digit corpus file",
		Args:  cobra.NoArgs,
		RunE:  runGenerateCmd,
	}
	cmd.Flags().IntVar(&generateDigits, "digits", defaultGenerateDigits, "digits after the decimal point")
	cmd.Flags().StringVar(&generateOut, "out", "", "output path (default: the configured corpus path)")
	cmd.Flags().IntVar(&generateWrap, "wrap", 0, "digits per line (0 writes a single line)")
	cmd.Flags().BoolVar(&generateForce, "force", false, "overwrite an existing file")
	return cmd
}

func runGenerateCmd(_ *cobra.Command, _ []string) error {
	if generateDigits <= 0 {
		return fmt.Errorf("--digits must be > 0")
	}
	if generateWrap < 0 {
		return fmt.Errorf("--wrap must be >= 0")
	}
	outPath := generateOut
	if outPath == "" {
		fileCfg, err := loadFileConfig()
		if err != nil {
			return err
		}
		outPath = config.DefaultCorpusPath()
		if corpusPath != "" {
			outPath = corpusPath
		} else if fileCfg.Corpus.Path != nil {
			outPath = *fileCfg.Corpus.Path
		}
	}
	if !generateForce {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("corpus already exists: %s (use --force to overwrite)", outPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat corpus: %w", err)
		}
	}

	logErrf("Computing %s digits...\n", humanize.Comma(int64(generateDigits)))
	if err := writeCorpusFile(outPath, generateDigits, generateWrap); err != nil {
		return err
	}
	logErrf("Wrote %s\n", outPath)
	return nil
}

func writeCorpusFile(path string, n, wrap int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create corpus dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "corpus-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp corpus: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := generator.WriteCorpus(writer, n, wrap); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush corpus: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close corpus: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	return nil
}

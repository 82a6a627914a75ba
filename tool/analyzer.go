package tool

import (
	"context"
	"fmt"
	"os"
)

// Analyzer invokes an external tool that produces frequency-analysis
// artifacts (Zipf parameters, summary statistics) for a series.
type Analyzer struct {
	Binary string
}

// NewAnalyzer creates an Analyzer wrapping the named binary.
func NewAnalyzer(binary string) *Analyzer {
	return &Analyzer{Binary: binary}
}

// Analyze runs the analyzer against tokensPath, writing its artifacts
// into outDir. It verifies that both expected output files exist.
func (a *Analyzer) Analyze(ctx context.Context, tokensPath, outDir, zipfParamsPath, statisticsPath string) error {
	_, err := run(ctx, a.Binary,
		"--input", tokensPath,
		"--output-dir", outDir,
	)
	if err != nil {
		return err
	}
	if _, err := os.Stat(zipfParamsPath); err != nil {
		return fmt.Errorf("tool: analyzer did not produce %s: %w", zipfParamsPath, err)
	}
	if _, err := os.Stat(statisticsPath); err != nil {
		return fmt.Errorf("tool: analyzer did not produce %s: %w", statisticsPath, err)
	}
	return nil
}

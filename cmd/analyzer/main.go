// Command analyzer runs the Analyze stage worker pool: for each job in
// tokenized, it invokes the external statistical analyzer over the
// token stream, records the series' completion counter, and advances
// the job to complete, optionally deleting the consumed token file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	pipeline "github.com/aoi-sora/animepipe"
	"github.com/aoi-sora/animepipe/internal/app"
	"github.com/aoi-sora/animepipe/job"
	"github.com/aoi-sora/animepipe/tool"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configPath string
		verbose    bool
		workers    int
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "analyzer",
		Short: "Run the analyze stage worker pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.Bootstrap(ctx, configPath, "analyzer", verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			concurrency := a.Config.Workers.AnalyzeConcurrency
			if workers > 0 {
				concurrency = workers
			}

			analyzer := tool.NewAnalyzer(a.Config.Tools.AnalyzerBinary)
			timeout := time.Duration(a.Config.Workers.StageTimeoutSeconds) * time.Second
			handler := analyzeHandler(a, analyzer, dryRun, timeout)

			w := pipeline.NewStageWorker(a.Puller, handler, &pipeline.StageWorkerConfig{
				From:         job.Tokenized,
				To:           job.Analyzing,
				Concurrency:  concurrency,
				Queue:        concurrency * 2,
				PollInterval: time.Duration(a.Config.Workers.PollIntervalMillis) * time.Millisecond,
			}, a.Log)

			a.Log.Info("analyze worker pool starting", "concurrency", concurrency, "dry_run", dryRun)
			return w.RunUntilDrained(ctx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "config.toml", "path to configuration file")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	cmd.Flags().IntVar(&workers, "workers", 0, "override configured worker count")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "produce zero-byte placeholder artifacts instead of invoking external tools")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func analyzeHandler(a *app.App, analyzer *tool.Analyzer, dryRun bool, timeout time.Duration) pipeline.StageHandler {
	return func(ctx context.Context, j *job.Job) pipeline.StageResult {
		if j.TokensPath == nil {
			return pipeline.StageResult{Outcome: pipeline.OutcomeFail, Err: errors.New("no tokens path recorded")}
		}
		if _, err := os.Stat(*j.TokensPath); err != nil {
			if os.IsNotExist(err) {
				return pipeline.StageResult{Outcome: pipeline.OutcomeFail, Err: errors.New("tokens file missing from disk")}
			}
			return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
		}

		outDir := a.Paths.AnalysisDir(j.CatalogID)
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
		}
		zipfPath := a.Paths.ZipfParams(j.CatalogID)
		statsPath := a.Paths.Statistics(j.CatalogID)

		if dryRun {
			if err := app.WritePlaceholder(zipfPath); err != nil {
				return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
			}
			if err := app.WritePlaceholder(statsPath); err != nil {
				return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
			}
		} else {
			actx, cancel := context.WithTimeout(ctx, timeout)
			err := analyzer.Analyze(actx, *j.TokensPath, outDir, zipfPath, statsPath)
			cancel()
			if err != nil {
				return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
			}
		}

		tokensPath := *j.TokensPath
		deleteTokens := a.Config.DiskManagement.Cleanup.DeleteTokensAfterAnalysis
		cleanup := func(ctx context.Context) error {
			if err := a.Puller.CompleteEpisode(ctx, j.SeriesID); err != nil {
				return err
			}
			if deleteTokens {
				if err := os.Remove(tokensPath); err != nil && !os.IsNotExist(err) {
					a.Log.Warn("unlink tokens failed", "path", tokensPath, "err", err)
				}
			}
			a.Monitor.InvalidateCache()
			return nil
		}

		return pipeline.StageResult{
			Outcome:   pipeline.OutcomeAdvance,
			NextStage: job.Complete,
			Metadata: &job.Metadata{
				AnalysisPath: &outDir,
			},
			Cleanup: cleanup,
		}
	}
}

// Command tokenizer runs the Tokenize stage worker pool: for each job
// in transcribed, it invokes the external tokenizer, records word and
// token counts, and advances the job to tokenized, optionally deleting
// the consumed transcript.
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
		Use:   "tokenizer",
		Short: "Run the tokenize stage worker pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.Bootstrap(ctx, configPath, "tokenizer", verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			concurrency := a.Config.Workers.TokenizeConcurrency
			if workers > 0 {
				concurrency = workers
			}

			tokenizer := tool.NewTokenizer(a.Config.Tools.TokenizerBinary)
			timeout := time.Duration(a.Config.Workers.StageTimeoutSeconds) * time.Second
			handler := tokenizeHandler(a, tokenizer, dryRun, timeout)

			w := pipeline.NewStageWorker(a.Puller, handler, &pipeline.StageWorkerConfig{
				From:         job.Transcribed,
				To:           job.Tokenizing,
				Concurrency:  concurrency,
				Queue:        concurrency * 2,
				PollInterval: time.Duration(a.Config.Workers.PollIntervalMillis) * time.Millisecond,
			}, a.Log)

			a.Log.Info("tokenize worker pool starting", "concurrency", concurrency, "dry_run", dryRun)
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

func tokenizeHandler(a *app.App, tokenizer *tool.Tokenizer, dryRun bool, timeout time.Duration) pipeline.StageHandler {
	return func(ctx context.Context, j *job.Job) pipeline.StageResult {
		if j.TranscriptPath == nil {
			return pipeline.StageResult{Outcome: pipeline.OutcomeFail, Err: errors.New("no transcript path recorded")}
		}
		if _, err := os.Stat(*j.TranscriptPath); err != nil {
			if os.IsNotExist(err) {
				return pipeline.StageResult{Outcome: pipeline.OutcomeFail, Err: errors.New("transcript file missing from disk")}
			}
			return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
		}

		tokensDir := a.Paths.TokensDir(j.CatalogID)
		if err := os.MkdirAll(tokensDir, 0o755); err != nil {
			return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
		}
		tokensPath := a.Paths.TokensFile(j.CatalogID, j.Title, j.Episode)

		var wordCount, tokenCount uint32
		if dryRun {
			if err := app.WritePlaceholder(tokensPath); err != nil {
				return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
			}
		} else {
			tctx, cancel := context.WithTimeout(ctx, timeout)
			res, err := tokenizer.Tokenize(tctx, *j.TranscriptPath, tokensPath)
			cancel()
			if err != nil {
				return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
			}
			wordCount, tokenCount = res.WordCount, res.TokenCount
		}

		tokensSize, err := app.FileSize(tokensPath)
		if err != nil {
			return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
		}

		transcriptPath := *j.TranscriptPath
		deleteTranscript := a.Config.DiskManagement.Cleanup.DeleteTranscriptAfterTokenization
		cleanup := func(ctx context.Context) error {
			if !deleteTranscript {
				return nil
			}
			if err := os.Remove(transcriptPath); err != nil && !os.IsNotExist(err) {
				a.Log.Warn("unlink transcript failed", "path", transcriptPath, "err", err)
			}
			a.Monitor.InvalidateCache()
			return nil
		}

		return pipeline.StageResult{
			Outcome:   pipeline.OutcomeAdvance,
			NextStage: job.Tokenized,
			Metadata: &job.Metadata{
				TokensPath:      &tokensPath,
				TokensSizeBytes: &tokensSize,
				WordCount:       &wordCount,
				TokenCount:      &tokenCount,
			},
			Cleanup: cleanup,
		}
	}
}

// Command transcriber runs the Transcribe stage worker pool: for each
// job in downloaded, it extracts 16 kHz mono audio, transcribes it,
// applies the hallucination filter, and advances the job to
// transcribed, deleting the source video/audio per the cleanup policy.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
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
		Use:   "transcriber",
		Short: "Run the transcribe stage worker pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.Bootstrap(ctx, configPath, "transcriber", verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			concurrency := a.Config.DiskManagement.MaxConcurrentTranscriptions
			if workers > 0 {
				concurrency = workers
			}

			extractor := tool.NewAudioExtractor(a.Config.Tools.AudioExtractorBinary)
			transcriber := tool.NewTranscriber(a.Config.Tools.TranscriberBinary)
			timeout := time.Duration(a.Config.Workers.StageTimeoutSeconds) * time.Second

			handler := transcribeHandler(a, extractor, transcriber, dryRun, timeout)

			w := pipeline.NewStageWorker(a.Puller, handler, &pipeline.StageWorkerConfig{
				From:         job.Downloaded,
				To:           job.Transcribing,
				Concurrency:  concurrency,
				Queue:        concurrency * 2,
				PollInterval: time.Duration(a.Config.Workers.PollIntervalMillis) * time.Millisecond,
			}, a.Log)

			a.Log.Info("transcribe worker pool starting", "concurrency", concurrency, "dry_run", dryRun)
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

func transcribeHandler(a *app.App, extractor *tool.AudioExtractor, transcriber *tool.Transcriber, dryRun bool, timeout time.Duration) pipeline.StageHandler {
	return func(ctx context.Context, j *job.Job) pipeline.StageResult {
		// Pace transcription jobs a beat apart so back-to-back ffmpeg
		// and whisper spawns don't stampede the disk.
		time.Sleep(100 * time.Millisecond)

		if j.VideoPath == nil {
			return pipeline.StageResult{Outcome: pipeline.OutcomeFail, Err: errors.New("no video path recorded")}
		}
		if _, err := os.Stat(*j.VideoPath); err != nil {
			if os.IsNotExist(err) {
				return pipeline.StageResult{Outcome: pipeline.OutcomeFail, Err: errors.New("video file missing from disk")}
			}
			return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
		}

		audioDir := a.Paths.AudioDir(j.CatalogID)
		if err := os.MkdirAll(audioDir, 0o755); err != nil {
			return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
		}
		audioPath := a.Paths.AudioFile(j.CatalogID, j.Title, j.Episode)

		transcriptDir := a.Paths.TranscriptDir(j.CatalogID)
		if err := os.MkdirAll(transcriptDir, 0o755); err != nil {
			return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
		}
		transcriptPath := a.Paths.TranscriptFile(j.CatalogID, j.Title, j.Episode)
		wantTranscriptName := filepath.Base(transcriptPath)

		if dryRun {
			if err := app.WritePlaceholder(audioPath); err != nil {
				return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
			}
			if err := app.WritePlaceholder(transcriptPath); err != nil {
				return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
			}
		} else {
			ectx, cancel := context.WithTimeout(ctx, timeout)
			err := extractor.Extract(ectx, *j.VideoPath, audioPath)
			cancel()
			if err != nil {
				return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
			}

			tctx, cancel2 := context.WithTimeout(ctx, timeout)
			producedPath, err := transcriber.Transcribe(tctx, audioPath, a.Config.Tools.TranscriberModel, a.Config.Tools.TranscriberLanguage, transcriptDir, wantTranscriptName)
			cancel2()
			if err != nil {
				return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
			}
			transcriptPath = producedPath

			raw, err := os.ReadFile(transcriptPath)
			if err != nil {
				return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
			}
			if err := os.WriteFile(transcriptPath, tool.CleanTranscript(raw), 0o644); err != nil {
				return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
			}
		}

		audioSize, err := app.FileSize(audioPath)
		if err != nil {
			return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
		}
		transcriptSize, err := app.FileSize(transcriptPath)
		if err != nil {
			return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
		}

		videoPath := *j.VideoPath
		cleanupCfg := a.Config.DiskManagement.Cleanup
		cleanup := func(ctx context.Context) error {
			var errs []error
			if cleanupCfg.DeleteVideoAfterTranscription {
				if err := a.Puller.MarkFileDeleted(ctx, j.Id, job.VideoFile); err != nil {
					errs = append(errs, err)
				} else if err := os.Remove(videoPath); err != nil && !os.IsNotExist(err) {
					a.Log.Warn("unlink video failed", "path", videoPath, "err", err)
				}
			}
			if cleanupCfg.DeleteAudioAfterTranscription {
				if err := a.Puller.MarkFileDeleted(ctx, j.Id, job.AudioFile); err != nil {
					errs = append(errs, err)
				} else if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
					a.Log.Warn("unlink audio failed", "path", audioPath, "err", err)
				}
			}
			a.Monitor.InvalidateCache()
			return errors.Join(errs...)
		}

		return pipeline.StageResult{
			Outcome:   pipeline.OutcomeAdvance,
			NextStage: job.Transcribed,
			Metadata: &job.Metadata{
				TranscriptPath:      &transcriptPath,
				AudioSizeBytes:      &audioSize,
				TranscriptSizeBytes: &transcriptSize,
			},
			Cleanup: cleanup,
		}
	}
}

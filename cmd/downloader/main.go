// Command downloader runs the Download stage worker pool: for each
// job in queued, it consults the Title Selection Cache, invokes the
// external downloader tool, and advances the job to downloaded.
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
		configPath    string
		verbose       bool
		workers       int
		dryRun        bool
		filterAnimeID int64
	)

	cmd := &cobra.Command{
		Use:   "downloader",
		Short: "Run the download stage worker pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.Bootstrap(ctx, configPath, "downloader", verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			concurrency := a.Config.DiskManagement.MaxConcurrentDownloads
			if workers > 0 {
				concurrency = workers
			}

			downloader := tool.NewDownloader(a.Config.Tools.DownloaderBinary)
			timeout := time.Duration(a.Config.Workers.StageTimeoutSeconds) * time.Second

			var seriesFilter *int64
			if filterAnimeID != 0 {
				s, err := a.Observer.GetSeries(ctx, filterAnimeID)
				if err != nil {
					return err
				}
				if s == nil {
					return fmt.Errorf("downloader: no series with catalog id %d", filterAnimeID)
				}
				seriesFilter = &s.Id
			}

			handler := downloadHandler(a, downloader, dryRun, timeout)
			gate := pipeline.DiskAdmission(a.Monitor, time.Duration(a.Config.DiskManagement.CheckIntervalSeconds)*time.Second, a.Log)

			w := pipeline.NewStageWorker(a.Puller, handler, &pipeline.StageWorkerConfig{
				From:         job.Queued,
				To:           job.Downloading,
				Concurrency:  concurrency,
				Queue:        concurrency * 2,
				PollInterval: time.Duration(a.Config.Workers.PollIntervalMillis) * time.Millisecond,
				Gate:         gate,
				SeriesFilter: seriesFilter,
			}, a.Log)

			a.Log.Info("download worker pool starting", "concurrency", concurrency, "dry_run", dryRun)
			return w.RunUntilDrained(ctx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "config.toml", "path to configuration file")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	cmd.Flags().IntVar(&workers, "workers", 0, "override configured worker count")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "produce zero-byte placeholder artifacts instead of invoking external tools")
	cmd.Flags().Int64Var(&filterAnimeID, "filter-anime-id", 0, "restrict processing to a single series' catalog id")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func downloadHandler(a *app.App, downloader *tool.Downloader, dryRun bool, timeout time.Duration) pipeline.StageHandler {
	return func(ctx context.Context, j *job.Job) pipeline.StageResult {
		sel, err := a.Observer.GetSelection(ctx, j.SeriesID)
		if err != nil {
			return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
		}
		if sel == nil {
			return pipeline.StageResult{Outcome: pipeline.OutcomeFail,
				Err: errors.New("anime selection not cached: run anime-selector first")}
		}
		if sel.Confidence == job.ConfidenceNoCandidate {
			return pipeline.StageResult{Outcome: pipeline.OutcomeFail,
				Err: errors.New("anime selection has no candidates: run anime-selector first")}
		}

		// The tool resolves the catalog's selected title; the file on
		// disk is named after our own series title.
		title := tool.StripEpisodeCountSuffix(sel.SelectedTitle)
		dir := a.Paths.VideoDir(j.CatalogID)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
		}
		wantName := filepath.Base(a.Paths.VideoFile(j.CatalogID, j.Title, j.Episode, "mp4"))

		var videoPath string
		if dryRun {
			videoPath = filepath.Join(dir, wantName)
			if err := app.WritePlaceholder(videoPath); err != nil {
				return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
			}
		} else {
			dctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			videoPath, err = downloader.Download(dctx, title, j.Episode, dir, wantName)
			if err != nil {
				return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
			}
		}

		size, err := app.FileSize(videoPath)
		if err != nil {
			return pipeline.StageResult{Outcome: pipeline.OutcomeRetry, Err: err}
		}
		a.Monitor.InvalidateCache()

		return pipeline.StageResult{
			Outcome:   pipeline.OutcomeAdvance,
			NextStage: job.Downloaded,
			Metadata:  &job.Metadata{VideoPath: &videoPath, VideoSizeBytes: &size},
		}
	}
}

// Command queuectl is the operator CLI for inspecting and nudging a
// running pipeline: reporting per-stage job counts and disk usage,
// listing jobs in a given stage, and resurrecting failed jobs that
// still have retry budget.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	pipeline "github.com/aoi-sora/animepipe"
	"github.com/aoi-sora/animepipe/internal/app"
	"github.com/aoi-sora/animepipe/job"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:   "queuectl",
		Short: "Inspect and administer a pipeline run",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.toml", "path to configuration file")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	root.AddCommand(statsCmd(&configPath, &verbose))
	root.AddCommand(listCmd(&configPath, &verbose))
	root.AddCommand(retryFailedCmd(&configPath, &verbose))
	root.AddCommand(reconcileCmd(&configPath, &verbose))

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func statsCmd(configPath *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print job counts per stage and current disk usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.Bootstrap(ctx, *configPath, "queuectl", *verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.Observer.GetStats(ctx)
			if err != nil {
				return fmt.Errorf("queuectl: stats: %w", err)
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "stage\tcount\n")
			fmt.Fprintf(tw, "queued\t%d\n", stats.Queued)
			fmt.Fprintf(tw, "downloading\t%d\n", stats.Downloading)
			fmt.Fprintf(tw, "downloaded\t%d\n", stats.Downloaded)
			fmt.Fprintf(tw, "transcribing\t%d\n", stats.Transcribing)
			fmt.Fprintf(tw, "transcribed\t%d\n", stats.Transcribed)
			fmt.Fprintf(tw, "tokenizing\t%d\n", stats.Tokenizing)
			fmt.Fprintf(tw, "tokenized\t%d\n", stats.Tokenized)
			fmt.Fprintf(tw, "analyzing\t%d\n", stats.Analyzing)
			fmt.Fprintf(tw, "complete\t%d\n", stats.Complete)
			fmt.Fprintf(tw, "failed\t%d\n", stats.Failed)
			fmt.Fprintf(tw, "total\t%d\n", stats.Total)
			tw.Flush()

			breakdown, err := a.Monitor.GetBreakdown()
			if err != nil {
				return fmt.Errorf("queuectl: disk usage: %w", err)
			}
			dm := a.Config.DiskManagement
			fmt.Printf("\ndisk usage: %s used (%.1f%% of hard limit, pause at %s, resume at %s)\n",
				humanize.Bytes(breakdown.Usage.TotalBytes),
				breakdown.Percentage,
				humanize.Bytes(dm.PauseThresholdGB*1<<30),
				humanize.Bytes(dm.ResumeThresholdGB*1<<30))
			return nil
		},
	}
}

func listCmd(configPath *string, verbose *bool) *cobra.Command {
	var (
		stageFlag string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs in a given stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.Bootstrap(ctx, *configPath, "queuectl", *verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			var stage job.Stage
			if stageFlag != "" {
				stage, err = job.ParseStage(stageFlag)
				if err != nil {
					return fmt.Errorf("queuectl: %w", err)
				}
			}

			jobs, err := a.Observer.ListJobs(ctx, stage, limit)
			if err != nil {
				return fmt.Errorf("queuectl: list jobs: %w", err)
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "id\tcatalog_id\ttitle\tepisode\tstage\tretries\n")
			for _, j := range jobs {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\t%d\n", j.Id, j.CatalogID, j.Title, j.Episode, j.Stage, j.RetryCount)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&stageFlag, "stage", "", "restrict to a single stage (default: all stages)")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum rows to print (0 for unlimited)")
	return cmd
}

func retryFailedCmd(configPath *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "retry-failed",
		Short: "Requeue failed jobs that still have retry budget",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.Bootstrap(ctx, *configPath, "queuectl", *verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Cleaner.RetryFailed(ctx)
			if err != nil {
				return fmt.Errorf("queuectl: retry failed: %w", err)
			}
			fmt.Printf("requeued %d job(s)\n", n)
			return nil
		},
	}
}

func reconcileCmd(configPath *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Reset orphaned jobs stuck in a working stage back to their input stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.Bootstrap(ctx, *configPath, "queuectl", *verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			w := a.Config.Workers
			r := pipeline.NewReconciler(a.Observer, a.Puller, &pipeline.ReconcilerConfig{
				StuckAfter: time.Duration(w.ReconcileStuckMinutes) * time.Minute,
				Interval:   time.Duration(w.ReconcileIntervalMinutes) * time.Minute,
			}, a.Log)
			r.Scan(ctx)
			return nil
		},
	}
}

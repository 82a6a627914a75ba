// Command selector resolves, for every series without a cached title
// selection, the external catalog title that best matches it: it
// fetches candidate titles via the candidate-finder helper, asks the
// title-selection helper to pick among them, and caches the result so
// the downloader can later resolve a series' episodes without
// re-running selection.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aoi-sora/animepipe/internal/app"
	"github.com/aoi-sora/animepipe/job"
	"github.com/aoi-sora/animepipe/tool"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configPath string
		verbose    bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "selector",
		Short: "Resolve and cache title selections for unselected series",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.Bootstrap(ctx, configPath, "selector", verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			finder := tool.NewCandidateFinder(a.Config.Tools.CandidateFinderBinary)
			selector := tool.NewSelector(a.Config.Tools.SelectorBinary)

			series, err := a.Observer.ListUnselectedSeries(ctx)
			if err != nil {
				return fmt.Errorf("selector: list unselected series: %w", err)
			}
			a.Log.Info("resolving title selections", "count", len(series), "dry_run", dryRun)

			for _, s := range series {
				if err := resolveOne(ctx, a, finder, selector, s, dryRun); err != nil {
					a.Log.Warn("selection failed", "series_id", s.Id, "catalog_id", s.CatalogID, "title", s.Title, "err", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "config.toml", "path to configuration file")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve candidates but do not write the selection cache")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveOne(ctx context.Context, a *app.App, finder *tool.CandidateFinder, selector *tool.Selector, s *job.Series, dryRun bool) error {
	candidates, err := finder.FindCandidates(ctx, s.Title)
	if err != nil {
		return fmt.Errorf("find candidates: %w", err)
	}

	sel := &job.Selection{
		SeriesID:   s.Id,
		QueryTitle: s.Title,
	}
	if len(candidates) == 0 {
		sel.Confidence = job.ConfidenceNoCandidate
		sel.SelectedIndex = -1
	} else {
		res, err := selector.Select(ctx, s.Title, candidates)
		if err != nil {
			return fmt.Errorf("select: %w", err)
		}
		if res.Index < 0 || res.Index >= len(candidates) {
			return fmt.Errorf("selector returned out-of-range index %d for %d candidates", res.Index, len(candidates))
		}
		sel.SelectedIndex = int32(res.Index)
		sel.SelectedTitle = candidates[res.Index]
		sel.Confidence = job.Confidence(res.Confidence)
		if res.Reason != "" {
			sel.Reason = &res.Reason
		}
	}

	if dryRun {
		a.Log.Info("dry run: would cache selection", "series_id", s.Id, "title", sel.SelectedTitle, "confidence", sel.Confidence)
		return nil
	}
	return a.Puller.CacheSelection(ctx, sel)
}

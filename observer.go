package pipeline

import (
	"context"

	"github.com/aoi-sora/animepipe/job"
)

// Stats summarizes job counts per stage, as produced by Observer.GetStats.
type Stats struct {
	Total        int64
	Queued       int64
	Downloading  int64
	Downloaded   int64
	Transcribing int64
	Transcribed  int64
	Tokenizing   int64
	Tokenized    int64
	Analyzing    int64
	Complete     int64
	Failed       int64
}

// Observer provides read-only access to series and job state.
//
// Observer does not modify state and is intended for diagnostic,
// monitoring and administrative use cases (the queuectl CLI, stage
// workers checking preconditions of a job they have dequeued).
type Observer interface {

	// GetJob returns the job identified by id, or (nil, nil) if absent.
	GetJob(ctx context.Context, id int64) (*job.Job, error)

	// ListJobs returns jobs matching stage, ordered (priority DESC,
	// created_at ASC). If stage is job.Unknown, no stage filter is
	// applied. If limit is zero or negative, all matching rows are
	// returned.
	ListJobs(ctx context.Context, stage job.Stage, limit int) ([]*job.Job, error)

	// GetSeries returns the series identified by its catalog id, or
	// (nil, nil) if absent.
	GetSeries(ctx context.Context, catalogID int64) (*job.Series, error)

	// GetSelection returns the cached title selection for a series, or
	// (nil, nil) if none has been recorded.
	GetSelection(ctx context.Context, seriesID int64) (*job.Selection, error)

	// ListUnselectedSeries returns every series that has no Title
	// Selection Cache entry yet, the working set the selector binary
	// iterates over.
	ListUnselectedSeries(ctx context.Context) ([]*job.Series, error)

	// GetStats returns job counts grouped by stage.
	GetStats(ctx context.Context) (*Stats, error)
}

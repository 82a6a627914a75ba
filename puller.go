package pipeline

import (
	"context"
	"errors"

	"github.com/aoi-sora/animepipe/job"
)

var (
	// ErrJobLost indicates that the referenced job no longer exists in
	// storage or is no longer in the stage the caller expected.
	//
	// This occurs when the job was concurrently transitioned by another
	// worker between the caller's last read and its write.
	ErrJobLost = errors.New("job lost")

	// ErrQueueEmpty is the non-error sentinel DequeueAdvance returns when
	// no job is currently eligible in the requested input stage. Callers
	// distinguish it from a transport failure to implement end-of-queue
	// worker termination.
	ErrQueueEmpty = errors.New("queue empty")

	// ErrBadTransition indicates that the requested (from, to) stage pair
	// is not one of the edges defined by the stage machine.
	ErrBadTransition = errors.New("bad stage transition")
)

// Puller defines the read-write contract for consuming and advancing
// jobs through the stage machine.
//
// Unlike a lease-based queue, jobs here carry no visibility timeout:
// a job's presence in a working stage (downloading, transcribing, …)
// is itself the ownership marker. A worker that crashes mid-job leaves
// it there; recovering such orphans is an operator or startup-scan
// action (see Reconciler), not something Puller retries automatically.
type Puller interface {

	// DequeueAdvance atomically selects one job currently in stage
	// from, with the highest priority (ties broken by earliest
	// CreatedAt), transitions it to stage to, sets StartedAt to now,
	// and returns the updated snapshot.
	//
	// If seriesID is non-nil, candidates are restricted to that series.
	//
	// If no eligible job exists, DequeueAdvance returns (nil, ErrQueueEmpty).
	//
	// The match-and-update must happen in a single atomic operation so
	// that two callers racing for the same candidate cannot both win it.
	DequeueAdvance(ctx context.Context, from, to job.Stage, seriesID *int64) (*job.Job, error)

	// UpdateStage transitions job id to stage unconditionally. Used for
	// transitions not covered by DequeueAdvance (e.g. downloading ->
	// downloaded on success).
	UpdateStage(ctx context.Context, id int64, stage job.Stage) error

	// UpdateStageWithError transitions job id to stage and records msg as
	// its ErrorMessage. Used for the failed terminal transition.
	UpdateStageWithError(ctx context.Context, id int64, stage job.Stage, msg string) error

	// UpdateMetadata performs a sparse update: only non-nil fields of m
	// are written.
	UpdateMetadata(ctx context.Context, id int64, m *job.Metadata) error

	// UpdateProgress sets the job's progress fraction and, if newStage
	// is non-nil, also its stage.
	UpdateProgress(ctx context.Context, id int64, progress float64, newStage *job.Stage) error

	// MarkFileDeleted sets the video_deleted or audio_deleted flag.
	MarkFileDeleted(ctx context.Context, id int64, kind job.FileKind) error

	// IncrementRetry increments the job's retry counter by one.
	IncrementRetry(ctx context.Context, id int64) error

	// CacheSelection records a title-selection decision for a series,
	// replacing any prior entry.
	CacheSelection(ctx context.Context, s *job.Selection) error

	// CompleteEpisode increments a series' EpisodesProcessed counter
	// and flips ProcessingStatus to StatusCompleted once it reaches
	// TotalEpisodeCount (when known). Called by the analyzer worker
	// once an episode reaches the complete stage.
	CompleteEpisode(ctx context.Context, seriesID int64) error
}

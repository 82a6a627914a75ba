package pipeline

import (
	"context"

	"github.com/aoi-sora/animepipe/job"
)

// Pusher defines the write-side entry point of the queue.
type Pusher interface {

	// GetOrCreateSeries idempotently inserts a series keyed by its
	// catalog id. If a series with the same catalog id already exists,
	// its database id is returned and the record is left untouched.
	//
	// GetOrCreateSeries does not mutate s after returning.
	GetOrCreateSeries(ctx context.Context, s *job.Series) (int64, error)

	// Enqueue inserts a new job for the given series/episode.
	//
	// On a (series, episode) collision, Enqueue returns the existing
	// job's id rather than an error — enqueueing is idempotent from the
	// caller's perspective.
	//
	// Enqueue must not mutate nj after returning.
	Enqueue(ctx context.Context, nj *job.NewJob) (int64, error)
}

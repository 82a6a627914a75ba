package pipeline

import "context"

// Cleaner provides an administrative, bulk operation over terminal
// jobs: resurrecting failed jobs that still have retry budget left, so
// an operator can resume a pipeline run after fixing whatever external
// condition caused a batch of failures (a missing tool binary, an
// expired credential).
//
// Cleaner does not participate in normal stage-worker processing.
type Cleaner interface {

	// RetryFailed bulk-transitions every job in stage failed with
	// RetryCount < MaxRetries back to queued, clearing ErrorMessage and
	// resetting Progress to zero. It returns the number of jobs reset.
	RetryFailed(ctx context.Context) (int64, error)
}

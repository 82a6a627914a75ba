package store

import (
	"context"

	"github.com/aoi-sora/animepipe/job"
	"github.com/uptrace/bun"
)

// Cleaner implements pipeline.Cleaner using a SQL backend.
type Cleaner struct {
	db *bun.DB
}

// NewCleaner creates a new SQL-backed Cleaner. The provided *bun.DB
// must already have had InitDB run against it.
func NewCleaner(db *bun.DB) *Cleaner {
	return &Cleaner{db: db}
}

// RetryFailed resets every failed job with retry budget remaining back
// to queued in one bulk UPDATE.
func (c *Cleaner) RetryFailed(ctx context.Context) (int64, error) {
	res, err := c.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("stage = ?", job.Queued.String()).
		Set("error_message = NULL").
		Set("progress = 0.0").
		Where("stage = ? AND retry_count < max_retries", job.Failed.String()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return getAffected(res), nil
}

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aoi-sora/animepipe/job"
	"github.com/uptrace/bun"
)

// Pusher implements pipeline.Pusher using a SQL backend.
type Pusher struct {
	db *bun.DB
}

// NewPusher creates a new SQL-backed Pusher. The provided *bun.DB must
// already have had InitDB run against it.
func NewPusher(db *bun.DB) *Pusher {
	return &Pusher{db: db}
}

// GetOrCreateSeries idempotently inserts a series keyed by catalog id.
func (p *Pusher) GetOrCreateSeries(ctx context.Context, s *job.Series) (int64, error) {
	var existing seriesModel
	err := p.db.NewSelect().
		Model(&existing).
		Where("catalog_id = ?", s.CatalogID).
		Scan(ctx)
	if err == nil {
		return existing.Id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	model := fromSeries(s)
	if _, err := p.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return 0, err
	}
	return model.Id, nil
}

// Enqueue inserts a new job, returning the existing job's id on a
// (series_id, episode) collision instead of failing.
func (p *Pusher) Enqueue(ctx context.Context, nj *job.NewJob) (int64, error) {
	var series seriesModel
	if err := p.db.NewSelect().Model(&series).Where("id = ?", nj.SeriesID).Scan(ctx); err != nil {
		return 0, err
	}

	model := &jobModel{
		SeriesID:  nj.SeriesID,
		CatalogID: series.CatalogID,
		Title:     series.Title,
		Episode:   nj.Episode,
		Priority:  nj.Priority,
		Stage:     job.Queued.String(),
	}
	_, err := p.db.NewInsert().Model(model).Exec(ctx)
	if err == nil {
		return model.Id, nil
	}
	if !isUniqueViolation(err) {
		return 0, err
	}

	var existing jobModel
	if selErr := p.db.NewSelect().
		Model(&existing).
		Where("series_id = ? AND episode = ?", nj.SeriesID, nj.Episode).
		Scan(ctx); selErr != nil {
		return 0, selErr
	}
	return existing.Id, nil
}

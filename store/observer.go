package store

import (
	"context"
	"database/sql"
	"errors"

	pipeline "github.com/aoi-sora/animepipe"
	"github.com/aoi-sora/animepipe/job"
	"github.com/uptrace/bun"
)

// Observer implements pipeline.Observer using a SQL backend.
type Observer struct {
	db *bun.DB
}

// NewObserver creates a new SQL-backed Observer. The provided *bun.DB
// must already have had InitDB run against it.
func NewObserver(db *bun.DB) *Observer {
	return &Observer{db: db}
}

// GetJob retrieves a job by id.
func (o *Observer) GetJob(ctx context.Context, id int64) (*job.Job, error) {
	var m jobModel
	err := o.db.NewSelect().Model(&m).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m.toJob()
}

// ListJobs returns up to limit jobs filtered by stage, ordered
// (priority DESC, created_at ASC).
func (o *Observer) ListJobs(ctx context.Context, stage job.Stage, limit int) ([]*job.Job, error) {
	var models []*jobModel
	query := o.db.NewSelect().Model(&models).Order("priority DESC", "created_at ASC")
	if stage != job.Unknown {
		query.Where("stage = ?", stage.String())
	}
	if limit > 0 {
		query.Limit(limit)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]*job.Job, 0, len(models))
	for _, m := range models {
		j, err := m.toJob()
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, nil
}

// GetSeries retrieves a series by its catalog id.
func (o *Observer) GetSeries(ctx context.Context, catalogID int64) (*job.Series, error) {
	var m seriesModel
	err := o.db.NewSelect().Model(&m).Where("catalog_id = ?", catalogID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m.toSeries(), nil
}

// GetSelection retrieves the cached title selection for a series.
func (o *Observer) GetSelection(ctx context.Context, seriesID int64) (*job.Selection, error) {
	var m selectionModel
	err := o.db.NewSelect().Model(&m).Where("series_id = ?", seriesID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m.toSelection(), nil
}

// ListUnselectedSeries returns every series without a corresponding
// selections row, via a NOT EXISTS anti-join.
func (o *Observer) ListUnselectedSeries(ctx context.Context) ([]*job.Series, error) {
	var models []*seriesModel
	err := o.db.NewSelect().
		Model(&models).
		Where("NOT EXISTS (SELECT 1 FROM selections WHERE selections.series_id = series.id)").
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*job.Series, 0, len(models))
	for _, m := range models {
		out = append(out, m.toSeries())
	}
	return out, nil
}

// GetStats returns job counts grouped by stage.
func (o *Observer) GetStats(ctx context.Context) (*pipeline.Stats, error) {
	var rows []struct {
		Stage string
		Count int64
	}
	if err := o.db.NewSelect().
		Model((*jobModel)(nil)).
		ColumnExpr("stage, count(*) as count").
		Group("stage").
		Scan(ctx, &rows); err != nil {
		return nil, err
	}

	stats := &pipeline.Stats{}
	for _, r := range rows {
		stats.Total += r.Count
		switch r.Stage {
		case job.Queued.String():
			stats.Queued = r.Count
		case job.Downloading.String():
			stats.Downloading = r.Count
		case job.Downloaded.String():
			stats.Downloaded = r.Count
		case job.Transcribing.String():
			stats.Transcribing = r.Count
		case job.Transcribed.String():
			stats.Transcribed = r.Count
		case job.Tokenizing.String():
			stats.Tokenizing = r.Count
		case job.Tokenized.String():
			stats.Tokenized = r.Count
		case job.Analyzing.String():
			stats.Analyzing = r.Count
		case job.Complete.String():
			stats.Complete = r.Count
		case job.Failed.String():
			stats.Failed = r.Count
		}
	}
	return stats, nil
}

package store

import (
	"context"
	"time"

	pipeline "github.com/aoi-sora/animepipe"
	"github.com/aoi-sora/animepipe/job"
	"github.com/uptrace/bun"
)

// Puller implements pipeline.Puller using a SQL backend.
//
// DequeueAdvance performs atomic state transitions using a single
// UPDATE ... WHERE id IN (subquery) RETURNING statement, so that two
// callers racing to dequeue the same candidate cannot both win it,
// generalized to an arbitrary (from, to) stage edge chosen by the
// caller.
type Puller struct {
	db *bun.DB
}

// NewPuller creates a new SQL-backed Puller. The provided *bun.DB must
// already have had InitDB run against it.
func NewPuller(db *bun.DB) *Puller {
	return &Puller{db: db}
}

// DequeueAdvance selects the highest-priority, oldest eligible job in
// stage from (optionally restricted to one series), atomically
// transitions it to stage to, and returns the updated snapshot.
func (p *Puller) DequeueAdvance(ctx context.Context, from, to job.Stage, seriesID *int64) (*job.Job, error) {
	now := time.Now()
	subQuery := p.db.NewSelect().
		Model((*jobModel)(nil)).
		Column("id").
		Where("stage = ?", from.String()).
		Order("priority DESC", "created_at ASC").
		Limit(1)
	if seriesID != nil {
		subQuery.Where("series_id = ?", *seriesID)
	}

	var updated []*jobModel
	err := p.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("stage = ?", to.String()).
		Set("started_at = ?", now).
		Set("updated_at = ?", now).
		Where("id IN (?)", subQuery).
		Returning("*").
		Scan(ctx, &updated)
	if err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, pipeline.ErrQueueEmpty
	}
	return updated[0].toJob()
}

// UpdateStage transitions id to stage unconditionally.
func (p *Puller) UpdateStage(ctx context.Context, id int64, stage job.Stage) error {
	now := time.Now()
	query := p.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("stage = ?", stage.String()).
		Set("updated_at = ?", now)
	if stage == job.Complete {
		query.Set("completed_at = ?", now)
	}
	res, err := query.Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if !isAffected(res) {
		return pipeline.ErrJobLost
	}
	return nil
}

// UpdateStageWithError transitions id to stage and records msg as its
// error message.
func (p *Puller) UpdateStageWithError(ctx context.Context, id int64, stage job.Stage, msg string) error {
	res, err := p.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("stage = ?", stage.String()).
		Set("error_message = ?", msg).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if !isAffected(res) {
		return pipeline.ErrJobLost
	}
	return nil
}

// UpdateMetadata writes only the non-nil fields of m.
func (p *Puller) UpdateMetadata(ctx context.Context, id int64, m *job.Metadata) error {
	query := p.db.NewUpdate().Model((*jobModel)(nil))
	dirty := false

	set := func(col string, val any) {
		query.Set(col+" = ?", val)
		dirty = true
	}
	if m.VideoPath != nil {
		set("video_path", *m.VideoPath)
	}
	if m.TranscriptPath != nil {
		set("transcript_path", *m.TranscriptPath)
	}
	if m.TokensPath != nil {
		set("tokens_path", *m.TokensPath)
	}
	if m.AnalysisPath != nil {
		set("analysis_path", *m.AnalysisPath)
	}
	if m.DurationSeconds != nil {
		set("duration_seconds", *m.DurationSeconds)
	}
	if m.VideoSizeBytes != nil {
		set("video_size_bytes", *m.VideoSizeBytes)
	}
	if m.AudioSizeBytes != nil {
		set("audio_size_bytes", *m.AudioSizeBytes)
	}
	if m.TranscriptSizeBytes != nil {
		set("transcript_size_bytes", *m.TranscriptSizeBytes)
	}
	if m.TokensSizeBytes != nil {
		set("tokens_size_bytes", *m.TokensSizeBytes)
	}
	if m.WordCount != nil {
		set("word_count", *m.WordCount)
	}
	if m.TokenCount != nil {
		set("token_count", *m.TokenCount)
	}
	if !dirty {
		return nil
	}
	query.Set("updated_at = ?", time.Now())
	_, err := query.Where("id = ?", id).Exec(ctx)
	return err
}

// UpdateProgress sets progress and, if newStage is non-nil, stage.
func (p *Puller) UpdateProgress(ctx context.Context, id int64, progress float64, newStage *job.Stage) error {
	query := p.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("progress = ?", progress).
		Set("updated_at = ?", time.Now())
	if newStage != nil {
		query.Set("stage = ?", newStage.String())
	}
	_, err := query.Where("id = ?", id).Exec(ctx)
	return err
}

// MarkFileDeleted sets the video_deleted or audio_deleted flag.
func (p *Puller) MarkFileDeleted(ctx context.Context, id int64, kind job.FileKind) error {
	column := "video_deleted"
	if kind == job.AudioFile {
		column = "audio_deleted"
	}
	_, err := p.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set(column+" = ?", true).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// IncrementRetry increments retry_count by one.
func (p *Puller) IncrementRetry(ctx context.Context, id int64) error {
	_, err := p.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("retry_count = retry_count + 1").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// CacheSelection upserts a title-selection decision for a series.
func (p *Puller) CacheSelection(ctx context.Context, s *job.Selection) error {
	model := &selectionModel{
		SeriesID:      s.SeriesID,
		QueryTitle:    s.QueryTitle,
		SelectedIndex: s.SelectedIndex,
		SelectedTitle: s.SelectedTitle,
		Confidence:    string(s.Confidence),
		Reason:        s.Reason,
		CreatedAt:     time.Now(),
	}
	_, err := p.db.NewInsert().
		Model(model).
		On("CONFLICT (series_id) DO UPDATE").
		Set("query_title = EXCLUDED.query_title").
		Set("selected_index = EXCLUDED.selected_index").
		Set("selected_title = EXCLUDED.selected_title").
		Set("confidence = EXCLUDED.confidence").
		Set("reason = EXCLUDED.reason").
		Set("created_at = EXCLUDED.created_at").
		Exec(ctx)
	return err
}

// CompleteEpisode increments episodes_processed and, once it reaches
// total_episode_count, flips processing_status to completed. A series
// with an unknown total_episode_count is left at StatusProcessing
// indefinitely; nothing in the catalog ever reports it complete.
func (p *Puller) CompleteEpisode(ctx context.Context, seriesID int64) error {
	now := time.Now()
	_, err := p.db.NewUpdate().
		Model((*seriesModel)(nil)).
		Set("episodes_processed = episodes_processed + 1").
		Set("processing_status = ?", job.StatusProcessing.String()).
		Set("updated_at = ?", now).
		Where("id = ?", seriesID).
		Exec(ctx)
	if err != nil {
		return err
	}
	_, err = p.db.NewUpdate().
		Model((*seriesModel)(nil)).
		Set("processing_status = ?", job.StatusCompleted.String()).
		Set("updated_at = ?", now).
		Where("id = ? AND total_episode_count IS NOT NULL AND episodes_processed >= total_episode_count", seriesID).
		Exec(ctx)
	return err
}

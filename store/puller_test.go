package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	pipeline "github.com/aoi-sora/animepipe"
	"github.com/aoi-sora/animepipe/job"
)

func seedJob(t *testing.T, ctx context.Context, pusher *Pusher, catalogID int64, episode uint32) (seriesID, jobID int64) {
	t.Helper()
	seriesID, err := pusher.GetOrCreateSeries(ctx, &job.Series{CatalogID: catalogID, Title: "Bocchi the Rock!"})
	if err != nil {
		t.Fatalf("GetOrCreateSeries: %v", err)
	}
	jobID, err = pusher.Enqueue(ctx, &job.NewJob{SeriesID: seriesID, Episode: episode})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	return seriesID, jobID
}

func TestDequeueAdvanceTransitionsStage(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	pusher := NewPusher(db)
	puller := NewPuller(db)

	_, jobID := seedJob(t, ctx, pusher, 1, 1)

	j, err := puller.DequeueAdvance(ctx, job.Queued, job.Downloading, nil)
	if err != nil {
		t.Fatalf("DequeueAdvance: %v", err)
	}
	if j.Id != jobID {
		t.Errorf("DequeueAdvance returned job %d, want %d", j.Id, jobID)
	}
	if j.Stage != job.Downloading {
		t.Errorf("Stage = %v, want %v", j.Stage, job.Downloading)
	}
	if j.StartedAt == nil {
		t.Error("StartedAt not set by DequeueAdvance")
	}
}

func TestDequeueAdvanceEmptyQueue(t *testing.T) {
	db := openTestDB(t)
	puller := NewPuller(db)

	_, err := puller.DequeueAdvance(context.Background(), job.Queued, job.Downloading, nil)
	if !errors.Is(err, pipeline.ErrQueueEmpty) {
		t.Errorf("DequeueAdvance on empty queue = %v, want ErrQueueEmpty", err)
	}
}

func TestDequeueAdvanceIsRaceSafe(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	pusher := NewPusher(db)
	puller := NewPuller(db)

	seedJob(t, ctx, pusher, 1, 1)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := puller.DequeueAdvance(ctx, job.Queued, job.Downloading, nil)
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			} else if !errors.Is(err, pipeline.ErrQueueEmpty) {
				t.Errorf("DequeueAdvance: %v", err)
			}
		}()
	}
	wg.Wait()
	if winners != 1 {
		t.Errorf("DequeueAdvance let %d callers win the same row, want exactly 1", winners)
	}
}

func TestDequeueAdvanceSeriesFilter(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	pusher := NewPusher(db)
	puller := NewPuller(db)

	seriesA, _ := seedJob(t, ctx, pusher, 1, 1)
	seedJob(t, ctx, pusher, 2, 1)

	other := seriesA + 1000
	if _, err := puller.DequeueAdvance(ctx, job.Queued, job.Downloading, &other); !errors.Is(err, pipeline.ErrQueueEmpty) {
		t.Fatalf("DequeueAdvance with unmatched series filter = %v, want ErrQueueEmpty", err)
	}

	j, err := puller.DequeueAdvance(ctx, job.Queued, job.Downloading, &seriesA)
	if err != nil {
		t.Fatalf("DequeueAdvance with matching series filter: %v", err)
	}
	if j.SeriesID != seriesA {
		t.Errorf("DequeueAdvance returned job from series %d, want %d", j.SeriesID, seriesA)
	}
}

func TestUpdateStageUnconditional(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	pusher := NewPusher(db)
	puller := NewPuller(db)
	observer := NewObserver(db)

	_, jobID := seedJob(t, ctx, pusher, 1, 1)

	if err := puller.UpdateStage(ctx, jobID, job.Complete); err != nil {
		t.Fatalf("UpdateStage: %v", err)
	}
	j, err := observer.GetJob(ctx, jobID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if j.Stage != job.Complete {
		t.Errorf("Stage = %v, want %v", j.Stage, job.Complete)
	}
	if j.CompletedAt == nil {
		t.Error("CompletedAt not set on transition to Complete")
	}
}

func TestUpdateStageMissingJob(t *testing.T) {
	db := openTestDB(t)
	puller := NewPuller(db)

	err := puller.UpdateStage(context.Background(), 999999, job.Complete)
	if !errors.Is(err, pipeline.ErrJobLost) {
		t.Errorf("UpdateStage on missing job = %v, want ErrJobLost", err)
	}
}

func TestUpdateMetadataOnlyWritesNonNilFields(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	pusher := NewPusher(db)
	puller := NewPuller(db)
	observer := NewObserver(db)

	_, jobID := seedJob(t, ctx, pusher, 1, 1)

	path := "/data/videos/1/episodes/bocchi_ep001.mp4"
	size := uint64(123456)
	if err := puller.UpdateMetadata(ctx, jobID, &job.Metadata{VideoPath: &path, VideoSizeBytes: &size}); err != nil {
		t.Fatalf("UpdateMetadata: %v", err)
	}

	j, err := observer.GetJob(ctx, jobID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if j.VideoPath == nil || *j.VideoPath != path {
		t.Errorf("VideoPath = %v, want %q", j.VideoPath, path)
	}
	if j.VideoSizeBytes == nil || *j.VideoSizeBytes != size {
		t.Errorf("VideoSizeBytes = %v, want %d", j.VideoSizeBytes, size)
	}
	if j.TranscriptPath != nil {
		t.Errorf("TranscriptPath = %v, want nil", j.TranscriptPath)
	}
}

func TestCacheSelectionUpserts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	pusher := NewPusher(db)
	puller := NewPuller(db)
	observer := NewObserver(db)

	seriesID, err := pusher.GetOrCreateSeries(ctx, &job.Series{CatalogID: 1, Title: "Oshi no Ko"})
	if err != nil {
		t.Fatalf("GetOrCreateSeries: %v", err)
	}

	if err := puller.CacheSelection(ctx, &job.Selection{
		SeriesID:      seriesID,
		QueryTitle:    "Oshi no Ko",
		SelectedIndex: 0,
		SelectedTitle: "Oshi no Ko",
		Confidence:    job.ConfidenceHigh,
	}); err != nil {
		t.Fatalf("CacheSelection: %v", err)
	}

	reason := "renamed by catalog"
	if err := puller.CacheSelection(ctx, &job.Selection{
		SeriesID:      seriesID,
		QueryTitle:    "Oshi no Ko",
		SelectedIndex: 1,
		SelectedTitle: "[Oshi No Ko]",
		Confidence:    job.ConfidenceMedium,
		Reason:        &reason,
	}); err != nil {
		t.Fatalf("CacheSelection (update): %v", err)
	}

	sel, err := observer.GetSelection(ctx, seriesID)
	if err != nil {
		t.Fatalf("GetSelection: %v", err)
	}
	if sel.SelectedTitle != "[Oshi No Ko]" || sel.Confidence != job.ConfidenceMedium {
		t.Errorf("GetSelection returned stale row: %+v", sel)
	}
}

func TestCompleteEpisodeFlipsStatusAtTotal(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	pusher := NewPusher(db)
	puller := NewPuller(db)
	observer := NewObserver(db)

	total := uint32(2)
	seriesID, err := pusher.GetOrCreateSeries(ctx, &job.Series{CatalogID: 1, Title: "Vinland Saga", TotalEpisodeCount: &total})
	if err != nil {
		t.Fatalf("GetOrCreateSeries: %v", err)
	}

	if err := puller.CompleteEpisode(ctx, seriesID); err != nil {
		t.Fatalf("CompleteEpisode (1/2): %v", err)
	}
	s, err := observer.GetSeries(ctx, 1)
	if err != nil {
		t.Fatalf("GetSeries: %v", err)
	}
	if s.ProcessingStatus != job.StatusProcessing {
		t.Errorf("ProcessingStatus after 1/2 = %v, want %v", s.ProcessingStatus, job.StatusProcessing)
	}

	if err := puller.CompleteEpisode(ctx, seriesID); err != nil {
		t.Fatalf("CompleteEpisode (2/2): %v", err)
	}
	s, err = observer.GetSeries(ctx, 1)
	if err != nil {
		t.Fatalf("GetSeries: %v", err)
	}
	if s.ProcessingStatus != job.StatusCompleted {
		t.Errorf("ProcessingStatus after 2/2 = %v, want %v", s.ProcessingStatus, job.StatusCompleted)
	}
	if s.EpisodesProcessed != 2 {
		t.Errorf("EpisodesProcessed = %d, want 2", s.EpisodesProcessed)
	}
}

func TestUpdateProgressAndOptionalStage(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	pusher := NewPusher(db)
	puller := NewPuller(db)
	observer := NewObserver(db)

	_, jobID := seedJob(t, ctx, pusher, 1, 1)

	if err := puller.UpdateProgress(ctx, jobID, 0.5, nil); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	j, err := observer.GetJob(ctx, jobID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if j.Progress != 0.5 {
		t.Errorf("Progress = %v, want 0.5", j.Progress)
	}
	if j.Stage != job.Queued {
		t.Errorf("Stage = %v, want unchanged %v", j.Stage, job.Queued)
	}

	stage := job.Downloading
	if err := puller.UpdateProgress(ctx, jobID, 1.0, &stage); err != nil {
		t.Fatalf("UpdateProgress with stage: %v", err)
	}
	j, err = observer.GetJob(ctx, jobID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if j.Stage != job.Downloading {
		t.Errorf("Stage = %v, want %v", j.Stage, job.Downloading)
	}
}

func TestMarkFileDeletedSetsFlags(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	pusher := NewPusher(db)
	puller := NewPuller(db)
	observer := NewObserver(db)

	_, jobID := seedJob(t, ctx, pusher, 1, 1)

	if err := puller.MarkFileDeleted(ctx, jobID, job.VideoFile); err != nil {
		t.Fatalf("MarkFileDeleted(video): %v", err)
	}
	j, err := observer.GetJob(ctx, jobID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if !j.VideoDeleted {
		t.Error("VideoDeleted = false, want true")
	}
	if j.AudioDeleted {
		t.Error("AudioDeleted = true, want false until marked")
	}

	if err := puller.MarkFileDeleted(ctx, jobID, job.AudioFile); err != nil {
		t.Fatalf("MarkFileDeleted(audio): %v", err)
	}
	j, err = observer.GetJob(ctx, jobID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if !j.AudioDeleted {
		t.Error("AudioDeleted = false, want true")
	}
}

func TestCompleteEpisodeFlipsStatusAtTotal_SecondSeries(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	pusher := NewPusher(db)
	puller := NewPuller(db)
	observer := NewObserver(db)

	total := uint32(2)
	seriesID, err := pusher.GetOrCreateSeries(ctx, &job.Series{
		CatalogID:         7,
		Title:             "Sousou no Frieren",
		TotalEpisodeCount: &total,
	})
	if err != nil {
		t.Fatalf("GetOrCreateSeries: %v", err)
	}

	if err := puller.CompleteEpisode(ctx, seriesID); err != nil {
		t.Fatalf("CompleteEpisode: %v", err)
	}
	s, err := observer.GetSeries(ctx, 7)
	if err != nil {
		t.Fatalf("GetSeries: %v", err)
	}
	if s.EpisodesProcessed != 1 {
		t.Errorf("EpisodesProcessed = %d, want 1", s.EpisodesProcessed)
	}
	if s.ProcessingStatus != job.StatusProcessing {
		t.Errorf("ProcessingStatus = %v, want %v", s.ProcessingStatus, job.StatusProcessing)
	}

	if err := puller.CompleteEpisode(ctx, seriesID); err != nil {
		t.Fatalf("CompleteEpisode (second): %v", err)
	}
	s, err = observer.GetSeries(ctx, 7)
	if err != nil {
		t.Fatalf("GetSeries: %v", err)
	}
	if s.EpisodesProcessed != 2 {
		t.Errorf("EpisodesProcessed = %d, want 2", s.EpisodesProcessed)
	}
	if s.ProcessingStatus != job.StatusCompleted {
		t.Errorf("ProcessingStatus = %v, want %v", s.ProcessingStatus, job.StatusCompleted)
	}
}

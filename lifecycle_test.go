package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aoi-sora/animepipe/job"
)

func TestStageWorkerStartStopLifecycleGuards(t *testing.T) {
	p := newFakePuller()
	handler := func(ctx context.Context, j *job.Job) StageResult {
		return StageResult{Outcome: OutcomeAdvance, NextStage: job.Downloaded}
	}
	w := NewStageWorker(p, handler, &StageWorkerConfig{
		From:         job.Queued,
		To:           job.Downloading,
		Concurrency:  1,
		Queue:        1,
		PollInterval: time.Hour,
	}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.Start(ctx); !errors.Is(err, ErrDoubleStarted) {
		t.Errorf("second Start() = %v, want ErrDoubleStarted", err)
	}

	if err := w.Stop(time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := w.Stop(time.Second); !errors.Is(err, ErrDoubleStopped) {
		t.Errorf("second Stop() = %v, want ErrDoubleStopped", err)
	}
}

func TestStageWorkerStopTimesOutWhenHandlerHangs(t *testing.T) {
	p := newFakePuller(&job.Job{Id: 1, Stage: job.Queued, MaxRetries: 3})

	release := make(chan struct{})
	handler := func(ctx context.Context, j *job.Job) StageResult {
		<-release
		return StageResult{Outcome: OutcomeAdvance, NextStage: job.Downloaded}
	}
	w := NewStageWorker(p, handler, &StageWorkerConfig{
		From:         job.Queued,
		To:           job.Downloading,
		Concurrency:  1,
		Queue:        1,
		PollInterval: time.Millisecond,
	}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer close(release)

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Give the poll loop a chance to pick up the seeded job and block
	// the handler goroutine on release before we ask for a shutdown
	// that can't complete in time.
	time.Sleep(20 * time.Millisecond)

	if err := w.Stop(10 * time.Millisecond); !errors.Is(err, ErrStopTimeout) {
		t.Errorf("Stop() = %v, want ErrStopTimeout while the handler is still blocked", err)
	}
}

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aoi-sora/animepipe/internal"
	"github.com/aoi-sora/animepipe/job"
)

// StageOutcome classifies how a StageHandler's work on a job concluded.
type StageOutcome int

const (
	// OutcomeAdvance means the job is done with this stage and should
	// move to the handler-provided next stage.
	OutcomeAdvance StageOutcome = iota

	// OutcomeRetry means the attempt failed transiently. The job is
	// returned to its input stage immediately (no backoff delay) if
	// retry budget remains, otherwise it is failed.
	OutcomeRetry

	// OutcomeFail means the job must be marked failed immediately,
	// regardless of retry budget. Used for missing preconditions (an
	// absent Title Selection, a video file that vanished) rather than
	// transient tool failures.
	OutcomeFail
)

// StageResult is returned by a StageHandler after processing one job.
type StageResult struct {
	Outcome   StageOutcome
	NextStage job.Stage     // used only when Outcome is OutcomeAdvance
	Metadata  *job.Metadata // optional; persisted before the stage transition
	Err       error         // reason recorded on OutcomeRetry/OutcomeFail

	// Cleanup, if non-nil, runs after the stage transition to NextStage
	// has been durably committed. This is where a handler deletes the
	// artifact the prior stage produced: deletion must only ever happen
	// once the consuming stage's transition is already persisted, so
	// Cleanup cannot run any earlier than this. A Cleanup error is
	// logged and does not affect the job outcome.
	Cleanup func(ctx context.Context) error
}

// StageHandler performs the work for one stage transition (running
// the downloader, the transcriber, …) and reports how it went. It
// must not itself transition the job's stage; StageWorker owns all
// stage-machine bookkeeping, so the handler stays a pure unit of work.
type StageHandler func(ctx context.Context, j *job.Job) StageResult

// AdmissionGate blocks until a job may be dequeued for this stage. It
// is used by the Download stage worker to honor disk-pressure
// pause/resume; every other stage worker is given NoAdmissionGate,
// since downstream stages only reduce disk usage.
type AdmissionGate func(ctx context.Context) error

// NoAdmissionGate never blocks.
func NoAdmissionGate(ctx context.Context) error {
	return nil
}

// StageWorkerConfig configures a StageWorker.
type StageWorkerConfig struct {
	// From is the stage dequeued from; To is the provisional working
	// stage jobs occupy while being processed.
	From, To job.Stage

	Concurrency  int
	Queue        int
	PollInterval time.Duration

	// Gate, if non-nil, is consulted before every dequeue attempt.
	Gate AdmissionGate

	// SeriesFilter, if non-nil, restricts dequeuing to jobs belonging
	// to that series (the downloader binary's --filter-anime-id flag).
	SeriesFilter *int64
}

// StageWorker polls a Puller for jobs in one stage, dispatches them to
// a StageHandler, and applies the handler's verdict: advance, retry,
// or fail. The same generic engine backs every stage; what differs
// per stage is the handler and which (from, to) edge it is bound to.
//
// StageWorker has a strict lifecycle: Start may only be called once;
// Stop gracefully drains in-flight jobs or returns ErrStopTimeout.
type StageWorker struct {
	lcBase
	puller       Puller
	pollTask     internal.TimerTask
	pool         *internal.WorkerPool[*job.Job]
	handler      StageHandler
	gate         AdmissionGate
	from, to     job.Stage
	interval     time.Duration
	seriesFilter *int64
	log          *slog.Logger
}

// NewStageWorker creates a StageWorker. The worker is not started
// automatically; call Start.
func NewStageWorker(puller Puller, handler StageHandler, cfg *StageWorkerConfig, log *slog.Logger) *StageWorker {
	gate := cfg.Gate
	if gate == nil {
		gate = NoAdmissionGate
	}
	return &StageWorker{
		puller:       puller,
		pool:         internal.NewWorkerPool[*job.Job](cfg.Concurrency, cfg.Queue, log),
		handler:      handler,
		gate:         gate,
		from:         cfg.From,
		to:           cfg.To,
		interval:     cfg.PollInterval,
		seriesFilter: cfg.SeriesFilter,
		log:          log,
	}
}

func (w *StageWorker) poll(ctx context.Context) {
	if err := w.gate(ctx); err != nil {
		if ctx.Err() == nil {
			w.log.Error("admission gate error", "err", err)
		}
		return
	}
	j, err := w.puller.DequeueAdvance(ctx, w.from, w.to, w.seriesFilter)
	if err != nil {
		if !errors.Is(err, ErrQueueEmpty) {
			w.log.Error("dequeue failed", "err", err)
		}
		return
	}
	if !w.pool.Push(j) {
		w.log.Debug("job push interrupted via shutdown", "id", j.Id)
	}
}

func (w *StageWorker) handle(ctx context.Context, j *job.Job) {
	result := w.handler(ctx, j)
	switch result.Outcome {
	case OutcomeAdvance:
		if result.Metadata != nil {
			if err := w.puller.UpdateMetadata(ctx, j.Id, result.Metadata); err != nil {
				w.log.Error("cannot update metadata", "id", j.Id, "err", err)
			}
		}
		if err := w.puller.UpdateStage(ctx, j.Id, result.NextStage); err != nil {
			w.log.Error("cannot advance job", "id", j.Id, "err", err)
			return
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(ctx); err != nil {
				w.log.Warn("cleanup failed", "id", j.Id, "err", err)
			}
		}
	case OutcomeRetry:
		w.retryOrFail(ctx, j, result.Err)
	case OutcomeFail:
		w.fail(ctx, j, result.Err)
	}
}

func (w *StageWorker) retryOrFail(ctx context.Context, j *job.Job, cause error) {
	if j.RetryCount >= j.MaxRetries {
		w.fail(ctx, j, cause)
		return
	}
	if err := w.puller.IncrementRetry(ctx, j.Id); err != nil {
		w.log.Error("cannot increment retry", "id", j.Id, "err", err)
	}
	if err := w.puller.UpdateStage(ctx, j.Id, w.from); err != nil {
		w.log.Error("cannot requeue job", "id", j.Id, "err", err)
	}
}

func (w *StageWorker) fail(ctx context.Context, j *job.Job, cause error) {
	msg := "failed"
	if cause != nil {
		msg = cause.Error()
	}
	if err := w.puller.UpdateStageWithError(ctx, j.Id, job.Failed, msg); err != nil {
		w.log.Error("cannot fail job", "id", j.Id, "err", err)
	}
}

// Start begins background polling and processing of jobs in this
// stage. Start returns ErrDoubleStarted if already started.
func (w *StageWorker) Start(ctx context.Context) error {
	if err := w.tryStart(); err != nil {
		return err
	}
	w.pool.Start(ctx, w.handle)
	w.pollTask.Start(ctx, w.poll, w.interval)
	return nil
}

func (w *StageWorker) doStop() internal.DoneChan {
	first := w.pollTask.Stop()
	second := w.pool.Stop()
	return internal.Combine(first, second)
}

// Stop initiates graceful shutdown: stops polling, cancels the pool,
// and waits for in-flight handlers to finish or the timeout to expire.
func (w *StageWorker) Stop(timeout time.Duration) error {
	return w.tryStop(timeout, w.doStop)
}

// RunUntilDrained dequeues and processes jobs in this stage, up to
// Concurrency at a time, until the input stage reports empty and no
// in-flight handler remains, then returns. It does not use the
// periodic poll timer: it dequeues as fast as the pool can absorb
// work.
//
// A handler that returns OutcomeRetry puts its job back into the input
// stage, possibly after the dequeue loop has already observed it as
// empty. RunUntilDrained therefore drains the pool and goes around
// again, finishing only when a pass that pushed no work at all still
// finds the input stage empty.
//
// This is the entry point worker binaries use for a best-effort,
// run-to-completion pass over the queue, as opposed to Start/Stop's
// persistent background-service lifecycle.
func (w *StageWorker) RunUntilDrained(ctx context.Context) error {
	for {
		w.pool.Start(ctx, w.handle)
		pushed := 0
		var runErr error
		for {
			if err := w.gate(ctx); err != nil {
				runErr = err
				break
			}
			j, err := w.puller.DequeueAdvance(ctx, w.from, w.to, w.seriesFilter)
			if errors.Is(err, ErrQueueEmpty) {
				break
			}
			if err != nil {
				runErr = err
				break
			}
			if !w.pool.Push(j) {
				break
			}
			pushed++
		}
		<-w.pool.Drain()
		if runErr != nil {
			return runErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if pushed == 0 {
			return nil
		}
	}
}

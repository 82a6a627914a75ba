package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/aoi-sora/animepipe/internal"
	"github.com/aoi-sora/animepipe/job"
)

// workingStages maps each working (in-progress) stage back to the
// input stage a stuck job in it should be returned to.
var workingStages = map[job.Stage]job.Stage{
	job.Downloading:  job.Queued,
	job.Transcribing: job.Downloaded,
	job.Tokenizing:   job.Transcribed,
	job.Analyzing:    job.Tokenized,
}

// ReconcilerConfig configures a Reconciler.
//
// StuckAfter is how long a job may remain in a working stage before
// it is considered orphaned (its owning worker crashed or was killed
// without cleaning up). Interval is how often the scan runs.
type ReconcilerConfig struct {
	StuckAfter time.Duration
	Interval   time.Duration
}

// Reconciler periodically scans for jobs that have been sitting in a
// working stage (downloading, transcribing, …) far longer than any
// real tool invocation should take, and resets them back to their
// input stage so they become eligible for a fresh attempt.
//
// Jobs carry no visibility timeout — a job's presence in a working
// stage is itself the ownership marker (see Puller) — so recovering
// orphans left behind by a crashed worker is this explicit,
// best-effort scan rather than an automatic lease expiry.
type Reconciler struct {
	lcBase
	observer   Observer
	puller     Puller
	task       internal.TimerTask
	log        *slog.Logger
	stuckAfter time.Duration
	interval   time.Duration
}

// NewReconciler creates a Reconciler. The worker is not started
// automatically; call Start.
func NewReconciler(observer Observer, puller Puller, cfg *ReconcilerConfig, log *slog.Logger) *Reconciler {
	return &Reconciler{
		observer:   observer,
		puller:     puller,
		log:        log,
		stuckAfter: cfg.StuckAfter,
		interval:   cfg.Interval,
	}
}

// Scan runs a single reconciliation pass immediately, without starting
// the periodic background task. Used by queuectl's one-shot reconcile
// subcommand, where a persistent Start/Stop lifecycle would outlive
// the CLI invocation for no benefit.
func (r *Reconciler) Scan(ctx context.Context) {
	r.scan(ctx)
}

func (r *Reconciler) scan(ctx context.Context) {
	var reset int
	for working, input := range workingStages {
		jobs, err := r.observer.ListJobs(ctx, working, 0)
		if err != nil {
			r.log.Error("reconciler list failed", "stage", working, "err", err)
			continue
		}
		for _, j := range jobs {
			if j.StartedAt == nil || time.Since(*j.StartedAt) < r.stuckAfter {
				continue
			}
			if err := r.puller.UpdateStage(ctx, j.Id, input); err != nil {
				r.log.Error("reconciler reset failed", "id", j.Id, "err", err)
				continue
			}
			r.log.Warn("reconciled orphaned job", "id", j.Id, "from", working.String(), "to", input.String())
			reset++
		}
	}
	if reset > 0 {
		r.log.Info("reconciliation pass complete", "reset", reset)
	}
}

// Start begins periodic orphan reconciliation. Start returns
// ErrDoubleStarted if already started.
func (r *Reconciler) Start(ctx context.Context) error {
	if err := r.tryStart(); err != nil {
		return err
	}
	r.task.Start(ctx, r.scan, r.interval)
	return nil
}

// Stop terminates the background reconciliation task, waiting until
// it finishes or the timeout expires.
func (r *Reconciler) Stop(timeout time.Duration) error {
	return r.tryStop(timeout, r.task.Stop)
}

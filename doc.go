// Package pipeline coordinates a multi-stage media processing pipeline:
// for each series discovered from a remote catalog, per-episode jobs
// advance through a fixed sequence of stages (download, transcribe,
// tokenize, analyze), each backed by an external tool invocation.
//
// # Overview
//
// pipeline separates the durable job model (job.Job, job.Series) from
// the storage layer that mutates it (the store package's Pusher,
// Puller, Observer and Cleaner implementations) and the stage workers
// that drive jobs through it (StageWorker).
//
// The package does not mandate any particular storage backend; store
// provides the bun/SQLite implementation this system ships.
//
// # Stage Machine
//
// Jobs follow this lifecycle:
//
//	queued -> downloading -> downloaded -> transcribing -> transcribed
//	       -> tokenizing -> tokenized -> analyzing -> complete
//
// Both downloading and transcribing may fall back to their input stage
// on a retryable failure, or advance to failed once retries (bounded by
// MaxRetries) are exhausted. failed jobs may be reset to queued by an
// operator's RetryFailed call, provided retry_count < max_retries.
//
// Terminal stages (complete, failed) are never re-dequeued.
//
// # Retry Policy
//
// Unlike a delayed-backoff queue, a failed stage attempt is retried
// immediately: RetryCount is incremented and the job becomes eligible
// again at its input stage on the very next dequeue, ordered by
// (priority DESC, created_at ASC). There is no scheduled delay, because
// the source of truth here is a disk-bound batch pipeline, not a
// latency-sensitive task queue.
//
// # Admission
//
// StageWorker pools for the download stage consult an Admission
// Controller (see admission.go) before every dequeue; when disk usage
// has crossed the pause threshold, the worker sleeps and polls until
// the resume threshold is crossed. Downstream stages are never
// throttled, since they only reduce disk usage.
//
// # Interfaces
//
// This package defines:
//
//	Pusher   — enqueue jobs and series
//	Puller   — dequeue-and-advance, stage/metadata/error mutation
//	Observer — inspect queue and series state
//	Cleaner  — bulk-reset failed jobs eligible for retry
//
// These interfaces allow storage implementations to be plugged in
// without coupling stage-worker logic to a specific database.
//
// # Concurrency Model
//
// StageWorker uses a bounded internal queue and a fixed-size worker
// pool (internal.WorkerPool), fed by a periodic dequeue task
// (internal.TimerTask). Multiple stage worker pools run independently
// within a process, sharing the store (whose dequeue is a single
// atomic statement) and the disk monitor (whose cache sits behind its
// own mutex).
//
// Shutdown is graceful: in-flight handlers are allowed to finish,
// subject to a configurable timeout.
//
// # Storage Expectations
//
// Implementations of Puller must ensure atomic state transitions and
// durable persistence. pipeline assumes storage provides reliable
// write semantics; behavior under concurrent writers depends on the
// chosen backend.
package pipeline

// Package store provides a bun-based SQL storage implementation of the
// job pipeline's durable queue.
//
// # Overview
//
// The store backend provides:
//
//   - durable persistence of series, jobs and title-selection decisions
//   - atomic stage transitions via a single UPDATE ... RETURNING statement
//   - dedup-on-conflict enqueue and get-or-create series lookup
//   - sparse metadata updates and bulk failed-job retry
//
// It is built on github.com/uptrace/bun over modernc.org/sqlite, a
// pure-Go SQLite driver requiring no cgo.
//
// # Concurrency Model
//
// DequeueAdvance is implemented as a single atomic UPDATE statement with
// a subquery selecting the highest-priority, oldest eligible row, so
// concurrent workers racing for the same candidate cannot both win it.
// No in-process lock is layered on top: serialization happens in the
// database, with busy_timeout absorbing writer contention under
// SQLite's single-writer model.
//
// # Schema
//
// InitDB creates the series, jobs and selections tables (if absent) and
// their supporting indexes, inside a single transaction, gated by
// PRAGMA user_version so the selections table can be added as a
// migration to stores created before it existed. InitDB is idempotent.
//
// # Database Lifecycle
//
// This package does not manage connection pooling or file lifecycle.
// The caller opens and configures *bun.DB (WAL mode, busy_timeout) and
// calls InitDB before use.
package store

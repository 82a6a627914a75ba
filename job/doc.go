// Package job defines the stateful representation of a per-episode work
// item as it advances through the processing pipeline.
//
// A Job is a snapshot of storage state: its Stage, retry bookkeeping,
// artifact paths and sizes are maintained exclusively by the store
// layer. Callers receive Job values from store operations and pass them
// back only to reference an id; mutating a Job in memory does not
// change queue state.
package job

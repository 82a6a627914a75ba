// Package disk measures on-disk usage of the managed data root and
// answers admission queries for the download stage.
//
// A Monitor walks the root's subdirectory classes (videos, audio,
// transcripts, tokens, analysis) and caches the result for a
// configurable TTL, so stage workers polling on every loop iteration
// don't re-walk the tree on every call. The cache is invalidated
// explicitly by callers after a mutation (a deleted artifact, a
// completed download) that they know changes the answer.
//
// Pause and resume use two distinct thresholds, pause strictly above
// resume, so admission does not oscillate around a single boundary.
package disk

// Package paths centralizes the on-disk layout of the managed data
// root: video, audio, transcript, token and analysis artifacts, the
// title-selection cache, logs and the job database.
//
// Every artifact path under the root is namespaced by a series'
// catalog id and a sanitized, filesystem-safe form of its title, so
// the layout stays legible when browsed directly.
package paths

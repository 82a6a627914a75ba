// Package config loads TOML configuration files for the pipeline's
// worker binaries. Defaults apply a 250/230/200 GB hard/pause/resume
// disk ladder, a 30s check interval and 5s usage-cache TTL, five
// download workers, two transcription workers, and a cleanup policy
// that deletes video and audio after transcription but keeps
// transcripts and tokens.
//
// Unrecognized keys are ignored rather than rejected, so operators can
// carry forward a config file across versions that add new sections.
package config

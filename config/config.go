package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the root configuration structure loaded from a TOML file.
type Config struct {
	Data           DataConfig           `toml:"data"`
	Database       DatabaseConfig       `toml:"database"`
	Logging        LoggingConfig        `toml:"logging"`
	DiskManagement DiskManagementConfig `toml:"disk_management"`
	Tools          ToolsConfig          `toml:"tools"`
	Workers        WorkersConfig        `toml:"workers"`
}

// ToolsConfig names the subprocess binaries invoked at each stage,
// plus the model/language parameters passed to the transcriber.
type ToolsConfig struct {
	DownloaderBinary      string `toml:"downloader_binary"`
	AudioExtractorBinary  string `toml:"audio_extractor_binary"`
	TranscriberBinary     string `toml:"transcriber_binary"`
	TokenizerBinary       string `toml:"tokenizer_binary"`
	AnalyzerBinary        string `toml:"analyzer_binary"`
	SelectorBinary        string `toml:"selector_binary"`
	CandidateFinderBinary string `toml:"candidate_finder_binary"`
	TranscriberModel      string `toml:"transcriber_model"`
	TranscriberLanguage   string `toml:"transcriber_language"`
}

// WorkersConfig controls per-stage concurrency and the subprocess
// deadline applied to every tool invocation. An expired deadline kills
// the subprocess and counts as a retryable failure, so a wedged tool
// cannot hang a worker forever.
type WorkersConfig struct {
	TokenizeConcurrency      int `toml:"tokenize_concurrency"`
	AnalyzeConcurrency       int `toml:"analyze_concurrency"`
	StageTimeoutSeconds      int `toml:"stage_timeout_seconds"`
	PollIntervalMillis       int `toml:"poll_interval_millis"`
	ReconcileStuckMinutes    int `toml:"reconcile_stuck_minutes"`
	ReconcileIntervalMinutes int `toml:"reconcile_interval_minutes"`
}

// DataConfig describes where the managed data tree lives.
type DataConfig struct {
	RootDir string `toml:"root_dir"`
}

// DatabaseConfig describes the embedded database file location,
// relative to Data.RootDir unless absolute.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig controls the logging package's output sinks.
type LoggingConfig struct {
	LogDir       string `toml:"log_dir"`
	DefaultLevel string `toml:"default_level"`
	Console      bool   `toml:"console"`
	File         bool   `toml:"file"`
	JSONFormat   bool   `toml:"json_format"`
}

// DiskManagementConfig controls the disk monitor's thresholds, the
// per-stage worker pool sizes, and the cleanup policy.
type DiskManagementConfig struct {
	HardLimitGB                 uint64        `toml:"hard_limit_gb"`
	PauseThresholdGB            uint64        `toml:"pause_threshold_gb"`
	ResumeThresholdGB           uint64        `toml:"resume_threshold_gb"`
	CheckIntervalSeconds        uint64        `toml:"check_interval_seconds"`
	CacheDurationSeconds        uint64        `toml:"cache_duration_seconds"`
	MaxConcurrentDownloads      int           `toml:"max_concurrent_downloads"`
	MaxConcurrentTranscriptions int           `toml:"max_concurrent_transcriptions"`
	Cleanup                     CleanupConfig `toml:"cleanup"`
}

// CleanupConfig toggles deletion of intermediate artifacts once their
// consumer stage has completed.
type CleanupConfig struct {
	DeleteVideoAfterTranscription     bool `toml:"delete_video_after_transcription"`
	DeleteAudioAfterTranscription     bool `toml:"delete_audio_after_transcription"`
	DeleteTranscriptAfterTokenization bool `toml:"delete_transcript_after_tokenization"`
	DeleteTokensAfterAnalysis         bool `toml:"delete_tokens_after_analysis"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Data: DataConfig{RootDir: "data"},
		Database: DatabaseConfig{
			Path: "jobs.db",
		},
		Logging: LoggingConfig{
			LogDir:       "logs",
			DefaultLevel: "info",
			Console:      true,
			File:         true,
			JSONFormat:   false,
		},
		DiskManagement: DiskManagementConfig{
			HardLimitGB:                 250,
			PauseThresholdGB:            230,
			ResumeThresholdGB:           200,
			CheckIntervalSeconds:        30,
			CacheDurationSeconds:        5,
			MaxConcurrentDownloads:      5,
			MaxConcurrentTranscriptions: 2,
			Cleanup: CleanupConfig{
				DeleteVideoAfterTranscription:     true,
				DeleteAudioAfterTranscription:     true,
				DeleteTranscriptAfterTokenization: false,
				DeleteTokensAfterAnalysis:         false,
			},
		},
		Tools: ToolsConfig{
			DownloaderBinary:      "animdl",
			AudioExtractorBinary:  "ffmpeg",
			TranscriberBinary:     "whisper",
			TokenizerBinary:       "anime-tokenizer",
			AnalyzerBinary:        "anime-analyzer",
			SelectorBinary:        "anime-selector",
			CandidateFinderBinary: "get-anime-candidates",
			TranscriberModel:      "medium",
			TranscriberLanguage:   "ja",
		},
		Workers: WorkersConfig{
			TokenizeConcurrency:      2,
			AnalyzeConcurrency:       1,
			StageTimeoutSeconds:      1800,
			PollIntervalMillis:       500,
			ReconcileStuckMinutes:    60,
			ReconcileIntervalMinutes: 15,
		},
	}
}

// Load reads and parses a TOML configuration file at path. If path
// does not exist, the defaults are returned unmodified. A partial
// file only overrides the keys it sets; all other fields keep their
// default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants Load cannot express through struct tags
// alone, chiefly the pause/resume threshold ordering the disk monitor
// depends on to avoid oscillation.
func (c *Config) Validate() error {
	dm := c.DiskManagement
	if dm.ResumeThresholdGB >= dm.PauseThresholdGB {
		return fmt.Errorf("config: disk_management.resume_threshold_gb (%d) must be less than pause_threshold_gb (%d)", dm.ResumeThresholdGB, dm.PauseThresholdGB)
	}
	return nil
}

// ResolvePath joins a possibly-relative path against Data.RootDir. An
// absolute path is returned unmodified.
func (c *Config) ResolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Data.RootDir, p)
}

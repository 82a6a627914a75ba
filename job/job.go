package job

import "time"

// Job represents a single episode's progress through the processing
// pipeline.
//
// The natural key (SeriesID, Episode) is unique; Id is a surrogate
// assigned at enqueue time. Job instances should be treated as
// snapshots of storage state — mutating fields directly does not
// change the underlying queue state, transitions must be performed
// through the store's Pusher/Puller/Observer/Cleaner interfaces.
//
// Title and TitleEnglish are denormalized from the owning Series at
// enqueue time so stage workers can act on a Job without a join back
// to the series table on every loop iteration.
type Job struct {
	Id       int64
	SeriesID int64
	CatalogID int64

	Title        string
	TitleEnglish *string
	Episode      uint32
	Season       *int32
	Year         *int32

	Stage    Stage
	Progress float64

	CreatedAt   time.Time
	UpdatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time

	ErrorMessage *string
	RetryCount   uint32
	MaxRetries   uint32

	VideoPath    *string
	TranscriptPath *string
	TokensPath   *string
	AnalysisPath *string

	DurationSeconds      *uint32
	VideoSizeBytes       *uint64
	AudioSizeBytes       *uint64
	TranscriptSizeBytes  *uint64
	TokensSizeBytes      *uint64

	WordCount  *uint32
	TokenCount *uint32

	VideoDeleted bool
	AudioDeleted bool

	Priority int32
}

// NewJob carries the fields required to enqueue a single episode.
// Id, Stage, timestamps and retry bookkeeping are assigned by the store.
type NewJob struct {
	SeriesID int64
	Episode  uint32
	Priority int32
}

// Metadata is a sparse update: only non-nil fields are written by
// Puller.UpdateMetadata, as a typed struct rather than a string-built
// query.
type Metadata struct {
	VideoPath           *string
	TranscriptPath      *string
	TokensPath          *string
	AnalysisPath        *string
	DurationSeconds     *uint32
	VideoSizeBytes      *uint64
	AudioSizeBytes      *uint64
	TranscriptSizeBytes *uint64
	TokensSizeBytes     *uint64
	WordCount           *uint32
	TokenCount          *uint32
}

// FileKind identifies an artifact kind for cleanup bookkeeping.
type FileKind uint8

const (
	VideoFile FileKind = iota
	AudioFile
)

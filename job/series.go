package job

import "time"

// ProcessingStatus summarizes a Series' overall progress across its
// episodes, independent of any individual Job's Stage.
type ProcessingStatus uint8

const (
	StatusPending ProcessingStatus = iota
	StatusProcessing
	StatusCompleted
	StatusFailed
)

func (p ProcessingStatus) String() string {
	switch p {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Series is a catalog entry: one title comprising one or more episodes.
// CatalogID is the external catalog's unique identifier and is the
// dedup key used by GetOrCreateSeries.
type Series struct {
	Id        int64
	CatalogID int64

	Title         string
	TitleEnglish  *string
	TitleJapanese *string
	TitleSynonyms []string

	SeriesType        *string
	TotalEpisodeCount *uint32
	AiringStatus      *string

	Season *string
	Year   *int32

	Genres        []string
	ExplicitGenres []string
	Themes        []string
	Demographics  []string
	Studios       []string

	Score      *float64
	ScoredBy   *uint32
	Rank       *uint32
	Popularity *uint32

	Source          *string
	Rating          *string
	DurationMinutes *uint32

	EpisodesProcessed uint32
	ProcessingStatus  ProcessingStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Confidence labels a Selection's reliability.
type Confidence string

const (
	ConfidenceHigh        Confidence = "high"
	ConfidenceMedium      Confidence = "medium"
	ConfidenceLow         Confidence = "low"
	ConfidenceNoCandidate Confidence = "no_candidates"
)

// Selection is a cached title-selection decision for a series: the
// external title chosen by the title-selection helper out of a
// candidate list offered by the catalog search, along with the
// helper's confidence in that choice.
type Selection struct {
	SeriesID      int64
	QueryTitle    string
	SelectedIndex int32
	SelectedTitle string
	Confidence    Confidence
	Reason        *string
	CreatedAt     time.Time
}

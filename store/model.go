package store

import (
	"encoding/json"
	"time"

	"github.com/aoi-sora/animepipe/job"
	"github.com/uptrace/bun"
)

type seriesModel struct {
	bun.BaseModel `bun:"table:series,alias:series"`
	Id            int64 `bun:"id,pk,autoincrement"`
	CatalogID     int64 `bun:"catalog_id,notnull,unique"`

	Title         string `bun:"title,notnull"`
	TitleEnglish  *string `bun:"title_english"`
	TitleJapanese *string `bun:"title_japanese"`
	TitleSynonyms string  `bun:"title_synonyms,notnull,default:'[]'"`

	SeriesType        *string `bun:"series_type"`
	TotalEpisodeCount *uint32 `bun:"total_episode_count"`
	AiringStatus      *string `bun:"airing_status"`

	Season *string `bun:"season"`
	Year   *int32  `bun:"year"`

	Genres         string `bun:"genres,notnull,default:'[]'"`
	ExplicitGenres string `bun:"explicit_genres,notnull,default:'[]'"`
	Themes         string `bun:"themes,notnull,default:'[]'"`
	Demographics   string `bun:"demographics,notnull,default:'[]'"`
	Studios        string `bun:"studios,notnull,default:'[]'"`

	Score      *float64 `bun:"score"`
	ScoredBy   *uint32  `bun:"scored_by"`
	Rank       *uint32  `bun:"rank"`
	Popularity *uint32  `bun:"popularity"`

	Source          *string `bun:"source"`
	Rating          *string `bun:"rating"`
	DurationMinutes *uint32 `bun:"duration_minutes"`

	EpisodesProcessed uint32 `bun:"episodes_processed,notnull,default:0"`
	ProcessingStatus  string `bun:"processing_status,notnull,default:'pending'"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func jsonList(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func parseJSONList(s string) []string {
	var out []string
	if s == "" {
		return nil
	}
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

func seriesStatusToString(s job.ProcessingStatus) string {
	return s.String()
}

func seriesStatusFromString(s string) job.ProcessingStatus {
	switch s {
	case "processing":
		return job.StatusProcessing
	case "completed":
		return job.StatusCompleted
	case "failed":
		return job.StatusFailed
	default:
		return job.StatusPending
	}
}

func (m *seriesModel) toSeries() *job.Series {
	return &job.Series{
		Id:                m.Id,
		CatalogID:         m.CatalogID,
		Title:             m.Title,
		TitleEnglish:      m.TitleEnglish,
		TitleJapanese:     m.TitleJapanese,
		TitleSynonyms:     parseJSONList(m.TitleSynonyms),
		SeriesType:        m.SeriesType,
		TotalEpisodeCount: m.TotalEpisodeCount,
		AiringStatus:      m.AiringStatus,
		Season:            m.Season,
		Year:              m.Year,
		Genres:            parseJSONList(m.Genres),
		ExplicitGenres:    parseJSONList(m.ExplicitGenres),
		Themes:            parseJSONList(m.Themes),
		Demographics:      parseJSONList(m.Demographics),
		Studios:           parseJSONList(m.Studios),
		Score:             m.Score,
		ScoredBy:          m.ScoredBy,
		Rank:              m.Rank,
		Popularity:        m.Popularity,
		Source:            m.Source,
		Rating:            m.Rating,
		DurationMinutes:   m.DurationMinutes,
		EpisodesProcessed: m.EpisodesProcessed,
		ProcessingStatus:  seriesStatusFromString(m.ProcessingStatus),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func fromSeries(s *job.Series) *seriesModel {
	now := time.Now()
	return &seriesModel{
		CatalogID:         s.CatalogID,
		Title:             s.Title,
		TitleEnglish:      s.TitleEnglish,
		TitleJapanese:     s.TitleJapanese,
		TitleSynonyms:     jsonList(s.TitleSynonyms),
		SeriesType:        s.SeriesType,
		TotalEpisodeCount: s.TotalEpisodeCount,
		AiringStatus:      s.AiringStatus,
		Season:            s.Season,
		Year:              s.Year,
		Genres:            jsonList(s.Genres),
		ExplicitGenres:    jsonList(s.ExplicitGenres),
		Themes:            jsonList(s.Themes),
		Demographics:      jsonList(s.Demographics),
		Studios:           jsonList(s.Studios),
		Score:             s.Score,
		ScoredBy:          s.ScoredBy,
		Rank:              s.Rank,
		Popularity:        s.Popularity,
		Source:            s.Source,
		Rating:            s.Rating,
		DurationMinutes:   s.DurationMinutes,
		ProcessingStatus:  "pending",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

type jobModel struct {
	bun.BaseModel `bun:"table:jobs"`
	Id            int64 `bun:"id,pk,autoincrement"`
	SeriesID      int64 `bun:"series_id,notnull"`
	CatalogID     int64 `bun:"catalog_id,notnull"`

	Title        string  `bun:"title,notnull"`
	TitleEnglish *string `bun:"title_english"`
	Episode      uint32  `bun:"episode,notnull"`
	Season       *int32  `bun:"season"`
	Year         *int32  `bun:"year"`

	Stage    string  `bun:"stage,notnull,default:'queued'"`
	Progress float64 `bun:"progress,notnull,default:0"`

	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	StartedAt   *time.Time `bun:"started_at"`
	CompletedAt *time.Time `bun:"completed_at"`

	ErrorMessage *string `bun:"error_message"`
	RetryCount   uint32  `bun:"retry_count,notnull,default:0"`
	MaxRetries   uint32  `bun:"max_retries,notnull,default:3"`

	VideoPath      *string `bun:"video_path"`
	TranscriptPath *string `bun:"transcript_path"`
	TokensPath     *string `bun:"tokens_path"`
	AnalysisPath   *string `bun:"analysis_path"`

	DurationSeconds     *uint32 `bun:"duration_seconds"`
	VideoSizeBytes      *uint64 `bun:"video_size_bytes"`
	AudioSizeBytes      *uint64 `bun:"audio_size_bytes"`
	TranscriptSizeBytes *uint64 `bun:"transcript_size_bytes"`
	TokensSizeBytes     *uint64 `bun:"tokens_size_bytes"`

	WordCount  *uint32 `bun:"word_count"`
	TokenCount *uint32 `bun:"token_count"`

	VideoDeleted bool `bun:"video_deleted,notnull,default:false"`
	AudioDeleted bool `bun:"audio_deleted,notnull,default:false"`

	Priority int32 `bun:"priority,notnull,default:0"`
}

func (m *jobModel) toJob() (*job.Job, error) {
	stage, err := job.ParseStage(m.Stage)
	if err != nil {
		return nil, err
	}
	return &job.Job{
		Id:                  m.Id,
		SeriesID:            m.SeriesID,
		CatalogID:           m.CatalogID,
		Title:               m.Title,
		TitleEnglish:        m.TitleEnglish,
		Episode:             m.Episode,
		Season:              m.Season,
		Year:                m.Year,
		Stage:               stage,
		Progress:            m.Progress,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
		StartedAt:           m.StartedAt,
		CompletedAt:         m.CompletedAt,
		ErrorMessage:        m.ErrorMessage,
		RetryCount:          m.RetryCount,
		MaxRetries:          m.MaxRetries,
		VideoPath:           m.VideoPath,
		TranscriptPath:      m.TranscriptPath,
		TokensPath:          m.TokensPath,
		AnalysisPath:        m.AnalysisPath,
		DurationSeconds:     m.DurationSeconds,
		VideoSizeBytes:      m.VideoSizeBytes,
		AudioSizeBytes:      m.AudioSizeBytes,
		TranscriptSizeBytes: m.TranscriptSizeBytes,
		TokensSizeBytes:     m.TokensSizeBytes,
		WordCount:           m.WordCount,
		TokenCount:          m.TokenCount,
		VideoDeleted:        m.VideoDeleted,
		AudioDeleted:        m.AudioDeleted,
		Priority:            m.Priority,
	}, nil
}

type selectionModel struct {
	bun.BaseModel `bun:"table:selections"`
	SeriesID      int64     `bun:"series_id,pk"`
	QueryTitle    string    `bun:"query_title,notnull"`
	SelectedIndex int32     `bun:"selected_index,notnull"`
	SelectedTitle string    `bun:"selected_title,notnull"`
	Confidence    string    `bun:"confidence,notnull"`
	Reason        *string   `bun:"reason"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (m *selectionModel) toSelection() *job.Selection {
	return &job.Selection{
		SeriesID:      m.SeriesID,
		QueryTitle:    m.QueryTitle,
		SelectedIndex: m.SelectedIndex,
		SelectedTitle: m.SelectedTitle,
		Confidence:    job.Confidence(m.Confidence),
		Reason:        m.Reason,
		CreatedAt:     m.CreatedAt,
	}
}

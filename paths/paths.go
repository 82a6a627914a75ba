package paths

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Tree resolves every artifact path rooted at a single managed data
// directory.
type Tree struct {
	root string
}

// NewTree creates a Tree rooted at root. root is not required to
// exist; call EnsureDirs to create the managed layout.
func NewTree(root string) *Tree {
	return &Tree{root: root}
}

// Root returns the managed data root.
func (t *Tree) Root() string {
	return t.root
}

// VideoDir returns the episodes directory for a series.
func (t *Tree) VideoDir(catalogID int64) string {
	return filepath.Join(t.root, "videos", itoa(catalogID), "episodes")
}

// VideoFile returns the expected video file path for an episode.
// ext should not include the leading dot.
func (t *Tree) VideoFile(catalogID int64, title string, episode uint32, ext string) string {
	return filepath.Join(t.VideoDir(catalogID), episodeFile(title, episode, ext))
}

// AudioDir returns the audio directory for a series.
func (t *Tree) AudioDir(catalogID int64) string {
	return filepath.Join(t.root, "audio", itoa(catalogID))
}

// AudioFile returns the expected extracted-audio file path for an episode.
func (t *Tree) AudioFile(catalogID int64, title string, episode uint32) string {
	return filepath.Join(t.AudioDir(catalogID), episodeFile(title, episode, "wav"))
}

// TranscriptDir returns the transcript directory for a series.
func (t *Tree) TranscriptDir(catalogID int64) string {
	return filepath.Join(t.root, "transcripts", itoa(catalogID))
}

// TranscriptFile returns the expected transcript file path for an episode.
func (t *Tree) TranscriptFile(catalogID int64, title string, episode uint32) string {
	return filepath.Join(t.TranscriptDir(catalogID), episodeFile(title, episode, "txt"))
}

// TokensDir returns the tokens directory for a series.
func (t *Tree) TokensDir(catalogID int64) string {
	return filepath.Join(t.root, "tokens", itoa(catalogID))
}

// TokensFile returns the expected tokenization output path for an episode.
func (t *Tree) TokensFile(catalogID int64, title string, episode uint32) string {
	base := SanitizeTitle(title)
	return filepath.Join(t.TokensDir(catalogID), fmt.Sprintf("%s_ep%03d_tokens.json", base, episode))
}

// AnalysisDir returns the per-series analysis directory.
func (t *Tree) AnalysisDir(catalogID int64) string {
	return filepath.Join(t.root, "analysis", "per_series", itoa(catalogID))
}

// ZipfParams returns the Zipf-parameters output path for a series.
func (t *Tree) ZipfParams(catalogID int64) string {
	return filepath.Join(t.AnalysisDir(catalogID), "zipf_params.json")
}

// Statistics returns the summary-statistics output path for a series.
func (t *Tree) Statistics(catalogID int64) string {
	return filepath.Join(t.AnalysisDir(catalogID), "statistics.json")
}

// CacheDir returns the general-purpose cache directory.
func (t *Tree) CacheDir() string {
	return filepath.Join(t.root, "cache")
}

// LogsDir returns the logs directory.
func (t *Tree) LogsDir() string {
	return filepath.Join(t.root, "logs")
}

// LogFile returns the log file path for a named component, stamped
// with a YYYY-MM-DD suffix for daily rotation.
func (t *Tree) LogFile(component, dateStamp string) string {
	return filepath.Join(t.LogsDir(), fmt.Sprintf("%s.%s", component, dateStamp))
}

// JobsDB returns the embedded database file path.
func (t *Tree) JobsDB() string {
	return filepath.Join(t.root, "jobs.db")
}

// EnsureDirs creates every directory the managed layout needs.
// mkdirAll is injected so callers control permission bits and error
// wrapping; a typical implementation is os.MkdirAll with 0o755.
func (t *Tree) EnsureDirs(mkdirAll func(path string, perm uint32) error) error {
	dirs := []string{
		filepath.Join(t.root, "videos"),
		filepath.Join(t.root, "audio"),
		filepath.Join(t.root, "transcripts"),
		filepath.Join(t.root, "tokens"),
		filepath.Join(t.root, "analysis", "per_series"),
		filepath.Join(t.root, "analysis", "aggregated", "by_genre"),
		filepath.Join(t.root, "analysis", "aggregated", "by_studio"),
		t.CacheDir(),
		t.LogsDir(),
	}
	for _, dir := range dirs {
		if err := mkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("paths: create %s: %w", dir, err)
		}
	}
	return nil
}

func episodeFile(title string, episode uint32, ext string) string {
	return fmt.Sprintf("%s_ep%03d.%s", SanitizeTitle(title), episode, ext)
}

func itoa(v int64) string {
	return fmt.Sprintf("%d", v)
}

var invalidFilenameChars = "/\\:*?\"<>|"

// SanitizeTitle replaces filesystem-hostile characters in a title
// with underscores and trims surrounding whitespace, so a series
// title can be used verbatim as a path component.
func SanitizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if strings.ContainsRune(invalidFilenameChars, r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// TitleSlug reduces title to a short, lowercase, filename-friendly
// slug: up to its first three alphanumeric words, joined by
// underscores. Used for cache filenames where the full title would
// be unwieldy.
func TitleSlug(title string) string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range title {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.ToLower(strings.Join(words, "_"))
}

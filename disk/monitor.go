package disk

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Class identifies one of the managed data root's accounted
// subdirectories.
type Class string

const (
	Videos      Class = "videos"
	Audio       Class = "audio"
	Transcripts Class = "transcripts"
	Tokens      Class = "tokens"
	Analysis    Class = "analysis"
)

var classes = [...]Class{Videos, Audio, Transcripts, Tokens, Analysis}

// Usage reports total bytes consumed under the managed root, broken
// down per Class.
type Usage struct {
	TotalBytes uint64
	ByClass    map[Class]uint64
	MeasuredAt time.Time
}

// Breakdown adds threshold-relative context to a Usage reading.
type Breakdown struct {
	Usage       Usage
	Percentage  float64
	CanDownload bool
}

// Config carries the thresholds a Monitor enforces. HardLimitBytes is
// informational only; admission logic uses Pause/Resume.
type Config struct {
	Root           string
	HardLimitBytes uint64
	PauseBytes     uint64
	ResumeBytes    uint64
	CacheDuration  time.Duration
}

// Monitor measures and caches disk usage under a managed root.
//
// Monitor is safe for concurrent use. The cached reading is guarded
// by a mutex; InvalidateCache is a lock-and-clear, and the next
// CurrentUsage call after it always re-walks the tree.
type Monitor struct {
	cfg Config

	mu      sync.Mutex
	cached  *Usage
	cacheAt time.Time
}

// NewMonitor creates a Monitor for the given configuration. The
// caller is responsible for ensuring cfg.Root exists.
func NewMonitor(cfg Config) *Monitor {
	return &Monitor{cfg: cfg}
}

// CurrentUsage returns the total and per-class byte counts under the
// managed root, possibly from cache if the TTL has not elapsed.
func (m *Monitor) CurrentUsage() (Usage, error) {
	m.mu.Lock()
	if m.cached != nil && time.Since(m.cacheAt) < m.cfg.CacheDuration {
		u := *m.cached
		m.mu.Unlock()
		return u, nil
	}
	m.mu.Unlock()

	u, err := m.walk()
	if err != nil {
		return Usage{}, err
	}

	m.mu.Lock()
	m.cached = &u
	m.cacheAt = time.Now()
	m.mu.Unlock()
	return u, nil
}

func (m *Monitor) walk() (Usage, error) {
	u := Usage{
		ByClass:    make(map[Class]uint64, len(classes)),
		MeasuredAt: time.Now(),
	}
	for _, class := range classes {
		var bytes uint64
		dir := filepath.Join(m.cfg.Root, string(class))
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			bytes += uint64(info.Size())
			return nil
		})
		if err != nil {
			return Usage{}, err
		}
		u.ByClass[class] = bytes
		u.TotalBytes += bytes
	}
	return u, nil
}

// InvalidateCache forces the next CurrentUsage call to re-walk the
// managed root.
func (m *Monitor) InvalidateCache() {
	m.mu.Lock()
	m.cached = nil
	m.mu.Unlock()
}

// ShouldPauseDownloads reports whether total usage has reached the
// pause threshold.
func (m *Monitor) ShouldPauseDownloads() (bool, error) {
	u, err := m.CurrentUsage()
	if err != nil {
		return false, err
	}
	return u.TotalBytes >= m.cfg.PauseBytes, nil
}

// CanResumeDownloads reports whether total usage has fallen to or
// below the resume threshold. The resume threshold is strictly lower
// than the pause threshold, so the two together form a hysteresis
// band that prevents admission from oscillating around one boundary.
func (m *Monitor) CanResumeDownloads() (bool, error) {
	u, err := m.CurrentUsage()
	if err != nil {
		return false, err
	}
	return u.TotalBytes <= m.cfg.ResumeBytes, nil
}

// GetBreakdown returns the current usage together with its
// percentage of the hard limit and whether downloads may proceed
// right now.
func (m *Monitor) GetBreakdown() (Breakdown, error) {
	u, err := m.CurrentUsage()
	if err != nil {
		return Breakdown{}, err
	}
	var pct float64
	if m.cfg.HardLimitBytes > 0 {
		pct = float64(u.TotalBytes) / float64(m.cfg.HardLimitBytes) * 100
	}
	return Breakdown{
		Usage:       u,
		Percentage:  pct,
		CanDownload: u.TotalBytes < m.cfg.PauseBytes,
	}, nil
}

// FormatBytes renders n as a human-readable size, e.g. "4.2 GB".
func FormatBytes(n uint64) string {
	return humanize.Bytes(n)
}

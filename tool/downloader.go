package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// Downloader invokes an external download tool and discovers the
// resulting media file by diffing the target directory's contents
// before and after invocation.
type Downloader struct {
	// Binary is the executable name or path, e.g. "animdl".
	Binary string
}

// NewDownloader creates a Downloader wrapping the named binary.
func NewDownloader(binary string) *Downloader {
	return &Downloader{Binary: binary}
}

// Download invokes the downloader for title/episode, placing output
// under dir. It returns the path of the single new file that appeared
// under dir, renamed to wantName if the tool chose a different one.
//
// If a file named wantName already exists under dir, Download returns
// its path immediately without invoking the subprocess (idempotence).
func (d *Downloader) Download(ctx context.Context, title string, episode uint32, dir, wantName string) (string, error) {
	wantPath := filepath.Join(dir, wantName)
	if _, err := os.Stat(wantPath); err == nil {
		return wantPath, nil
	}

	before, err := listNames(dir)
	if err != nil {
		return "", fmt.Errorf("tool: list %s before download: %w", dir, err)
	}

	_, err = run(ctx, d.Binary,
		"download", title,
		"--range", fmt.Sprintf("%d", episode),
		"--auto-select",
		"--quality", "best",
		"--output", dir,
	)
	if err != nil {
		return "", err
	}

	after, err := listNames(dir)
	if err != nil {
		return "", fmt.Errorf("tool: list %s after download: %w", dir, err)
	}

	newName, err := singleNewEntry(before, after)
	if err != nil {
		return "", fmt.Errorf("tool: downloader for %q ep %d: %w", title, episode, err)
	}

	newPath := filepath.Join(dir, newName)
	if newName == wantName {
		return newPath, nil
	}
	if err := os.Rename(newPath, wantPath); err != nil {
		return "", fmt.Errorf("tool: rename %s to %s: %w", newPath, wantPath, err)
	}
	return wantPath, nil
}

var episodeCountSuffix = regexp.MustCompile(`\s*\(\d+\s+eps?\)\s*$`)

// StripEpisodeCountSuffix removes a trailing " (N eps)" annotation the
// title-selection helper appends to candidate titles for disambiguation,
// which the downloader itself must not pass through, since the external
// tool resolves titles by exact catalog match.
func StripEpisodeCountSuffix(title string) string {
	return episodeCountSuffix.ReplaceAllString(title, "")
}

func listNames(dir string) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}
	return names, nil
}

func singleNewEntry(before, after map[string]bool) (string, error) {
	var added []string
	for name := range after {
		if !before[name] {
			added = append(added, name)
		}
	}
	switch len(added) {
	case 0:
		return "", fmt.Errorf("no new file appeared")
	case 1:
		return added[0], nil
	default:
		return "", fmt.Errorf("expected exactly one new file, found %d: %v", len(added), added)
	}
}

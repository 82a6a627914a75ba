package tool

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFakeBinary(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-tool.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStripEpisodeCountSuffix(t *testing.T) {
	cases := map[string]string{
		"Frieren: Beyond Journey's End (28 eps)": "Frieren: Beyond Journey's End",
		"One Piece (1 ep)":                       "One Piece",
		"No Suffix Here":                         "No Suffix Here",
	}
	for in, want := range cases {
		if got := StripEpisodeCountSuffix(in); got != want {
			t.Errorf("StripEpisodeCountSuffix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDownloadIsIdempotentWhenFileExists(t *testing.T) {
	dir := t.TempDir()
	wantPath := filepath.Join(dir, "existing_ep001.mp4")
	if err := os.WriteFile(wantPath, []byte("already here"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := NewDownloader("/bin/false") // must not be invoked
	got, err := d.Download(context.Background(), "Some Title", 1, dir, "existing_ep001.mp4")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if got != wantPath {
		t.Errorf("Download returned %q, want %q", got, wantPath)
	}
}

func TestDownloadRenamesNewFileToWantName(t *testing.T) {
	dir := t.TempDir()
	bin := writeFakeBinary(t, `touch "$9/downloaded_episode.mp4"`)

	d := NewDownloader(bin)
	got, err := d.Download(context.Background(), "Some Title", 1, dir, "some_title_ep001.mp4")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	want := filepath.Join(dir, "some_title_ep001.mp4")
	if got != want {
		t.Errorf("Download returned %q, want %q", got, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected renamed file at %s: %v", want, err)
	}
}

func TestDownloadFailsWhenNoFileAppears(t *testing.T) {
	dir := t.TempDir()
	bin := writeFakeBinary(t, `exit 0`)

	d := NewDownloader(bin)
	if _, err := d.Download(context.Background(), "Some Title", 1, dir, "some_title_ep001.mp4"); err == nil {
		t.Error("Download() = nil error, want error when no new file appears")
	}
}

package paths

import (
	"path/filepath"
	"testing"
)

func TestTreeLayout(t *testing.T) {
	tr := NewTree("/data")

	cases := []struct {
		name string
		got  string
		want string
	}{
		{"VideoDir", tr.VideoDir(42), filepath.Join("/data", "videos", "42", "episodes")},
		{"VideoFile", tr.VideoFile(42, "Some: Show?", 3, "mp4"), filepath.Join("/data", "videos", "42", "episodes", "Some_ Show__ep003.mp4")},
		{"AudioDir", tr.AudioDir(42), filepath.Join("/data", "audio", "42")},
		{"TranscriptDir", tr.TranscriptDir(42), filepath.Join("/data", "transcripts", "42")},
		{"TokensDir", tr.TokensDir(42), filepath.Join("/data", "tokens", "42")},
		{"AnalysisDir", tr.AnalysisDir(42), filepath.Join("/data", "analysis", "per_series", "42")},
		{"ZipfParams", tr.ZipfParams(42), filepath.Join("/data", "analysis", "per_series", "42", "zipf_params.json")},
		{"Statistics", tr.Statistics(42), filepath.Join("/data", "analysis", "per_series", "42", "statistics.json")},
		{"CacheDir", tr.CacheDir(), filepath.Join("/data", "cache")},
		{"LogsDir", tr.LogsDir(), filepath.Join("/data", "logs")},
		{"JobsDB", tr.JobsDB(), filepath.Join("/data", "jobs.db")},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}
}

func TestEnsureDirsCreatesManagedLayout(t *testing.T) {
	tr := NewTree("/data")
	var created []string
	err := tr.EnsureDirs(func(path string, perm uint32) error {
		created = append(created, path)
		return nil
	})
	if err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	if len(created) == 0 {
		t.Fatal("EnsureDirs created no directories")
	}
}

func TestSanitizeTitle(t *testing.T) {
	cases := map[string]string{
		"Attack on Titan":    "Attack on Titan",
		"Re:Zero":            "Re_Zero",
		"  Trim Me  ":        "Trim Me",
		"Question? Mark*":    "Question_ Mark_",
		"Path\\With/Slashes": "Path_With_Slashes",
	}
	for in, want := range cases {
		if got := SanitizeTitle(in); got != want {
			t.Errorf("SanitizeTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTitleSlug(t *testing.T) {
	cases := map[string]string{
		"Attack on Titan":                "attack_on_titan",
		"Re:Zero Starting Life":          "re_zero_starting",
		"One Word":                       "one_word",
		"":                               "",
		"Hello, World! Extra Words Here": "hello_world_extra",
	}
	for in, want := range cases {
		if got := TitleSlug(in); got != want {
			t.Errorf("TitleSlug(%q) = %q, want %q", in, got, want)
		}
	}
}

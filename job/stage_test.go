package job

import "testing"

func TestStageRoundTrip(t *testing.T) {
	stages := []Stage{
		Queued, Downloading, Downloaded, Transcribing, Transcribed,
		Tokenizing, Tokenized, Analyzing, Complete, Failed,
	}
	for _, s := range stages {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", s, err)
		}
		var got Stage
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if got != s {
			t.Errorf("round trip mismatch: %v -> %q -> %v", s, text, got)
		}
		parsed, err := ParseStage(string(text))
		if err != nil {
			t.Fatalf("ParseStage(%q): %v", text, err)
		}
		if parsed != s {
			t.Errorf("ParseStage(%q) = %v, want %v", text, parsed, s)
		}
	}
}

func TestParseStageUnknown(t *testing.T) {
	if s, err := ParseStage(""); err != nil || s != Unknown {
		t.Errorf("ParseStage(\"\") = %v, %v, want Unknown, nil", s, err)
	}
	if _, err := ParseStage("bogus"); err == nil {
		t.Error("ParseStage(\"bogus\") returned nil error, want error")
	}
}

func TestStageTerminal(t *testing.T) {
	for _, s := range []Stage{Complete, Failed} {
		if !s.Terminal() {
			t.Errorf("%v.Terminal() = false, want true", s)
		}
	}
	for _, s := range []Stage{Queued, Downloading, Downloaded, Transcribing, Transcribed, Tokenizing, Tokenized, Analyzing} {
		if s.Terminal() {
			t.Errorf("%v.Terminal() = true, want false", s)
		}
	}
}

func TestStageStringUnknown(t *testing.T) {
	if got := Stage(255).String(); got != "unknown" {
		t.Errorf("Stage(255).String() = %q, want %q", got, "unknown")
	}
}

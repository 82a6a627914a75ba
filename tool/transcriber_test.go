package tool

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCleanTranscriptDropsHallucinations(t *testing.T) {
	in := "Hello there.\nThank you for watching!\nGoodbye.\n"
	got := string(CleanTranscript([]byte(in)))
	want := "Hello there.\nGoodbye.\n"
	if got != want {
		t.Errorf("CleanTranscript(%q) = %q, want %q", in, got, want)
	}
}

func TestCleanTranscriptIsCaseInsensitive(t *testing.T) {
	in := "PLEASE SUBSCRIBE to the channel\nReal line.\n"
	got := string(CleanTranscript([]byte(in)))
	want := "Real line.\n"
	if got != want {
		t.Errorf("CleanTranscript(%q) = %q, want %q", in, got, want)
	}
}

func TestCleanTranscriptCollapsesConsecutiveDuplicates(t *testing.T) {
	in := "line one\nline one\nline one\nline two\nline one\n"
	got := string(CleanTranscript([]byte(in)))
	want := "line one\nline two\nline one\n"
	if got != want {
		t.Errorf("CleanTranscript(%q) = %q, want %q", in, got, want)
	}
}

func TestCleanTranscriptLeavesCleanInputUnchanged(t *testing.T) {
	in := []byte("All good here.\nNothing to remove.\n")
	if got := CleanTranscript(in); !bytes.Equal(got, in) {
		t.Errorf("CleanTranscript(%q) = %q, want unchanged", in, got)
	}
}

func TestTranscribeRenamesProducedFile(t *testing.T) {
	bin := writeFakeBinary(t, `true`)
	tr := NewTranscriber(bin)

	dir := t.TempDir()
	audioPath := filepath.Join(dir, "show_ep001.wav")
	if err := os.WriteFile(audioPath, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "show_ep001.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := tr.Transcribe(context.Background(), audioPath, "medium", "ja", dir, "canonical_ep001.txt")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	want := filepath.Join(dir, "canonical_ep001.txt")
	if got != want {
		t.Errorf("Transcribe returned %q, want %q", got, want)
	}
}

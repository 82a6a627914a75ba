package tool

import (
	"context"
	"testing"
)

func TestFindCandidatesParsesJSONList(t *testing.T) {
	bin := writeFakeBinary(t, `echo '["Frieren: Beyond Journey'"'"'s End", "Frieren Specials"]'`)

	c := NewCandidateFinder(bin)
	got, err := c.FindCandidates(context.Background(), "Frieren")
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	if len(got) != 2 || got[0] != "Frieren: Beyond Journey's End" {
		t.Errorf("FindCandidates = %v, want 2 entries starting with the main title", got)
	}
}

func TestFindCandidatesEmptyList(t *testing.T) {
	bin := writeFakeBinary(t, `echo '[]'`)

	c := NewCandidateFinder(bin)
	got, err := c.FindCandidates(context.Background(), "Nonexistent Show")
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("FindCandidates = %v, want empty", got)
	}
}

func TestFindCandidatesPropagatesToolFailure(t *testing.T) {
	bin := writeFakeBinary(t, `echo "boom" >&2; exit 1`)

	c := NewCandidateFinder(bin)
	if _, err := c.FindCandidates(context.Background(), "Whatever"); err == nil {
		t.Error("FindCandidates() = nil error, want error on nonzero exit")
	}
}

package tool

import (
	"context"
	"path/filepath"
	"testing"
)

func TestAnalyzeVerifiesBothOutputFiles(t *testing.T) {
	dir := t.TempDir()
	zipfPath := filepath.Join(dir, "zipf_params.json")
	statsPath := filepath.Join(dir, "statistics.json")
	bin := writeFakeBinary(t, `touch "`+zipfPath+`" "`+statsPath+`"`)

	a := NewAnalyzer(bin)
	if err := a.Analyze(context.Background(), filepath.Join(dir, "tokens.json"), dir, zipfPath, statsPath); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
}

func TestAnalyzeFailsWhenOneOutputMissing(t *testing.T) {
	dir := t.TempDir()
	zipfPath := filepath.Join(dir, "zipf_params.json")
	statsPath := filepath.Join(dir, "statistics.json")
	bin := writeFakeBinary(t, `touch "`+zipfPath+`"`)

	a := NewAnalyzer(bin)
	if err := a.Analyze(context.Background(), filepath.Join(dir, "tokens.json"), dir, zipfPath, statsPath); err == nil {
		t.Error("Analyze() = nil error, want error when statistics.json is missing")
	}
}

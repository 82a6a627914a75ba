package tool

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Transcriber invokes an external speech-to-text tool.
type Transcriber struct {
	Binary string
}

// NewTranscriber creates a Transcriber wrapping the named binary.
func NewTranscriber(binary string) *Transcriber {
	return &Transcriber{Binary: binary}
}

// Transcribe runs the transcriber against audioPath, writing into
// outDir, and returns the path of the produced transcript renamed to
// wantName. The tool is expected to produce a file whose stem matches
// audioPath's stem; if it does, the engine renames it to the caller's
// canonical name.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath, model, language, outDir, wantName string) (string, error) {
	_, err := run(ctx, t.Binary,
		audioPath,
		"--model", model,
		"--language", language,
		"--output-dir", outDir,
	)
	if err != nil {
		return "", err
	}

	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	producedPath := filepath.Join(outDir, stem+".txt")
	wantPath := filepath.Join(outDir, wantName)

	if producedPath == wantPath {
		return wantPath, nil
	}
	if _, err := os.Stat(producedPath); err != nil {
		return "", fmt.Errorf("tool: transcriber did not produce %s: %w", producedPath, err)
	}
	if err := os.Rename(producedPath, wantPath); err != nil {
		return "", fmt.Errorf("tool: rename %s to %s: %w", producedPath, wantPath, err)
	}
	return wantPath, nil
}

var hallucinationPatterns = []string{
	"thank you for watching",
	"please subscribe",
	"like and subscribe",
}

// CleanTranscript applies the hallucination filter: lines matching any
// fixed pattern (case-insensitive) are dropped, and runs of
// consecutive duplicate lines are collapsed to a single occurrence.
func CleanTranscript(raw []byte) []byte {
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out bytes.Buffer
	var prev string
	havePrev := false

	for scanner.Scan() {
		line := scanner.Text()
		if isHallucination(line) {
			continue
		}
		if havePrev && line == prev {
			continue
		}
		out.WriteString(line)
		out.WriteByte('\n')
		prev = line
		havePrev = true
	}
	return out.Bytes()
}

func isHallucination(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	for _, pattern := range hallucinationPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

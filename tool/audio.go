package tool

import (
	"context"
	"fmt"
	"os"
)

// AudioExtractor invokes an external tool that converts a video file
// into 16 kHz mono PCM WAV.
type AudioExtractor struct {
	Binary string
}

// NewAudioExtractor creates an AudioExtractor wrapping the named binary.
func NewAudioExtractor(binary string) *AudioExtractor {
	return &AudioExtractor{Binary: binary}
}

// Extract converts videoPath into a WAV file at audioPath. Success is
// exit 0 and the output file existing.
func (a *AudioExtractor) Extract(ctx context.Context, videoPath, audioPath string) error {
	_, err := run(ctx, a.Binary,
		"-i", videoPath,
		"-ar", "16000",
		"-ac", "1",
		audioPath,
	)
	if err != nil {
		return err
	}
	if _, err := os.Stat(audioPath); err != nil {
		return fmt.Errorf("tool: audio extractor did not produce %s: %w", audioPath, err)
	}
	return nil
}

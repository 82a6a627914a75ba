package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Tokenizer invokes an external tool that tokenizes a transcript and
// reports word/token counts.
type Tokenizer struct {
	Binary string
}

// NewTokenizer creates a Tokenizer wrapping the named binary.
func NewTokenizer(binary string) *Tokenizer {
	return &Tokenizer{Binary: binary}
}

// TokenizeResult reports the counts produced by a tokenization run.
type TokenizeResult struct {
	WordCount  uint32 `json:"word_count"`
	TokenCount uint32 `json:"token_count"`
}

// Tokenize runs the tokenizer against transcriptPath, writing its
// output to tokensPath, and returns the word/token counts it reported
// on stdout.
func (t *Tokenizer) Tokenize(ctx context.Context, transcriptPath, tokensPath string) (*TokenizeResult, error) {
	out, err := run(ctx, t.Binary,
		"--input", transcriptPath,
		"--output", tokensPath,
	)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(tokensPath); err != nil {
		return nil, fmt.Errorf("tool: tokenizer did not produce %s: %w", tokensPath, err)
	}
	var res TokenizeResult
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, fmt.Errorf("tool: parse tokenizer output: %w", err)
	}
	return &res, nil
}

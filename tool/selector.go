package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// Selector invokes an external title-selection helper: given a query
// title and a list of candidate titles, it chooses the one that best
// matches the main series (as opposed to specials, OVAs, or recaps).
type Selector struct {
	Binary string
}

// NewSelector creates a Selector wrapping the named binary.
func NewSelector(binary string) *Selector {
	return &Selector{Binary: binary}
}

// SelectionResult is the JSON object the helper prints on stdout.
type SelectionResult struct {
	Index      int    `json:"index"`
	Confidence string `json:"confidence"`
	Reason     string `json:"reason"`
}

// Select runs the helper against queryTitle and candidates, passed as
// a JSON array via --candidates, and parses its stdout as a
// SelectionResult.
func (s *Selector) Select(ctx context.Context, queryTitle string, candidates []string) (*SelectionResult, error) {
	candidatesJSON, err := json.Marshal(candidates)
	if err != nil {
		return nil, fmt.Errorf("tool: encode candidates: %w", err)
	}

	cmd := exec.CommandContext(ctx, s.Binary,
		"--title", queryTitle,
		"--candidates", string(candidatesJSON),
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("tool: selector: %w", ctx.Err())
		}
		return nil, fmt.Errorf("tool: selector failed: %w: %s", err, stderr.String())
	}

	var res SelectionResult
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		return nil, fmt.Errorf("tool: parse selector output: %w", err)
	}
	return &res, nil
}

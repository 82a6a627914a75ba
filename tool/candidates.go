package tool

import (
	"context"
	"encoding/json"
	"fmt"
)

// CandidateFinder invokes an external catalog-search helper that maps
// a query title to a list of candidate titles on the external video
// catalog. The catalog search API itself lives in the helper; only
// the subprocess contract is implemented here.
type CandidateFinder struct {
	Binary string
}

// NewCandidateFinder creates a CandidateFinder wrapping the named binary.
func NewCandidateFinder(binary string) *CandidateFinder {
	return &CandidateFinder{Binary: binary}
}

// FindCandidates runs the helper against title and parses its stdout
// as a JSON array of candidate titles.
func (c *CandidateFinder) FindCandidates(ctx context.Context, title string) ([]string, error) {
	out, err := run(ctx, c.Binary, title)
	if err != nil {
		return nil, err
	}
	var candidates []string
	if err := json.Unmarshal(out, &candidates); err != nil {
		return nil, fmt.Errorf("tool: parse candidate list: %w", err)
	}
	return candidates, nil
}

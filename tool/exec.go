package tool

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// run executes name with args under ctx, returning its stdout; stderr
// is only included in the error of a failed run.
// If ctx's deadline expires before the subprocess exits, the process
// is killed and the returned error wraps context.DeadlineExceeded.
func run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("tool: %s: %w", name, ctx.Err())
		}
		return nil, fmt.Errorf("tool: %s failed: %w: %s", name, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

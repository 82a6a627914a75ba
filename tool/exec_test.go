package tool

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunReturnsStdout(t *testing.T) {
	bin := writeFakeBinary(t, `echo -n "hello"`)

	out, err := run(context.Background(), bin)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if string(out) != "hello" {
		t.Errorf("run() = %q, want %q", out, "hello")
	}
}

func TestRunWrapsNonZeroExit(t *testing.T) {
	bin := writeFakeBinary(t, `echo "nope" >&2; exit 3`)

	if _, err := run(context.Background(), bin); err == nil {
		t.Error("run() = nil error, want error on nonzero exit")
	}
}

func TestRunWrapsDeadlineExceeded(t *testing.T) {
	bin := writeFakeBinary(t, `sleep 5`)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := run(ctx, bin)
	if err == nil {
		t.Fatal("run() = nil error, want deadline exceeded")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("run() error = %v, want it to wrap context.DeadlineExceeded", err)
	}
}

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aoi-sora/animepipe/disk"
)

func TestDiskAdmissionBlocksUntilResumeThreshold(t *testing.T) {
	root := t.TempDir()
	videosDir := filepath.Join(root, "videos")
	if err := os.MkdirAll(videosDir, 0o755); err != nil {
		t.Fatal(err)
	}
	bigFile := filepath.Join(videosDir, "big.mp4")
	if err := os.WriteFile(bigFile, make([]byte, 1000), 0o644); err != nil {
		t.Fatal(err)
	}

	monitor := disk.NewMonitor(disk.Config{
		Root:           root,
		HardLimitBytes: 2000,
		PauseBytes:     900,
		ResumeBytes:    500,
		CacheDuration:  0,
	})

	gate := DiskAdmission(monitor, 10*time.Millisecond, testLogger())

	done := make(chan error, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go func() {
		done <- gate(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("gate returned early (err=%v) before disk usage dropped below the resume threshold", err)
	case <-time.After(50 * time.Millisecond):
	}

	if err := os.Remove(bigFile); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("gate returned error after disk usage dropped: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("gate did not unblock after disk usage dropped below the resume threshold")
	}
}

func TestDiskAdmissionPassesThroughWhenBelowPause(t *testing.T) {
	root := t.TempDir()
	monitor := disk.NewMonitor(disk.Config{
		Root:           root,
		HardLimitBytes: 2000,
		PauseBytes:     900,
		ResumeBytes:    500,
		CacheDuration:  0,
	})

	gate := DiskAdmission(monitor, 10*time.Millisecond, testLogger())
	if err := gate(context.Background()); err != nil {
		t.Fatalf("gate() = %v, want nil when usage is below the pause threshold", err)
	}
}

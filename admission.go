package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/aoi-sora/animepipe/disk"
)

// DiskAdmission builds an AdmissionGate from a disk.Monitor,
// implementing the Download stage's single pause/resume predicate:
// before a dequeue attempt, check ShouldPauseDownloads; if paused,
// sleep for pollInterval and recheck CanResumeDownloads in a loop
// until it reports true. The two distinct thresholds prevent
// admission from oscillating around one boundary.
//
// Only the Download stage worker should be configured with this gate;
// downstream stages reduce disk usage and are never throttled.
func DiskAdmission(monitor *disk.Monitor, pollInterval time.Duration, log *slog.Logger) AdmissionGate {
	return func(ctx context.Context) error {
		paused, err := monitor.ShouldPauseDownloads()
		if err != nil {
			return err
		}
		if !paused {
			return nil
		}

		log.Info("disk space limit reached, pausing downloads")
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				resumed, err := monitor.CanResumeDownloads()
				if err != nil {
					return err
				}
				if resumed {
					log.Info("disk space freed, resuming downloads")
					return nil
				}
			}
		}
	}
}

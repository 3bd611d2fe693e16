// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/journalhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ImageSweeper deletes stored images no entry references any more.
type ImageSweeper interface {
	CleanupUnusedImages(ctx context.Context) (int, error)
}

// ImageCleanupJob creates the daily unused-image sweep.
func ImageCleanupJob(sweeper ImageSweeper, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "image-cleanup",
		Interval: interval,
		Timeout:  timeouts.Batch(),
		Run: func(ctx context.Context) error {
			n, err := sweeper.CleanupUnusedImages(ctx)
			if err != nil {
				return err
			}
			logger.Info("unused image cleanup finished", zap.Int("deleted", n))
			return nil
		},
	}
}

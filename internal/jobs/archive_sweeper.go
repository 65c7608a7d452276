package jobs

import (
	"context"
	"fmt"

	"github.com/Dias221467/World_Chronicle/internal/services"
	"github.com/sirupsen/logrus"
)

// sweepBatch caps how many expired activities one sweep archives.
const sweepBatch = 100

type ArchiveSweeper struct {
	ActivityService *services.ActivityService
}

// NewArchiveSweeper creates a new instance of ArchiveSweeper
func NewArchiveSweeper(activityService *services.ActivityService) *ArchiveSweeper {
	return &ArchiveSweeper{
		ActivityService: activityService,
	}
}

// RunSweep archives multi-sig-pending activities whose signing window has
// expired. The per-activity archive endpoint stays available; this job just
// keeps the timeline from accumulating stale pending entries.
func (s *ArchiveSweeper) RunSweep(ctx context.Context) error {
	archived, err := s.ActivityService.ArchiveExpired(ctx, sweepBatch)
	if err != nil {
		return fmt.Errorf("failed to archive expired activities: %v", err)
	}

	if archived > 0 {
		logrus.WithField("archived", archived).Info("Archive sweep completed")
	}
	return nil
}

package cron

import (
	"context"
	"time"

	"github.com/Dias221467/World_Chronicle/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartArchiveCronJobs runs the expired-activity sweep on a fixed interval.
func StartArchiveCronJobs(sweeper *jobs.ArchiveSweeper, interval time.Duration) {
	c := cron.New()

	c.AddFunc("@every "+interval.String(), func() {
		if err := sweeper.RunSweep(context.Background()); err != nil {
			logrus.WithError(err).Error("Archive sweep failed")
		}
	})

	c.Start()
}

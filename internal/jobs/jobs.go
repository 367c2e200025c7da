// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Purger deletes expired overlays and reports how many were removed
type Purger interface {
	PurgeExpiredOverlays(ctx context.Context) (int64, error)
}

// Scheduler wraps a cron runner
type Scheduler struct {
	cron    *cron.Cron
	log     *logrus.Logger
	timeout time.Duration
}

// NewScheduler creates a scheduler in UTC
func NewScheduler(log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		log:     log,
		timeout: time.Minute,
	}
}

// RegisterOverlayPurge schedules overlay expiry on spec (e.g. "@daily")
func (s *Scheduler) RegisterOverlayPurge(spec string, p Purger) error {
	_, err := s.cron.AddFunc(spec, func() { s.runPurge(p) })
	if err != nil {
		return fmt.Errorf("invalid purge schedule %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) runPurge(p Purger) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := p.PurgeExpiredOverlays(ctx)
	if err != nil {
		s.log.WithError(err).Error("Overlay purge failed")
		return
	}
	s.log.WithField("removed", n).Info("Expired overlays purged")
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

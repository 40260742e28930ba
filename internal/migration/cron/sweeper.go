// Package cronjob reports projects left in a running stage.
package cronjob

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/codearcheologist/codearch-backend/internal/logging"
	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
)

const (
	DefaultSchedule   = "@every 5m"
	DefaultStaleAfter = 10 * time.Minute
	sweepLimit        = 500
)

type ProjectLister interface {
	List(ctx context.Context, limit int) ([]*domain.Project, error)
}

type StaleGauge interface {
	StaleProjects(n int)
}

// Sweeper never changes a project; it only logs and counts stuck ones.
type Sweeper struct {
	lister     ProjectLister
	gauge      StaleGauge
	schedule   string
	staleAfter time.Duration
	now        func() time.Time
	cron       *cron.Cron
}

func NewSweeper(lister ProjectLister, gauge StaleGauge, schedule string, staleAfter time.Duration) *Sweeper {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Sweeper{
		lister:     lister,
		gauge:      gauge,
		schedule:   schedule,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Start schedules the sweep and returns once the cron runner is started.
func (s *Sweeper) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() { _, _ = s.Sweep(context.Background()) }); err != nil {
		return fmt.Errorf("schedule sweeper %q: %w", s.schedule, err)
	}
	s.cron = c
	c.Start()
	logging.NewLogger(context.Background()).LogInfof("sweeper.start", "stale-run sweeper scheduled (%s, stale after %s)", s.schedule, s.staleAfter)
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Sweep returns the ids of projects that have been in a running stage longer
// than the stale threshold.
func (s *Sweeper) Sweep(ctx context.Context) ([]string, error) {
	logger := logging.NewLogger(ctx)

	projects, err := s.lister.List(ctx, sweepLimit)
	if err != nil {
		logger.LogError("sweeper.sweep", err)
		return nil, err
	}

	cutoff := s.now().Add(-s.staleAfter)
	var stale []string
	for _, p := range projects {
		if p.Status.InProgress() && p.UpdatedAt.Before(cutoff) {
			stale = append(stale, p.ID)
			logger.With("project_id", p.ID).LogWarnf("sweeper.sweep",
				"project stuck in %s since %s", p.Phase, p.UpdatedAt.Format(time.RFC3339))
		}
	}
	if s.gauge != nil {
		s.gauge.StaleProjects(len(stale))
	}
	return stale, nil
}

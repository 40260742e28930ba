package cronjob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
)

type staticLister struct {
	projects []*domain.Project
	err      error
}

func (l staticLister) List(context.Context, int) ([]*domain.Project, error) {
	return l.projects, l.err
}

type gaugeRecorder struct{ last int }

func (g *gaugeRecorder) StaleProjects(n int) { g.last = n }

func TestSweep(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-time.Hour)
	recent := now.Add(-time.Minute)

	lister := staticLister{projects: []*domain.Project{
		{ID: "stuck-analyzing", Status: domain.StatusAnalyzing, UpdatedAt: old},
		{ID: "stuck-building", Status: domain.StatusBuilding, UpdatedAt: old},
		{ID: "fresh-designing", Status: domain.StatusDesigning, UpdatedAt: recent},
		{ID: "idle-analyzed", Status: domain.StatusAnalyzed, UpdatedAt: old},
		{ID: "new", Status: domain.StatusCreated, UpdatedAt: old},
	}}
	gauge := &gaugeRecorder{}
	s := NewSweeper(lister, gauge, "", 10*time.Minute)
	s.now = func() time.Time { return now }

	stale, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"stuck-analyzing", "stuck-building"}, stale)
	assert.Equal(t, 2, gauge.last)
	assert.Equal(t, domain.StatusAnalyzing, lister.projects[0].Status)
}

func TestSweep_ListError(t *testing.T) {
	gauge := &gaugeRecorder{last: 7}
	s := NewSweeper(staticLister{err: errors.New("redis down")}, gauge, "", 0)

	_, err := s.Sweep(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 7, gauge.last)
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	s := NewSweeper(staticLister{}, nil, "not a schedule", time.Minute)
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := NewSweeper(staticLister{}, nil, "@every 1h", time.Minute)
	require.NoError(t, s.Start())
	s.Stop()
}

// Package service runs the migration pipeline: it gates each stage on the
// project state, calls the stage role and records the result.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/codearcheologist/codearch-backend/internal/logging"
	"github.com/codearcheologist/codearch-backend/internal/migration/agents"
	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
	"github.com/codearcheologist/codearch-backend/internal/migration/observability"
)

const DefaultListLimit = 100

// ProjectRepository persists the project aggregate. Save replaces the whole
// record in one atomic write.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	Get(ctx context.Context, id string) (*domain.Project, error)
	Save(ctx context.Context, p *domain.Project) error
	List(ctx context.Context, limit int) ([]*domain.Project, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, projectName, legacyCode string) *domain.AuditReport
}

type Designer interface {
	Design(ctx context.Context, audit *domain.AuditReport) *domain.Blueprint
}

type Builder interface {
	Generate(ctx context.Context, in agents.BuildInput) *domain.CodeBundle
	Fixer
}

// Options tunes a Pipeline. Zero values pick defaults.
type Options struct {
	ListLimit        int
	BuildMaxAttempts int
	Metrics          *observability.Metrics
	Now              func() time.Time
	NewID            func() string
}

// Pipeline is the orchestrator behind every project operation. It holds no
// per-project state; concurrent requests on one project are last-write-wins.
type Pipeline struct {
	repo      ProjectRepository
	analyzer  Analyzer
	designer  Designer
	builder   Builder
	loop      *BuildLoop
	metrics   *observability.Metrics
	listLimit int
	now       func() time.Time
	newID     func() string
}

func NewPipeline(repo ProjectRepository, analyzer Analyzer, designer Designer, builder Builder, executor Executor, opts Options) *Pipeline {
	if opts.ListLimit < 1 {
		opts.ListLimit = DefaultListLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	loop := NewBuildLoop(executor, builder, opts.BuildMaxAttempts)
	loop.now = opts.Now

	return &Pipeline{
		repo:      repo,
		analyzer:  analyzer,
		designer:  designer,
		builder:   builder,
		loop:      loop,
		metrics:   opts.Metrics,
		listLimit: opts.ListLimit,
		now:       opts.Now,
		newID:     opts.NewID,
	}
}

func (s *Pipeline) CreateProject(ctx context.Context, name, legacyCode string) (*domain.Project, error) {
	p, err := domain.NewProject(s.newID(), name, legacyCode, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, s.internal(ctx, "project.create", err)
	}
	logging.NewLogger(ctx).With("project_id", p.ID).LogInfof("project.create", "created project %q", p.Name)
	return p, nil
}

func (s *Pipeline) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	return s.load(ctx, "project.get", id)
}

// ListProjects returns the most recent projects, at most the configured limit.
func (s *Pipeline) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	projects, err := s.repo.List(ctx, s.listLimit)
	if err != nil {
		return nil, s.internal(ctx, "project.list", err)
	}
	return projects, nil
}

func (s *Pipeline) GetLogs(ctx context.Context, id string) (*domain.ProjectLogs, error) {
	p, err := s.load(ctx, "project.logs", id)
	if err != nil {
		return nil, err
	}
	return p.Logs(), nil
}

// RunAnalysis runs the analyzer and replaces any previous audit report.
func (s *Pipeline) RunAnalysis(ctx context.Context, id string) (*domain.AuditReport, error) {
	ctx = context.WithoutCancel(ctx)
	p, err := s.begin(ctx, domain.StageAnalyze, id)
	if err != nil {
		return nil, err
	}

	report := s.analyzer.Analyze(ctx, p.Name, p.LegacyCode)
	p.CompleteAnalysis(report, s.now())
	if err := s.finish(ctx, domain.StageAnalyze, p, report.Mode); err != nil {
		return nil, err
	}
	return report, nil
}

// RunDesign needs an audit report. The new blueprint starts unapproved.
func (s *Pipeline) RunDesign(ctx context.Context, id string) (*domain.Blueprint, error) {
	ctx = context.WithoutCancel(ctx)
	p, err := s.begin(ctx, domain.StageDesign, id)
	if err != nil {
		return nil, err
	}

	bp := s.designer.Design(ctx, p.AuditReport)
	p.CompleteDesign(bp, s.now())
	if err := s.finish(ctx, domain.StageDesign, p, bp.Mode); err != nil {
		return nil, err
	}
	return bp, nil
}

func (s *Pipeline) ApproveBlueprint(ctx context.Context, id string, modifications *string) error {
	p, err := s.load(ctx, "blueprint.approve", id)
	if err != nil {
		return err
	}
	if err := p.ApproveBlueprint(modifications, s.now()); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return s.internal(ctx, "blueprint.approve", err)
	}
	return nil
}

// RunBuild needs an approved blueprint. It generates the bundle and runs the
// self-healing loop on its primary file.
func (s *Pipeline) RunBuild(ctx context.Context, id string) (*BuildOutcome, error) {
	ctx = context.WithoutCancel(ctx)
	p, err := s.begin(ctx, domain.StageBuild, id)
	if err != nil {
		return nil, err
	}

	bundle := s.builder.Generate(ctx, agents.BuildInput{
		Blueprint:     p.Blueprint,
		LegacyCode:    p.LegacyCode,
		Modifications: p.BlueprintModifications,
		Phase:         1,
	})
	out := s.loop.Run(ctx, bundle)

	p.CompleteBuild(out.Bundle, out.Iterations, out.Success, s.now())
	if err := s.finish(ctx, domain.StageBuild, p, bundle.Mode); err != nil {
		return nil, err
	}
	s.metrics.BuildFinished(out.Executions(), out.Success)
	return out, nil
}

// begin loads the project, checks the stage gate and persists the running state.
func (s *Pipeline) begin(ctx context.Context, stage domain.Stage, id string) (*domain.Project, error) {
	op := string(stage) + ".begin"
	p, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if err := p.BeginStage(stage, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, s.internal(ctx, op, err)
	}
	logging.NewLogger(ctx).With("project_id", id).LogInfof(op, "phase=%s", p.Phase)
	return p, nil
}

// finish writes the artifact together with the completed status.
func (s *Pipeline) finish(ctx context.Context, stage domain.Stage, p *domain.Project, mode domain.Mode) error {
	op := string(stage) + ".complete"
	if err := s.repo.Save(ctx, p); err != nil {
		return s.internal(ctx, op, err)
	}
	s.metrics.StageCompleted(stage, mode)
	logging.NewLogger(ctx).With("project_id", p.ID).LogInfof(op, "phase=%s mode=%s", p.Phase, mode)
	return nil
}

func (s *Pipeline) load(ctx context.Context, op, id string) (*domain.Project, error) {
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, domain.ErrProjectNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrProjectNotFound, id)
	}
	if err != nil {
		return nil, s.internal(ctx, op, err)
	}
	return p, nil
}

func (s *Pipeline) internal(ctx context.Context, op string, err error) error {
	logging.NewLogger(ctx).LogError(op, err)
	return fmt.Errorf("%s: %w", op, err)
}

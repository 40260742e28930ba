package service

import (
	"context"
	"time"

	"github.com/codearcheologist/codearch-backend/internal/logging"
	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
	"github.com/codearcheologist/codearch-backend/internal/migration/execution"
)

const DefaultBuildAttempts = 3

// Executor checks one source file and reports a verdict.
type Executor interface {
	Execute(ctx context.Context, code, language string) domain.ExecutionResult
}

// Fixer repairs code given the errors of its last execution.
type Fixer interface {
	Fix(ctx context.Context, code, stderr string) domain.FixResult
}

// BuildLoop alternates execution and repair on the primary file of a bundle.
// Only Files[0], the entry point, is executed and healed; other files are
// returned untouched.
type BuildLoop struct {
	executor    Executor
	fixer       Fixer
	maxAttempts int
	now         func() time.Time
}

// NewBuildLoop caps maxAttempts at DefaultBuildAttempts; values outside
// 1..3 fall back to it.
func NewBuildLoop(executor Executor, fixer Fixer, maxAttempts int) *BuildLoop {
	if maxAttempts < 1 || maxAttempts > DefaultBuildAttempts {
		maxAttempts = DefaultBuildAttempts
	}
	return &BuildLoop{executor: executor, fixer: fixer, maxAttempts: maxAttempts, now: time.Now}
}

// BuildOutcome is the result of one build run.
type BuildOutcome struct {
	Bundle     *domain.CodeBundle
	Iterations []domain.BuildIteration
	Success    bool
}

// Executions counts the execute entries of the run.
func (o *BuildOutcome) Executions() int {
	n := 0
	for _, it := range o.Iterations {
		if it.Action == domain.ActionExecute {
			n++
		}
	}
	return n
}

// Run executes the primary file up to maxAttempts times, applying a fix
// between failed attempts. It stops at the first success. The bundle is
// modified in place when a fix is applied.
func (l *BuildLoop) Run(ctx context.Context, bundle *domain.CodeBundle) *BuildOutcome {
	out := &BuildOutcome{Bundle: bundle, Iterations: []domain.BuildIteration{}}
	if bundle == nil || len(bundle.Files) == 0 {
		return out
	}

	logger := logging.NewLogger(ctx)
	primary := &bundle.Files[0]
	language := execution.LanguageFor(primary.Path)

	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		res := l.executor.Execute(ctx, primary.Content, language)
		out.Iterations = append(out.Iterations, domain.BuildIteration{
			Attempt:         attempt,
			Action:          domain.ActionExecute,
			ExecutionResult: &res,
			Timestamp:       l.now().UTC(),
		})
		out.Success = res.Success
		if res.Success {
			break
		}
		if attempt == l.maxAttempts {
			logger.LogWarnf("build.loop", "%s still failing after %d attempts: %s", primary.Path, attempt, res.Stderr)
			break
		}

		fix := l.fixer.Fix(ctx, primary.Content, res.Stderr)
		primary.Content = fix.FixedCode
		out.Iterations = append(out.Iterations, domain.BuildIteration{
			Attempt:   attempt,
			Action:    domain.ActionFixApplied,
			Changes:   fix.ChangesMade,
			Reasoning: fix.Reasoning,
			Timestamp: l.now().UTC(),
		})
	}
	return out
}

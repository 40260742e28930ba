package agents

import (
	"context"
	"strings"

	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
	"github.com/codearcheologist/codearch-backend/internal/migration/fallback"
)

const opAnalyze = "archaeologist.analyze"

// Analyzer produces the audit report for a legacy submission.
type Analyzer struct {
	rt *Runtime
}

func NewAnalyzer(rt *Runtime) *Analyzer {
	return &Analyzer{rt: rt}
}

// Analyze never fails. Without a usable model answer it returns the
// simulated audit for legacyCode.
func (a *Analyzer) Analyze(ctx context.Context, projectName, legacyCode string) *domain.AuditReport {
	o := request(ctx, a.rt, opAnalyze, analyzePrompt(projectName, legacyCode), analyzerParams,
		func(r *domain.AuditReport) error {
			normalizeAudit(r, projectName)
			return r.DependencyGraph.CheckReferences()
		})
	logFallback(ctx, opAnalyze, o)

	return settle(o, func() *domain.AuditReport {
		return fallback.AuditReport(projectName, legacyCode)
	})
}

func normalizeAudit(r *domain.AuditReport, projectName string) {
	if r.ProjectName == "" {
		r.ProjectName = projectName
	}
	for i := range r.SecurityIssues {
		r.SecurityIssues[i].Severity = strings.ToLower(strings.TrimSpace(r.SecurityIssues[i].Severity))
	}
	for i := range r.DeprecatedDependencies {
		r.DeprecatedDependencies[i].SecurityRisk = strings.ToLower(strings.TrimSpace(r.DeprecatedDependencies[i].SecurityRisk))
	}
	r.Mode = domain.ModeAIPowered
}

// Package observability exposes pipeline counters to Prometheus.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
)

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	stageRuns       *prometheus.CounterVec
	providerRetries *prometheus.CounterVec
	buildExecutions prometheus.Histogram
	builds          *prometheus.CounterVec
	staleProjects   prometheus.Gauge
}

// NewMetrics registers the pipeline collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		stageRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "codearch_stage_runs_total",
			Help: "Completed stage runs by stage and artifact provenance.",
		}, []string{"stage", "mode"}),
		providerRetries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "codearch_provider_retries_total",
			Help: "Model calls retried after a transient provider error.",
		}, []string{"operation"}),
		buildExecutions: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "codearch_build_executions",
			Help:    "Execution checks performed per build run.",
			Buckets: []float64{1, 2, 3, 5},
		}),
		builds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "codearch_builds_total",
			Help: "Finished build runs by overall success.",
		}, []string{"success"}),
		staleProjects: f.NewGauge(prometheus.GaugeOpts{
			Name: "codearch_stale_projects",
			Help: "Projects stuck in a running stage at the last sweep.",
		}),
	}
}

func (m *Metrics) StageCompleted(stage domain.Stage, mode domain.Mode) {
	if m == nil {
		return
	}
	m.stageRuns.WithLabelValues(string(stage), string(mode)).Inc()
}

// ProviderRetry matches resilience.RetryHook.
func (m *Metrics) ProviderRetry(operation string, _ int, _ error) {
	if m == nil {
		return
	}
	m.providerRetries.WithLabelValues(operation).Inc()
}

func (m *Metrics) BuildFinished(executions int, success bool) {
	if m == nil {
		return
	}
	m.buildExecutions.Observe(float64(executions))
	m.builds.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func (m *Metrics) StaleProjects(n int) {
	if m == nil {
		return
	}
	m.staleProjects.Set(float64(n))
}

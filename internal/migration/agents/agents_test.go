package agents

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
	"github.com/codearcheologist/codearch-backend/internal/migration/llm"
	"github.com/codearcheologist/codearch-backend/internal/migration/resilience"
)

type reply struct {
	text string
	err  error
}

// scriptedClient answers calls in order and repeats the last reply.
type scriptedClient struct {
	mu      sync.Mutex
	replies []reply
	prompts []string
	params  []llm.GenerationParams
}

func (c *scriptedClient) Generate(_ context.Context, prompt string, params llm.GenerationParams) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	c.params = append(c.params, params)
	i := len(c.prompts) - 1
	if i >= len(c.replies) {
		i = len(c.replies) - 1
	}
	return c.replies[i].text, c.replies[i].err
}

func newRuntime(client llm.Client) *Runtime {
	inv := resilience.NewInvoker(resilience.Policy{MaxAttempts: 3, Delay: time.Millisecond},
		resilience.WithSleep(func(context.Context, time.Duration) error { return nil }))
	return NewRuntime(client, inv)
}

const phpCode = `<?php $db = mysql_connect("localhost", "root", "secret"); ?>`

func TestAnalyze_AIPowered(t *testing.T) {
	client := &scriptedClient{replies: []reply{{text: "Sure!\n```json\n" + `{
		"detectedLanguage": "PHP",
		"codeQualityScore": 40,
		"securityIssues": [{"severity": "HIGH", "issue": "sql injection"}],
		"dependencyGraph": {"nodes": [{"id": "a"}, {"id": "b"}], "edges": [{"source": "a", "target": "b"}]}
	}` + "\n```"}}}

	report := NewAnalyzer(newRuntime(client)).Analyze(context.Background(), "Shop", phpCode)

	assert.Equal(t, domain.ModeAIPowered, report.Mode)
	assert.Equal(t, "Shop", report.ProjectName)
	assert.Equal(t, 40, report.CodeQualityScore)
	assert.Equal(t, domain.SeverityHigh, report.SecurityIssues[0].Severity)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], phpCode)
	assert.InDelta(t, 0.4, *client.params[0].Temperature, 1e-6)
	assert.Equal(t, maxOutputTokens, *client.params[0].MaxTokens)
}

func TestAnalyze_FallsBack(t *testing.T) {
	tests := []struct {
		name      string
		replies   []reply
		wantCalls int
	}{
		{"provider disabled", []reply{{err: llm.ErrDisabled}}, 1},
		{"overloaded until budget spent", []reply{{err: &llm.ProviderError{StatusCode: http.StatusServiceUnavailable, Err: errors.New("busy")}}}, 3},
		{"prose only", []reply{{text: "I can't analyze this."}}, 1},
		{"broken json", []reply{{text: `{"detectedLanguage": "PHP",`}}, 1},
		{"score out of range", []reply{{text: `{"detectedLanguage": "PHP", "codeQualityScore": 140}`}}, 1},
		{"unknown severity", []reply{{text: `{"detectedLanguage": "PHP", "securityIssues": [{"severity": "urgent", "issue": "x"}]}`}}, 1},
		{"dangling edge", []reply{{text: `{"detectedLanguage": "PHP", "dependencyGraph": {"nodes": [{"id": "a"}], "edges": [{"source": "a", "target": "z"}]}}`}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &scriptedClient{replies: tt.replies}
			report := NewAnalyzer(newRuntime(client)).Analyze(context.Background(), "Shop", phpCode)

			assert.Equal(t, domain.ModeSimulated, report.Mode)
			assert.Equal(t, "PHP", report.DetectedLanguage)
			assert.Equal(t, "Shop", report.ProjectName)
			assert.Len(t, client.prompts, tt.wantCalls)
		})
	}
}

func TestAnalyze_RecoversAfterTransientError(t *testing.T) {
	client := &scriptedClient{replies: []reply{
		{err: &llm.ProviderError{StatusCode: http.StatusTooManyRequests, Err: errors.New("slow down")}},
		{text: `{"detectedLanguage": "COBOL"}`},
	}}

	report := NewAnalyzer(newRuntime(client)).Analyze(context.Background(), "Ledger", "IDENTIFICATION DIVISION.")

	assert.Equal(t, domain.ModeAIPowered, report.Mode)
	assert.Equal(t, "COBOL", report.DetectedLanguage)
	assert.Len(t, client.prompts, 2)
}

func TestDesign(t *testing.T) {
	audit := &domain.AuditReport{ProjectName: "Shop", DetectedLanguage: "PHP"}

	t.Run("ai powered", func(t *testing.T) {
		client := &scriptedClient{replies: []reply{{text: `{"architecturalDesign": {"pattern": "Modular monolith"}}`}}}
		bp := NewDesigner(newRuntime(client)).Design(context.Background(), audit)

		assert.Equal(t, domain.ModeAIPowered, bp.Mode)
		assert.Equal(t, "Shop", bp.ProjectName)
		assert.Equal(t, "Modular monolith", bp.ArchitecturalDesign.Pattern)
		assert.Contains(t, client.prompts[0], `"detectedLanguage": "PHP"`)
		assert.InDelta(t, 0.6, *client.params[0].Temperature, 1e-6)
	})

	t.Run("missing pattern falls back", func(t *testing.T) {
		client := &scriptedClient{replies: []reply{{text: `{"projectName": "Shop"}`}}}
		bp := NewDesigner(newRuntime(client)).Design(context.Background(), audit)

		assert.Equal(t, domain.ModeSimulated, bp.Mode)
		assert.Contains(t, bp.BlueprintMarkdown, "Shop")
	})
}

func TestGenerate(t *testing.T) {
	mods := "Use Django instead of FastAPI"
	in := BuildInput{
		Blueprint:     &domain.Blueprint{ProjectName: "Shop"},
		LegacyCode:    phpCode,
		Modifications: &mods,
		Phase:         1,
	}

	t.Run("ai powered", func(t *testing.T) {
		client := &scriptedClient{replies: []reply{{text: `{"files": [{"path": "app.py", "content": "def main(): pass"}]}`}}}
		bundle := NewBuilder(newRuntime(client)).Generate(context.Background(), in)

		assert.Equal(t, domain.ModeAIPowered, bundle.Mode)
		assert.Equal(t, 1, bundle.Phase)
		assert.Equal(t, "app.py", bundle.Files[0].Path)
		assert.Contains(t, client.prompts[0], mods)
		assert.InDelta(t, 0.3, *client.params[0].Temperature, 1e-6)
	})

	for name, text := range map[string]string{
		"missing files": `{"phase": 1, "dependencies": ["fastapi"]}`,
		"empty files":   `{"phase": 1, "files": []}`,
		"file no path":  `{"phase": 1, "files": [{"content": "x"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			client := &scriptedClient{replies: []reply{{text: text}}}
			bundle := NewBuilder(newRuntime(client)).Generate(context.Background(), in)

			assert.Equal(t, domain.ModeSimulated, bundle.Mode)
			require.NotEmpty(t, bundle.Files)
			assert.Equal(t, "backend/app/main.py", bundle.Files[0].Path)
		})
	}
}

func TestFix(t *testing.T) {
	t.Run("ai powered", func(t *testing.T) {
		client := &scriptedClient{replies: []reply{{text: `{"fixedCode": "def main():\n    pass\n", "changesMade": ["added main"], "reasoning": "r"}`}}}
		res := NewBuilder(newRuntime(client)).Fix(context.Background(), "import os", "No main function or class defined")

		assert.Equal(t, domain.ModeAIPowered, res.Mode)
		assert.Equal(t, []string{"added main"}, res.ChangesMade)
		assert.Contains(t, client.prompts[0], "No main function or class defined")
	})

	t.Run("empty fix falls back", func(t *testing.T) {
		client := &scriptedClient{replies: []reply{{text: `{"fixedCode": ""}`}}}
		res := NewBuilder(newRuntime(client)).Fix(context.Background(), "import os", "boom")

		assert.Equal(t, domain.ModeSimulated, res.Mode)
		assert.Equal(t, "import sys\nimport os", res.FixedCode)
	})
}

func TestSettle(t *testing.T) {
	fb := func() string { return "fallback" }

	assert.Equal(t, "ai", settle(succeeded("ai"), fb))
	for _, kind := range []FailureKind{FailureProvider, FailureMalformed, FailureInvalid} {
		assert.Equal(t, "fallback", settle(failed[string](kind, errors.New("x")), fb), kind.String())
	}
}

func TestNewRuntime_Defaults(t *testing.T) {
	rt := NewRuntime(nil, nil)
	report := NewAnalyzer(rt).Analyze(context.Background(), "p", "def f(): pass")
	assert.Equal(t, domain.ModeSimulated, report.Mode)
	assert.Equal(t, "Python 2.7", report.DetectedLanguage)
}

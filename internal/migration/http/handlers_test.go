package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codearcheologist/codearch-backend/internal/migration/agents"
	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
	"github.com/codearcheologist/codearch-backend/internal/migration/execution"
	"github.com/codearcheologist/codearch-backend/internal/migration/repository"
	"github.com/codearcheologist/codearch-backend/internal/migration/service"
)

const phpCode = `<?php $r = mysql_query("SELECT * FROM users WHERE id = " . $_GET['id']); ?>`

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rt := agents.NewRuntime(nil, nil)
	pipeline := service.NewPipeline(repository.NewMemoryRepository(),
		agents.NewAnalyzer(rt), agents.NewDesigner(rt), agents.NewBuilder(rt),
		execution.NewHeuristicChecker(), service.Options{})

	r := gin.New()
	New(pipeline, "1.0.0").Register(r.Group("/api/v1"))
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createProject(t *testing.T, r http.Handler) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"projectName": "Shop", "legacyCode": phpCode})
	w := do(t, r, http.MethodPost, "/api/v1/projects", string(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[domain.Project](t, w).ID
}

func TestRoot(t *testing.T) {
	w := do(t, newRouter(t), http.MethodGet, "/api/v1/", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "operational", body["status"])
	assert.Equal(t, "1.0.0", body["version"])
}

func TestCreateProject_Validation(t *testing.T) {
	r := newRouter(t)
	for _, body := range []string{`{}`, `{"projectName":"x"}`, `{"projectName":" ","legacyCode":" "}`, `not json`} {
		w := do(t, r, http.MethodPost, "/api/v1/projects", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestNotFound(t *testing.T) {
	r := newRouter(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/projects/missing"},
		{http.MethodGet, "/api/v1/projects/missing/logs"},
		{http.MethodGet, "/api/v1/projects/missing/dependency-graph"},
		{http.MethodPost, "/api/v1/projects/missing/analyze"},
		{http.MethodPost, "/api/v1/projects/missing/design"},
		{http.MethodPost, "/api/v1/projects/missing/approve-blueprint"},
		{http.MethodPost, "/api/v1/projects/missing/build"},
	} {
		w := do(t, r, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, tc.path)
	}
}

func TestPreconditions(t *testing.T) {
	r := newRouter(t)
	id := createProject(t, r)

	w := do(t, r, http.MethodPost, "/api/v1/projects/"+id+"/design", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "analyzed first")

	w = do(t, r, http.MethodPost, "/api/v1/projects/"+id+"/build", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/projects/"+id+"/dependency-graph", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFullFlow(t *testing.T) {
	r := newRouter(t)
	id := createProject(t, r)
	base := "/api/v1/projects/" + id

	w := do(t, r, http.MethodPost, base+"/analyze", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	analysis := decode[stageResponse](t, w)
	assert.Equal(t, domain.PhaseArchaeologist, analysis.Phase)
	assert.Equal(t, "PHP", analysis.AuditReport.DetectedLanguage)
	assert.Equal(t, domain.ModeSimulated, analysis.AuditReport.Mode)

	w = do(t, r, http.MethodGet, base+"/dependency-graph", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "digraph G {"))
	assert.Contains(t, w.Header().Get("Content-Type"), "graphviz")

	w = do(t, r, http.MethodGet, base+"/dependency-graph?format=json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[domain.DependencyGraph](t, w).Nodes, 5)

	w = do(t, r, http.MethodGet, base+"/dependency-graph?format=svg", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, base+"/design", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decode[stageResponse](t, w).Blueprint)

	w = do(t, r, http.MethodPost, base+"/approve-blueprint", `{"modifications":"Use Postgres 16"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[approveResponse](t, w).Approved)

	w = do(t, r, http.MethodPost, base+"/build", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	build := decode[buildResponse](t, w)
	assert.True(t, build.Success)
	require.NotNil(t, build.CodeOutput)
	assert.NotEmpty(t, build.CodeOutput.Files)
	assert.NotEmpty(t, build.BuildIterations)

	w = do(t, r, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[domain.Project](t, w)
	assert.Equal(t, domain.StatusBuilt, p.Status)
	require.NotNil(t, p.BlueprintModifications)
	assert.Equal(t, "Use Postgres 16", *p.BlueprintModifications)

	w = do(t, r, http.MethodGet, base+"/logs", "")
	require.Equal(t, http.StatusOK, w.Code)
	logs := decode[domain.ProjectLogs](t, w)
	assert.Equal(t, domain.PhaseBuilderComplete, logs.Phase)

	w = do(t, r, http.MethodGet, "/api/v1/projects", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Project](t, w), 1)
}

func TestApproveBlueprint_EmptyBody(t *testing.T) {
	r := newRouter(t)
	id := createProject(t, r)
	base := "/api/v1/projects/" + id

	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, base+"/analyze", "").Code)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, base+"/design", "").Code)

	w := do(t, r, http.MethodPost, base+"/approve-blueprint", "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

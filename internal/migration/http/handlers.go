package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
	"github.com/codearcheologist/codearch-backend/internal/migration/graph"
)

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "CodeArcheologist API - Multi-Agent Legacy Code Migration System",
		"version": h.version,
		"status":  "operational",
	})
}

func (h *Handler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectName and legacyCode are required"})
		return
	}

	p, err := h.pipeline.CreateProject(c.Request.Context(), req.ProjectName, req.LegacyCode)
	if err != nil {
		writeError(c, "project.create", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.pipeline.ListProjects(c.Request.Context())
	if err != nil {
		writeError(c, "project.list", err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *Handler) GetProject(c *gin.Context) {
	p, err := h.pipeline.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "project.get", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) GetLogs(c *gin.Context) {
	logs, err := h.pipeline.GetLogs(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "project.logs", err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// Analyze runs the archaeologist stage.
func (h *Handler) Analyze(c *gin.Context) {
	id := c.Param("id")
	report, err := h.pipeline.RunAnalysis(c.Request.Context(), id)
	if err != nil {
		writeError(c, "analyze", err)
		return
	}
	c.JSON(http.StatusOK, stageResponse{
		ProjectID:   id,
		Phase:       domain.StageAnalyze.AgentPhase(),
		Status:      stageComplete,
		AuditReport: report,
	})
}

// Design runs the architect stage.
func (h *Handler) Design(c *gin.Context) {
	id := c.Param("id")
	bp, err := h.pipeline.RunDesign(c.Request.Context(), id)
	if err != nil {
		writeError(c, "design", err)
		return
	}
	c.JSON(http.StatusOK, stageResponse{
		ProjectID: id,
		Phase:     domain.StageDesign.AgentPhase(),
		Status:    stageComplete,
		Blueprint: bp,
	})
}

// ApproveBlueprint accepts an empty body; modifications are optional.
func (h *Handler) ApproveBlueprint(c *gin.Context) {
	id := c.Param("id")

	var req approveBlueprintRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.pipeline.ApproveBlueprint(c.Request.Context(), id, req.Modifications); err != nil {
		writeError(c, "blueprint.approve", err)
		return
	}
	c.JSON(http.StatusOK, approveResponse{ProjectID: id, Message: "Blueprint approved", Approved: true})
}

// Build runs the builder stage and its self-healing loop.
func (h *Handler) Build(c *gin.Context) {
	id := c.Param("id")
	out, err := h.pipeline.RunBuild(c.Request.Context(), id)
	if err != nil {
		writeError(c, "build", err)
		return
	}
	c.JSON(http.StatusOK, buildResponse{
		ProjectID:       id,
		Phase:           domain.StageBuild.AgentPhase(),
		Status:          stageComplete,
		CodeOutput:      out.Bundle,
		BuildIterations: out.Iterations,
		Success:         out.Success,
	})
}

// DependencyGraph renders the audit dependency graph as DOT (default) or JSON.
func (h *Handler) DependencyGraph(c *gin.Context) {
	p, err := h.pipeline.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "project.graph", err)
		return
	}
	if p.AuditReport == nil {
		writeError(c, "project.graph", fmt.Errorf("%w: project must be analyzed first", domain.ErrPreconditionFailed))
		return
	}

	switch strings.ToLower(c.DefaultQuery("format", "dot")) {
	case "dot":
		c.Data(http.StatusOK, "text/vnd.graphviz; charset=utf-8", []byte(graph.ToDOT(p.AuditReport.DependencyGraph, p.Name)))
	case "json":
		c.JSON(http.StatusOK, p.AuditReport.DependencyGraph)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be dot or json"})
	}
}

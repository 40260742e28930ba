package http

import (
	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
	"github.com/codearcheologist/codearch-backend/internal/migration/service"
)

// Handler serves the migration pipeline API.
type Handler struct {
	pipeline *service.Pipeline
	version  string
}

func New(pipeline *service.Pipeline, version string) *Handler {
	return &Handler{pipeline: pipeline, version: version}
}

type createProjectRequest struct {
	ProjectName string `json:"projectName" binding:"required"`
	LegacyCode  string `json:"legacyCode" binding:"required"`
}

type approveBlueprintRequest struct {
	Modifications *string `json:"modifications"`
}

type stageResponse struct {
	ProjectID   string              `json:"projectId"`
	Phase       domain.Phase        `json:"phase"`
	Status      string              `json:"status"`
	AuditReport *domain.AuditReport `json:"auditReport,omitempty"`
	Blueprint   *domain.Blueprint   `json:"blueprint,omitempty"`
}

type buildResponse struct {
	ProjectID       string                  `json:"projectId"`
	Phase           domain.Phase            `json:"phase"`
	Status          string                  `json:"status"`
	CodeOutput      *domain.CodeBundle      `json:"codeOutput"`
	BuildIterations []domain.BuildIteration `json:"buildIterations"`
	Success         bool                    `json:"success"`
}

type approveResponse struct {
	ProjectID string `json:"projectId"`
	Message   string `json:"message"`
	Approved  bool   `json:"approved"`
}

const stageComplete = "complete"

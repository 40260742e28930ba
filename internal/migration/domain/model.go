package domain

import "time"

// Phase is the pipeline position of a project.
type Phase string

const (
	PhasePending               Phase = "pending"
	PhaseArchaeologist         Phase = "archaeologist"
	PhaseArchaeologistComplete Phase = "archaeologist-complete"
	PhaseArchitect             Phase = "architect"
	PhaseArchitectComplete     Phase = "architect-complete"
	PhaseBuilder               Phase = "builder"
	PhaseBuilderComplete       Phase = "builder-complete"
)

// Status mirrors Phase in human-readable form. The two always change together.
type Status string

const (
	StatusCreated   Status = "created"
	StatusAnalyzing Status = "analyzing"
	StatusAnalyzed  Status = "analyzed"
	StatusDesigning Status = "designing"
	StatusDesigned  Status = "designed"
	StatusBuilding  Status = "building"
	StatusBuilt     Status = "built"
)

// InProgress reports whether a stage is currently running for the project.
func (s Status) InProgress() bool {
	return s == StatusAnalyzing || s == StatusDesigning || s == StatusBuilding
}

// Mode is the provenance tag carried by every artifact.
type Mode string

const (
	ModeAIPowered Mode = "AI_POWERED"
	ModeSimulated Mode = "SIMULATED"
)

// Project is the aggregate that owns every artifact produced by the pipeline.
// JSON names follow the wire format the migration UI already consumes.
type Project struct {
	ID                     string           `json:"id"`
	Name                   string           `json:"projectName"`
	LegacyCode             string           `json:"legacyCode"`
	Status                 Status           `json:"status"`
	Phase                  Phase            `json:"currentPhase"`
	AuditReport            *AuditReport     `json:"auditReport,omitempty"`
	Blueprint              *Blueprint       `json:"blueprint,omitempty"`
	BlueprintApproved      bool             `json:"blueprintApproved"`
	BlueprintModifications *string          `json:"blueprintModifications,omitempty"`
	GeneratedCode          *CodeBundle      `json:"generatedCode,omitempty"`
	BuildIterations        []BuildIteration `json:"buildIterations,omitempty"`
	BuildSucceeded         *bool            `json:"success,omitempty"`
	CreatedAt              time.Time        `json:"createdAt"`
	UpdatedAt              time.Time        `json:"updatedAt"`
}

// ProjectLogs is the progress view of a project.
type ProjectLogs struct {
	ProjectID       string           `json:"projectId"`
	ProjectName     string           `json:"projectName"`
	Status          Status           `json:"status"`
	Phase           Phase            `json:"currentPhase"`
	BuildIterations []BuildIteration `json:"buildIterations"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// Logs projects the progress view out of the aggregate.
func (p *Project) Logs() *ProjectLogs {
	iterations := p.BuildIterations
	if iterations == nil {
		iterations = []BuildIteration{}
	}
	return &ProjectLogs{
		ProjectID:       p.ID,
		ProjectName:     p.Name,
		Status:          p.Status,
		Phase:           p.Phase,
		BuildIterations: iterations,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

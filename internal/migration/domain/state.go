package domain

import (
	"fmt"
	"strings"
	"time"
)

// Stage names one of the three ordered pipeline steps.
type Stage string

const (
	StageAnalyze Stage = "analyze"
	StageDesign  Stage = "design"
	StageBuild   Stage = "build"
)

type stageStates struct {
	runningPhase   Phase
	runningStatus  Status
	completePhase  Phase
	completeStatus Status
}

var stageTable = map[Stage]stageStates{
	StageAnalyze: {PhaseArchaeologist, StatusAnalyzing, PhaseArchaeologistComplete, StatusAnalyzed},
	StageDesign:  {PhaseArchitect, StatusDesigning, PhaseArchitectComplete, StatusDesigned},
	StageBuild:   {PhaseBuilder, StatusBuilding, PhaseBuilderComplete, StatusBuilt},
}

// AgentPhase is the phase label reported while or after a stage runs.
func (s Stage) AgentPhase() Phase {
	return stageTable[s].runningPhase
}

// NewProject validates the inputs and returns a project in the initial state.
func NewProject(id, name, legacyCode string, now time.Time) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(legacyCode) == "" {
		return nil, fmt.Errorf("%w: projectName and legacyCode are required", ErrValidation)
	}
	now = now.UTC()
	return &Project{
		ID:         id,
		Name:       name,
		LegacyCode: legacyCode,
		Status:     StatusCreated,
		Phase:      PhasePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// CheckPrecondition enforces the phase ordering gates for a stage.
func (p *Project) CheckPrecondition(stage Stage) error {
	switch stage {
	case StageAnalyze:
		return nil
	case StageDesign:
		if p.AuditReport == nil {
			return fmt.Errorf("%w: project must be analyzed first", ErrPreconditionFailed)
		}
		return nil
	case StageBuild:
		if p.Blueprint == nil {
			return fmt.Errorf("%w: blueprint must be created first", ErrPreconditionFailed)
		}
		if !p.BlueprintApproved {
			return fmt.Errorf("%w: blueprint must be approved first", ErrPreconditionFailed)
		}
		return nil
	default:
		return fmt.Errorf("unknown stage %q", stage)
	}
}

// BeginStage checks the gate and moves the project into the stage's running state.
func (p *Project) BeginStage(stage Stage, now time.Time) error {
	if err := p.CheckPrecondition(stage); err != nil {
		return err
	}
	st := stageTable[stage]
	p.Phase, p.Status = st.runningPhase, st.runningStatus
	p.touch(now)
	return nil
}

// CompleteAnalysis stores the audit report, replacing any previous one.
func (p *Project) CompleteAnalysis(report *AuditReport, now time.Time) {
	p.AuditReport = report
	p.complete(StageAnalyze, now)
}

// CompleteDesign stores the blueprint. A new blueprint always needs a new approval.
func (p *Project) CompleteDesign(blueprint *Blueprint, now time.Time) {
	p.Blueprint = blueprint
	p.BlueprintApproved = false
	p.complete(StageDesign, now)
}

// ApproveBlueprint records the human approval gate. Modifications are kept verbatim.
func (p *Project) ApproveBlueprint(modifications *string, now time.Time) error {
	if p.Blueprint == nil {
		return fmt.Errorf("%w: blueprint must be created first", ErrPreconditionFailed)
	}
	p.BlueprintApproved = true
	p.BlueprintModifications = modifications
	p.touch(now)
	return nil
}

// CompleteBuild stores the code bundle and the build iteration log of one run.
func (p *Project) CompleteBuild(bundle *CodeBundle, iterations []BuildIteration, success bool, now time.Time) {
	p.GeneratedCode = bundle
	p.BuildIterations = iterations
	p.BuildSucceeded = &success
	p.complete(StageBuild, now)
}

func (p *Project) complete(stage Stage, now time.Time) {
	st := stageTable[stage]
	p.Phase, p.Status = st.completePhase, st.completeStatus
	p.touch(now)
}

// touch keeps UpdatedAt monotonically non-decreasing.
func (p *Project) touch(now time.Time) {
	now = now.UTC()
	if now.After(p.UpdatedAt) {
		p.UpdatedAt = now
	}
}

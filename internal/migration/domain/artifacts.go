package domain

import (
	"fmt"
	"time"
)

// AuditReport is the Analyzer stage artifact.
type AuditReport struct {
	ProjectName            string                 `json:"projectName"`
	DetectedLanguage       string                 `json:"detectedLanguage" validate:"required"`
	Frameworks             []string               `json:"frameworks"`
	CodeQualityScore       int                    `json:"codeQualityScore" validate:"min=0,max=100"`
	BusinessLogic          BusinessLogic          `json:"businessLogic"`
	SecurityIssues         []SecurityIssue        `json:"securityIssues" validate:"dive"`
	DeprecatedDependencies []DeprecatedDependency `json:"deprecatedDependencies"`
	CodeSmells             []string               `json:"codeSmells"`
	DatabaseSchema         DatabaseSchema         `json:"databaseSchema"`
	APIEndpoints           []string               `json:"apiEndpoints"`
	DependencyGraph        DependencyGraph        `json:"dependencyGraph"`
	MigrationComplexity    string                 `json:"migrationComplexity,omitempty"`
	EstimatedEffort        string                 `json:"estimatedEffort,omitempty"`
	Mode                   Mode                   `json:"mode"`
}

type BusinessLogic struct {
	Description string   `json:"description"`
	KeyFeatures []string `json:"keyFeatures"`
	Workflows   []string `json:"workflows"`
}

// Severity levels accepted on SecurityIssue.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

type SecurityIssue struct {
	Severity       string `json:"severity" validate:"oneof=low medium high critical"`
	Issue          string `json:"issue" validate:"required"`
	Location       string `json:"location"`
	Recommendation string `json:"recommendation"`
}

type DeprecatedDependency struct {
	Name               string `json:"name"`
	CurrentVersion     string `json:"currentVersion"`
	RecommendedVersion string `json:"recommendedVersion"`
	SecurityRisk       string `json:"securityRisk"`
}

type DatabaseSchema struct {
	Detected      bool     `json:"detected"`
	Tables        []string `json:"tables"`
	Relationships []string `json:"relationships"`
}

type DependencyGraph struct {
	Nodes []GraphNode `json:"nodes" validate:"dive"`
	Edges []GraphEdge `json:"edges" validate:"dive"`
}

type GraphNode struct {
	ID    string `json:"id" validate:"required"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

type GraphEdge struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
	Label  string `json:"label"`
}

// CheckReferences verifies every edge endpoint names a declared node.
func (g DependencyGraph) CheckReferences() error {
	ids := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = struct{}{}
	}
	for i, e := range g.Edges {
		if _, ok := ids[e.Source]; !ok {
			return fmt.Errorf("edge %d: unknown source node %q", i, e.Source)
		}
		if _, ok := ids[e.Target]; !ok {
			return fmt.Errorf("edge %d: unknown target node %q", i, e.Target)
		}
	}
	return nil
}

// Blueprint is the Designer stage artifact.
type Blueprint struct {
	ProjectName            string                `json:"projectName"`
	TargetStack            TargetStack           `json:"targetStack"`
	ArchitecturalDesign    ArchitecturalDesign   `json:"architecturalDesign"`
	DatabaseDesign         DatabaseDesign        `json:"databaseDesign"`
	APIDesign              APIDesign             `json:"apiDesign"`
	FrontendStructure      FrontendStructure     `json:"frontendStructure"`
	FileStructure          FileStructure         `json:"fileStructure"`
	ImplementationPhases   []ImplementationPhase `json:"implementationPhases"`
	DecisionLog            DecisionLog           `json:"thoughtSignatures"`
	SecurityConsiderations []string              `json:"securityConsiderations"`
	TestingStrategy        string                `json:"testingStrategy"`
	BlueprintMarkdown      string                `json:"blueprintMarkdown"`
	Mode                   Mode                  `json:"mode"`
}

type TargetStack struct {
	Backend        string `json:"backend"`
	Frontend       string `json:"frontend"`
	Database       string `json:"database"`
	Authentication string `json:"authentication"`
	Deployment     string `json:"deployment"`
}

type ArchitecturalDesign struct {
	Pattern    string   `json:"pattern" validate:"required"`
	Reasoning  string   `json:"reasoning"`
	Components []string `json:"components"`
}

type DatabaseDesign struct {
	Models     []DataModel `json:"models" validate:"dive"`
	Migrations string      `json:"migrations"`
}

type DataModel struct {
	Name          string       `json:"name" validate:"required"`
	Fields        []ModelField `json:"fields"`
	Relationships []string     `json:"relationships"`
}

type ModelField struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Constraints string `json:"constraints"`
}

type APIDesign struct {
	Endpoints      []EndpointDesign `json:"endpoints"`
	Authentication string           `json:"authentication"`
}

type EndpointDesign struct {
	Method         string `json:"method"`
	Path           string `json:"path"`
	Description    string `json:"description"`
	Authentication string `json:"authentication"`
}

type FrontendStructure struct {
	Pages           []string `json:"pages"`
	Components      []string `json:"components"`
	StateManagement string   `json:"stateManagement"`
}

type FileStructure struct {
	Backend  []string `json:"backend"`
	Frontend []string `json:"frontend"`
}

type ImplementationPhase struct {
	Phase       string   `json:"phase"`
	Description string   `json:"description"`
	Files       []string `json:"files"`
	Duration    string   `json:"duration"`
}

// DecisionLog records the designer's key decisions, tradeoffs and reasoning.
type DecisionLog struct {
	KeyDecisions []string `json:"keyDecisions"`
	Tradeoffs    []string `json:"tradeoffs"`
	Reasoning    string   `json:"reasoning"`
}

// CodeBundle is the Builder stage artifact.
type CodeBundle struct {
	Phase             int             `json:"phase"`
	Files             []GeneratedFile `json:"files" validate:"required,min=1,dive"`
	Tests             []GeneratedFile `json:"tests" validate:"dive"`
	Dependencies      []string        `json:"dependencies"`
	SetupInstructions string          `json:"setupInstructions"`
	NextSteps         string          `json:"nextSteps"`
	Mode              Mode            `json:"mode"`
}

type GeneratedFile struct {
	Path        string `json:"path" validate:"required"`
	Content     string `json:"content"`
	Description string `json:"description"`
}

// Build iteration actions.
const (
	ActionExecute    = "execute"
	ActionFixApplied = "fix_applied"
)

// BuildIteration is one append-only entry of a build run. Exactly one of
// ExecutionResult or the fix fields (Changes, Reasoning) is populated.
type BuildIteration struct {
	Attempt         int              `json:"attempt"`
	Action          string           `json:"action"`
	ExecutionResult *ExecutionResult `json:"executionResult,omitempty"`
	Changes         []string         `json:"changes,omitempty"`
	Reasoning       string           `json:"reasoning,omitempty"`
	Timestamp       time.Time        `json:"timestamp"`
}

type ExecutionResult struct {
	Success         bool    `json:"success"`
	Stdout          string  `json:"stdout"`
	Stderr          string  `json:"stderr"`
	ExecutionTimeMs float64 `json:"executionTime"`
	MemoryUsageMB   float64 `json:"memoryUsage"`
	TestsPassed     int     `json:"testsPassed"`
	TestsFailed     int     `json:"testsFailed"`
}

// FixResult is the outcome of one self-healing repair attempt.
type FixResult struct {
	FixedCode   string   `json:"fixedCode"`
	ChangesMade []string `json:"changesMade"`
	Reasoning   string   `json:"reasoning"`
	Mode        Mode     `json:"mode"`
}

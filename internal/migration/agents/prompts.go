package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codearcheologist/codearch-backend/internal/migration/llm"
)

const maxOutputTokens = 8192

var (
	analyzerParams = llm.GenerationParams{Temperature: llm.Float32(0.4), MaxTokens: llm.Int(maxOutputTokens)}
	designerParams = llm.GenerationParams{Temperature: llm.Float32(0.6), MaxTokens: llm.Int(maxOutputTokens)}
	builderParams  = llm.GenerationParams{Temperature: llm.Float32(0.3), MaxTokens: llm.Int(maxOutputTokens)}
)

const onlyJSON = "Return ONLY the JSON object, no additional text."

const auditSchema = `{
  "projectName": "%s",
  "detectedLanguage": "string",
  "frameworks": ["array of frameworks"],
  "codeQualityScore": 0,
  "businessLogic": {
    "description": "string",
    "keyFeatures": ["array of features"],
    "workflows": ["array of workflows"]
  },
  "securityIssues": [
    {"severity": "critical/high/medium/low", "issue": "description", "location": "file/line", "recommendation": "fix suggestion"}
  ],
  "deprecatedDependencies": [
    {"name": "library name", "currentVersion": "version", "recommendedVersion": "version", "securityRisk": "high/medium/low"}
  ],
  "codeSmells": ["array of issues"],
  "databaseSchema": {"detected": true, "tables": ["array of table names"], "relationships": ["array of relationships"]},
  "apiEndpoints": ["array of endpoints"],
  "dependencyGraph": {
    "nodes": [{"id": "string", "label": "string", "type": "string"}],
    "edges": [{"source": "node id", "target": "node id", "label": "string"}]
  },
  "migrationComplexity": "low/medium/high/very-high",
  "estimatedEffort": "string (e.g., 2-3 weeks)"
}`

const blueprintSchema = `{
  "projectName": "string",
  "targetStack": {"backend": "string", "frontend": "string", "database": "string", "authentication": "string", "deployment": "string"},
  "architecturalDesign": {"pattern": "string", "reasoning": "why this pattern", "components": ["major components"]},
  "databaseDesign": {
    "models": [{"name": "ModelName", "fields": [{"name": "field", "type": "string", "constraints": "string"}], "relationships": ["array"]}],
    "migrations": "migration strategy"
  },
  "apiDesign": {
    "endpoints": [{"method": "GET/POST/etc", "path": "/api/path", "description": "what it does", "authentication": "required/optional/none"}],
    "authentication": "auth strategy"
  },
  "frontendStructure": {"pages": ["pages"], "components": ["reusable components"], "stateManagement": "approach"},
  "fileStructure": {"backend": ["file paths"], "frontend": ["file paths"]},
  "implementationPhases": [{"phase": "Phase 1", "description": "what to build", "files": ["files to create"], "duration": "estimated time"}],
  "thoughtSignatures": {"keyDecisions": ["major decisions"], "tradeoffs": ["tradeoffs considered"], "reasoning": "overall reasoning"},
  "securityConsiderations": ["security measures"],
  "testingStrategy": "testing approach",
  "blueprintMarkdown": "# Complete blueprint in markdown format for user review"
}`

const bundleSchema = `{
  "phase": %d,
  "files": [{"path": "relative/path/to/file.py", "content": "complete file content", "description": "what this file does"}],
  "tests": [{"path": "tests/test_file.py", "content": "test code", "description": "what it tests"}],
  "dependencies": ["required packages"],
  "setupInstructions": "how to run this code",
  "nextSteps": "what to do next"
}`

const fixSchema = `{
  "fixedCode": "corrected code",
  "changesMade": ["list of changes"],
  "reasoning": "why these fixes work"
}`

func analyzePrompt(projectName, legacyCode string) string {
	var b strings.Builder
	b.WriteString("You are the Archaeologist Agent in a legacy code migration system. ")
	b.WriteString("Analyze the legacy codebase below.\n\nLegacy Code:\n")
	b.WriteString(legacyCode)
	b.WriteString(`

Produce an audit report covering:
1. Language and framework detection
2. Business logic: core rules, features and workflows
3. Security vulnerabilities: hard-coded secrets, injection risks and similar
4. Deprecated dependencies and their security risk
5. Code smells and anti-patterns
6. Database schema and relationships, if present
7. API endpoints or routes, if it is a web application
8. A dependency graph where every edge references declared node ids

Return a JSON object with this exact structure:
`)
	fmt.Fprintf(&b, auditSchema, projectName)
	b.WriteString("\n\n")
	b.WriteString(onlyJSON)
	return b.String()
}

func designPrompt(auditJSON string) string {
	var b strings.Builder
	b.WriteString("You are the Architect Agent. You have received this audit report:\n\n")
	b.WriteString(auditJSON)
	b.WriteString(`

Design a Migration Blueprint for converting the legacy code to a modern Python/FastAPI + React (Next.js) stack:
analyze the legacy architecture, design the target architecture, plan the data model and API,
lay out an implementation roadmap, and record your key decisions and tradeoffs.

Return a JSON object with this structure:
`)
	b.WriteString(blueprintSchema)
	b.WriteString("\n\n")
	b.WriteString(onlyJSON)
	return b.String()
}

func buildPrompt(blueprintJSON, legacyCode string, modifications *string, phase int) string {
	var b strings.Builder
	b.WriteString("You are the Builder Agent in a code migration system.\n\n1. Migration Blueprint:\n")
	b.WriteString(blueprintJSON)
	b.WriteString("\n\n2. Original Legacy Code:\n")
	b.WriteString(legacyCode)
	if modifications != nil && strings.TrimSpace(*modifications) != "" {
		b.WriteString("\n\n3. Reviewer modifications to apply on top of the blueprint:\n")
		b.WriteString(*modifications)
	}
	fmt.Fprintf(&b, `

Generate production-ready code for Phase %d following the blueprint. Include complete files,
error handling, security best practices and unit tests for critical functions.
The files list must not be empty; the first file is the entry point.

Return a JSON object with this structure:
`, phase)
	fmt.Fprintf(&b, bundleSchema, phase)
	b.WriteString("\n\n")
	b.WriteString(onlyJSON)
	return b.String()
}

func fixPrompt(code, stderr string) string {
	var b strings.Builder
	b.WriteString("You are the Builder Agent in self-healing mode. The generated code has errors.\n\nOriginal Code:\n")
	b.WriteString(code)
	b.WriteString("\n\nErrors:\n")
	b.WriteString(stderr)
	b.WriteString("\n\nAnalyze the errors and provide a fixed version of the code. Return JSON:\n")
	b.WriteString(fixSchema)
	b.WriteString("\n\n")
	b.WriteString(onlyJSON)
	return b.String()
}

func indentJSON(v any) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

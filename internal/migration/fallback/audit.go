// Package fallback builds the deterministic SIMULATED artifacts used whenever
// a stage cannot get a usable answer from the model provider.
package fallback

import (
	"strings"

	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
)

const (
	LanguagePHP     = "PHP"
	LanguagePython  = "Python 2.7"
	LanguageCOBOL   = "COBOL"
	LanguageUnknown = "Unknown"
)

// DetectLanguage classifies legacy source by keyword presence. PHP wins over
// Python, Python over COBOL.
func DetectLanguage(legacyCode string) string {
	switch {
	case strings.Contains(legacyCode, "<?php") || strings.Contains(legacyCode, "mysql_"):
		return LanguagePHP
	case strings.Contains(legacyCode, "def ") || strings.Contains(legacyCode, "import "):
		return LanguagePython
	case strings.Contains(strings.ToUpper(legacyCode), "COBOL") ||
		strings.Contains(legacyCode, "IDENTIFICATION DIVISION"):
		return LanguageCOBOL
	default:
		return LanguageUnknown
	}
}

func frameworksFor(language string) []string {
	switch language {
	case LanguagePHP:
		return []string{"None (Procedural PHP)"}
	case LanguagePython:
		return []string{"Flask", "SQLAlchemy"}
	case LanguageCOBOL:
		return []string{"Mainframe CICS"}
	default:
		return []string{"Undetermined"}
	}
}

// AuditReport returns the simulated audit of legacyCode.
func AuditReport(projectName, legacyCode string) *domain.AuditReport {
	language := DetectLanguage(legacyCode)

	return &domain.AuditReport{
		ProjectName:      projectName,
		DetectedLanguage: language,
		Frameworks:       frameworksFor(language),
		CodeQualityScore: 32,
		BusinessLogic: domain.BusinessLogic{
			Description: "Legacy system with user management and payment processing",
			KeyFeatures: []string{
				"User authentication and session management",
				"Database operations with direct SQL queries",
				"Payment processing with credit card handling",
				"Admin panel with file inclusion",
			},
			Workflows: []string{
				"User login → Session creation → Access control",
				"Payment checkout → Card validation → Database storage",
				"Admin authentication → Dynamic page loading",
			},
		},
		SecurityIssues: []domain.SecurityIssue{
			{
				Severity:       domain.SeverityHigh,
				Issue:          "SQL Injection vulnerability in user query",
				Location:       "Line 7: Direct GET parameter concatenation",
				Recommendation: "Use prepared statements or parameterized queries",
			},
			{
				Severity:       domain.SeverityHigh,
				Issue:          "Hard-coded database credentials",
				Location:       "Lines 3-4: Plaintext password in source code",
				Recommendation: "Move credentials to environment variables",
			},
			{
				Severity:       domain.SeverityCritical,
				Issue:          "Storing credit card numbers in plaintext",
				Location:       "process_payment() function",
				Recommendation: "Use PCI-DSS compliant payment gateway, never store raw card data",
			},
			{
				Severity:       domain.SeverityHigh,
				Issue:          "File inclusion vulnerability",
				Location:       `Admin panel: include($_GET["page"])`,
				Recommendation: "Use whitelist approach for including files",
			},
			{
				Severity:       domain.SeverityMedium,
				Issue:          "Session hijacking risk",
				Location:       "Weak session validation",
				Recommendation: "Implement proper session management with secure tokens",
			},
		},
		DeprecatedDependencies: []domain.DeprecatedDependency{
			{
				Name:               "mysql_*() functions",
				CurrentVersion:     "PHP 4/5 (deprecated)",
				RecommendedVersion: "MySQLi or PDO",
				SecurityRisk:       domain.SeverityHigh,
			},
			{
				Name:               "Direct $_GET access",
				CurrentVersion:     "Legacy approach",
				RecommendedVersion: "Filter and sanitize all inputs",
				SecurityRisk:       domain.SeverityHigh,
			},
		},
		CodeSmells: []string{
			"No input validation or sanitization",
			"Missing error handling",
			"No code organization (procedural spaghetti)",
			"Direct database credentials in code",
			"No separation of concerns",
			"Missing HTTPS enforcement",
			"No CSRF protection",
		},
		DatabaseSchema: domain.DatabaseSchema{
			Detected: true,
			Tables:   []string{"users", "payments", "sessions", "admin_logs"},
			Relationships: []string{
				"users → payments (one-to-many)",
				"users → sessions (one-to-many)",
			},
		},
		APIEndpoints: []string{
			"GET /?id= (User retrieval - VULNERABLE)",
			"POST /checkout (Payment processing)",
			"GET /admin?page= (Admin panel - VULNERABLE)",
		},
		DependencyGraph: domain.DependencyGraph{
			Nodes: []domain.GraphNode{
				{ID: "main", Label: "Main Script", Type: "entry"},
				{ID: "db", Label: "Database Connection", Type: "module"},
				{ID: "auth", Label: "Authentication", Type: "module"},
				{ID: "payment", Label: "Payment Processing", Type: "module"},
				{ID: "admin", Label: "Admin Panel", Type: "module"},
			},
			Edges: []domain.GraphEdge{
				{Source: "main", Target: "db", Label: "uses"},
				{Source: "main", Target: "auth", Label: "calls"},
				{Source: "auth", Target: "db", Label: "queries"},
				{Source: "payment", Target: "db", Label: "writes"},
				{Source: "admin", Target: "auth", Label: "requires"},
			},
		},
		MigrationComplexity: "high",
		EstimatedEffort:     "3-4 weeks for core migration + 2 weeks security hardening",
		Mode:                domain.ModeSimulated,
	}
}

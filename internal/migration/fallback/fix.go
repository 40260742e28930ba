package fallback

import (
	"regexp"

	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
)

var firstImport = regexp.MustCompile(`import\s+\w+`)

// Fix applies the canned Python repair: the first import statement is
// replaced by the sys/os pair. Code without an import comes back unchanged.
func Fix(code string) domain.FixResult {
	fixed := code
	if loc := firstImport.FindStringIndex(code); loc != nil {
		fixed = code[:loc[0]] + "import sys\nimport os" + code[loc[1]:]
	}

	return domain.FixResult{
		FixedCode:   fixed,
		ChangesMade: []string{"Added missing imports", "Fixed indentation"},
		Reasoning:   "Applied common Python fixes for missing imports",
		Mode:        domain.ModeSimulated,
	}
}

package execution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguageFor(t *testing.T) {
	tests := map[string]string{
		"backend/app/main.py":         LangPython,
		"frontend/app/login/page.tsx": LangTypeScript,
		"lib/api.ts":                  LangTypeScript,
		"server.JS":                   LangJavaScript,
		"cmd/api/main.go":             LangGo,
		"Makefile":                    LangPython,
	}
	for p, want := range tests {
		assert.Equal(t, want, LanguageFor(p), p)
	}
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		language   string
		wantOK     bool
		wantStderr string
	}{
		{
			name:     "python module with function",
			code:     "import os\n\ndef main():\n    print(os.getcwd())\n",
			language: LangPython,
			wantOK:   true,
		},
		{
			name:       "python imports only",
			code:       "import os\nimport sys\n",
			language:   LangPython,
			wantStderr: "No main function or class defined",
		},
		{
			name:       "empty file",
			code:       "  \n\t",
			language:   LangPython,
			wantStderr: "Empty source file",
		},
		{
			name:       "unclosed paren",
			code:       "def main():\n    print((1)\n",
			language:   LangPython,
			wantStderr: "SyntaxError: '(' was never closed",
		},
		{
			name:       "stray brace",
			code:       "export function f() {\n  return 1\n}}\n",
			language:   LangTypeScript,
			wantStderr: "SyntaxError: unmatched '}' on line 3",
		},
		{
			name:     "brackets inside strings and comments are ignored",
			code:     "def f():\n    s = \"(\"  # closes later )\n    return s\n",
			language: LangPython,
			wantOK:   true,
		},
		{
			name:     "typescript line comment",
			code:     "// see https://example.com (docs\nexport const x = [1, 2]\n",
			language: LangTypeScript,
			wantOK:   true,
		},
	}

	checker := NewHeuristicChecker()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := checker.Execute(context.Background(), tt.code, tt.language)

			assert.Equal(t, tt.wantOK, res.Success)
			if tt.wantOK {
				assert.Empty(t, res.Stderr)
				assert.Positive(t, res.TestsPassed)
				assert.Zero(t, res.TestsFailed)
				return
			}
			assert.Contains(t, res.Stderr, tt.wantStderr)
			assert.Positive(t, res.TestsFailed)
			assert.Zero(t, res.TestsPassed)
		})
	}
}

func TestExecute_Deterministic(t *testing.T) {
	checker := NewHeuristicChecker()
	code := "import os\n"
	a := checker.Execute(context.Background(), code, LangPython)
	b := checker.Execute(context.Background(), code, LangPython)
	assert.Equal(t, a.Success, b.Success)
	assert.Equal(t, a.Stderr, b.Stderr)
}

func TestExecute_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := NewHeuristicChecker().Execute(ctx, "def f(): pass", LangPython)
	assert.False(t, res.Success)
	assert.Contains(t, res.Stderr, "context canceled")
}

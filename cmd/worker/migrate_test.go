package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
	"github.com/codearcheologist/codearch-backend/internal/migration/llm"
)

const legacyPHP = `<?php
$conn = mysql_connect("localhost", "root", "secret");
$id = $_GET["id"];
$row = mysql_query("SELECT * FROM users WHERE id = " . $id);
?>`

func TestRunMigration_WritesSimulatedBundle(t *testing.T) {
	out := t.TempDir()

	summary, err := runMigration(context.Background(), llm.DisabledClient{}, migrateOptions{
		name:   "Shop",
		outDir: out,
	}, legacyPHP)
	require.NoError(t, err)

	assert.Equal(t, "PHP", summary.DetectedLanguage)
	assert.Equal(t, "SIMULATED", summary.Modes["code"])
	assert.True(t, summary.Build.Success)
	assert.Equal(t, 1, summary.Build.Executions)
	assert.Contains(t, summary.Files, "backend/app/main.py")
	assert.Contains(t, summary.Tests, "backend/tests/test_auth.py")

	for _, name := range []string{"backend/app/main.py", "backend/tests/test_auth.py", "BLUEPRINT.md", "SETUP.md", "dependency-graph.dot"} {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(name)))
	}

	raw, err := os.ReadFile(filepath.Join(out, "summary.yaml"))
	require.NoError(t, err)
	var decoded runSummary
	require.NoError(t, yaml.Unmarshal(raw, &decoded))
	assert.Equal(t, summary.ProjectID, decoded.ProjectID)
	assert.Equal(t, "Shop", decoded.ProjectName)
}

func TestWriteGenerated_RefusesEscapingPaths(t *testing.T) {
	root := t.TempDir()

	for _, p := range []string{"../evil.py", "/etc/passwd", "a/../../b.py"} {
		err := writeGenerated(root, domain.GeneratedFile{Path: p, Content: "x"})
		assert.Error(t, err, p)
	}

	require.NoError(t, writeGenerated(root, domain.GeneratedFile{Path: "app/./ok.py", Content: "x"}))
	assert.FileExists(t, filepath.Join(root, "app", "ok.py"))
}

func TestMigrateCmd_Simulate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "legacy_shop.php")
	require.NoError(t, os.WriteFile(src, []byte(legacyPHP), 0o644))
	out := filepath.Join(dir, "out")

	root := newRootCmd()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetArgs([]string{"migrate", src, "--simulate", "--out", out, "--modifications", "keep the admin panel"})

	require.NoError(t, root.Execute())
	assert.Contains(t, stdout.String(), "success=true")
	assert.FileExists(t, filepath.Join(out, "summary.yaml"))
}

func TestMigrateCmd_MissingFile(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"migrate", filepath.Join(t.TempDir(), "nope.php"), "--simulate"})
	assert.Error(t, root.Execute())
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/codearcheologist/codearch-backend/config"
	"github.com/codearcheologist/codearch-backend/internal/migration/agents"
	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
	"github.com/codearcheologist/codearch-backend/internal/migration/execution"
	"github.com/codearcheologist/codearch-backend/internal/migration/graph"
	"github.com/codearcheologist/codearch-backend/internal/migration/llm"
	"github.com/codearcheologist/codearch-backend/internal/migration/repository"
	"github.com/codearcheologist/codearch-backend/internal/migration/resilience"
	"github.com/codearcheologist/codearch-backend/internal/migration/service"
)

type migrateOptions struct {
	name          string
	outDir        string
	modifications string
	simulate      bool
}

// runSummary is written next to the generated files as summary.yaml.
type runSummary struct {
	ProjectID        string            `yaml:"project_id"`
	ProjectName      string            `yaml:"project_name"`
	DetectedLanguage string            `yaml:"detected_language"`
	Modes            map[string]string `yaml:"modes"`
	Build            buildSummary      `yaml:"build"`
	Files            []string          `yaml:"files"`
	Tests            []string          `yaml:"tests"`
	Dependencies     []string          `yaml:"dependencies"`
	NextSteps        string            `yaml:"next_steps"`
}

type buildSummary struct {
	Success    bool     `yaml:"success"`
	Executions int      `yaml:"executions"`
	Fixes      []string `yaml:"fixes,omitempty"`
}

func newMigrateCmd() *cobra.Command {
	opts := migrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate <legacy-file>",
		Short: "Analyze, design, approve and build a legacy file in one go",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			legacy, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read legacy file: %w", err)
			}
			if opts.name == "" {
				opts.name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			client := llm.Client(llm.DisabledClient{})
			if !opts.simulate {
				client = modelClientFromEnv()
			}

			summary, err := runMigration(cmd.Context(), client, opts, string(legacy))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "project %s built into %s (success=%t, executions=%d)\n",
				summary.ProjectID, opts.outDir, summary.Build.Success, summary.Build.Executions)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "project name (defaults to the file name)")
	cmd.Flags().StringVar(&opts.outDir, "out", "out", "directory that receives the generated code")
	cmd.Flags().StringVar(&opts.modifications, "modifications", "", "notes passed along with the blueprint approval")
	cmd.Flags().BoolVar(&opts.simulate, "simulate", false, "skip the model provider and use simulated artifacts")
	return cmd
}

func modelClientFromEnv() llm.Client {
	cfg, err := config.Load()
	if err != nil || cfg.LLM.APIKey == "" {
		return llm.DisabledClient{}
	}
	client, err := llm.NewOpenAIClient(llm.OpenAIOptions{
		APIKey:            cfg.LLM.APIKey,
		BaseURL:           cfg.LLM.BaseURL,
		Model:             cfg.LLM.Model,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
	})
	if err != nil {
		return llm.DisabledClient{}
	}
	return client
}

// runMigration drives one project through every stage on an in-memory store
// and writes the artifacts under opts.outDir.
func runMigration(ctx context.Context, client llm.Client, opts migrateOptions, legacyCode string) (*runSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	rt := agents.NewRuntime(client, resilience.NewInvoker(resilience.DefaultPolicy()))
	pipeline := service.NewPipeline(
		repository.NewMemoryRepository(),
		agents.NewAnalyzer(rt),
		agents.NewDesigner(rt),
		agents.NewBuilder(rt),
		execution.NewHeuristicChecker(),
		service.Options{},
	)

	p, err := pipeline.CreateProject(ctx, opts.name, legacyCode)
	if err != nil {
		return nil, err
	}
	audit, err := pipeline.RunAnalysis(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	bp, err := pipeline.RunDesign(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	var mods *string
	if opts.modifications != "" {
		mods = &opts.modifications
	}
	if err := pipeline.ApproveBlueprint(ctx, p.ID, mods); err != nil {
		return nil, err
	}
	outcome, err := pipeline.RunBuild(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	summary := &runSummary{
		ProjectID:        p.ID,
		ProjectName:      p.Name,
		DetectedLanguage: audit.DetectedLanguage,
		Modes: map[string]string{
			"audit":     string(audit.Mode),
			"blueprint": string(bp.Mode),
			"code":      string(outcome.Bundle.Mode),
		},
		Build: buildSummary{
			Success:    outcome.Success,
			Executions: outcome.Executions(),
		},
		Dependencies: outcome.Bundle.Dependencies,
		NextSteps:    outcome.Bundle.NextSteps,
	}
	for _, it := range outcome.Iterations {
		if it.Action == domain.ActionFixApplied {
			summary.Build.Fixes = append(summary.Build.Fixes, it.Reasoning)
		}
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	for _, f := range outcome.Bundle.Files {
		if err := writeGenerated(opts.outDir, f); err != nil {
			return nil, err
		}
		summary.Files = append(summary.Files, f.Path)
	}
	for _, f := range outcome.Bundle.Tests {
		if err := writeGenerated(opts.outDir, f); err != nil {
			return nil, err
		}
		summary.Tests = append(summary.Tests, f.Path)
	}

	extras := map[string]string{
		"BLUEPRINT.md":         bp.BlueprintMarkdown,
		"SETUP.md":             outcome.Bundle.SetupInstructions,
		"dependency-graph.dot": graph.ToDOT(audit.DependencyGraph, p.Name),
	}
	for name, content := range extras {
		if err := os.WriteFile(filepath.Join(opts.outDir, name), []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}

	raw, err := yaml.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(opts.outDir, "summary.yaml"), raw, 0o644); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}

	return summary, nil
}

// writeGenerated writes f below root. Paths that would leave root are refused.
func writeGenerated(root string, f domain.GeneratedFile) error {
	rel := filepath.Clean(filepath.FromSlash(f.Path))
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("generated path %q escapes the output directory", f.Path)
	}

	dst := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", f.Path, err)
	}
	if err := os.WriteFile(dst, []byte(f.Content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	return nil
}

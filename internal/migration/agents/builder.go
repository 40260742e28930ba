package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
	"github.com/codearcheologist/codearch-backend/internal/migration/fallback"
)

const (
	opGenerate = "builder.generate"
	opFix      = "builder.fix"
)

var errEmptyFix = errors.New("fix returned no code")

// BuildInput is what the builder needs to generate one phase of code.
type BuildInput struct {
	Blueprint     *domain.Blueprint
	LegacyCode    string
	Modifications *string
	Phase         int
}

// Builder generates code bundles and repairs failing files.
type Builder struct {
	rt *Runtime
}

func NewBuilder(rt *Runtime) *Builder {
	return &Builder{rt: rt}
}

// Generate returns a bundle with at least one file. A model answer without
// files is rejected and replaced by the simulated bundle.
func (b *Builder) Generate(ctx context.Context, in BuildInput) *domain.CodeBundle {
	phase := in.Phase
	if phase < 1 {
		phase = 1
	}

	var o outcome[*domain.CodeBundle]
	bpJSON, err := indentJSON(in.Blueprint)
	if err != nil {
		o = failed[*domain.CodeBundle](FailureInvalid, fmt.Errorf("encode blueprint: %w", err))
	} else {
		o = request(ctx, b.rt, opGenerate, buildPrompt(bpJSON, in.LegacyCode, in.Modifications, phase), builderParams,
			func(cb *domain.CodeBundle) error {
				if len(cb.Files) == 0 {
					return errors.New("response missing files")
				}
				if cb.Phase == 0 {
					cb.Phase = phase
				}
				cb.Mode = domain.ModeAIPowered
				return nil
			})
	}
	logFallback(ctx, opGenerate, o)

	return settle(o, func() *domain.CodeBundle {
		return fallback.CodeBundle(in.Blueprint, phase)
	})
}

// Fix asks for a repaired version of code given the execution errors.
func (b *Builder) Fix(ctx context.Context, code, stderr string) domain.FixResult {
	o := request(ctx, b.rt, opFix, fixPrompt(code, stderr), builderParams,
		func(fr *domain.FixResult) error {
			if fr.FixedCode == "" {
				return errEmptyFix
			}
			fr.Mode = domain.ModeAIPowered
			return nil
		})
	logFallback(ctx, opFix, o)

	res := settle(o, func() *domain.FixResult {
		fr := fallback.Fix(code)
		return &fr
	})
	return *res
}

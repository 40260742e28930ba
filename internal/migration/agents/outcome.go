// Package agents holds the three stage roles of the migration pipeline.
//
// Each role asks the model for one artifact and always returns one: the raw
// model path yields an outcome, and settle maps any failed outcome to the
// matching simulated artifact.
package agents

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/codearcheologist/codearch-backend/internal/logging"
	"github.com/codearcheologist/codearch-backend/internal/migration/extract"
	"github.com/codearcheologist/codearch-backend/internal/migration/llm"
	"github.com/codearcheologist/codearch-backend/internal/migration/resilience"
)

// FailureKind classifies why the model path produced no usable artifact.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureProvider covers fatal provider errors and exhausted retries.
	FailureProvider
	FailureMalformed
	FailureInvalid
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureProvider:
		return "provider"
	case FailureMalformed:
		return "malformed"
	case FailureInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

type outcome[T any] struct {
	value T
	kind  FailureKind
	err   error
}

func succeeded[T any](v T) outcome[T] { return outcome[T]{value: v} }

func failed[T any](kind FailureKind, err error) outcome[T] {
	return outcome[T]{kind: kind, err: err}
}

// settle picks the model artifact when the outcome succeeded and the
// fallback otherwise.
func settle[T any](o outcome[T], fallback func() T) T {
	if o.kind == FailureNone {
		return o.value
	}
	return fallback()
}

// Runtime is what every role needs to reach the model.
type Runtime struct {
	client   llm.Client
	invoker  *resilience.Invoker
	validate *validator.Validate
}

func NewRuntime(client llm.Client, invoker *resilience.Invoker) *Runtime {
	if client == nil {
		client = llm.DisabledClient{}
	}
	if invoker == nil {
		invoker = resilience.NewInvoker(resilience.DefaultPolicy())
	}
	return &Runtime{client: client, invoker: invoker, validate: validator.New()}
}

// request runs one model call through the invoker, extracts the JSON object
// into a fresh T, runs check (which may also normalize) and then validates
// the struct tags.
func request[T any](ctx context.Context, rt *Runtime, operation, prompt string, params llm.GenerationParams, check func(*T) error) outcome[*T] {
	raw, err := resilience.Do(ctx, rt.invoker, operation, func(ctx context.Context) (string, error) {
		return rt.client.Generate(ctx, prompt, params)
	})
	if err != nil {
		return failed[*T](FailureProvider, err)
	}

	out := new(T)
	if err := extract.JSONObject(raw, out); err != nil {
		return failed[*T](FailureMalformed, err)
	}
	if check != nil {
		if err := check(out); err != nil {
			return failed[*T](FailureInvalid, err)
		}
	}
	if err := rt.validate.StructCtx(ctx, out); err != nil {
		return failed[*T](FailureInvalid, fmt.Errorf("validate: %w", err))
	}
	return succeeded(out)
}

func logFallback[T any](ctx context.Context, operation string, o outcome[T]) {
	if o.kind == FailureNone {
		return
	}
	logging.NewLogger(ctx).With("failure", o.kind.String()).
		LogWarnf(operation, "falling back to simulated output: %v", o.err)
}

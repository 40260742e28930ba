// Package resilience wraps model calls with bounded fixed-delay retries.
//
// Only transient provider failures (rate limit, service unavailable) are
// retried. Everything else is returned on the first failure, and after the
// last attempt the last error is returned unchanged. Substituting a fallback
// is left to the caller.
package resilience

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/codearcheologist/codearch-backend/internal/logging"
)

const (
	DefaultMaxAttempts = 3
	DefaultDelay       = 2 * time.Second
)

// Policy bounds the retry loop. Delay is fixed between attempts.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Delay: DefaultDelay}
}

// RetryHook observes each retry before the backoff sleep.
type RetryHook func(operation string, attempt int, err error)

type Option func(*Invoker)

// WithSleep replaces the backoff wait.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(i *Invoker) { i.sleep = sleep }
}

func WithRetryHook(hook RetryHook) Option {
	return func(i *Invoker) { i.onRetry = hook }
}

type Invoker struct {
	policy  Policy
	sleep   func(ctx context.Context, d time.Duration) error
	onRetry RetryHook
}

func NewInvoker(policy Policy, opts ...Option) *Invoker {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = DefaultMaxAttempts
	}
	if policy.Delay < 0 {
		policy.Delay = 0
	}
	inv := &Invoker{policy: policy, sleep: sleepCtx}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

func (i *Invoker) Policy() Policy { return i.policy }

// Do runs call until it succeeds, fails fatally, or the attempt budget is spent.
func Do[T any](ctx context.Context, inv *Invoker, operation string, call func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	logger := logging.NewLogger(ctx)

	for attempt := 1; ; attempt++ {
		out, err := call(ctx)
		if err == nil {
			return out, nil
		}
		if !IsTransient(err) || attempt >= inv.policy.MaxAttempts {
			return zero, err
		}

		logger.LogWarnf(operation, "model overloaded, retrying in %s (attempt %d/%d): %v",
			inv.policy.Delay, attempt, inv.policy.MaxAttempts, err)
		if inv.onRetry != nil {
			inv.onRetry(operation, attempt, err)
		}
		if serr := inv.sleep(ctx, inv.policy.Delay); serr != nil {
			return zero, err
		}
	}
}

type transient interface {
	Transient() bool
}

// IsTransient reports whether err carries a rate-limit or overload signature.
// Typed provider errors decide for themselves; untyped errors are matched on
// the 429/503 status text.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var t transient
	if errors.As(err, &t) {
		return t.Transient()
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "503")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

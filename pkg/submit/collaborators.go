package submit

import (
	"context"

	"github.com/goliatone/go-formsubmit/pkg/payload"
)

// Logger is the minimal logging surface the pipeline writes to. The default
// discards everything; hosts inject their own.
type Logger interface {
	Logf(format string, args ...any)
}

// LoggerFunc adapts plain functions to the Logger interface.
type LoggerFunc func(format string, args ...any)

// Logf executes the wrapped function when non-nil.
func (fn LoggerFunc) Logf(format string, args ...any) {
	if fn == nil {
		return
	}
	fn(format, args...)
}

type nopLogger struct{}

func (nopLogger) Logf(string, ...any) {}

// SuccessHandler is the collaborator notified as a submission advances
// through its happy path. It replaces the process-wide success handler
// registries of attribute-driven hosts with an explicit, injectable value.
type SuccessHandler interface {
	// OnRequest receives the (possibly middleware-overridden) request body
	// before validation.
	OnRequest(ctx context.Context, body payload.Body)
	// OnResponse receives the accepted, normalized result.
	OnResponse(ctx context.Context, result *Result)
	// OnSuccess receives the final result once the after stage settles.
	OnSuccess(ctx context.Context, result *Result)
}

type nopSuccess struct{}

func (nopSuccess) OnRequest(context.Context, payload.Body) {}
func (nopSuccess) OnResponse(context.Context, *Result)     {}
func (nopSuccess) OnSuccess(context.Context, *Result)      {}

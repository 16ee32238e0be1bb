// Package formsubmit orchestrates declarative form submissions: it assembles
// nested request payloads from bound fields, validates them, runs staged
// middleware, dispatches through a pluggable transport, and settles the
// result against UI affordances and lifecycle observers.
package formsubmit

import (
	"context"

	"github.com/goliatone/go-formsubmit/pkg/descriptor"
	"github.com/goliatone/go-formsubmit/pkg/field"
	"github.com/goliatone/go-formsubmit/pkg/hooks"
	"github.com/goliatone/go-formsubmit/pkg/payload"
	"github.com/goliatone/go-formsubmit/pkg/submit"
)

// Pipeline drives submissions; alias exported via the root package for
// convenience.
type Pipeline = submit.Pipeline

// Options carries the per-call inputs of one submission.
type Options = submit.Options

// Defaults is one precedence tier of stage parameters.
type Defaults = submit.Defaults

// Result is a settled submission's resolution value.
type Result = submit.Result

// Field is a host-independent snapshot of one bound input.
type Field = field.Field

// Body is the bucketed request payload.
type Body = payload.Body

// Stage identifies one phase of the submission state machine.
type Stage = hooks.Stage

// New constructs a submission pipeline, mirroring submit.New.
func New(options ...submit.Option) *Pipeline {
	return submit.New(options...)
}

// Submit runs a one-off submission through a fresh pipeline. It is the
// simplest entry point for callers that do not hold a long-lived pipeline.
func Submit(ctx context.Context, opts Options, options ...submit.Option) (*Result, error) {
	return submit.New(options...).Submit(ctx, opts)
}

// SubmitForm runs a loaded descriptor through a fresh pipeline configured
// with the form's declared defaults and message catalogs. Additional pipeline
// options append after the form-derived ones and may override them.
func SubmitForm(ctx context.Context, form descriptor.Form, options ...submit.Option) (*Result, error) {
	combined := append([]submit.Option{
		submit.WithDefaults(form.Defaults),
		submit.WithCatalog(form.Catalog),
	}, options...)
	return submit.New(combined...).Submit(ctx, form.Options())
}

// NewRegistry constructs an empty middleware registry for pipeline wiring.
func NewRegistry() *hooks.Registry {
	return hooks.NewRegistry()
}

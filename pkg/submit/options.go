package submit

import (
	"net/http"
	"time"

	"github.com/goliatone/go-formsubmit/pkg/affordance"
	"github.com/goliatone/go-formsubmit/pkg/broadcast"
	"github.com/goliatone/go-formsubmit/pkg/confirm"
	"github.com/goliatone/go-formsubmit/pkg/envelope"
	"github.com/goliatone/go-formsubmit/pkg/field"
	"github.com/goliatone/go-formsubmit/pkg/hooks"
	"github.com/goliatone/go-formsubmit/pkg/payload"
	"github.com/goliatone/go-formsubmit/pkg/transport"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

// Defaults is one precedence tier of stage parameters. The pipeline resolves
// each parameter as: explicit call options, then the declared defaults
// (resolved declarative configuration), then the fallback tier, then the
// static default.
type Defaults struct {
	Target   string
	Method   string
	Encoding string
	Header   http.Header
	Confirm  string
	Include  []string
	// Delay is an artificial pre-request pause, useful for backpressure
	// shaping and deterministic tests.
	Delay time.Duration
}

// Options carries the per-call inputs of one submission.
type Options struct {
	// Fields are the bound input snapshots to assemble and validate.
	Fields []field.Field
	// Sources backs the per-field "from" lookups.
	Sources field.Sources
	// Channels adds per-call side-channel data sets.
	Channels map[string]payload.Channel
	// Include names the optional side channels to merge.
	Include []string
	// Hooks declares per-call middleware identifiers per stage, appended to
	// the registry's static bindings.
	Hooks map[hooks.Stage][]string

	// Stage parameter overrides; empty values fall through the precedence
	// tiers.
	Target   string
	Method   string
	Encoding string
	Header   http.Header
	Confirm  string
	Delay    time.Duration
}

// Option customises the pipeline configuration.
type Option func(*Pipeline)

// WithTransport injects the request-executing collaborator.
func WithTransport(t transport.Transport) Option {
	return func(p *Pipeline) { p.transport = t }
}

// WithBroadcaster injects the plugin observer contract.
func WithBroadcaster(b broadcast.Broadcaster) Option {
	return func(p *Pipeline) { p.broadcaster = b }
}

// WithHookRegistry injects the middleware registry.
func WithHookRegistry(r *hooks.Registry) Option {
	return func(p *Pipeline) { p.registry = r }
}

// WithAffordances injects the UI affordance toggler. Providing one also
// declares a message affordance: resolved failure messages render into it
// instead of reaching the process-wide error handler.
func WithAffordances(t affordance.Toggler) Option {
	return func(p *Pipeline) {
		p.affordances = t
		p.hasMessageAffordance = t != nil
	}
}

// WithMessageRenderer formats resolved failure messages through a template
// before they reach the message affordance. Without one, messages are still
// sanitized before display.
func WithMessageRenderer(r *affordance.MessageRenderer) Option {
	return func(p *Pipeline) { p.messageRenderer = r }
}

// WithResponseAdapter overrides the response acceptance predicate and
// extractors.
func WithResponseAdapter(a envelope.Adapter) Option {
	return func(p *Pipeline) { p.adapter = a }
}

// WithCatalog installs the code/status message catalogs used to resolve
// display messages for failures.
func WithCatalog(c envelope.Catalog) Option {
	return func(p *Pipeline) { p.catalog = c }
}

// WithConfirmer installs the confirmation collaborator. Submissions that
// resolve a confirmation prompt ask it before dispatch.
func WithConfirmer(c confirm.Confirmer) Option {
	return func(p *Pipeline) { p.confirmer = c }
}

// WithCredentials installs the credential provider attached to outgoing
// requests.
func WithCredentials(fn transport.CredentialFunc) Option {
	return func(p *Pipeline) { p.credentials = fn }
}

// WithValidityReporter injects the host's native validity-report mechanism.
func WithValidityReporter(r validation.Reporter) Option {
	return func(p *Pipeline) { p.reporter = r }
}

// WithSuccessHandler injects the success-handling collaborator.
func WithSuccessHandler(h SuccessHandler) Option {
	return func(p *Pipeline) { p.success = h }
}

// WithLogger injects the pipeline logger.
func WithLogger(l Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithErrorHandler installs the process-wide error handler that receives
// failures when no message affordance is declared.
func WithErrorHandler(fn func(error)) Option {
	return func(p *Pipeline) { p.errorHandler = fn }
}

// WithDefaults installs the declared-configuration tier of stage parameters.
func WithDefaults(d Defaults) Option {
	return func(p *Pipeline) { p.declared = d }
}

// WithFallback installs the plain-attribute fallback tier of stage
// parameters.
func WithFallback(d Defaults) Option {
	return func(p *Pipeline) { p.fallback = d }
}

// WithSingleFlight switches overlapping submissions to cancel-and-replace:
// starting a new submission cancels the one in flight. The default keeps
// overlapping submissions independent.
func WithSingleFlight() Option {
	return func(p *Pipeline) { p.singleFlight = true }
}

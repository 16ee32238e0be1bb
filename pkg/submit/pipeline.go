// Package submit drives one form submission from trigger to settlement: it
// assembles the request body, validates it, runs the staged middleware
// chains, dispatches the transport and normalizes the response, broadcasting
// every stage to observers and honouring cooperative cancellation.
package submit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-formsubmit/pkg/affordance"
	"github.com/goliatone/go-formsubmit/pkg/broadcast"
	"github.com/goliatone/go-formsubmit/pkg/confirm"
	"github.com/goliatone/go-formsubmit/pkg/envelope"
	"github.com/goliatone/go-formsubmit/pkg/hooks"
	"github.com/goliatone/go-formsubmit/pkg/payload"
	"github.com/goliatone/go-formsubmit/pkg/transport"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

// Built-in side-channel names. They merge only when a submission requests
// them through Include.
const (
	ChannelQuery   = "query"
	ChannelPage    = "page"
	ChannelApplied = "applied"
)

// PageBucket is the destination bucket pagination state merges into.
const PageBucket = "page"

// Submission is the per-invocation context: an opaque id, the assembled
// request body, and the options that produced it. A submission is owned
// exclusively by its Submit call and discarded on settlement; its
// cancellation handle lives in the context threaded through the stages.
type Submission struct {
	ID      string
	Data    payload.Body
	Options Options
}

// Result is the pipeline's resolution value.
type Result struct {
	ID       string
	Request  payload.Body
	Response map[string]any
	Item     any
	Page     any
}

// Pipeline sequences Before, Validation, Request, Response and After, with a
// single Error stage absorbing rejections from any of them. Construct one
// with New and share it; per-submission state lives in Submission values.
type Pipeline struct {
	transport            transport.Transport
	broadcaster          broadcast.Broadcaster
	registry             *hooks.Registry
	affordances          affordance.Toggler
	hasMessageAffordance bool
	messageRenderer      *affordance.MessageRenderer
	adapter              envelope.Adapter
	catalog              envelope.Catalog
	confirmer            confirm.Confirmer
	credentials          transport.CredentialFunc
	reporter             validation.Reporter
	success              SuccessHandler
	logger               Logger
	errorHandler         func(error)
	declared             Defaults
	fallback             Defaults
	singleFlight         bool

	mu       sync.Mutex
	current  *handle
	page     map[string]any
	pageSize int
	applied  map[string]any
	query    map[string]any
}

// handle identifies the currently held cancellation for Abort and for
// clearing on settlement. Overlapping submissions each hold their own.
type handle struct {
	cancel context.CancelFunc
}

// New constructs a pipeline. Missing collaborators default to the built-in
// implementations: HTTP transport, no-op broadcaster and affordances, the
// canonical response adapter, and an empty hook registry.
func New(options ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	if p.transport == nil {
		p.transport = transport.NewHTTP()
	}
	if p.broadcaster == nil {
		p.broadcaster = broadcast.Nop{}
	}
	if p.registry == nil {
		p.registry = hooks.NewRegistry()
	}
	if p.affordances == nil {
		p.affordances = affordance.Nop{}
	}
	if p.success == nil {
		p.success = nopSuccess{}
	}
	if p.logger == nil {
		p.logger = nopLogger{}
	}
	return p
}

// Submit drives one submission through the pipeline. The returned error is
// already decorated; sentinel failures (validation, declined confirmation)
// are absorbed and surface as a nil result with a nil error.
func (p *Pipeline) Submit(ctx context.Context, opts Options) (*Result, error) {
	if ctx == nil {
		return nil, errors.New("submit: context is required")
	}

	runCtx, cancel := context.WithCancel(ctx)
	h := &handle{cancel: cancel}

	p.mu.Lock()
	if p.singleFlight && p.current != nil {
		p.current.cancel()
	}
	p.current = h
	p.mu.Unlock()

	defer func() {
		cancel()
		p.mu.Lock()
		if p.current == h {
			p.current = nil
		}
		p.mu.Unlock()
	}()

	sub, err := p.assemble(opts)
	if err != nil {
		return nil, p.fail(runCtx, sub, err)
	}

	result, err := p.run(runCtx, sub)
	if err != nil {
		return nil, p.fail(runCtx, sub, err)
	}
	return result, nil
}

// Trigger is the fire-and-forget entry point: it broadcasts the trigger
// event and runs the submission in the background, discarding the rejection
// for callers that do not need to observe failure.
func (p *Pipeline) Trigger(ctx context.Context, opts Options) {
	p.broadcaster.Notify(broadcast.EventTrigger, broadcast.Payload{"props": opts})
	go func() {
		_, _ = p.Submit(ctx, opts)
	}()
}

// Abort cancels the currently held submission, if any, and broadcasts the
// abort event. Submissions already past a suspension point still run to
// completion; cancellation is cooperative, not preemptive.
func (p *Pipeline) Abort() {
	p.mu.Lock()
	h := p.current
	p.mu.Unlock()

	if h != nil {
		h.cancel()
	}
	p.broadcaster.Notify(broadcast.EventAbort, nil)
}

// Apply merges externally supplied values into the applied side channel and
// broadcasts the apply event. Submissions pick them up by including the
// "applied" channel.
func (p *Pipeline) Apply(values map[string]any) {
	p.mu.Lock()
	if p.applied == nil {
		p.applied = make(map[string]any)
	}
	for key, value := range values {
		p.applied[key] = value
	}
	p.mu.Unlock()

	p.broadcaster.Notify(broadcast.EventApply, broadcast.Payload{"request": values})
}

// UpdatePage replaces the stored pagination state and broadcasts the
// page-update event.
func (p *Pipeline) UpdatePage(page map[string]any, size int) {
	p.mu.Lock()
	p.page = page
	p.pageSize = size
	p.mu.Unlock()

	p.broadcaster.Notify(broadcast.EventPageUpdate, broadcast.Payload{
		"page": page,
		"size": size,
	})
}

// SetQuery replaces the captured-query side channel.
func (p *Pipeline) SetQuery(values map[string]any) {
	p.mu.Lock()
	p.query = values
	p.mu.Unlock()
}

// CaptureQuery parses a raw query string into the captured-query side
// channel. Repeated parameters accumulate under a "name[]" key.
func (p *Pipeline) CaptureQuery(rawQuery string) error {
	parsed, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		return err
	}
	values := make(map[string]any, len(parsed))
	for key, entries := range parsed {
		if len(entries) == 1 && !strings.HasSuffix(key, "[]") {
			values[key] = entries[0]
			continue
		}
		seq := make([]any, 0, len(entries))
		for _, entry := range entries {
			seq = append(seq, entry)
		}
		if !strings.HasSuffix(key, "[]") {
			key += "[]"
		}
		values[key] = seq
	}
	p.SetQuery(values)
	return nil
}

// assemble builds the submission context: it resolves the side channels and
// converts the bound fields into the nested request body.
func (p *Pipeline) assemble(opts Options) (*Submission, error) {
	channels := make(map[string]payload.Channel, len(opts.Channels)+3)

	p.mu.Lock()
	if len(p.query) > 0 {
		channels[ChannelQuery] = payload.Channel{Values: cloneValues(p.query)}
	}
	if len(p.page) > 0 {
		channels[ChannelPage] = payload.Channel{Bucket: PageBucket, Values: cloneValues(p.page)}
	}
	if len(p.applied) > 0 {
		channels[ChannelApplied] = payload.Channel{Values: cloneValues(p.applied)}
	}
	p.mu.Unlock()

	for name, channel := range opts.Channels {
		channels[name] = channel
	}

	params := p.resolveParams(opts)
	body, err := payload.Assemble(opts.Fields, payload.Options{
		Sources:  opts.Sources,
		Include:  params.include,
		Channels: channels,
	})
	if err != nil {
		return nil, err
	}

	return &Submission{ID: newID(), Data: body, Options: opts}, nil
}

// params is the fully resolved set of stage parameters for one submission.
type params struct {
	target   string
	method   string
	encoding string
	header   http.Header
	confirm  string
	include  []string
	delay    time.Duration
}

// resolveParams applies the precedence chain: explicit call options, then
// declared configuration, then the plain fallback tier, then static
// defaults.
func (p *Pipeline) resolveParams(opts Options) params {
	out := params{
		target:   pick(opts.Target, p.declared.Target, p.fallback.Target),
		method:   pick(opts.Method, p.declared.Method, p.fallback.Method, http.MethodPost),
		encoding: pick(opts.Encoding, p.declared.Encoding, p.fallback.Encoding),
		confirm:  pick(opts.Confirm, p.declared.Confirm, p.fallback.Confirm),
	}

	out.delay = opts.Delay
	if out.delay == 0 {
		out.delay = p.declared.Delay
	}
	if out.delay == 0 {
		out.delay = p.fallback.Delay
	}

	out.header = make(http.Header)
	for _, tier := range []http.Header{p.fallback.Header, p.declared.Header, opts.Header} {
		for key, values := range tier {
			out.header[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
		}
	}

	seen := make(map[string]struct{})
	for _, tier := range [][]string{p.fallback.Include, p.declared.Include, opts.Include} {
		for _, name := range tier {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out.include = append(out.include, name)
		}
	}
	return out
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}

func newID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "submission"
	}
	return hex.EncodeToString(buf[:])
}

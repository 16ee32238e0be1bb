// Package hooks resolves, per pipeline stage, a composed middleware chain from
// declared hook identifiers. Hooks can veto a stage by returning an error,
// transform it by returning a partial override, or simply observe it.
package hooks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formsubmit/pkg/payload"
)

// Stage identifies one phase of the submission state machine.
type Stage string

const (
	StageBefore     Stage = "before"
	StageValidation Stage = "validation"
	StageRequest    Stage = "request"
	StageResponse   Stage = "response"
	StageAfter      Stage = "after"
	StageError      Stage = "error"
)

// Payload is the value threaded through a stage's chain. Which parts are
// populated depends on the stage: Request from before onwards, Response from
// the response stage, Invalid during validation, Err in the error stage.
type Payload struct {
	Request  payload.Body
	Response map[string]any
	Invalid  []string
	Err      error
}

// Override is a hook's partial replacement of the stage payload. Only the
// populated parts substitute; everything else passes through unchanged.
type Override struct {
	Request  payload.Body
	Response map[string]any
	Invalid  []string
	Err      error
}

// Func is a single middleware hook. It receives the (possibly already
// overridden) payload from the previous link together with the submission's
// shared cancellation context, and may return a partial override.
type Func func(ctx context.Context, p Payload) (*Override, error)

// Chain is a resolved sequence of hooks for one stage.
type Chain func(ctx context.Context, p Payload) (Payload, error)

// Identity resolves immediately with the original payload.
func Identity(_ context.Context, p Payload) (Payload, error) { return p, nil }

// Registry stores named hooks and static per-stage bindings. Construct one
// registry at startup and inject it into the pipeline; tests can supply a
// fresh registry per case.
type Registry struct {
	mu    sync.RWMutex
	named map[string]Func
	bound map[Stage][]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		named: make(map[string]Func),
		bound: make(map[Stage][]string),
	}
}

// Register adds a named hook. Duplicate names return an error.
func (r *Registry) Register(name string, fn Func) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("hooks: hook name is required")
	}
	if fn == nil {
		return fmt.Errorf("hooks: hook %q is nil", trimmed)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.named[trimmed]; exists {
		return fmt.Errorf("hooks: hook %q already registered", trimmed)
	}
	r.named[trimmed] = fn
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, fn Func) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Bind statically attaches registered hook names to a stage. Bound hooks run
// before any per-call identifiers.
func (r *Registry) Bind(stage Stage, names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bound[stage] = append(r.bound[stage], names...)
}

// List returns the registered hook names in lexical order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.named))
	for name := range r.named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve composes the chain for a stage from its static bindings followed by
// the per-call identifiers. Unknown identifiers fail resolution. An empty
// declaration yields the identity chain.
func (r *Registry) Resolve(stage Stage, ids []string) (Chain, error) {
	r.mu.RLock()
	declared := append([]string(nil), r.bound[stage]...)
	declared = append(declared, ids...)

	links := make([]Func, 0, len(declared))
	for _, id := range declared {
		fn, ok := r.named[id]
		if !ok {
			r.mu.RUnlock()
			return nil, fmt.Errorf("hooks: %s hook %q not registered", stage, id)
		}
		links = append(links, fn)
	}
	r.mu.RUnlock()

	if len(links) == 0 {
		return Identity, nil
	}

	return func(ctx context.Context, p Payload) (Payload, error) {
		for _, fn := range links {
			if err := ctx.Err(); err != nil {
				return p, err
			}
			override, err := fn(ctx, p)
			if err != nil {
				return p, err
			}
			p = apply(p, override)
		}
		return p, nil
	}, nil
}

// apply substitutes only the parts the override populates.
func apply(p Payload, override *Override) Payload {
	if override == nil {
		return p
	}
	if override.Request != nil {
		p.Request = override.Request
	}
	if override.Response != nil {
		p.Response = override.Response
	}
	if override.Invalid != nil {
		p.Invalid = append(p.Invalid, override.Invalid...)
	}
	if override.Err != nil {
		p.Err = override.Err
	}
	return p
}

package hooks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsubmit/pkg/hooks"
	"github.com/goliatone/go-formsubmit/pkg/payload"
)

func TestResolveEmptyYieldsIdentity(t *testing.T) {
	registry := hooks.NewRegistry()

	chain, err := registry.Resolve(hooks.StageBefore, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	in := hooks.Payload{Request: payload.Body{"data": {"a": "b"}}}
	out, err := chain(context.Background(), in)
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("identity chain mutated payload (-want +got):\n%s", diff)
	}
}

func TestResolveUnknownIdentifier(t *testing.T) {
	registry := hooks.NewRegistry()
	if _, err := registry.Resolve(hooks.StageRequest, []string{"missing"}); err == nil {
		t.Fatalf("expected unknown identifier error")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	registry := hooks.NewRegistry()
	fn := func(context.Context, hooks.Payload) (*hooks.Override, error) { return nil, nil }
	if err := registry.Register("dup", fn); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("dup", fn); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestChainOverrideOrPassThrough(t *testing.T) {
	registry := hooks.NewRegistry()

	replaced := payload.Body{"data": {"rewritten": true}}
	registry.MustRegister("rewrite", func(_ context.Context, p hooks.Payload) (*hooks.Override, error) {
		return &hooks.Override{Request: replaced}, nil
	})

	var sawRewritten bool
	registry.MustRegister("observe", func(_ context.Context, p hooks.Payload) (*hooks.Override, error) {
		sawRewritten = p.Request["data"]["rewritten"] == true
		return nil, nil
	})

	chain, err := registry.Resolve(hooks.StageBefore, []string{"rewrite", "observe"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	out, err := chain(context.Background(), hooks.Payload{Request: payload.Body{"data": {}}})
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if !sawRewritten {
		t.Fatalf("second link must receive the overridden payload")
	}
	if diff := cmp.Diff(replaced, out.Request); diff != "" {
		t.Fatalf("override not applied (-want +got):\n%s", diff)
	}
}

func TestBindRunsBeforePerCallIdentifiers(t *testing.T) {
	registry := hooks.NewRegistry()

	var order []string
	mk := func(name string) hooks.Func {
		return func(context.Context, hooks.Payload) (*hooks.Override, error) {
			order = append(order, name)
			return nil, nil
		}
	}
	registry.MustRegister("static", mk("static"))
	registry.MustRegister("dynamic", mk("dynamic"))
	registry.Bind(hooks.StageRequest, "static")

	chain, err := registry.Resolve(hooks.StageRequest, []string{"dynamic"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := chain(context.Background(), hooks.Payload{}); err != nil {
		t.Fatalf("chain: %v", err)
	}

	if diff := cmp.Diff([]string{"static", "dynamic"}, order); diff != "" {
		t.Fatalf("execution order mismatch (-want +got):\n%s", diff)
	}
}

func TestChainStopsOnHookError(t *testing.T) {
	registry := hooks.NewRegistry()

	boom := errors.New("boom")
	registry.MustRegister("fail", func(context.Context, hooks.Payload) (*hooks.Override, error) {
		return nil, boom
	})
	reached := false
	registry.MustRegister("never", func(context.Context, hooks.Payload) (*hooks.Override, error) {
		reached = true
		return nil, nil
	})

	chain, err := registry.Resolve(hooks.StageAfter, []string{"fail", "never"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := chain(context.Background(), hooks.Payload{}); !errors.Is(err, boom) {
		t.Fatalf("expected hook error, got %v", err)
	}
	if reached {
		t.Fatalf("chain must stop at the failing link")
	}
}

func TestChainObservesCancellation(t *testing.T) {
	registry := hooks.NewRegistry()
	registry.MustRegister("noop", func(context.Context, hooks.Payload) (*hooks.Override, error) {
		return nil, nil
	})

	chain, err := registry.Resolve(hooks.StageBefore, []string{"noop"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := chain(ctx, hooks.Payload{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestValidationOverrideAppendsNames(t *testing.T) {
	registry := hooks.NewRegistry()
	registry.MustRegister("flag-extra", func(context.Context, hooks.Payload) (*hooks.Override, error) {
		return &hooks.Override{Invalid: []string{"extra"}}, nil
	})

	chain, err := registry.Resolve(hooks.StageValidation, []string{"flag-extra"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	out, err := chain(context.Background(), hooks.Payload{Invalid: []string{"base"}})
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if diff := cmp.Diff([]string{"base", "extra"}, out.Invalid); diff != "" {
		t.Fatalf("invalid names mismatch (-want +got):\n%s", diff)
	}
}

package submit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-formsubmit/pkg/affordance"
	"github.com/goliatone/go-formsubmit/pkg/broadcast"
	"github.com/goliatone/go-formsubmit/pkg/envelope"
	"github.com/goliatone/go-formsubmit/pkg/hooks"
	"github.com/goliatone/go-formsubmit/pkg/transport"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

// run advances a submission through the happy-path stages in order. The first
// stage error aborts the sequence; fail handles decoration and the error
// chain.
func (p *Pipeline) run(ctx context.Context, sub *Submission) (*Result, error) {
	if err := p.before(ctx, sub); err != nil {
		return nil, err
	}
	if err := p.validate(ctx, sub); err != nil {
		return nil, err
	}
	resp, err := p.request(ctx, sub)
	if err != nil {
		return nil, err
	}
	result, err := p.response(ctx, sub, resp)
	if err != nil {
		return nil, err
	}
	if err := p.after(ctx, sub, result); err != nil {
		return nil, err
	}
	return result, nil
}

// before waits for observers, asks for confirmation when the submission
// resolves a prompt, and runs the before chain. A declined confirmation stops
// the pipeline through the confirmation sentinel.
func (p *Pipeline) before(ctx context.Context, sub *Submission) error {
	if err := p.broadcaster.Ready(ctx); err != nil {
		return fmt.Errorf("submit: broadcaster ready: %w", err)
	}

	params := p.resolveParams(sub.Options)
	if params.confirm != "" && p.confirmer != nil {
		approved, err := p.confirmer.Confirm(ctx, params.confirm)
		if err != nil {
			return fmt.Errorf("submit: confirm: %w", err)
		}
		if !approved {
			return ErrConfirmation
		}
	}

	out, err := p.runChain(ctx, sub, hooks.StageBefore, hooks.Payload{Request: sub.Data})
	if err != nil {
		return err
	}
	sub.Data = out.Request

	p.broadcaster.Notify(broadcast.EventBefore, broadcast.Payload{"request": sub.Data})
	p.affordances.Reset()
	p.success.OnRequest(ctx, sub.Data)
	return nil
}

// validate computes the invalid set, lets the validation chain extend it, and
// reports through the host mechanism when anything is invalid. Validation
// failure is a silent stop, not a rejection.
func (p *Pipeline) validate(ctx context.Context, sub *Submission) error {
	invalid := validation.Validate(sub.Options.Fields)

	out, err := p.runChain(ctx, sub, hooks.StageValidation, hooks.Payload{
		Request: sub.Data,
		Invalid: invalid.Sorted(),
	})
	if err != nil {
		return err
	}

	merged := validation.NewNames(out.Invalid...)
	if merged.Empty() {
		return nil
	}

	if p.reporter != nil {
		p.reporter.Report(merged, validation.Messages(sub.Options.Fields, merged))
	}
	p.broadcaster.Notify(broadcast.EventInvalid, nil)
	return ErrValidation
}

// request applies the optional pre-dispatch delay, runs the request chain and
// dispatches through the transport, relaying upload progress to observers.
func (p *Pipeline) request(ctx context.Context, sub *Submission) (*transport.Response, error) {
	params := p.resolveParams(sub.Options)

	if params.delay > 0 {
		timer := time.NewTimer(params.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	out, err := p.runChain(ctx, sub, hooks.StageRequest, hooks.Payload{Request: sub.Data})
	if err != nil {
		return nil, err
	}
	sub.Data = out.Request

	p.broadcaster.Notify(broadcast.EventRequest, broadcast.Payload{"request": sub.Data})
	p.affordances.Busy(true)

	req := transport.Request{
		Target:   params.target,
		Method:   params.method,
		Encoding: params.encoding,
		Header:   params.header,
		Body:     sub.Data,
	}
	if p.credentials != nil {
		cred := p.credentials()
		if cred.Token != "" {
			header := cred.Header
			if header == "" {
				header = transport.DefaultCredentialHeader
			}
			req.Header.Set(header, cred.Token)
		}
	}

	resp, err := p.transport.Do(ctx, req, func(progress transport.Progress) {
		p.broadcaster.Notify(broadcast.EventUploadStart, broadcast.Payload{
			"percent": progress.Percent,
		})
	})
	if err != nil {
		p.affordances.Busy(false)
		return nil, fmt.Errorf("submit: dispatch: %w", err)
	}
	return resp, nil
}

// response decodes and adapts the raw transport result. A response failing
// the acceptance predicate rejects with the raw value; an accepted one
// settles the busy affordances and records pagination state.
func (p *Pipeline) response(ctx context.Context, sub *Submission, resp *transport.Response) (*Result, error) {
	raw, err := envelope.Decode(resp.Body)
	if err != nil {
		p.affordances.Busy(false)
		return nil, err
	}

	out, err := p.runChain(ctx, sub, hooks.StageResponse, hooks.Payload{
		Request:  sub.Data,
		Response: raw,
	})
	if err != nil {
		p.affordances.Busy(false)
		return nil, err
	}
	raw = out.Response

	env, err := p.adapter.Normalize(raw)
	if err != nil {
		p.affordances.Busy(false)
		return nil, err
	}

	if page, ok := env.Page.(map[string]any); ok {
		p.mu.Lock()
		p.page = page
		p.mu.Unlock()
	}

	result := &Result{
		ID:       sub.ID,
		Request:  sub.Data,
		Response: raw,
		Item:     env.Item,
		Page:     env.Page,
	}

	p.broadcaster.Notify(broadcast.EventResponse, broadcast.Payload{
		"request":  sub.Data,
		"response": raw,
		"page":     env.Page,
	})
	p.broadcaster.Notify(broadcast.EventUploadStop, nil)
	p.affordances.Busy(false)
	p.affordances.Reset()
	p.success.OnResponse(ctx, result)
	return result, nil
}

// after runs the final chain and settles the submission. The chain's output
// is the pipeline's resolution value, so overrides flow into the result.
func (p *Pipeline) after(ctx context.Context, sub *Submission, result *Result) error {
	out, err := p.runChain(ctx, sub, hooks.StageAfter, hooks.Payload{
		Request:  result.Request,
		Response: result.Response,
	})
	if err != nil {
		return err
	}
	result.Request = out.Request
	result.Response = out.Response

	p.broadcaster.Notify(broadcast.EventAfter, broadcast.Payload{
		"item": result.Item,
		"page": result.Page,
	})
	p.affordances.ShowSuccess()
	p.success.OnSuccess(ctx, result)
	return nil
}

// fail settles a rejected submission: sentinels absorb silently, everything
// else resolves a display message from the original failure, notifies
// observers, runs the error chain (which may replace the raised error) and
// finally either renders into the message affordance or escalates to the
// error handler. The returned error is the decorated rejection handed back
// to the caller.
func (p *Pipeline) fail(ctx context.Context, sub *Submission, err error) error {
	p.logger.Logf("submit: submission failed: %v", err)

	if errors.Is(err, ErrValidation) {
		return nil
	}
	if errors.Is(err, ErrConfirmation) {
		p.affordances.Reset()
		return nil
	}

	// Observers and the message catalog see the original failure; the error
	// chain only influences what the caller receives.
	message := p.catalog.Resolve(envelope.Classify(err))

	p.broadcaster.Notify(broadcast.EventAfter, broadcast.Payload{"error": err})
	p.broadcaster.Notify(broadcast.EventUploadStop, nil)
	p.affordances.Reset()

	out, chainErr := p.runChain(ctx, sub, hooks.StageError, hooks.Payload{Err: err})
	if chainErr == nil && out.Err != nil {
		err = out.Err
	}

	decorated := &Error{Message: message, Err: err}
	if p.hasMessageAffordance {
		p.affordances.ShowError(p.displayMessage(message))
	} else if p.errorHandler != nil {
		p.errorHandler(decorated)
	}
	return decorated
}

// displayMessage prepares a resolved message for the host affordance.
// Catalog entries and server-supplied messages are untrusted markup.
func (p *Pipeline) displayMessage(message string) string {
	if p.messageRenderer != nil {
		rendered, err := p.messageRenderer.Render(message)
		if err == nil {
			return rendered
		}
		p.logger.Logf("submit: render failure message: %v", err)
	}
	return affordance.Sanitize(message)
}

// runChain resolves and executes the chain for one stage, combining the
// registry's static bindings with the submission's per-call identifiers.
func (p *Pipeline) runChain(ctx context.Context, sub *Submission, stage hooks.Stage, in hooks.Payload) (hooks.Payload, error) {
	var ids []string
	if sub != nil {
		ids = sub.Options.Hooks[stage]
	}
	chain, err := p.registry.Resolve(stage, ids)
	if err != nil {
		return in, err
	}
	out, err := chain(ctx, in)
	if err != nil {
		return in, fmt.Errorf("submit: %s stage: %w", stage, err)
	}
	return out, nil
}

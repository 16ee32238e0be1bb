// Package broadcast defines the observer contract the submission pipeline
// notifies at every lifecycle stage, plus an in-process hub implementation for
// hosts without their own plugin bus.
package broadcast

import "context"

// Event names broadcast across a submission's lifecycle. Payload shapes are
// documented on each constant.
type Event string

const (
	// EventBefore carries {"request": body} before dispatch.
	EventBefore Event = "before"
	// EventInvalid carries an empty payload when validation fails.
	EventInvalid Event = "invalid"
	// EventRequest carries {"request": body} as the transport is invoked.
	EventRequest Event = "request"
	// EventResponse carries {"request", "response", "page"}.
	EventResponse Event = "response"
	// EventAfter carries the final result, or {"error": err} on failure.
	EventAfter Event = "after"
	// EventAbort signals cancellation of the in-flight submission.
	EventAbort Event = "abort"
	// EventApply carries externally applied values: {"request"?, "response"?}.
	EventApply Event = "apply"
	// EventTrigger carries {"props": options} for fire-and-forget submissions.
	EventTrigger Event = "trigger"
	// EventPageUpdate carries {"page", "size", "with"?}.
	EventPageUpdate Event = "page-update"
	// EventUploadStart carries {"percent": n} while a transfer progresses.
	EventUploadStart Event = "upload-start"
	// EventUploadStop carries an empty payload once transfer ends.
	EventUploadStop Event = "upload-stop"
)

// Payload is the loose bag of values attached to an event.
type Payload map[string]any

// Broadcaster is the two-operation plugin contract the pipeline depends on:
// wait until observers are ready, then fan events out to them. The pipeline
// never learns how observers are discovered or registered.
type Broadcaster interface {
	// Ready blocks until observers are prepared to receive events, or the
	// context is cancelled.
	Ready(ctx context.Context) error
	// Notify broadcasts an event. Delivery is synchronous and best-effort;
	// observers must not fail the pipeline.
	Notify(event Event, payload Payload)
}

// Nop is a Broadcaster that is always ready and drops every event.
type Nop struct{}

// Ready reports immediately.
func (Nop) Ready(ctx context.Context) error { return ctx.Err() }

// Notify discards the event.
func (Nop) Notify(Event, Payload) {}

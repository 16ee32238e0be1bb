// Package affordance abstracts the UI affordances a submission toggles:
// busy indicators, success reveals, and failure messages. The pipeline only
// depends on the Toggler contract; hosts decide what the affordances are.
package affordance

import "sync"

// Toggler mutates the host's submission affordances. Implementations must be
// safe for use from concurrent submissions; the pipeline provides no mutual
// exclusion (a known shared-resource hazard of overlapping submissions).
type Toggler interface {
	// Reset returns every affordance to its idle state.
	Reset()
	// Busy toggles the in-flight affordances: disable inputs, reveal the
	// progress indicator.
	Busy(active bool)
	// ShowSuccess reveals the success affordance.
	ShowSuccess()
	// ShowError renders a resolved failure message into the message
	// affordance.
	ShowError(message string)
}

// Nop is a Toggler that does nothing.
type Nop struct{}

func (Nop) Reset()           {}
func (Nop) Busy(bool)        {}
func (Nop) ShowSuccess()     {}
func (Nop) ShowError(string) {}

// Recorder captures every toggle for assertions in tests.
type Recorder struct {
	mu     sync.Mutex
	Calls  []string
	Errors []string
}

func (r *Recorder) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, call)
}

func (r *Recorder) Reset()       { r.record("reset") }
func (r *Recorder) ShowSuccess() { r.record("success") }

func (r *Recorder) Busy(active bool) {
	if active {
		r.record("busy")
		return
	}
	r.record("idle")
}

func (r *Recorder) ShowError(message string) {
	r.mu.Lock()
	r.Errors = append(r.Errors, message)
	r.mu.Unlock()
	r.record("error")
}

// Snapshot returns a copy of the recorded calls.
func (r *Recorder) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.Calls...)
}

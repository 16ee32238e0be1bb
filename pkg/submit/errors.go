package submit

import "errors"

// Sentinel errors used purely for control flow inside the pipeline. Neither
// ever reaches the caller: validation failures short-circuit silently, and a
// declined confirmation resets the affordances and stops.
var (
	ErrValidation   = errors.New("submit: validation failed")
	ErrConfirmation = errors.New("submit: confirmation declined")
)

// Error is the decorated failure the overall submission rejects with. Message
// holds the display message resolved through the catalog precedence chain;
// the underlying cause remains reachable through Unwrap.
type Error struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "submit: submission failed"
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

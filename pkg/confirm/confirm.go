// Package confirm provides the optional confirmation step a submission can
// require before dispatch. The pipeline only depends on the Confirmer
// contract; the terminal implementation is one choice of host.
package confirm

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// Confirmer asks the user to approve a submission. Returning false without an
// error means the user declined; the pipeline treats that as a silent reset,
// not a failure.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// Func adapts a plain function to the Confirmer interface.
type Func func(ctx context.Context, message string) (bool, error)

// Confirm executes the wrapped function.
func (fn Func) Confirm(ctx context.Context, message string) (bool, error) {
	return fn(ctx, message)
}

// Always approves every confirmation. Useful for tests and headless hosts.
func Always() Confirmer {
	return Func(func(ctx context.Context, _ string) (bool, error) {
		return true, ctx.Err()
	})
}

// Terminal prompts on the controlling terminal via survey. An interrupt
// (ctrl-c) counts as declining rather than failing.
type Terminal struct {
	// Default is the answer preselected in the prompt.
	Default bool
	// Help is shown when the user asks for help.
	Help string
}

// Ensure the implementation satisfies the contract.
var _ Confirmer = (*Terminal)(nil)

// Confirm asks a yes/no question and reports the answer.
func (t *Terminal) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var approved bool
	prompt := &survey.Confirm{
		Message: message,
		Default: t.Default,
		Help:    t.Help,
	}
	if err := survey.AskOne(prompt, &approved); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return false, nil
		}
		return false, err
	}
	return approved, nil
}

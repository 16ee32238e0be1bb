package affordance

import (
	"fmt"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy
)

// messageSanitizer strips everything but basic inline markup from resolved
// failure messages before they reach a host affordance. Server-supplied
// messages are untrusted input.
func messageSanitizer() *bluemonday.Policy {
	messagePolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "code", "br")
		messagePolicy = policy
	})
	return messagePolicy
}

// Sanitize removes unsafe markup from a message.
func Sanitize(message string) string {
	return strings.TrimSpace(messageSanitizer().Sanitize(message))
}

// MessageRenderer formats resolved messages through a string template before
// they are shown. The message binds to "message" in the template context and
// is sanitized first.
type MessageRenderer struct {
	tpl *pongo2.Template
}

// NewMessageRenderer parses the template. An empty template renders the
// sanitized message verbatim.
func NewMessageRenderer(template string) (*MessageRenderer, error) {
	r := &MessageRenderer{}
	if strings.TrimSpace(template) == "" {
		return r, nil
	}
	tpl, err := pongo2.FromString(template)
	if err != nil {
		return nil, fmt.Errorf("affordance: parse message template: %w", err)
	}
	r.tpl = tpl
	return r, nil
}

// Render sanitizes and formats the message.
func (r *MessageRenderer) Render(message string) (string, error) {
	clean := Sanitize(message)
	if r == nil || r.tpl == nil {
		return clean, nil
	}
	out, err := r.tpl.Execute(pongo2.Context{"message": clean})
	if err != nil {
		return "", fmt.Errorf("affordance: render message: %w", err)
	}
	return out, nil
}

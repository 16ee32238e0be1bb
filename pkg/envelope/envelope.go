// Package envelope normalizes raw transport results into the canonical
// response shape and classifies failures into displayable records.
package envelope

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Envelope is the canonical response after adaptation. Only Item and Page
// reach later pipeline stages.
type Envelope struct {
	Code int
	Item any
	Page any
}

// Adapter maps a raw decoded response into the canonical envelope. Every
// function is optional; zero-value adapters behave like DefaultAdapter.
type Adapter struct {
	// Accept decides whether the raw response counts as success. When it
	// reports false the pipeline rejects with the raw response.
	Accept func(raw map[string]any) bool
	// ExtractItem pulls the canonical item out of the raw response.
	ExtractItem func(raw map[string]any) any
	// ExtractPage pulls the pagination state out of the raw response.
	ExtractPage func(raw map[string]any) any
}

// DefaultAdapter implements the default contract: incoming
// {code, data: {item, page}}, accepted when code == 200.
func DefaultAdapter() Adapter {
	return Adapter{
		Accept: func(raw map[string]any) bool {
			return numeric(raw["code"]) == 200
		},
		ExtractItem: func(raw map[string]any) any { return dig(raw, "data", "item") },
		ExtractPage: func(raw map[string]any) any { return dig(raw, "data", "page") },
	}
}

// Normalize applies the adapter to a raw response. A rejected response
// returns *Rejected carrying the raw value undecorated.
func (a Adapter) Normalize(raw map[string]any) (Envelope, error) {
	if a.Accept == nil && a.ExtractItem == nil && a.ExtractPage == nil {
		a = DefaultAdapter()
	}
	if a.Accept != nil && !a.Accept(raw) {
		return Envelope{}, &Rejected{Raw: raw}
	}

	env := Envelope{Code: int(numeric(raw["code"]))}
	if a.ExtractItem != nil {
		env.Item = a.ExtractItem(raw)
	}
	if a.ExtractPage != nil {
		env.Page = a.ExtractPage(raw)
	}
	return env, nil
}

// Decode parses a raw response body into the loose map the adapter consumes.
func Decode(body []byte) (map[string]any, error) {
	if len(body) == 0 {
		return map[string]any{}, nil
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("envelope: decode response: %w", err)
	}
	return raw, nil
}

// Rejected reports a response that failed the acceptance predicate. The raw
// response propagates as the rejection value, never the canonical envelope.
type Rejected struct {
	Raw map[string]any
}

// Error implements the error interface.
func (r *Rejected) Error() string {
	return fmt.Sprintf("envelope: response rejected (code %v)", r.Raw["code"])
}

func dig(raw map[string]any, keys ...string) any {
	var current any = raw
	for _, key := range keys {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[key]
	}
	return current
}

// numeric coerces the loosely typed code values JSON decoding produces.
func numeric(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}

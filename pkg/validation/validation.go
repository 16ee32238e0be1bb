// Package validation computes the set of currently invalid field names for a
// submission, applying mutual-exclusion group rules before the standard
// required/pattern checks.
package validation

import (
	"regexp"
	"sort"
	"sync"

	"github.com/goliatone/go-formsubmit/pkg/field"
)

// GenericRequiredMessage is used when a field or group declares no message of
// its own.
const GenericRequiredMessage = "this field is required"

// Names is the set of invalid field names. Duplicates coalesce.
type Names map[string]struct{}

// NewNames builds a set from the given field names.
func NewNames(names ...string) Names {
	set := make(Names, len(names))
	for _, name := range names {
		set.Add(name)
	}
	return set
}

// Add inserts a name into the set.
func (n Names) Add(name string) {
	if name == "" {
		return
	}
	n[name] = struct{}{}
}

// Has reports membership.
func (n Names) Has(name string) bool {
	_, ok := n[name]
	return ok
}

// Empty reports whether no field is invalid.
func (n Names) Empty() bool { return len(n) == 0 }

// Sorted returns the names in lexical order.
func (n Names) Sorted() []string {
	out := make([]string, 0, len(n))
	for name := range n {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Reporter surfaces invalid fields through the host's native validity
// mechanism. The pipeline invokes it once per failed validation pass.
type Reporter interface {
	Report(invalid Names, messages map[string]string)
}

// ReporterFunc adapts plain functions to the Reporter interface.
type ReporterFunc func(invalid Names, messages map[string]string)

// Report executes the wrapped function when non-nil.
func (fn ReporterFunc) Report(invalid Names, messages map[string]string) {
	if fn == nil {
		return
	}
	fn(invalid, messages)
}

// Validate computes the invalid field set. Required fields sharing a
// validation group are mutually substitutable: when any member is non-blank,
// the remaining blank members are exempted for this pass only (disabled, then
// unconditionally re-enabled before returning). When every member is blank,
// only the group's first member is reported. After group resolution a standard
// pass collects every enabled field failing its required or pattern
// constraint.
func Validate(fields []field.Field) Names {
	invalid := make(Names)

	exempt := applyGroupExemptions(fields, invalid)
	defer func() {
		for _, idx := range exempt {
			fields[idx].Disabled = false
		}
	}()

	for i := range fields {
		f := fields[i]
		if f.Disabled {
			continue
		}
		if f.Required && f.Blank() {
			invalid.Add(f.Name)
			continue
		}
		if f.Pattern != "" && !f.Blank() && !matchPattern(f.Pattern, f.Value) {
			invalid.Add(f.Name)
		}
	}

	return invalid
}

// Messages resolves a human-readable message for every invalid field: the
// field's group message when it represents an all-blank group, the generic
// required message otherwise.
func Messages(fields []field.Field, invalid Names) map[string]string {
	if invalid.Empty() {
		return nil
	}
	out := make(map[string]string, len(invalid))
	for _, f := range fields {
		if !invalid.Has(f.Name) {
			continue
		}
		if _, done := out[f.Name]; done {
			continue
		}
		msg := GenericRequiredMessage
		if f.Group != "" && f.GroupMessage != "" {
			msg = f.GroupMessage
		}
		out[f.Name] = msg
	}
	return out
}

// applyGroupExemptions partitions required fields by validation group,
// disables the blank members of satisfied groups, and reports the
// representative member of all-blank groups. It returns the indices of the
// fields it disabled so the caller can restore them.
func applyGroupExemptions(fields []field.Field, invalid Names) []int {
	groups := make(map[string][]int)
	var order []string
	for i := range fields {
		f := fields[i]
		if f.Group == "" || !f.Required {
			continue
		}
		if _, seen := groups[f.Group]; !seen {
			order = append(order, f.Group)
		}
		groups[f.Group] = append(groups[f.Group], i)
	}

	var exempt []int
	for _, name := range order {
		members := groups[name]
		satisfied := false
		for _, idx := range members {
			if !fields[idx].Blank() {
				satisfied = true
				break
			}
		}
		if satisfied {
			for _, idx := range members {
				if fields[idx].Blank() && !fields[idx].Disabled {
					fields[idx].Disabled = true
					exempt = append(exempt, idx)
				}
			}
			continue
		}
		invalid.Add(fields[members[0]].Name)
		// Exempt the rest so the standard pass does not also report them.
		for _, idx := range members[1:] {
			if !fields[idx].Disabled {
				fields[idx].Disabled = true
				exempt = append(exempt, idx)
			}
		}
	}
	return exempt
}

var (
	patternMu    sync.RWMutex
	patternCache = make(map[string]*regexp.Regexp)
)

// matchPattern reports whether value satisfies the declared pattern. An
// uncompilable pattern never matches, so the field surfaces as invalid rather
// than silently passing.
func matchPattern(pattern, value string) bool {
	patternMu.RLock()
	re, ok := patternCache[pattern]
	patternMu.RUnlock()

	if !ok {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			return false
		}
		patternMu.Lock()
		patternCache[pattern] = re
		patternMu.Unlock()
	}
	return re.MatchString(value)
}

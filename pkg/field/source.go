package field

import (
	"fmt"

	"github.com/flosch/pongo2/v6"
)

// LookupFunc resolves an interpolated key against a named data source. The
// boolean reports whether the source knows the key.
type LookupFunc func(key string) (any, bool)

// Sources maps declared source kinds to their lookup functions. A submission
// supplies one table for all its fields; tests supply a fresh table per case.
type Sources map[string]LookupFunc

// MapSource adapts a plain map into a LookupFunc.
func MapSource(values map[string]any) LookupFunc {
	return func(key string) (any, bool) {
		v, ok := values[key]
		return v, ok
	}
}

// Transform passes an extracted value through the field's declared source
// lookup. The value is interpolated into the source pattern, the result is
// resolved through the named source, and when no source is configured (or the
// source does not know the key) the interpolated key itself is the result.
// Fields without a Source declaration pass through unchanged.
func Transform(f Field, value any, sources Sources) (any, error) {
	if f.Source == nil {
		return value, nil
	}

	key, err := interpolate(f.Source.Pattern, value)
	if err != nil {
		return nil, fmt.Errorf("field: source pattern for %q: %w", f.Name, err)
	}

	if lookup, ok := sources[f.Source.Kind]; ok && lookup != nil {
		if resolved, found := lookup(key); found {
			return resolved, nil
		}
	}
	return key, nil
}

// interpolate renders the pattern as a string template with the raw value
// bound to "value". Patterns without template markup pass through verbatim.
func interpolate(pattern string, value any) (string, error) {
	if pattern == "" {
		return fmt.Sprint(value), nil
	}

	tpl, err := pongo2.FromString(pattern)
	if err != nil {
		return "", err
	}
	return tpl.Execute(pongo2.Context{"value": value})
}

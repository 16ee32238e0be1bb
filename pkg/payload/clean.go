package payload

import (
	"io"
	"time"

	"github.com/goliatone/go-formsubmit/pkg/field"
)

// CleanBody applies Clean to every bucket of the body in place and returns it.
func CleanBody(body Body) Body {
	for _, bucket := range body {
		cleanMap(bucket)
	}
	return body
}

// Clean recursively removes absent entries from a nested structure: sequences
// drop nil members (an emptied sequence is itself dropped), mappings clean
// key by key, and opaque leaf values (file handles, readers, byte blobs,
// instants) pass through untouched. Clean is idempotent.
func Clean(value any) any {
	cleaned, ok := cleanValue(value)
	if !ok {
		return nil
	}
	return cleaned
}

func cleanValue(value any) (any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case *field.File, []byte, time.Time, io.Reader:
		return v, true
	case map[string]any:
		cleanMap(v)
		return v, true
	case []any:
		out := v[:0]
		for _, entry := range v {
			cleaned, ok := cleanValue(entry)
			if !ok {
				continue
			}
			out = append(out, cleaned)
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	default:
		return v, true
	}
}

func cleanMap(m map[string]any) {
	for key, entry := range m {
		cleaned, ok := cleanValue(entry)
		if !ok {
			delete(m, key)
			continue
		}
		m[key] = cleaned
	}
}

package payload

import (
	"strconv"

	"github.com/goliatone/go-formsubmit/internal/pathkey"
)

// Set assigns value at the dotted/bracketed key inside root, creating
// intermediate containers as needed: sequence containers when the next
// segment is numeric, mapping containers otherwise. A trailing "[]" suffix
// appends to a sequence at the key instead of overwriting. Nil values are
// skipped entirely; Set never writes an empty placeholder.
func Set(root map[string]any, key string, value any) error {
	if value == nil {
		return nil
	}
	path, err := pathkey.Parse(key)
	if err != nil {
		return err
	}
	setSegments(root, path.Segments, value, path.Append)
	return nil
}

// setSegments walks the mapping rooted at m. The final segment either assigns
// or, in append mode, accumulates into a sequence. Existing containers of the
// wrong shape are replaced: last write wins, mirroring plain key assignment.
func setSegments(m map[string]any, segs []pathkey.Segment, value any, appendLast bool) {
	head := segs[0]
	rest := segs[1:]

	if head.Numeric {
		// A numeric segment at mapping level addresses the stringified index;
		// parse guarantees numeric segments only follow a key segment, but a
		// leading index degrades gracefully to a map key.
		head.Key = strconv.Itoa(head.Index)
	}

	if len(rest) == 0 {
		if appendLast {
			seq, _ := m[head.Key].([]any)
			m[head.Key] = append(seq, flatten(value)...)
			return
		}
		m[head.Key] = value
		return
	}

	if rest[0].Numeric {
		seq, _ := m[head.Key].([]any)
		seq = setIndex(seq, rest, value, appendLast)
		m[head.Key] = seq
		return
	}

	child, _ := m[head.Key].(map[string]any)
	if child == nil {
		child = make(map[string]any)
		m[head.Key] = child
	}
	setSegments(child, rest, value, appendLast)
}

func setIndex(seq []any, segs []pathkey.Segment, value any, appendLast bool) []any {
	idx := segs[0].Index
	for len(seq) <= idx {
		seq = append(seq, nil)
	}
	rest := segs[1:]
	if len(rest) == 0 {
		seq[idx] = value
		return seq
	}
	if rest[0].Numeric {
		inner, _ := seq[idx].([]any)
		seq[idx] = setIndex(inner, rest, value, appendLast)
		return seq
	}
	child, _ := seq[idx].(map[string]any)
	if child == nil {
		child = make(map[string]any)
		seq[idx] = child
	}
	setSegments(child, rest, value, appendLast)
	return seq
}

// flatten expands a multi-valued extraction into individual sequence entries
// so "name[]" accumulation interleaves naturally with repeated fields.
func flatten(value any) []any {
	if seq, ok := value.([]any); ok {
		return seq
	}
	return []any{value}
}

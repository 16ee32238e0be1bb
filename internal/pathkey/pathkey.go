package pathkey

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a decomposed destination key. Numeric segments index
// into sequence containers; every other segment addresses a mapping key.
type Segment struct {
	Key     string
	Index   int
	Numeric bool
}

// Path is the parsed form of a dotted/bracketed destination key such as
// "a.b[0].c". Append reports a trailing "[]" suffix, which forces array
// accumulation at the final key even when only a single value arrives.
type Path struct {
	Segments []Segment
	Append   bool
}

// String reassembles the canonical textual form of the path.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p.Segments {
		if seg.Numeric {
			fmt.Fprintf(&b, "[%d]", seg.Index)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Key)
	}
	if p.Append {
		b.WriteString("[]")
	}
	return b.String()
}

// Parse decomposes a destination key into path segments. Dots separate mapping
// keys, bracketed integers become numeric segments, and a trailing empty
// bracket pair marks the path as array-accumulating. Bracketed non-numeric
// content is treated as a mapping key, matching "a[b]" style keys.
func Parse(raw string) (Path, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Path{}, fmt.Errorf("pathkey: empty key")
	}

	var path Path
	if strings.HasSuffix(trimmed, "[]") {
		path.Append = true
		trimmed = strings.TrimSuffix(trimmed, "[]")
		if trimmed == "" {
			return Path{}, fmt.Errorf("pathkey: key %q has no name before []", raw)
		}
	}

	rest := trimmed
	for rest != "" {
		switch rest[0] {
		case '.':
			rest = rest[1:]
			if rest == "" {
				return Path{}, fmt.Errorf("pathkey: key %q ends with a dot", raw)
			}
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return Path{}, fmt.Errorf("pathkey: key %q has an unterminated bracket", raw)
			}
			inner := rest[1:end]
			rest = rest[end+1:]
			if inner == "" {
				return Path{}, fmt.Errorf("pathkey: key %q has an interior empty bracket", raw)
			}
			if idx, err := strconv.Atoi(inner); err == nil {
				if idx < 0 {
					return Path{}, fmt.Errorf("pathkey: key %q has a negative index", raw)
				}
				path.Segments = append(path.Segments, Segment{Index: idx, Numeric: true})
				continue
			}
			path.Segments = append(path.Segments, Segment{Key: inner})
		default:
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			path.Segments = append(path.Segments, Segment{Key: rest[:end]})
			rest = rest[end:]
		}
	}

	if len(path.Segments) == 0 {
		return Path{}, fmt.Errorf("pathkey: key %q has no segments", raw)
	}
	return path, nil
}

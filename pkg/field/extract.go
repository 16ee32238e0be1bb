package field

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted by date extraction, tried in order. Date-only values parse
// as UTC midnight.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Extract computes the submission value for a field according to its kind.
// The second return reports presence: absent fields are omitted from the
// assembled body entirely rather than written as empty placeholders.
//
//   - date: blank values are omitted; anything else parses to an integer
//     instant in milliseconds since the epoch.
//   - file: the lone attached handle, absent when none.
//   - file-multi: every attached handle, in order.
//   - select-multiple: the values of all selected options.
//   - checkbox: the boolean checked state when the value is the generic
//     affirmative marker; otherwise the declared value when checked, absent
//     when unchecked.
//   - radio: the value when checked, absent otherwise.
//   - text (default): the raw value.
func Extract(f Field) (any, bool, error) {
	switch f.Kind {
	case KindDate:
		raw := strings.TrimSpace(f.Value)
		if raw == "" {
			return nil, false, nil
		}
		instant, err := parseInstant(raw)
		if err != nil {
			return nil, false, fmt.Errorf("field: date %q: %w", f.Name, err)
		}
		return instant, true, nil

	case KindFile:
		if len(f.Files) == 0 {
			return nil, false, nil
		}
		return f.Files[0], true, nil

	case KindFileMany:
		out := make([]any, 0, len(f.Files))
		for _, file := range f.Files {
			out = append(out, file)
		}
		return out, true, nil

	case KindSelect:
		var out []any
		for _, opt := range f.Options {
			if opt.Selected {
				out = append(out, opt.Value)
			}
		}
		return out, true, nil

	case KindCheckbox:
		if f.Value == "" || f.Value == GenericAffirmative {
			return f.Checked, true, nil
		}
		if !f.Checked {
			return nil, false, nil
		}
		return f.Value, true, nil

	case KindRadio:
		if !f.Checked {
			return nil, false, nil
		}
		return f.Value, true, nil

	default:
		return f.Value, true, nil
	}
}

func parseInstant(raw string) (int64, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		ts, err := time.ParseInLocation(layout, raw, time.UTC)
		if err == nil {
			return ts.UnixMilli(), nil
		}
		lastErr = err
	}
	return 0, lastErr
}

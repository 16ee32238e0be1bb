package field

import (
	"io"
	"strings"
)

// Kind is the closed enumeration of input kinds the assembler understands.
// Every kind has exactly one extraction rule; see Extract.
type Kind string

const (
	KindText     Kind = "text"
	KindCheckbox Kind = "checkbox"
	KindRadio    Kind = "radio"
	KindFile     Kind = "file"
	KindFileMany Kind = "file-multi"
	KindSelect   Kind = "select-multiple"
	KindDate     Kind = "date"
)

// GenericAffirmative is the placeholder value carried by checkboxes that never
// declared one. Such checkboxes contribute their boolean checked state rather
// than a string.
const GenericAffirmative = "on"

// File is an opaque handle for an attached upload. The assembler and cleaner
// pass File values through untouched; only the transport reads Content.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Option is one choice of a multi-select input.
type Option struct {
	Value    string
	Selected bool
}

// Source declares an out-of-band lookup for a field value: the raw value is
// interpolated into Pattern and the result resolved through the source
// registered under Kind (for example a process-wide variable table or a
// persisted-storage reader).
type Source struct {
	Kind    string
	Pattern string
}

// Field is a host-independent snapshot of one bound input. It carries both the
// captured state (Value, Checked, Options, Files) and the declared submission
// metadata (Bucket, Source, validation attributes). Snapshots are derived
// fresh on every assembly pass and never persisted.
type Field struct {
	Name    string
	Kind    Kind
	Value   string
	Checked bool
	Options []Option
	Files   []*File

	// Submission metadata.
	Bucket string
	Source *Source

	// Validation metadata.
	Required     bool
	Pattern      string
	Group        string
	GroupMessage string
	Disabled     bool
}

// Blank reports whether the field currently holds no submittable state. The
// notion is kind-aware: checkable inputs are blank when unchecked, file inputs
// when no file is attached, multi-selects when nothing is selected.
func (f Field) Blank() bool {
	switch f.Kind {
	case KindCheckbox, KindRadio:
		return !f.Checked
	case KindFile, KindFileMany:
		return len(f.Files) == 0
	case KindSelect:
		for _, opt := range f.Options {
			if opt.Selected {
				return false
			}
		}
		return true
	default:
		return strings.TrimSpace(f.Value) == ""
	}
}

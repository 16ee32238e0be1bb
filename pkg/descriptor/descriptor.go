// Package descriptor loads declarative form descriptors from JSON or YAML
// files. A descriptor names a form and declares everything a submission
// needs: stage parameters, bound fields, middleware identifiers, and the
// failure-message catalogs.
package descriptor

import (
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formsubmit/pkg/envelope"
	"github.com/goliatone/go-formsubmit/pkg/field"
	"github.com/goliatone/go-formsubmit/pkg/hooks"
	"github.com/goliatone/go-formsubmit/pkg/submit"
)

// Store holds the loaded forms keyed by name.
type Store struct {
	forms map[string]Form
}

// Form is one normalized descriptor.
type Form struct {
	Name   string
	Source string

	Defaults submit.Defaults
	Fields   []field.Field
	Hooks    map[hooks.Stage][]string
	Catalog  envelope.Catalog
}

// Options builds the per-call submission options the form declares. Stage
// parameters stay in Defaults; install those on the pipeline through
// submit.WithDefaults.
func (f Form) Options() submit.Options {
	return submit.Options{
		Fields: append([]field.Field(nil), f.Fields...),
		Hooks:  f.Hooks,
	}
}

// Form returns the descriptor registered under name.
func (s *Store) Form(name string) (Form, bool) {
	if s == nil {
		return Form{}, false
	}
	form, ok := s.forms[name]
	return form, ok
}

// Names returns the loaded form names. Order is not guaranteed; callers
// needing determinism should sort.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.forms))
	for name := range s.forms {
		out = append(out, name)
	}
	return out
}

// Empty reports whether the store holds any forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

// LoadFS walks the provided filesystem and parses every JSON/YAML descriptor
// file. When fsys is nil or no descriptor files are present, the returned
// store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{forms: make(map[string]Form)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDescriptorFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("descriptor: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for name, raw := range doc.Forms {
			trimmed := strings.TrimSpace(name)
			if trimmed == "" {
				return fmt.Errorf("descriptor: file %s defines an empty form name", path)
			}
			if _, exists := store.forms[trimmed]; exists {
				return fmt.Errorf("descriptor: duplicate form %q (file %s)", trimmed, path)
			}

			form, err := normalizeForm(raw, trimmed, path)
			if err != nil {
				return err
			}
			store.forms[trimmed] = form
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return store, nil
}

// Parse loads a single descriptor document from memory. Useful for embedded
// descriptors and tests.
func Parse(data []byte, source string) (*Store, error) {
	doc, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}

	store := &Store{forms: make(map[string]Form, len(doc.Forms))}
	for name, raw := range doc.Forms {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return nil, fmt.Errorf("descriptor: file %s defines an empty form name", source)
		}
		form, err := normalizeForm(raw, trimmed, source)
		if err != nil {
			return nil, err
		}
		store.forms[trimmed] = form
	}
	return store, nil
}

type documentFile struct {
	Forms map[string]formFile `json:"forms" yaml:"forms"`
}

type formFile struct {
	Target   string              `json:"target" yaml:"target"`
	Method   string              `json:"method" yaml:"method"`
	Encoding string              `json:"encoding" yaml:"encoding"`
	Confirm  string              `json:"confirm" yaml:"confirm"`
	Delay    string              `json:"delay" yaml:"delay"`
	Include  []string            `json:"include" yaml:"include"`
	Headers  map[string]string   `json:"headers" yaml:"headers"`
	Hooks    map[string][]string `json:"hooks" yaml:"hooks"`
	Fields   []fieldFile         `json:"fields" yaml:"fields"`
	Messages messagesFile        `json:"messages" yaml:"messages"`
}

type fieldFile struct {
	Name         string       `json:"name" yaml:"name"`
	Kind         string       `json:"kind" yaml:"kind"`
	Value        string       `json:"value" yaml:"value"`
	Checked      bool         `json:"checked" yaml:"checked"`
	Bucket       string       `json:"bucket" yaml:"bucket"`
	Required     bool         `json:"required" yaml:"required"`
	Pattern      string       `json:"pattern" yaml:"pattern"`
	Group        string       `json:"group" yaml:"group"`
	GroupMessage string       `json:"groupMessage" yaml:"groupMessage"`
	Options      []optionFile `json:"options" yaml:"options"`
	Source       *sourceFile  `json:"source" yaml:"source"`
}

type optionFile struct {
	Value    string `json:"value" yaml:"value"`
	Selected bool   `json:"selected" yaml:"selected"`
}

type sourceFile struct {
	Kind    string `json:"kind" yaml:"kind"`
	Pattern string `json:"pattern" yaml:"pattern"`
}

type messagesFile struct {
	Codes    map[string]string `json:"codes" yaml:"codes"`
	Statuses map[int]string    `json:"statuses" yaml:"statuses"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("descriptor: file %s is empty", source)
	}

	var doc documentFile
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return documentFile{}, fmt.Errorf("descriptor: parse %s: invalid JSON or YAML", source)
}

func normalizeForm(raw formFile, name, source string) (Form, error) {
	form := Form{
		Name:   name,
		Source: source,
		Defaults: submit.Defaults{
			Target:   raw.Target,
			Method:   raw.Method,
			Encoding: raw.Encoding,
			Confirm:  raw.Confirm,
			Include:  append([]string(nil), raw.Include...),
		},
	}

	if raw.Delay != "" {
		delay, err := time.ParseDuration(raw.Delay)
		if err != nil {
			return Form{}, fmt.Errorf("descriptor: form %q (file %s) delay: %w", name, source, err)
		}
		form.Defaults.Delay = delay
	}

	if len(raw.Headers) > 0 {
		form.Defaults.Header = make(http.Header, len(raw.Headers))
		for key, value := range raw.Headers {
			form.Defaults.Header.Set(key, value)
		}
	}

	if len(raw.Hooks) > 0 {
		form.Hooks = make(map[hooks.Stage][]string, len(raw.Hooks))
		for stage, ids := range raw.Hooks {
			resolved, err := parseStage(stage)
			if err != nil {
				return Form{}, fmt.Errorf("descriptor: form %q (file %s): %w", name, source, err)
			}
			form.Hooks[resolved] = append([]string(nil), ids...)
		}
	}

	for idx, f := range raw.Fields {
		normalized, err := normalizeField(f)
		if err != nil {
			return Form{}, fmt.Errorf("descriptor: form %q (file %s) field %d: %w", name, source, idx, err)
		}
		form.Fields = append(form.Fields, normalized)
	}

	form.Catalog = envelope.Catalog{
		ByCode:   raw.Messages.Codes,
		ByStatus: raw.Messages.Statuses,
	}
	return form, nil
}

func normalizeField(raw fieldFile) (field.Field, error) {
	if strings.TrimSpace(raw.Name) == "" {
		return field.Field{}, fmt.Errorf("field name is required")
	}

	kind, err := parseKind(raw.Kind)
	if err != nil {
		return field.Field{}, err
	}

	f := field.Field{
		Name:         raw.Name,
		Kind:         kind,
		Value:        raw.Value,
		Checked:      raw.Checked,
		Bucket:       raw.Bucket,
		Required:     raw.Required,
		Pattern:      raw.Pattern,
		Group:        raw.Group,
		GroupMessage: raw.GroupMessage,
	}

	if kind == field.KindCheckbox && f.Value == "" {
		f.Value = field.GenericAffirmative
	}

	for _, opt := range raw.Options {
		f.Options = append(f.Options, field.Option{Value: opt.Value, Selected: opt.Selected})
	}
	if raw.Source != nil {
		f.Source = &field.Source{Kind: raw.Source.Kind, Pattern: raw.Source.Pattern}
	}
	return f, nil
}

func parseKind(raw string) (field.Kind, error) {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "", "text":
		return field.KindText, nil
	case "checkbox":
		return field.KindCheckbox, nil
	case "radio":
		return field.KindRadio, nil
	case "file":
		return field.KindFile, nil
	case "file-multi", "files":
		return field.KindFileMany, nil
	case "select", "select-multiple":
		return field.KindSelect, nil
	case "date":
		return field.KindDate, nil
	default:
		return "", fmt.Errorf("unknown field kind %q", raw)
	}
}

func parseStage(raw string) (hooks.Stage, error) {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "before":
		return hooks.StageBefore, nil
	case "validation":
		return hooks.StageValidation, nil
	case "request":
		return hooks.StageRequest, nil
	case "response":
		return hooks.StageResponse, nil
	case "after":
		return hooks.StageAfter, nil
	case "error":
		return hooks.StageError, nil
	default:
		return "", fmt.Errorf("unknown hook stage %q", raw)
	}
}

func isDescriptorFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Package openapi derives submission descriptors from OpenAPI documents:
// each operation with a request body yields the bound field set, the target
// and method, and the wire encoding its media type implies.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formsubmit/pkg/field"
	"github.com/goliatone/go-formsubmit/pkg/transport"
)

// Operation is a submission blueprint extracted from one OpenAPI operation.
type Operation struct {
	ID       string
	Method   string
	Path     string
	Encoding string
	Fields   []field.Field

	Summary     string
	Description string
}

// Options configures derivation.
type Options struct {
	// ResolveReferences validates the document and resolves $ref pointers
	// before extraction. Defaults to true through NewOptions.
	ResolveReferences bool
	// AllowExternalRefs permits references outside the document.
	AllowExternalRefs bool
}

// Option mutates Options during construction.
type Option func(*Options)

// WithReferenceResolution toggles eager reference resolution.
func WithReferenceResolution(enabled bool) Option {
	return func(opts *Options) { opts.ResolveReferences = enabled }
}

// WithExternalRefs permits loading references outside the document.
func WithExternalRefs() Option {
	return func(opts *Options) { opts.AllowExternalRefs = true }
}

// NewOptions applies Option values over the defaults.
func NewOptions(options ...Option) Options {
	cfg := Options{ResolveReferences: true}
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}

// Deriver extracts submission blueprints from OpenAPI documents.
type Deriver struct {
	options Options
}

// New constructs a Deriver.
func New(options ...Option) *Deriver {
	return &Deriver{options: NewOptions(options...)}
}

// Operations parses an OpenAPI document and returns the submission
// blueprints keyed by operation id. Operations without a request body are
// skipped; they have nothing to submit.
func (d *Deriver) Operations(ctx context.Context, data []byte) (map[string]Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: d.options.AllowExternalRefs,
	}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}

	if d.options.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate document: %w", err)
		}
	}

	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, errors.New("openapi: document does not contain any paths")
	}

	operations := make(map[string]Operation)
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		collect(operations, "POST", path, item.Post)
		collect(operations, "PUT", path, item.Put)
		collect(operations, "PATCH", path, item.Patch)
		collect(operations, "DELETE", path, item.Delete)
	}

	if len(operations) == 0 {
		return nil, errors.New("openapi: no submittable operations extracted")
	}
	return operations, nil
}

func collect(target map[string]Operation, method, path string, op *openapi3.Operation) {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return
	}

	mediaType, schema := requestSchema(op.RequestBody.Value)
	if schema == nil || schema.Value == nil {
		return
	}

	id := op.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}

	target[id] = Operation{
		ID:          id,
		Method:      method,
		Path:        path,
		Encoding:    encodingFor(mediaType),
		Fields:      deriveFields("", schema.Value),
		Summary:     op.Summary,
		Description: op.Description,
	}
}

// requestSchema picks the request body media type, preferring the encodings
// the transport understands.
func requestSchema(body *openapi3.RequestBody) (string, *openapi3.SchemaRef) {
	preferred := []string{
		"application/json",
		"application/x-www-form-urlencoded",
		"multipart/form-data",
	}
	for _, mediaType := range preferred {
		if mt, ok := body.Content[mediaType]; ok {
			return mediaType, mt.Schema
		}
	}
	for mediaType, mt := range body.Content {
		return mediaType, mt.Schema
	}
	return "", nil
}

func encodingFor(mediaType string) string {
	switch mediaType {
	case "application/x-www-form-urlencoded":
		return transport.EncodingForm
	case "multipart/form-data":
		return transport.EncodingMultipart
	default:
		return transport.EncodingJSON
	}
}

// deriveFields flattens an object schema into bound-field snapshots. Nested
// objects contribute dotted names; arrays of scalars contribute accumulating
// names.
func deriveFields(prefix string, schema *openapi3.Schema) []field.Field {
	if schema == nil {
		return nil
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields []field.Field
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		prop := ref.Value
		qualified := name
		if prefix != "" {
			qualified = prefix + "." + name
		}

		if schemaType(prop) == "object" && len(prop.Properties) > 0 {
			fields = append(fields, deriveFields(qualified, prop)...)
			continue
		}

		f := field.Field{
			Name:     fieldName(qualified, prop),
			Kind:     kindFor(prop),
			Required: required[name],
			Pattern:  prop.Pattern,
		}
		if f.Kind == field.KindSelect {
			f.Options = enumOptions(prop)
		}
		if value, ok := prop.Default.(string); ok {
			f.Value = value
		}
		fields = append(fields, f)
	}
	return fields
}

// fieldName appends the accumulation suffix for arrays of scalars so repeated
// values group under one key.
func fieldName(qualified string, prop *openapi3.Schema) string {
	if schemaType(prop) != "array" || prop.Items == nil || prop.Items.Value == nil {
		return qualified
	}
	items := prop.Items.Value
	if schemaType(items) == "string" && items.Format == "binary" {
		return qualified
	}
	if len(items.Enum) > 0 {
		return qualified
	}
	return qualified + "[]"
}

// kindFor maps a property schema to the closed input-kind enumeration.
func kindFor(prop *openapi3.Schema) field.Kind {
	switch schemaType(prop) {
	case "boolean":
		return field.KindCheckbox
	case "array":
		if prop.Items != nil && prop.Items.Value != nil {
			items := prop.Items.Value
			if schemaType(items) == "string" && items.Format == "binary" {
				return field.KindFileMany
			}
			if len(items.Enum) > 0 {
				return field.KindSelect
			}
		}
		return field.KindText
	case "string":
		switch prop.Format {
		case "date", "date-time":
			return field.KindDate
		case "binary":
			return field.KindFile
		}
		if len(prop.Enum) > 0 {
			return field.KindRadio
		}
		return field.KindText
	default:
		return field.KindText
	}
}

func enumOptions(prop *openapi3.Schema) []field.Option {
	if prop.Items == nil || prop.Items.Value == nil {
		return nil
	}
	values := prop.Items.Value.Enum
	options := make([]field.Option, 0, len(values))
	for _, value := range values {
		options = append(options, field.Option{Value: fmt.Sprint(value)})
	}
	return options
}

func schemaType(prop *openapi3.Schema) string {
	if prop == nil || prop.Type == nil {
		return ""
	}
	values := prop.Type.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

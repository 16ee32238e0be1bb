package validation_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsubmit/pkg/field"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

func TestValidateNoRequiredFields(t *testing.T) {
	fields := []field.Field{
		{Name: "a", Kind: field.KindText},
		{Name: "b", Kind: field.KindText, Value: "x"},
	}
	if got := validation.Validate(fields); !got.Empty() {
		t.Fatalf("expected empty set, got %v", got.Sorted())
	}
}

func TestValidateRequiredBlank(t *testing.T) {
	fields := []field.Field{
		{Name: "a", Kind: field.KindText, Required: true},
		{Name: "b", Kind: field.KindText, Required: true, Value: "x"},
	}
	got := validation.Validate(fields)
	if diff := cmp.Diff([]string{"a"}, got.Sorted()); diff != "" {
		t.Fatalf("invalid set mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateGroupSatisfied(t *testing.T) {
	fields := []field.Field{
		{Name: "a", Kind: field.KindText, Required: true, Group: "contact", Value: "x"},
		{Name: "b", Kind: field.KindText, Required: true, Group: "contact"},
	}

	got := validation.Validate(fields)
	if !got.Empty() {
		t.Fatalf("satisfied group should not report members, got %v", got.Sorted())
	}

	// The exemption is scoped to the pass: both members must be re-enabled.
	for _, f := range fields {
		if f.Disabled {
			t.Fatalf("field %q left disabled after validation", f.Name)
		}
	}
}

func TestValidateGroupAllBlankReportsRepresentative(t *testing.T) {
	fields := []field.Field{
		{Name: "a", Kind: field.KindText, Required: true, Group: "contact"},
		{Name: "b", Kind: field.KindText, Required: true, Group: "contact"},
	}

	got := validation.Validate(fields)
	if diff := cmp.Diff([]string{"a"}, got.Sorted()); diff != "" {
		t.Fatalf("invalid set mismatch (-want +got):\n%s", diff)
	}
	for _, f := range fields {
		if f.Disabled {
			t.Fatalf("field %q left disabled after validation", f.Name)
		}
	}
}

func TestValidatePattern(t *testing.T) {
	fields := []field.Field{
		{Name: "slug", Kind: field.KindText, Value: "Not Valid", Pattern: "^[a-z-]+$"},
		{Name: "ok", Kind: field.KindText, Value: "fine", Pattern: "^[a-z]+$"},
		{Name: "blankish", Kind: field.KindText, Value: "", Pattern: "^[a-z]+$"},
	}
	got := validation.Validate(fields)
	if diff := cmp.Diff([]string{"slug"}, got.Sorted()); diff != "" {
		t.Fatalf("invalid set mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateSkipsDisabled(t *testing.T) {
	fields := []field.Field{
		{Name: "a", Kind: field.KindText, Required: true, Disabled: true},
	}
	if got := validation.Validate(fields); !got.Empty() {
		t.Fatalf("disabled field should not be validated, got %v", got.Sorted())
	}
}

func TestMessages(t *testing.T) {
	fields := []field.Field{
		{Name: "a", Kind: field.KindText, Required: true, Group: "contact", GroupMessage: "provide one contact method"},
		{Name: "b", Kind: field.KindText, Required: true},
	}
	invalid := validation.Validate(fields)

	got := validation.Messages(fields, invalid)
	want := map[string]string{
		"a": "provide one contact method",
		"b": validation.GenericRequiredMessage,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestNamesSetSemantics(t *testing.T) {
	set := validation.NewNames("a", "b", "a", "")
	if diff := cmp.Diff([]string{"a", "b"}, set.Sorted()); diff != "" {
		t.Fatalf("set mismatch (-want +got):\n%s", diff)
	}
	if !set.Has("a") || set.Has("c") {
		t.Fatalf("membership checks failed")
	}
}

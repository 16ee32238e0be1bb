package pathkey_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsubmit/internal/pathkey"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want pathkey.Path
	}{
		{
			name: "single key",
			raw:  "title",
			want: pathkey.Path{Segments: []pathkey.Segment{{Key: "title"}}},
		},
		{
			name: "dotted path",
			raw:  "user.name",
			want: pathkey.Path{Segments: []pathkey.Segment{{Key: "user"}, {Key: "name"}}},
		},
		{
			name: "numeric index",
			raw:  "a.b[0].c",
			want: pathkey.Path{Segments: []pathkey.Segment{
				{Key: "a"}, {Key: "b"}, {Index: 0, Numeric: true}, {Key: "c"},
			}},
		},
		{
			name: "trailing append marker",
			raw:  "tags[]",
			want: pathkey.Path{
				Segments: []pathkey.Segment{{Key: "tags"}},
				Append:   true,
			},
		},
		{
			name: "bracketed key",
			raw:  "meta[owner]",
			want: pathkey.Path{Segments: []pathkey.Segment{{Key: "meta"}, {Key: "owner"}}},
		},
		{
			name: "append on nested path",
			raw:  "user.roles[]",
			want: pathkey.Path{
				Segments: []pathkey.Segment{{Key: "user"}, {Key: "roles"}},
				Append:   true,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := pathkey.Parse(tc.raw)
			if err != nil {
				t.Fatalf("parse %q: %v", tc.raw, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("path mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRejectsMalformedKeys(t *testing.T) {
	for _, raw := range []string{"", "  ", "[]", "a.", "a[", "a[].b"} {
		if _, err := pathkey.Parse(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, raw := range []string{"title", "user.name", "a.b[0].c", "tags[]"} {
		path, err := pathkey.Parse(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got := path.String(); got != raw {
			t.Fatalf("round trip %q: got %q", raw, got)
		}
	}
}

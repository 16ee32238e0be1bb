package openapi_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-formsubmit/pkg/field"
	"github.com/goliatone/go-formsubmit/pkg/openapi"
	"github.com/goliatone/go-formsubmit/pkg/transport"
)

const userDocument = `{
  "openapi": "3.0.0",
  "info": { "title": "Users", "version": "1.0.0" },
  "paths": {
    "/users": {
      "post": {
        "operationId": "createUser",
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["email"],
                "properties": {
                  "email": {"type": "string", "pattern": "^[^@]+@[^@]+$"},
                  "active": {"type": "boolean"},
                  "joined": {"type": "string", "format": "date"},
                  "role": {"type": "string", "enum": ["admin", "member"]},
                  "tags": {"type": "array", "items": {"type": "string"}},
                  "profile": {
                    "type": "object",
                    "properties": {
                      "bio": {"type": "string"}
                    }
                  }
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "ok"}
        }
      },
      "get": {
        "operationId": "listUsers",
        "responses": {
          "200": {"description": "ok"}
        }
      }
    },
    "/uploads": {
      "post": {
        "operationId": "upload",
        "requestBody": {
          "content": {
            "multipart/form-data": {
              "schema": {
                "type": "object",
                "properties": {
                  "document": {"type": "string", "format": "binary"},
                  "attachments": {
                    "type": "array",
                    "items": {"type": "string", "format": "binary"}
                  }
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "ok"}
        }
      }
    }
  }
}`

func TestOperationsDeriveFieldKinds(t *testing.T) {
	deriver := openapi.New()
	operations, err := deriver.Operations(context.Background(), []byte(userDocument))
	if err != nil {
		t.Fatalf("Operations() error = %v", err)
	}

	op, ok := operations["createUser"]
	if !ok {
		t.Fatalf("operation createUser not found in %v", keys(operations))
	}
	if op.Method != "POST" || op.Path != "/users" {
		t.Fatalf("operation params = %s %s, want POST /users", op.Method, op.Path)
	}
	if op.Encoding != transport.EncodingJSON {
		t.Fatalf("encoding = %q, want json", op.Encoding)
	}

	byName := make(map[string]field.Field, len(op.Fields))
	for _, f := range op.Fields {
		byName[f.Name] = f
	}

	cases := []struct {
		name string
		kind field.Kind
	}{
		{"email", field.KindText},
		{"active", field.KindCheckbox},
		{"joined", field.KindDate},
		{"role", field.KindRadio},
		{"tags[]", field.KindText},
		{"profile.bio", field.KindText},
	}
	for _, tc := range cases {
		f, ok := byName[tc.name]
		if !ok {
			t.Errorf("field %q missing, have %v", tc.name, keys(byName))
			continue
		}
		if f.Kind != tc.kind {
			t.Errorf("field %q kind = %q, want %q", tc.name, f.Kind, tc.kind)
		}
	}

	if !byName["email"].Required {
		t.Error("email not marked required")
	}
	if byName["email"].Pattern == "" {
		t.Error("email pattern not carried over")
	}

	if _, ok := operations["listUsers"]; ok {
		t.Error("bodiless operation listUsers should be skipped")
	}
}

func TestOperationsDeriveUploads(t *testing.T) {
	deriver := openapi.New()
	operations, err := deriver.Operations(context.Background(), []byte(userDocument))
	if err != nil {
		t.Fatalf("Operations() error = %v", err)
	}

	op, ok := operations["upload"]
	if !ok {
		t.Fatalf("operation upload not found in %v", keys(operations))
	}
	if op.Encoding != transport.EncodingMultipart {
		t.Fatalf("encoding = %q, want multipart", op.Encoding)
	}

	byName := make(map[string]field.Field, len(op.Fields))
	for _, f := range op.Fields {
		byName[f.Name] = f
	}
	if f := byName["document"]; f.Kind != field.KindFile {
		t.Errorf("document kind = %q, want file", f.Kind)
	}
	if f := byName["attachments"]; f.Kind != field.KindFileMany {
		t.Errorf("attachments kind = %q, want file-multi", f.Kind)
	}
}

func TestOperationsRejectEmptyDocuments(t *testing.T) {
	deriver := openapi.New()

	if _, err := deriver.Operations(context.Background(), nil); err == nil {
		t.Error("Operations(nil) error = nil, want failure")
	}
	if _, err := deriver.Operations(context.Background(), []byte(`{"openapi":"3.0.0","info":{"title":"t","version":"1"},"paths":{}}`)); err == nil {
		t.Error("Operations(no paths) error = nil, want failure")
	}
}

func keys[M ~map[string]V, V any](m M) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

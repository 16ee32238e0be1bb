// Package transport defines the request execution contract the submission
// pipeline dispatches through, plus an HTTP implementation with JSON,
// form-encoded and multipart bodies and cooperative upload progress.
package transport

import (
	"context"
	"net/http"

	"github.com/goliatone/go-formsubmit/pkg/payload"
)

// Encodings understood by the HTTP transport.
const (
	EncodingJSON      = "json"
	EncodingForm      = "form"
	EncodingMultipart = "multipart"
)

// Request describes one dispatch of an assembled body.
type Request struct {
	Target   string
	Method   string
	Encoding string
	Header   http.Header
	Body     payload.Body
}

// Response is the raw transport result. The pipeline decodes and normalizes
// it; the transport never interprets payload semantics.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Progress reports upload advancement. Percent is capped below completion at
// 90 while the transfer is length-computable; Total is negative when the
// length is unknown.
type Progress struct {
	Percent int
	Bytes   int64
	Total   int64
}

// ProgressFunc receives progress updates during dispatch. May be nil.
type ProgressFunc func(Progress)

// Transport executes a request, observing ctx for cancellation.
type Transport interface {
	Do(ctx context.Context, req Request, onProgress ProgressFunc) (*Response, error)
}

// Func adapts a plain function to the Transport interface.
type Func func(ctx context.Context, req Request, onProgress ProgressFunc) (*Response, error)

// Do executes the wrapped function.
func (fn Func) Do(ctx context.Context, req Request, onProgress ProgressFunc) (*Response, error) {
	return fn(ctx, req, onProgress)
}

// Credential is the token pair attached to outgoing requests.
type Credential struct {
	Header string
	Token  string
}

// CredentialFunc resolves the credential to attach at dispatch time.
type CredentialFunc func() Credential

// DefaultCredentialHeader is the static fallback header name.
const DefaultCredentialHeader = "X-CSRF-Token"

// StaticCredential returns a CredentialFunc with fixed values.
func StaticCredential(header, token string) CredentialFunc {
	if header == "" {
		header = DefaultCredentialHeader
	}
	return func() Credential {
		return Credential{Header: header, Token: token}
	}
}

// CredentialFromMeta sources the credential from two meta-style declarations,
// falling back to the static defaults when a declaration is absent.
func CredentialFromMeta(meta map[string]string) CredentialFunc {
	return func() Credential {
		cred := Credential{Header: DefaultCredentialHeader}
		if header := meta["csrf-header"]; header != "" {
			cred.Header = header
		}
		cred.Token = meta["csrf-token"]
		return cred
	}
}

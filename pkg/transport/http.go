package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formsubmit/pkg/field"
	"github.com/goliatone/go-formsubmit/pkg/payload"
)

// progressCap keeps the reported percentage below completion; the final jump
// to 100 belongs to the response stage, not the byte counter.
const progressCap = 90

// HTTPOption customises the HTTP transport.
type HTTPOption func(*HTTP)

// WithClient injects a custom http.Client.
func WithClient(client *http.Client) HTTPOption {
	return func(t *HTTP) {
		t.client = client
	}
}

// HTTP dispatches requests over net/http. Bodies encode as JSON by default,
// switching to multipart automatically when file handles are present.
type HTTP struct {
	client *http.Client
}

// NewHTTP constructs the transport, defaulting to http.DefaultClient.
func NewHTTP(options ...HTTPOption) *HTTP {
	t := &HTTP{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}
	if t.client == nil {
		t.client = http.DefaultClient
	}
	return t
}

// Ensure the implementation satisfies the contract.
var _ Transport = (*HTTP)(nil)

// Do encodes and dispatches the request. The progress callback receives
// integer percentages capped at 90 while the body length is computable and is
// never invoked otherwise.
func (t *HTTP) Do(ctx context.Context, req Request, onProgress ProgressFunc) (*Response, error) {
	if req.Target == "" {
		return nil, errors.New("transport: target is required")
	}
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodPost
	}

	encoded, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	var body io.Reader = bytes.NewReader(encoded)
	if onProgress != nil {
		body = &progressReader{
			inner: body,
			total: int64(len(encoded)),
			emit:  onProgress,
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.Target, body)
	if err != nil {
		return nil, fmt.Errorf("transport: build request: %w", err)
	}
	httpReq.ContentLength = int64(len(encoded))
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: read response: %w", err)
	}

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   raw,
	}, nil
}

func encodeBody(req Request) ([]byte, string, error) {
	encoding := req.Encoding
	if encoding == "" {
		encoding = EncodingJSON
		if hasFiles(req.Body) {
			encoding = EncodingMultipart
		}
	}

	switch encoding {
	case EncodingJSON:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("transport: encode json: %w", err)
		}
		return data, "application/json", nil

	case EncodingForm:
		values := url.Values{}
		for key, value := range flattenBody(req.Body) {
			if _, ok := value.(*field.File); ok {
				return nil, "", fmt.Errorf("transport: form encoding cannot carry file %q", key)
			}
			values.Set(key, fmt.Sprint(value))
		}
		return []byte(values.Encode()), "application/x-www-form-urlencoded", nil

	case EncodingMultipart:
		return encodeMultipart(req.Body)

	default:
		return nil, "", fmt.Errorf("transport: unknown encoding %q", encoding)
	}
}

func encodeMultipart(body payload.Body) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range flattenBody(body) {
		if file, ok := value.(*field.File); ok {
			part, err := writer.CreateFormFile(key, file.Name)
			if err != nil {
				return nil, "", fmt.Errorf("transport: multipart file %q: %w", key, err)
			}
			if file.Content != nil {
				if _, err := io.Copy(part, file.Content); err != nil {
					return nil, "", fmt.Errorf("transport: multipart file %q: %w", key, err)
				}
			}
			continue
		}
		if err := writer.WriteField(key, fmt.Sprint(value)); err != nil {
			return nil, "", fmt.Errorf("transport: multipart field %q: %w", key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("transport: finish multipart: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

// flattenBody turns the nested body into dotted/bracketed keys matching the
// assembler's destination syntax, e.g. "data.user.name" or "data.tags[0]".
func flattenBody(body payload.Body) map[string]any {
	out := make(map[string]any)
	for bucket, tree := range body {
		flattenInto(out, bucket, tree)
	}
	return out
}

func flattenInto(out map[string]any, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		for key, entry := range v {
			flattenInto(out, prefix+"."+key, entry)
		}
	case []any:
		for idx, entry := range v {
			flattenInto(out, prefix+"["+strconv.Itoa(idx)+"]", entry)
		}
	default:
		out[prefix] = v
	}
}

func hasFiles(body payload.Body) bool {
	for _, value := range flattenBody(body) {
		if _, ok := value.(*field.File); ok {
			return true
		}
	}
	return false
}

// progressReader counts consumed bytes and reports a capped percentage on
// every read while the total is known.
type progressReader struct {
	inner io.Reader
	total int64
	read  int64
	emit  ProgressFunc
	last  int
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)
	if n > 0 && r.total > 0 {
		r.read += int64(n)
		percent := int(r.read * 100 / r.total)
		if percent > progressCap {
			percent = progressCap
		}
		if percent != r.last {
			r.last = percent
			r.emit(Progress{Percent: percent, Bytes: r.read, Total: r.total})
		}
	}
	return n, err
}

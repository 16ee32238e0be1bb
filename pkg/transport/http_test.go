package transport_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formsubmit/pkg/field"
	"github.com/goliatone/go-formsubmit/pkg/payload"
	"github.com/goliatone/go-formsubmit/pkg/transport"
)

func TestHTTPPostsJSON(t *testing.T) {
	var (
		gotBody        []byte
		gotContentType string
		gotMethod      string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotContentType = r.Header.Get("Content-Type")
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"code":200,"data":{"item":{"id":1}}}`))
	}))
	defer server.Close()

	resp, err := transport.NewHTTP().Do(context.Background(), transport.Request{
		Target: server.URL,
		Body:   payload.Body{"data": {"user": map[string]any{"name": "Ann"}}},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"data":{"user":{"name":"Ann"}}}`, string(gotBody))
	assert.Contains(t, string(resp.Body), `"code":200`)
}

func TestHTTPSwitchesToMultipartForFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Ann", r.MultipartForm.Value["data.user.name"][0])

		files := r.MultipartForm.File["data.avatar"]
		require.Len(t, files, 1)
		assert.Equal(t, "avatar.png", files[0].Filename)

		file, err := files[0].Open()
		require.NoError(t, err)
		defer file.Close()
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(content))

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	body := payload.Body{"data": {
		"user":   map[string]any{"name": "Ann"},
		"avatar": &field.File{Name: "avatar.png", Content: strings.NewReader("png-bytes")},
	}}

	resp, err := transport.NewHTTP().Do(context.Background(), transport.Request{
		Target: server.URL,
		Body:   body,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestHTTPFormEncoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "x", r.PostForm.Get("data.tags[0]"))
		assert.Equal(t, "y", r.PostForm.Get("data.tags[1]"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := transport.NewHTTP().Do(context.Background(), transport.Request{
		Target:   server.URL,
		Encoding: transport.EncodingForm,
		Body:     payload.Body{"data": {"tags": []any{"x", "y"}}},
	}, nil)
	require.NoError(t, err)
}

func TestHTTPFormEncodingRejectsFiles(t *testing.T) {
	_, err := transport.NewHTTP().Do(context.Background(), transport.Request{
		Target:   "http://127.0.0.1:0",
		Encoding: transport.EncodingForm,
		Body:     payload.Body{"data": {"f": &field.File{Name: "x"}}},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "form encoding cannot carry file")
}

func TestHTTPProgressCappedBelowCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	big := strings.Repeat("payload ", 64<<10)
	var percents []int
	_, err := transport.NewHTTP().Do(context.Background(), transport.Request{
		Target: server.URL,
		Body:   payload.Body{"data": {"blob": big}},
	}, func(p transport.Progress) {
		percents = append(percents, p.Percent)
	})
	require.NoError(t, err)

	require.NotEmpty(t, percents, "length-computable upload must report progress")
	for _, p := range percents {
		assert.LessOrEqual(t, p, 90)
	}
	assert.Equal(t, 90, percents[len(percents)-1])
}

func TestHTTPObservesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := transport.NewHTTP().Do(ctx, transport.Request{
		Target: "http://127.0.0.1:0",
		Body:   payload.Body{},
	}, nil)
	require.Error(t, err)
}

func TestCredentialHelpers(t *testing.T) {
	cred := transport.StaticCredential("", "tok")()
	assert.Equal(t, transport.DefaultCredentialHeader, cred.Header)
	assert.Equal(t, "tok", cred.Token)

	meta := transport.CredentialFromMeta(map[string]string{
		"csrf-header": "X-Custom",
		"csrf-token":  "abc",
	})()
	assert.Equal(t, transport.Credential{Header: "X-Custom", Token: "abc"}, meta)

	fallback := transport.CredentialFromMeta(nil)()
	assert.Equal(t, transport.DefaultCredentialHeader, fallback.Header)
	assert.Empty(t, fallback.Token)
}

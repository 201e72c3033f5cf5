package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(body string) HandlerFunc {
	return func(ctx context.Context, req *Request) *Response {
		return JSONResponse(http.StatusOK, map[string]any{"success": true, "route": body})
	}
}

func decodeBody(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m))
	return m
}

func TestRouter_ExactMatch(t *testing.T) {
	r := NewRouter()
	r.Get("/api/events", okHandler("list"))
	r.Post("/api/events", okHandler("create"))

	resp := r.Dispatch(context.Background(), &Request{Method: "GET", Path: "/api/events"})
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "list", decodeBody(t, resp.Body)["route"])

	resp = r.Dispatch(context.Background(), &Request{Method: "POST", Path: "/api/events"})
	assert.Equal(t, "create", decodeBody(t, resp.Body)["route"])

	for _, req := range []*Request{
		{Method: "GET", Path: "/api/events/"},
		{Method: "GET", Path: "/API/events"},
		{Method: "DELETE", Path: "/api/events"},
	} {
		resp := r.Dispatch(context.Background(), req)
		assert.Equal(t, http.StatusNotFound, resp.Status, req.Method+" "+req.Path)
		body := decodeBody(t, resp.Body)
		assert.Equal(t, false, body["success"])
		assert.NotEmpty(t, body["error"])
	}
}

func TestRouter_DuplicateRoutePanics(t *testing.T) {
	r := NewRouter()
	r.Put("/a", okHandler("a"))
	assert.Panics(t, func() { r.Put("/a", okHandler("b")) })
	assert.NotPanics(t, func() { r.Delete("/a", okHandler("c")) })
}

func TestRouter_NilResponseIsEmpty200(t *testing.T) {
	r := NewRouter()
	r.Get("/nil", func(context.Context, *Request) *Response { return nil })
	resp := r.Dispatch(context.Background(), &Request{Method: "GET", Path: "/nil"})
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestRouter_StaticFallbackOnlyForGET(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>home</h1>"), 0o644))

	r := NewRouter()
	r.Static(NewStaticFiles(dir))

	resp := r.Dispatch(context.Background(), &Request{Method: "GET", Path: "/"})
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "<h1>home</h1>", string(resp.Body))

	resp = r.Dispatch(context.Background(), &Request{Method: "POST", Path: "/"})
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Contains(t, resp.Headers["Content-Type"], "application/json")
}

func newStaticRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":       "<h1>home</h1>",
		"pages/login.html": "<form></form>",
		"js/app.js":        "console.log(1)",
		"img/logo.png":     "\x89PNG",
		"secret.txt":       "top secret",
		"LICENSE":          "MIT",
	}
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}

func TestStaticFiles(t *testing.T) {
	static := NewStaticFiles(newStaticRoot(t))

	tests := []struct {
		path        string
		status      int
		contentType string
		body        string
	}{
		{"/", http.StatusOK, "text/html; charset=utf-8", "<h1>home</h1>"},
		{"/login", http.StatusOK, "text/html; charset=utf-8", "<form></form>"},
		{"/js/app.js", http.StatusOK, "application/javascript; charset=utf-8", "console.log(1)"},
		{"/img/logo.png", http.StatusOK, "image/png", "\x89PNG"},
		{"/LICENSE", http.StatusOK, "application/octet-stream", "MIT"},
		{"/secret.txt", http.StatusForbidden, textPlain, ""},
		{"/../etc/passwd", http.StatusForbidden, textPlain, ""},
		{"/js/..%2f..%2fsecret", http.StatusForbidden, textPlain, ""},
		{"/missing.css", http.StatusNotFound, textPlain, ""},
		{"/events", http.StatusNotFound, textPlain, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := static.Serve(tt.path)
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, tt.contentType, resp.Headers["Content-Type"])
			if tt.body != "" {
				assert.Equal(t, tt.body, string(resp.Body))
			}
		})
	}
}

func TestResponse_WriteTo(t *testing.T) {
	resp := JSONResponse(http.StatusCreated, map[string]any{"success": true})
	resp.SetCORS()
	resp.SetHeader("Content-Length", "999")

	var sb strings.Builder
	_, err := resp.WriteTo(&sb)
	require.NoError(t, err)

	head, body, ok := strings.Cut(sb.String(), "\r\n\r\n")
	require.True(t, ok)
	assert.Equal(t, `{"success":true}`, body)

	lines := strings.Split(head, "\r\n")
	assert.Equal(t, []string{
		"HTTP/1.1 201 Created",
		"Access-Control-Allow-Headers: Content-Type, Authorization",
		"Access-Control-Allow-Methods: GET, POST, PUT, DELETE, OPTIONS",
		"Access-Control-Allow-Origin: *",
		"Content-Type: application/json; charset=utf-8",
		"Content-Length: 16",
		"Connection: close",
	}, lines)
}

func TestResponse_JSONEncodingFailure(t *testing.T) {
	resp := JSONResponse(http.StatusOK, map[string]any{"bad": make(chan int)})
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Equal(t, false, decodeBody(t, resp.Body)["success"])
}

package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// friendlyURLs maps page routes of the web client onto files.
var friendlyURLs = map[string]string{
	"/":                "/index.html",
	"/login":           "/pages/login.html",
	"/register":        "/pages/register.html",
	"/forgot-password": "/pages/forgot-password.html",
	"/change-password": "/pages/change-password.html",
	"/events":          "/pages/events.html",
	"/tickets":         "/pages/tickets.html",
	"/booking-info":    "/pages/booking-info.html",
	"/admin":           "/pages/admin.html",
	"/ticket-detail":   "/pages/ticket-detail.html",
}

var contentTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".js":    "application/javascript; charset=utf-8",
	".json":  "application/json; charset=utf-8",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
}

const textPlain = "text/plain; charset=utf-8"

// StaticFiles serves the web client from a directory.
type StaticFiles struct {
	root string
}

// NewStaticFiles serves files below root.
func NewStaticFiles(root string) *StaticFiles {
	return &StaticFiles{root: root}
}

// Serve answers a GET for path. A path containing ".." is refused with 403,
// as is any file whose extension is not allow-listed.
func (s *StaticFiles) Serve(path string) *Response {
	resp := NewResponse()
	if strings.Contains(path, "..") {
		resp.Text(http.StatusForbidden, textPlain, []byte("Forbidden"))
		return resp
	}

	file, ok := friendlyURLs[path]
	switch {
	case ok:
	case path == "":
		file = "/index.html"
	default:
		file = path
	}

	ext := strings.ToLower(filepath.Ext(file))
	contentType, allowed := contentTypes[ext]
	if ext != "" && !allowed {
		resp.Text(http.StatusForbidden, textPlain, []byte("Forbidden file type"))
		return resp
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	body, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(file)))
	if err != nil {
		resp.Text(http.StatusNotFound, textPlain, []byte("File not found: "+path))
		return resp
	}
	resp.Text(http.StatusOK, contentType, body)
	return resp
}

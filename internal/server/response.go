package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
)

// Response is the reply written once to a connection before it is closed.
type Response struct {
	Status  int
	Headers map[string]string
	Body    []byte
}

// NewResponse returns an empty 200 response.
func NewResponse() *Response {
	return &Response{Status: http.StatusOK, Headers: make(map[string]string)}
}

// JSONResponse builds a response with v encoded as the JSON body.
func JSONResponse(status int, v any) *Response {
	r := NewResponse()
	r.JSON(status, v)
	return r
}

// ErrorResponse builds a {"success":false,"error":msg} response.
func ErrorResponse(status int, msg string) *Response {
	r := NewResponse()
	r.Error(status, msg)
	return r
}

// SetHeader sets a response header, replacing any previous value.
func (r *Response) SetHeader(key, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
}

// JSON sets status and encodes v as the body. An encoding failure turns the
// response into a 500 error.
func (r *Response) JSON(status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"success":false,"error":"internal server error"}`)
	}
	r.Status = status
	r.Body = body
	r.SetHeader("Content-Type", "application/json; charset=utf-8")
}

// Error sets a JSON error body.
func (r *Response) Error(status int, msg string) {
	r.JSON(status, map[string]any{"success": false, "error": msg})
}

// Text sets a body with an explicit content type.
func (r *Response) Text(status int, contentType string, body []byte) {
	r.Status = status
	r.Body = body
	r.SetHeader("Content-Type", contentType)
}

// SetCORS allows any origin to call the API.
func (r *Response) SetCORS() {
	r.SetHeader("Access-Control-Allow-Origin", "*")
	r.SetHeader("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	r.SetHeader("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

// WriteTo frames the response as HTTP/1.1 with headers sorted by name and a
// Content-Length matching the body.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer

	reason := http.StatusText(r.Status)
	if reason == "" {
		reason = "Unknown"
	}
	fmt.Fprintf(&buf, "HTTP/1.1 %d %s\r\n", r.Status, reason)

	keys := make([]string, 0, len(r.Headers))
	for k := range r.Headers {
		if k != "Content-Length" && k != "Connection" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, r.Headers[k])
	}
	buf.WriteString("Content-Length: " + strconv.Itoa(len(r.Body)) + "\r\n")
	buf.WriteString("Connection: close\r\n\r\n")
	buf.Write(r.Body)

	return buf.WriteTo(w)
}

package server

import (
	"bytes"
	"errors"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
)

// ErrMalformedRequest is returned when the buffer holds no request line.
var ErrMalformedRequest = errors.New("malformed request")

// Request is one parsed HTTP/1.1 request.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Proto    string
	Headers  map[string]string
	Query    map[string]string
	Body     []byte

	// ID correlates log lines of one connection.
	ID string
	// RemoteAddr is the peer address of the connection.
	RemoteAddr string
}

// Header returns the value of header key, matched case-insensitively.
func (r *Request) Header(key string) string {
	return r.Headers[textproto.CanonicalMIMEHeaderKey(key)]
}

// QueryParam returns the decoded query parameter key, or "".
func (r *Request) QueryParam(key string) string {
	return r.Query[key]
}

// ParseRequest parses one request from raw. Header keys are canonicalized
// and the last occurrence of a header wins. The body is Content-Length
// bytes after the blank line, cut short when raw ends first.
func ParseRequest(raw []byte) (*Request, error) {
	head, rest, found := cutHead(raw)

	lines := strings.Split(string(head), "\n")
	fields := strings.Fields(strings.TrimSuffix(lines[0], "\r"))
	if len(fields) < 2 {
		return nil, ErrMalformedRequest
	}

	req := &Request{
		Method:  fields[0],
		Headers: make(map[string]string),
		Query:   make(map[string]string),
	}
	if len(fields) > 2 {
		req.Proto = fields[2]
	}
	req.Path, req.RawQuery, _ = strings.Cut(fields[1], "?")
	parseQuery(req.RawQuery, req.Query)

	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		req.Headers[textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	if found {
		n, err := strconv.Atoi(req.Headers["Content-Length"])
		if err != nil || n < 0 {
			n = 0
		}
		if n > len(rest) {
			n = len(rest)
		}
		req.Body = rest[:n]
	}
	return req, nil
}

// cutHead splits raw at the blank line ending the header block.
func cutHead(raw []byte) (head, body []byte, found bool) {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		return raw[:i], raw[i+4:], true
	}
	if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		return raw[:i], raw[i+2:], true
	}
	return raw, nil, false
}

// parseQuery decodes percent escapes and '+' in a query string into dst.
// The first occurrence of a key wins.
func parseQuery(raw string, dst map[string]string) {
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = unescape(key)
		if _, seen := dst[key]; seen {
			continue
		}
		dst[key] = unescape(value)
	}
}

func unescape(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return strings.ReplaceAll(s, "+", " ")
}

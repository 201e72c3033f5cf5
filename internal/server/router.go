package server

import (
	"context"
	"fmt"
	"net/http"
)

// HandlerFunc produces the response for one request.
type HandlerFunc func(ctx context.Context, req *Request) *Response

// Router dispatches on the exact "METHOD path" of a request. There is no
// pattern matching and no trailing-slash normalization.
type Router struct {
	routes map[string]HandlerFunc
	static *StaticFiles
}

// NewRouter returns an empty Router.
func NewRouter() *Router {
	return &Router{routes: make(map[string]HandlerFunc)}
}

func routeKey(method, path string) string {
	return method + " " + path
}

// Handle registers h for method and path. Registering the same route twice
// panics.
func (r *Router) Handle(method, path string, h HandlerFunc) {
	key := routeKey(method, path)
	if _, dup := r.routes[key]; dup {
		panic(fmt.Sprintf("server: duplicate route %q", key))
	}
	r.routes[key] = h
}

func (r *Router) Get(path string, h HandlerFunc)    { r.Handle(http.MethodGet, path, h) }
func (r *Router) Post(path string, h HandlerFunc)   { r.Handle(http.MethodPost, path, h) }
func (r *Router) Put(path string, h HandlerFunc)    { r.Handle(http.MethodPut, path, h) }
func (r *Router) Delete(path string, h HandlerFunc) { r.Handle(http.MethodDelete, path, h) }

// Static serves unmatched GET requests from s. A nil s disables it.
func (r *Router) Static(s *StaticFiles) {
	r.static = s
}

// Dispatch runs the handler registered for req. An unmatched GET falls
// through to static files when configured; anything else is a JSON 404.
func (r *Router) Dispatch(ctx context.Context, req *Request) *Response {
	if h, ok := r.routes[routeKey(req.Method, req.Path)]; ok {
		if resp := h(ctx, req); resp != nil {
			return resp
		}
		return NewResponse()
	}
	if r.static != nil && req.Method == http.MethodGet {
		return r.static.Serve(req.Path)
	}
	return ErrorResponse(http.StatusNotFound, "not found")
}

// Package server is a minimal HTTP/1.1 server over raw TCP connections.
//
// Each connection carries exactly one request. The worker reads a single
// fixed-size buffer, parses it, dispatches through a Router, writes one
// response and closes the socket. Bodies that do not fit in the buffer are
// truncated. There is no keep-alive, pipelining or chunked encoding.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// ErrServerClosed is returned by Serve after Close or Shutdown.
var ErrServerClosed = errors.New("server: closed")

// DefaultReadBufferSize is the size of the single read per connection.
const DefaultReadBufferSize = 8192

// Handler produces a response for a parsed request.
type Handler interface {
	Dispatch(ctx context.Context, req *Request) *Response
}

// Config controls the listener and connection workers. Zero timeouts and a
// zero MaxConnections mean no limit.
type Config struct {
	Addr           string
	ReadBufferSize int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	HandlerTimeout time.Duration
	MaxConnections int
}

// Server accepts connections and runs one worker per connection.
type Server struct {
	cfg     Config
	handler Handler
	log     logrus.FieldLogger
	sem     *semaphore.Weighted

	// acceptCtx is cancelled by Close so a blocked admission returns.
	acceptCtx context.Context
	cancel    context.CancelFunc

	mu       sync.Mutex
	listener net.Listener
	closed   bool
	workers  sync.WaitGroup
}

// New constructs a Server.
func New(cfg Config, handler Handler, log logrus.FieldLogger) *Server {
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = DefaultReadBufferSize
	}
	s := &Server{cfg: cfg, handler: handler, log: log}
	if cfg.MaxConnections > 0 {
		s.sem = semaphore.NewWeighted(int64(cfg.MaxConnections))
	}
	s.acceptCtx, s.cancel = context.WithCancel(context.Background())
	return s
}

// ListenAndServe binds cfg.Addr and serves until the server is closed.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. While MaxConnections workers are busy
// the accept loop waits for one to finish.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.listener = ln
	s.mu.Unlock()

	s.log.WithField("addr", ln.Addr().String()).Info("api server listening")

	var backoff time.Duration
	for {
		if s.sem != nil {
			if err := s.sem.Acquire(s.acceptCtx, 1); err != nil {
				return ErrServerClosed
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			s.release()
			if s.isClosed() {
				return ErrServerClosed
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff *= 2; backoff > time.Second {
				backoff = time.Second
			}
			s.log.WithError(err).Warnf("accept failed; retrying in %v", backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		if !s.track() {
			conn.Close()
			s.release()
			return ErrServerClosed
		}
		go func() {
			defer s.workers.Done()
			defer s.release()
			s.serveConn(conn)
		}()
	}
}

// track registers a worker unless the server is closed. Registration holds
// mu so it can never race with Shutdown waiting on an empty group.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.workers.Add(1)
	return true
}

func (s *Server) release() {
	if s.sem != nil {
		s.sem.Release(1)
	}
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops accepting connections. In-flight workers keep running.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// Shutdown closes the listener and waits for in-flight workers until ctx is
// done.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.Close()

	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("api server stopped")
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	start := time.Now()

	if s.cfg.ReadTimeout > 0 {
		conn.SetReadDeadline(start.Add(s.cfg.ReadTimeout))
	}
	buf := make([]byte, s.cfg.ReadBufferSize)
	n, _ := conn.Read(buf)
	if n <= 0 {
		return
	}

	req, resp := s.handle(buf[:n], conn.RemoteAddr())
	resp.SetCORS()

	if s.cfg.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	_, werr := resp.WriteTo(conn)

	entry := s.log.WithFields(logrus.Fields{
		"request_id": req.ID,
		"method":     req.Method,
		"path":       req.Path,
		"status":     resp.Status,
		"duration":   time.Since(start).String(),
		"remote":     req.RemoteAddr,
	})
	switch {
	case werr != nil:
		entry.WithError(werr).Warn("write response failed")
	case resp.Status >= http.StatusInternalServerError:
		entry.Error("request")
	case resp.Status >= http.StatusBadRequest:
		entry.Warn("request")
	default:
		entry.Info("request")
	}
}

// handle turns raw request bytes into a response. It never panics.
func (s *Server) handle(raw []byte, remote net.Addr) (*Request, *Response) {
	req, err := ParseRequest(raw)
	if err != nil {
		req = &Request{}
	}
	req.ID = uuid.NewString()
	req.RemoteAddr = remote.String()
	if err != nil {
		return req, ErrorResponse(http.StatusBadRequest, "malformed request")
	}

	if req.Method == http.MethodOptions {
		resp := NewResponse()
		resp.Status = http.StatusNoContent
		return req, resp
	}
	return req, s.dispatch(req)
}

func (s *Server) dispatch(req *Request) (resp *Response) {
	ctx := context.Background()
	if s.cfg.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.HandlerTimeout)
		defer cancel()
	}

	defer func() {
		if v := recover(); v != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": req.ID,
				"method":     req.Method,
				"path":       req.Path,
				"panic":      fmt.Sprint(v),
			}).Error("handler panicked")
			resp = ErrorResponse(http.StatusInternalServerError, "internal server error")
		}
	}()

	resp = s.handler.Dispatch(ctx, req)
	if resp == nil {
		resp = NewResponse()
	}
	return resp
}

// Package server exposes a Controller over a raw TCP socket using one
// HTTP/1.x style request per connection.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/mj1618/dump-hierarchy/internal/config"
)

// Server accepts control connections and dispatches them to a Controller.
// At most cfg.MaxWorkers connections are served at once; further
// connections wait in the listen backlog.
type Server struct {
	ctrl   *Controller
	cfg    config.ServerConfig
	routes map[string]handlerFunc
	sem    *semaphore.Weighted
	log    *zap.Logger
	wg     sync.WaitGroup

	mu   sync.Mutex
	addr net.Addr
}

// New creates a Server for ctrl.
func New(ctrl *Controller, cfg config.ServerConfig, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = 1
	}
	s := &Server{
		ctrl: ctrl,
		cfg:  cfg,
		sem:  semaphore.NewWeighted(int64(workers)),
		log:  log.Named("server"),
	}
	s.routes = s.routeTable()
	return s
}

// Addr returns the listening address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// ListenAndServe listens on cfg.Host:cfg.Port and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln and runs the change-watch loop until ctx
// is done. It closes ln, then waits for in-flight connections and the watch
// loop before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()
	s.log.Info("control server listening", zap.String("addr", ln.Addr().String()), zap.Int("max_workers", s.cfg.MaxWorkers))

	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		if err := s.ctrl.Watch(ctx); err != nil {
			s.log.Error("change watch stopped", zap.Error(err))
		}
	}()

	closeDone := make(chan struct{})
	go func() {
		defer close(closeDone)
		<-ctx.Done()
		ln.Close()
	}()

	var serveErr error
	for {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			break
		}
		conn, err := ln.Accept()
		if err != nil {
			s.sem.Release(1)
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.log.Warn("accept failed, retrying", zap.Error(err))
				time.Sleep(10 * time.Millisecond)
				continue
			}
			serveErr = fmt.Errorf("accept: %w", err)
			break
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.sem.Release(1)
			s.handleConn(ctx, conn)
		}()
	}

	cancel()
	<-closeDone
	s.wg.Wait()
	<-watchDone
	s.log.Info("control server stopped")
	return serveErr
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	log := s.log.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("remote", conn.RemoteAddr().String()))

	if s.cfg.ReadTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	}
	req, err := ReadRequest(bufio.NewReader(conn), s.cfg.MaxBodyBytes)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			log.Warn("dropping malformed request", zap.Error(err))
		}
		return
	}
	conn.SetReadDeadline(time.Time{})

	start := time.Now()
	resp := s.dispatch(ctx, req, log)
	if err := resp.Write(conn, req.Proto); err != nil {
		log.Warn("write response failed", zap.Error(err))
	}

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.Status),
		zap.Int("bytes", len(resp.Body)),
		zap.Duration("elapsed", time.Since(start)),
	}
	switch {
	case resp.Status >= http.StatusInternalServerError:
		log.Error("request failed", append(fields, zap.ByteString("body", resp.Body))...)
	case resp.Status >= http.StatusBadRequest:
		log.Warn("request rejected", append(fields, zap.ByteString("body", resp.Body))...)
	default:
		log.Info("request served", fields...)
	}
}

// dispatch routes req. A panic in a handler becomes a 500.
func (s *Server) dispatch(ctx context.Context, req *Request, log *zap.Logger) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic during dispatch", zap.Any("panic", r), zap.Stack("stack"))
			resp = text(http.StatusInternalServerError, "Internal Server Error")
		}
	}()

	h, ok := s.routes[req.Path]
	if !ok {
		return text(http.StatusNotFound, "Not Found")
	}
	if !methodAllowed(req.Path, req.Method) {
		return text(http.StatusMethodNotAllowed, "Method Not Allowed")
	}
	var err error
	resp, err = h(ctx, req)
	if err != nil {
		resp = errorResponse(err)
		if resp.Status == http.StatusInternalServerError {
			log.Error("handler failed", zap.String("path", req.Path), zap.Error(err))
		}
	}
	return resp
}

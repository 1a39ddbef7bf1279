// Package server serves a rendered form page over HTTP and keeps the result
// of the latest submission.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-mdform/internal/logging"
	"github.com/goliatone/go-mdform/pkg/contract"
	"github.com/goliatone/go-mdform/pkg/pipeline"
	"github.com/goliatone/go-mdform/pkg/submission"
	"github.com/goliatone/go-mdform/pkg/theme"
	"github.com/goliatone/go-mdform/pkg/view"
)

const (
	DefaultMaxBodyBytes  = 1 << 20
	DefaultShutdownGrace = 5 * time.Second
)

// Option configures a Server.
type Option func(*Server)

// WithEngine replaces the default view engine.
func WithEngine(engine *view.Engine) Option {
	return func(s *Server) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithTheme sets the theme passed to the page template.
func WithTheme(ctx theme.Context) Option {
	return func(s *Server) {
		s.theme = ctx
	}
}

// WithCollector replaces the default collector.
func WithCollector(collector *submission.Collector) Option {
	return func(s *Server) {
		if collector != nil {
			s.collector = collector
		}
	}
}

// WithMaxBodyBytes bounds submission bodies.
func WithMaxBodyBytes(limit int64) Option {
	return func(s *Server) {
		if limit > 0 {
			s.maxBodyBytes = limit
		}
	}
}

// WithSnapshotFile persists the latest result to path after every
// submission and restores it when the server is created.
func WithSnapshotFile(path string) Option {
	return func(s *Server) {
		s.snapshot = newSnapshot(path)
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Server owns the rendered page and the latest submission result.
type Server struct {
	page         pipeline.Page
	engine       *view.Engine
	theme        theme.Context
	collector    *submission.Collector
	maxBodyBytes int64
	snapshot     *snapshot
	logger       logging.Logger
	contract     []byte

	// storeMu keeps the latest result and its snapshot in step.
	storeMu sync.Mutex
	latest  atomic.Pointer[submission.Result]
}

// New prepares a server for page. The OpenAPI contract is built once here.
func New(page pipeline.Page, opts ...Option) (*Server, error) {
	s := &Server{
		page:         page,
		collector:    submission.NewCollector(),
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.engine == nil {
		engine, err := view.New()
		if err != nil {
			return nil, fmt.Errorf("server: view engine: %w", err)
		}
		s.engine = engine
	}

	doc, err := contract.Build(context.Background(), page.Forms, contract.Options{
		Title:    page.Title,
		ListMode: s.collector.Mode(),
	})
	if err != nil {
		return nil, fmt.Errorf("server: build contract: %w", err)
	}
	if s.contract, err = json.MarshalIndent(doc, "", "  "); err != nil {
		return nil, fmt.Errorf("server: encode contract: %w", err)
	}

	if s.snapshot != nil {
		restored, ok, err := s.snapshot.load()
		if err != nil {
			s.logger.Warn("snapshot not restored", "path", s.snapshot.path, "error", err)
		} else if ok {
			s.latest.Store(&restored)
		}
	}
	return s, nil
}

// Latest returns the most recent result.
func (s *Server) Latest() (submission.Result, bool) {
	result := s.latest.Load()
	if result == nil {
		return submission.Result{}, false
	}
	return *result, true
}

// Handler returns the routes wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/submit", s.handleSubmit)
	mux.HandleFunc("/result", s.handleResult)
	mux.HandleFunc("/openapi.json", s.handleContract)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return s.withRequestLog(mux)
}

// Run serves on addr until ctx is done, then shuts down within grace.
func (s *Server) Run(ctx context.Context, addr string, grace time.Duration) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, listener, grace)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener, grace time.Duration) error {
	if grace <= 0 {
		grace = DefaultShutdownGrace
	}
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()
	s.logger.Info("listening", "addr", listener.Addr().String())

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) store(result submission.Result) {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	s.latest.Store(&result)
	if s.snapshot == nil {
		return
	}
	if err := s.snapshot.save(result); err != nil {
		s.logger.Error("snapshot write failed", "path", s.snapshot.path, "error", err)
	}
}

func wantsJSON(r *http.Request) bool {
	accept := strings.ToLower(r.Header.Get("Accept"))
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

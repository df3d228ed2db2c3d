// Package server serves the dashboard page, its REST API and the WebSocket
// endpoint that drives the callbacks.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/launchdash/dashboard/internal/callbacks"
	"github.com/launchdash/dashboard/internal/config"
	"github.com/launchdash/dashboard/internal/dataset"
	"github.com/launchdash/dashboard/internal/monitor"
)

// Dependencies holds all dependencies for the HTTP server
type Dependencies struct {
	Callbacks *callbacks.Manager
	Layout    dataset.Layout
	// Monitor is optional; /api/status returns 404 without it
	Monitor *monitor.Service
	Logger  *slog.Logger
}

// Server routes HTTP requests to the page, API and WebSocket hub.
type Server struct {
	deps   Dependencies
	router *mux.Router
	hub    *Hub
	page   *template.Template
}

// New creates a server and registers its routes.
func New(deps Dependencies) (*Server, error) {
	if deps.Callbacks == nil {
		return nil, errors.New("server requires a callback manager")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	page, err := parsePage()
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	s := &Server{
		deps: deps,
		hub:  NewHub(deps.Callbacks, deps.Logger),
		page: page,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/", s.handlePage).Methods(http.MethodGet)
	r.Handle("/ws", s.hub).Methods(http.MethodGet)
	r.HandleFunc("/healthcheck", s.handleHealthcheck).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/layout", s.handleLayout).Methods(http.MethodGet)
	// the PNG route must be registered first so ".png" is not captured as part of the output
	api.HandleFunc("/figures/{output:[a-z-]+}.png", s.handleFigurePNG).Methods(http.MethodGet)
	api.HandleFunc("/figures/{output:[a-z-]+}", s.handleFigure).Methods(http.MethodGet)
	api.HandleFunc("/launches", s.handleLaunches).Methods(http.MethodGet)
	api.HandleFunc("/sites.geojson", s.handleSitesGeoJSON).Methods(http.MethodGet)
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	s.router = r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run serves on cfg's address until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig) error {
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr(), err)
	}
	return s.Serve(ctx, ln, cfg)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, cfg config.ServerConfig) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.deps.Logger.Info("Dashboard listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		s.hub.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		s.deps.Logger.Info("Dashboard stopped")
		return nil
	})
	return g.Wait()
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the WebSocket upgrade needs the original writer for Hijack
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.deps.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

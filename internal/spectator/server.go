// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     spectator
// Description: HTTP server exposing the spectator hub and health endpoint
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package spectator

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/msto63/cellbot/pkg/core/health"
	"github.com/msto63/cellbot/pkg/core/logging"
	"github.com/msto63/cellbot/pkg/core/version"
)

// Config holds spectator server configuration
type Config struct {
	Addr          string
	ReadTimeout   time.Duration
	MaxSpectators int
}

// DefaultConfig returns default spectator configuration
func DefaultConfig() Config {
	return Config{
		Addr:          "127.0.0.1:9311",
		ReadTimeout:   30 * time.Second,
		MaxSpectators: 64,
	}
}

// Server serves the hub at /ws and the health report at /healthz
type Server struct {
	httpServer *http.Server
	hub        *Hub
	health     *health.Registry
	logger     *logging.Logger
	config     Config
	listener   net.Listener
}

// NewServer creates a spectator server around hub
func NewServer(cfg Config, hub *Hub) *Server {
	logger := logging.New("cellbot-spectator-server")

	healthRegistry := health.NewRegistry("spectator", version.App)
	healthRegistry.Register(health.AlwaysHealthy("http"))
	healthRegistry.Register(health.ThresholdCheck("spectators", cfg.MaxSpectators, hub.Clients))

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.Handle("/healthz", healthRegistry.Handler(5*time.Second))

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           loggingMiddleware(logger, mux),
			ReadHeaderTimeout: cfg.ReadTimeout,
		},
		hub:    hub,
		health: healthRegistry,
		logger: logger,
		config: cfg,
	}
}

// StartAsync binds the listener and serves in the background
func (s *Server) StartAsync() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	s.logger.Info("Starting spectator server", "addr", ln.Addr().String())
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()
	return nil
}

// Stop disconnects spectators and shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping spectator server")
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

// Address returns the bound address, or the configured one before start
func (s *Server) Address() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

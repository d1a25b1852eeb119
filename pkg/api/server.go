package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/bgpilot/pkg/engine"
)

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Host            string        // Host to bind to (default "localhost")
	Port            int           // Port to listen on (default 8080)
	ReadTimeout     time.Duration // Read timeout (default 30s)
	WriteTimeout    time.Duration // Write timeout (default 30s, 0 for streaming)
	IdleTimeout     time.Duration // Idle timeout (default 60s)
	MaxFastWorkers  int           // Max concurrent fast operations (default 100)
	MaxGnubgWorkers int           // Max concurrent gnubg runs (default 2)
}

// DefaultConfig returns a ServerConfig with sensible defaults.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Host:            "localhost",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		MaxFastWorkers:  100,
		MaxGnubgWorkers: 2,
	}
}

// Server is the HTTP API server.
type Server struct {
	config   ServerConfig
	handlers *Handlers
	server   *http.Server
	pool     *WorkerPool
	version  string
}

// NewServer creates a new API server.
func NewServer(pipeline *engine.Engine, hinter engine.Hinter, config ServerConfig, version string) *Server {
	pool := NewWorkerPool(PoolConfig{
		MaxFastWorkers:  config.MaxFastWorkers,
		MaxGnubgWorkers: config.MaxGnubgWorkers,
	})

	return &Server{
		config:   config,
		handlers: NewHandlersWithPool(pipeline, hinter, version, pool),
		pool:     pool,
		version:  version,
	}
}

// Pool returns the worker pool for monitoring.
func (s *Server) Pool() *WorkerPool {
	return s.pool
}

// Handlers returns the server's handlers.
func (s *Server) Handlers() *Handlers {
	return s.handlers
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware tags each request with an id and logs it.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		next.ServeHTTP(w, r)

		log.Debug().
			Str("request", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("http")
	})
}

// Routes returns the API handler with middleware applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	h := s.handlers

	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("POST /api/posid", h.EncodePosition)
	mux.HandleFunc("GET /api/posid", h.DecodePosition)
	mux.HandleFunc("POST /api/matchid", h.EncodeMatch)
	mux.HandleFunc("GET /api/matchid", h.DecodeMatch)
	mux.HandleFunc("POST /api/parse", h.Parse)
	mux.HandleFunc("POST /api/fibsboard", h.FIBSBoard)
	mux.HandleFunc("POST /api/plan", h.Plan)
	mux.HandleFunc("POST /api/simulate", h.Simulate)
	mux.HandleFunc("POST /api/hint", h.Hint)
	mux.HandleFunc("POST /api/event", h.Event)
	mux.HandleFunc("GET /api/notices", h.Notices)
	mux.HandleFunc("/api/ws", h.WebSocket)

	return corsMiddleware(loggingMiddleware(mux))
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	log.Info().Str("version", s.version).Str("addr", addr).Msg("api-listening")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// ListenAndServeWithGracefulShutdown starts the server and handles shutdown signals.
func (s *Server) ListenAndServeWithGracefulShutdown() error {
	errChan := make(chan error, 1)

	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("api-shutdown")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info().Msg("api-stopped")
	return nil
}

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"redactproxy/internal/config"
	"redactproxy/internal/core"
)

// maxBodyBytes caps inbound request bodies
const maxBodyBytes = 10 << 20

// Server represents the HTTP server
type Server struct {
	settings config.ServerSettings
	gateway  *Gateway
	log      *zap.Logger
	limiter  *RateLimiter
	router   chi.Router
	server   *http.Server
}

// New creates a new Server instance
func New(settings config.ServerSettings, gateway *Gateway, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		settings: settings,
		gateway:  gateway,
		log:      log,
	}
	if settings.RateLimit.RPS > 0 {
		s.limiter = NewRateLimiter(settings.RateLimit.RPS, settings.RateLimit.Burst)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if s.limiter != nil {
		r.Use(s.limiter.Middleware)
	}

	healthPath := s.settings.HealthPath
	if healthPath == "" {
		healthPath = "/healthz"
	}
	r.Get(healthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// 其余所有路径和方法都转发到下游
	r.Handle("/*", http.HandlerFunc(s.handleProxy))
	return r
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.settings.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	if s.limiter != nil {
		defer s.limiter.Stop()
	}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting redactproxy", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	resp := s.gateway.Handle(r.Context(), &core.Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})

	for key, values := range resp.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		s.log.Debug("Failed to write response", zap.Error(err))
	}
}

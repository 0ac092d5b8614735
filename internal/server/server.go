// Package server exposes the render pipeline over HTTP.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"embedder/internal/httputil"
	"embedder/internal/media"
	"embedder/internal/provider"
	"embedder/internal/render"
)

// maxPageBytes caps documents posted for rendering.
const maxPageBytes = 5 << 20

type Config struct {
	Registry *provider.Registry
	Renderer *render.Renderer
	Logger   *slog.Logger
}

type Server struct {
	router   chi.Router
	registry *provider.Registry
	renderer *render.Renderer
	logger   *slog.Logger
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(slogMiddleware(logger))
	r.Use(metricsMiddleware)

	s := &Server{
		router:   r,
		registry: cfg.Registry,
		renderer: cfg.Renderer,
		logger:   logger,
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/providers", s.handleProviders)
		r.Get("/providers/{name}", s.handleProvider)
		r.Get("/resolve", s.handleResolve)
		r.Get("/embed", s.handleEmbed)
		r.Post("/page", s.handlePage)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// writeRenderError maps pipeline failures to status codes.
func writeRenderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, media.ErrUnknownProvider):
		httputil.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, media.ErrNothingToPlay):
		httputil.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	}
}

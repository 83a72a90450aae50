package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"waferplot/app"
	"waferplot/domain/measurement"
	"waferplot/internal/metrics"
)

// Config holds the request defaults of the HTTP API
type Config struct {
	Layout         measurement.Layout
	Scatter        app.ScatterOptions
	MaxUploadBytes int64
}

// Server exposes the plot service over HTTP
type Server struct {
	router  *chi.Mux
	service *app.PlotService
	config  Config
}

// NewServer creates the API router
func NewServer(service *app.PlotService, config Config) *Server {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 32 << 20
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		config:  config,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(2 * time.Minute))
	s.router.Use(middleware.Compress(5, "application/json"))
	s.router.Use(countRequests)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/groups", s.handleGroups)
		r.Post("/scatter", s.handleScatter)
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// countRequests records each request under its route pattern
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.ObserveRequest(route, http.StatusText(status))
	})
}

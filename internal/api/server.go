// Package api provides the HTTP API server and handlers for the bookduck server.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seohyun-lee/bookduck-backend/internal/http/response"
	"github.com/seohyun-lee/bookduck-backend/internal/metrics"
	"github.com/seohyun-lee/bookduck-backend/internal/ratelimit"
	"github.com/seohyun-lee/bookduck-backend/internal/service"
)

// Prefix is the path every API route lives under.
const Prefix = "/api/v1"

// Services groups the business logic services used by the API server.
type Services struct {
	Auth        *service.AuthService
	Account     *service.AccountService
	Progression *service.ProgressionService
	Catalog     *service.CatalogService
	Library     *service.LibraryService
	OneLine     *service.OneLineService
	Archive     *service.ArchiveService
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DocumentCounter reports the size of the search index.
type DocumentCounter interface {
	DocumentCount() (uint64, error)
}

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	db       Pinger
	index    DocumentCounter
	metrics  *metrics.Metrics
	limiter  *ratelimit.KeyedRateLimiter
	router   chi.Router
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// m may be nil when metrics are disabled.
func NewServer(services *Services, db Pinger, index DocumentCounter, m *metrics.Metrics, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		services: services,
		db:       db,
		index:    index,
		metrics:  m,
		router:   chi.NewRouter(),
		logger:   logger,
	}
	if opts.RateLimitRPS > 0 {
		s.limiter = ratelimit.New(opts.RateLimitRPS, max(opts.RateLimitBurst, 1))
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("Bookduck API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler(logger)

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API the routes are registered on.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestContext)
	s.router.Use(s.observe)
	s.router.Use(middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
			ExposedHeaders:   []string{RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	if s.limiter != nil {
		s.router.Use(s.rateLimit)
	}

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", s.logger)
	})
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerCatalogRoutes()
	s.registerBookRoutes()
	s.registerCustomBookRoutes()
	s.registerOneLineRoutes()
	s.registerArchiveRoutes()
}

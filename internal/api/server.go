// Package api implements the HTTP API for the EcoMinds server.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ecomindsapp/ecominds-server/internal/sse"
	"github.com/ecomindsapp/ecominds-server/internal/store"
)

// Server is the HTTP API server. It owns the router, the OpenAPI
// surface and the SSE endpoint.
type Server struct {
	store           *store.Store
	services        *Services
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	sseManager      *sse.Manager
	sseHandler      *sse.Handler
	authRateLimiter *RateLimiter
}

// NewServer creates the API server and registers every route.
func NewServer(name string, st *store.Store, services *Services, sseManager *sse.Manager, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig(name, "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	humaAPI := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:           st,
		services:        services,
		router:          router,
		api:             humaAPI,
		logger:          logger,
		sseManager:      sseManager,
		authRateLimiter: NewRateLimiter(20, time.Minute, 10),
	}

	if sseManager != nil {
		s.sseHandler = sse.NewHandler(sseManager, logger, userFromContext)
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerActivityRoutes()
	s.registerStreakRoutes()
	s.registerMissionRoutes()
	s.registerLeaderboardRoutes()
	s.registerAchievementRoutes()
	s.registerAdminRoutes()

	// SSE is a long-lived raw HTTP stream, so it bypasses huma and
	// hangs directly off the router.
	if s.sseHandler != nil {
		router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	if s.authRateLimiter != nil {
		s.authRateLimiter.Stop()
	}
}

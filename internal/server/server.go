package server

import (
	"log/slog"
	"net/http"

	"dashboard-datagen/internal/handlers"
	"dashboard-datagen/internal/services"
)

type Server struct {
	dataset     *services.DatasetService
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(dataset *services.DatasetService, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		dataset:     dataset,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(dataset, logger),
		sseHandlers: handlers.NewSSEHandlers(dataset, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/dashboard-data", s.apiHandlers.HandleDashboardData)
	s.mux.HandleFunc("GET /api/dashboard-data/{subset}", s.apiHandlers.HandleSubset)
	s.mux.HandleFunc("POST /api/regenerate", s.apiHandlers.HandleRegenerate)
	s.mux.HandleFunc("GET /api/classify", s.apiHandlers.HandleClassify)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/brand-trends", s.sseHandlers.HandleBrandTrends)
	s.mux.HandleFunc("GET /sse/substitutions", s.sseHandlers.HandleSubstitutions)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

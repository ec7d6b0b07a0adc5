package server

import (
	"log/slog"
	"net/http"

	"adr-dashboard/internal/handlers"
	"adr-dashboard/internal/services"
)

type Server struct {
	store       *services.Reservations
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(store *services.Reservations, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		store:       store,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(store, logger),
		sseHandlers: handlers.NewSSEHandlers(store, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/bounds", s.apiHandlers.HandleBounds)
	s.mux.HandleFunc("GET /api/charts/monthly-distribution", s.apiHandlers.HandleMonthlyDistribution)
	s.mux.HandleFunc("GET /api/charts/revenue-share", s.apiHandlers.HandleRevenueShare)
	s.mux.HandleFunc("GET /api/charts/trends", s.apiHandlers.HandleTrends)
	s.mux.HandleFunc("GET /api/charts/seasonal", s.apiHandlers.HandleSeasonal)
	s.mux.HandleFunc("GET /api/charts/bin-distribution", s.apiHandlers.HandleBinDistribution)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/chart", s.sseHandlers.HandleChart)
	s.mux.HandleFunc("GET /sse/forecast", s.sseHandlers.HandleForecast)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/insight"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	pageCacheAge  = "public, max-age=60"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

func NewServer(analytics *services.Analytics, assistant *insight.Service, logger *slog.Logger) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, assistant, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, assistant, logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /", s.handleDashboard)
	s.mux.HandleFunc("GET /healthz", s.apiHandlers.HandleHealth)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/summary", s.apiHandlers.HandleSummary)
	s.mux.HandleFunc("GET /api/regions", s.apiHandlers.HandleRegions)
	s.mux.HandleFunc("GET /api/products", s.apiHandlers.HandleProducts)
	s.mux.HandleFunc("GET /api/monthly", s.apiHandlers.HandleMonthly)
	s.mux.HandleFunc("GET /api/channels", s.apiHandlers.HandleChannels)
	s.mux.HandleFunc("GET /api/segments", s.apiHandlers.HandleSegments)
	s.mux.HandleFunc("GET /api/salespeople", s.apiHandlers.HandleSalespeople)
	s.mux.HandleFunc("GET /api/matrix", s.apiHandlers.HandleMatrix)
	s.mux.HandleFunc("GET /api/query", s.apiHandlers.HandleQuery)
	s.mux.HandleFunc("GET /api/stats", s.apiHandlers.HandleStats)
	s.mux.HandleFunc("POST /api/ask", s.apiHandlers.HandleAsk)

	// Datastar SSE stream
	s.mux.HandleFunc("GET /events", s.sseHandlers.HandleEvents)
	s.mux.HandleFunc("POST /sse/ask", s.sseHandlers.HandleAsk)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Cache-Control", pageCacheAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		s.logger.Error("render dashboard", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

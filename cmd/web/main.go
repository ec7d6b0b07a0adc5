package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"adr-dashboard/internal/config"
	"adr-dashboard/internal/middleware"
	"adr-dashboard/internal/observability"
	"adr-dashboard/internal/server"
	"adr-dashboard/internal/services"
	"adr-dashboard/internal/ui/templates"
)

const (
	renderTimeout   = 10 * time.Second
	dataLoadTimeout = 30 * time.Second
	cacheMaxAge     = "public, max-age=300"
	dateLayout      = "2006-01-02"
)

// dashboardHandler serves the page shell with the date picker bounded by the
// dataset's check-in range.
func dashboardHandler(store *services.Reservations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		minDate, maxDate, ok := store.DateBounds()
		if !ok {
			http.Error(w, "no dated reservations loaded", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Cache-Control", cacheMaxAge)
		page := templates.Dashboard(minDate.Format(dateLayout), maxDate.Format(dateLayout))
		if err := page.Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	store := services.NewReservations()
	ctx, cancel := context.WithTimeout(context.Background(), dataLoadTimeout)
	defer cancel()

	// A missing or unreadable dataset is fatal; bad cells inside it are not.
	if err := store.LoadFromFile(ctx, cfg.Data.File); err != nil {
		logger.Error("failed to load reservation data", "error", err)
		os.Exit(1)
	}

	templateHandlers := &server.TemplateHandlers{
		Dashboard: dashboardHandler(store),
	}

	srv := server.NewServer(store, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down reservation store")
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}

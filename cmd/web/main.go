package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"dashboard-datagen/internal/config"
	"dashboard-datagen/internal/middleware"
	"dashboard-datagen/internal/observability"
	"dashboard-datagen/internal/server"
	"dashboard-datagen/internal/services"
	"dashboard-datagen/internal/store"
	"dashboard-datagen/internal/ui/templates"
)

const (
	renderTimeout  = 10 * time.Second
	startupTimeout = 30 * time.Second
	cacheMaxAge    = "public, max-age=300"
)

// handleDashboard serves the page shell; the SSE routes fill it in.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// prepareDataset loads the brand catalog and makes a dataset current. The
// catalog file wins over a stored catalog; a stored dataset is reused only
// when it was generated from the loaded catalog.
func prepareDataset(ctx context.Context, dataset *services.DatasetService, cfg *config.Config, logger *slog.Logger) error {
	err := dataset.LoadCatalogFile(ctx, cfg.Generator.CatalogFile)
	if err != nil {
		logger.Warn("catalog file unavailable, trying store",
			"file", cfg.Generator.CatalogFile,
			"error", err,
		)
		if storeErr := dataset.LoadCatalogFromStore(ctx); storeErr != nil {
			return err
		}
	}

	switch err := dataset.RestoreLatest(ctx); {
	case err == nil:
		return nil
	case services.IsNotFound(err):
	case stderrors.Is(err, services.ErrCatalogMismatch):
		logger.Info("stored dataset is stale, regenerating", "error", err)
	default:
		logger.Warn("failed to restore dataset", "error", err)
	}

	_, err = dataset.Regenerate(ctx)
	return err
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	st, err := store.Open(cfg.Store)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}

	cls, gen, err := services.NewGenerator(cfg.Generator, logger)
	if err != nil {
		logger.Error("failed to build generator", "error", err)
		os.Exit(1)
	}

	dataset := services.NewDatasetService(gen, cls, st, logger)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	start := time.Now()
	if err := prepareDataset(ctx, dataset, cfg, logger); err != nil {
		logger.Error("failed to prepare dataset", "error", err)
		os.Exit(1)
	}
	logger.Info("dataset ready", "duration", time.Since(start))

	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}

	srv := server.NewServer(dataset, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.H2C(cfg.Server.EnableH2C),
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

	gracefulServer.RegisterShutdownHook("close store", func(ctx context.Context) error {
		logger.Info("closing dataset store", "driver", cfg.Store.Driver)
		return st.Close()
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}

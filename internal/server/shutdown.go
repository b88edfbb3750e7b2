package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"dashboard-datagen/internal/config"
)

const hookTimeout = 10 * time.Second

type shutdownHook struct {
	name string
	fn   func(ctx context.Context) error
}

type GracefulServer struct {
	server *http.Server
	logger *slog.Logger
	config *config.Config
	hooks  []shutdownHook
	mu     sync.RWMutex
}

func NewGracefulServer(server *http.Server, logger *slog.Logger, config *config.Config) *GracefulServer {
	return &GracefulServer{
		server: server,
		logger: logger,
		config: config,
	}
}

// RegisterShutdownHook adds fn to the hooks run once the HTTP server has
// drained. Hooks run in registration order.
func (gs *GracefulServer) RegisterShutdownHook(name string, fn func(ctx context.Context) error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.hooks = append(gs.hooks, shutdownHook{name: name, fn: fn})
}

func (gs *GracefulServer) ListenAndServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return gs.Run(ctx)
}

// Run serves until ctx is cancelled or the listener fails, then shuts down.
func (gs *GracefulServer) Run(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		gs.logger.Info("starting server",
			"addr", gs.server.Addr,
			"h2c", gs.config.Server.EnableH2C,
			"read_timeout", gs.config.Server.ReadTimeout,
			"write_timeout", gs.config.Server.WriteTimeout,
		)
		serverErrors <- gs.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		gs.logger.Info("shutdown signal received", "cause", context.Cause(ctx))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), gs.config.Server.ShutdownTimeout)
		defer cancel()

		return gs.Shutdown(shutdownCtx)
	}
}

func (gs *GracefulServer) Shutdown(ctx context.Context) error {
	gs.logger.Info("starting graceful shutdown",
		"timeout", gs.config.Server.ShutdownTimeout,
	)

	var errs []error

	gs.logger.Info("stopping HTTP server")
	if err := gs.server.Shutdown(ctx); err != nil {
		gs.logger.Error("HTTP server shutdown failed", "error", err)
		errs = append(errs, fmt.Errorf("HTTP server shutdown failed: %w", err))
	} else {
		gs.logger.Info("HTTP server stopped gracefully")
	}

	gs.mu.RLock()
	hooks := make([]shutdownHook, len(gs.hooks))
	copy(hooks, gs.hooks)
	gs.mu.RUnlock()

	for _, hook := range hooks {
		if err := gs.runHook(ctx, hook); err != nil {
			errs = append(errs, err)
		}
	}

	if ctx.Err() != nil {
		gs.logger.Warn("shutdown timeout exceeded")
	} else {
		gs.logger.Info("graceful shutdown completed")
	}

	return stderrors.Join(errs...)
}

func (gs *GracefulServer) runHook(ctx context.Context, hook shutdownHook) error {
	hookCtx, cancel := context.WithTimeout(ctx, hookTimeout)
	defer cancel()

	gs.logger.Debug("executing shutdown hook", "hook", hook.name)
	if err := hook.fn(hookCtx); err != nil {
		gs.logger.Error("shutdown hook failed",
			"hook", hook.name,
			"error", err,
		)
		return fmt.Errorf("shutdown hook %s failed: %w", hook.name, err)
	}
	gs.logger.Debug("shutdown hook completed", "hook", hook.name)
	return nil
}

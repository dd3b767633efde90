// Package app provides the top-level application lifecycle management for
// the trade cost simulator. It wires the stream transport, rolling window,
// cost models, refit scheduler, ingestion pipeline, and HTTP API together
// and runs them until the context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Anurag2509-fledor/trade-simulator/internal/config"
	"github.com/Anurag2509-fledor/trade-simulator/internal/domain"
)

const shutdownTimeout = 10 * time.Second

// App is the root application object.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all components, starts the feed,
// pipeline, and HTTP server goroutines, and blocks until the context is
// cancelled or the transport fails terminally.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("stream_url", a.cfg.Stream.URL),
		slog.Int("window_capacity", a.cfg.Window.Capacity),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps := Wire(a.cfg, a.logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer deps.Feed.Close()
		if err := deps.Feed.Run(ctx); err != nil {
			if errors.Is(err, domain.ErrTransportFailed) {
				a.logger.Error("transport failed terminally, shutting down")
			}
			return fmt.Errorf("app: feed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return deps.Pipeline.Run(ctx)
	})

	if deps.Server != nil {
		g.Go(func() error {
			if err := deps.Server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("app: server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return deps.Server.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	a.logger.Info("application stopped")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

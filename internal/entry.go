// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/scenaview/internal/annotate"
	"github.com/starford/scenaview/internal/api"
	"github.com/starford/scenaview/internal/catalog"
	"github.com/starford/scenaview/internal/mcpserver"
	"github.com/starford/scenaview/internal/metrics"
	"github.com/starford/scenaview/internal/prefs"
	"github.com/starford/scenaview/internal/selection"
	"github.com/starford/scenaview/internal/sse"
	"github.com/starford/scenaview/internal/web"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	out := app.logOutput
	if out == nil {
		out = os.Stdout
		if app.mcp {
			out = os.Stderr
		}
	}

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("catalog_path", cfg.Catalog.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("mcp", app.mcp),
		slog.String("log_level", cfg.App.LogLevel.String()))

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("Catalog loaded",
		slog.Int("scenarios", len(cat.Scenarios())),
		slog.Int("sequences", len(cat.Sequences())),
		slog.String("checksum", cat.Checksum()))

	ann := annotate.New(
		annotate.WithBaseURL(cfg.Mock.ImageBaseURL),
		annotate.WithLatency(annotate.Latency{Min: cfg.Mock.LatencyMin, Max: cfg.Mock.LatencyMax}),
	)

	if app.mcp {
		logger.Info("Serving MCP over stdio")
		return mcpserver.New(cat, ann).ServeStdio()
	}

	// Initialize SQLite preference store.
	store, err := prefs.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init prefs: %w", err)
	}
	defer store.Close()

	m := metrics.New()

	// SSE broker.
	broker := sse.NewBroker(cfg.SSE.Throttle, sse.WithClientsHook(m.SetSSEClients))
	defer broker.Close()

	sessions := selection.New(cat, store, broker, selection.WithLogger(logger))
	defer sessions.Close()

	r, err := newRouter(cat, ann, sessions, broker, m)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the catalog file, which may only be created later.
	if cfg.Catalog.Path != "" {
		g.Go(func() error {
			return watchCatalog(gCtx, cat, cfg.Catalog.Path, logger, func(checksum string) {
				m.IncCatalogReloads()
				broker.PublishCatalogReload(checksum)
			})
		})
	} else {
		logger.Info("No catalog path configured, hot reload disabled")
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// watchCatalog runs catalog.Watch until ctx ends. A watcher that cannot
// start is logged and leaves the server running on the loaded catalog.
func watchCatalog(ctx context.Context, cat *catalog.Catalog, path string, logger *slog.Logger, onReload catalog.ReloadCallback) error {
	if err := catalog.Watch(ctx, cat, path, logger, onReload); err != nil {
		logger.Warn("Catalog hot reload unavailable",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

func newRouter(cat *catalog.Catalog, ann *annotate.Annotator, sessions *selection.Service, broker *sse.Broker, m *metrics.Metrics) (chi.Router, error) {
	pages, err := web.New(cat, ann, sessions, web.DefaultChartURL)
	if err != nil {
		return nil, fmt.Errorf("init web: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", m.Handler(func() {
		m.SetActiveSessions(sessions.Count())
	}))

	r.Group(func(r chi.Router) {
		r.Use(metrics.RequestMiddleware(m))

		// Mount API routes under /api.
		r.Mount("/api", api.NewRouter(api.NewHandler(cat, ann, sessions, m), broker))

		r.Mount("/", pages.Routes())
	})

	return r, nil
}

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

	"github.com/starford/okrtrack/internal/api"
	"github.com/starford/okrtrack/internal/clock"
	"github.com/starford/okrtrack/internal/journal"
	"github.com/starford/okrtrack/internal/mcpserver"
	"github.com/starford/okrtrack/internal/metrics"
	"github.com/starford/okrtrack/internal/okrservice"
	"github.com/starford/okrtrack/internal/sse"
	"github.com/starford/okrtrack/internal/store"
)

// runtime holds the components shared by the HTTP and MCP entry points.
type runtime struct {
	cfg     *Config
	logger  *slog.Logger
	db      *store.DB
	journal *journal.FS
	svc     *okrservice.Service
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func setup(ctx context.Context, app *application, svcOpts ...okrservice.Option) (*runtime, error) {
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("journal_path", cfg.Journal.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Journal.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	j, err := journal.NewFS(cfg.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	// Journal files are the source of truth for reflections.
	if err := store.Sync(db, j, logger); err != nil {
		logger.Warn("initial journal sync failed", slog.String("error", err.Error()))
	}

	svcOpts = append([]okrservice.Option{okrservice.WithLogger(logger)}, svcOpts...)
	svc := okrservice.New(db, j, clock.NewOverride(cfg.Clock.Base()), svcOpts...)
	restored, err := svc.RestoreClockOverride(ctx)
	if err != nil {
		logger.Warn("stored clock override ignored", slog.String("error", err.Error()))
	}
	if restored || cfg.Clock.OverrideDate != "" || cfg.Clock.OffsetDays != 0 {
		logger.Info("Clock overridden", slog.String("today", svc.Now().Format("2006-01-02")))
	}

	return &runtime{cfg: cfg, logger: logger, db: db, journal: j, svc: svc}, nil
}

// Run starts the HTTP server, the journal watcher and the SSE broker.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	m := metrics.New()
	broker := sse.NewBroker(app.config.Events.DashboardThrottle)
	defer broker.Close()

	rt, err := setup(ctx, app, okrservice.WithMetrics(m), okrservice.WithNotifier(broker))
	if err != nil {
		return err
	}
	defer rt.db.Close()

	cfg, logger := rt.cfg, rt.logger

	apiRouter := api.NewRouter(rt.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if err := rt.db.Ping(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", m.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Reindex journal edits made outside the API and push them to SSE clients.
	g.Go(func() error {
		if err := store.Watch(gCtx, rt.db, rt.journal, rt.journal.Root(), logger, broker.PublishReflectionEvent); err != nil {
			logger.Error("journal watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

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

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the coach tools over stdio until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	rt, err := setup(ctx, app)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	rt.logger.Info("Starting MCP server on stdio", slog.String("version", app.version))
	if err := mcpserver.New(rt.svc, app.version).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

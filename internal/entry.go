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

	"github.com/starford/kneeview/internal/api"
	"github.com/starford/kneeview/internal/index"
	"github.com/starford/kneeview/internal/kneeboard"
	"github.com/starford/kneeview/internal/mcpserver"
	"github.com/starford/kneeview/internal/receiver"
	"github.com/starford/kneeview/internal/sse"
	"github.com/starford/kneeview/internal/storage"
	"github.com/starford/kneeview/internal/viewer"
)

// components are the long-lived pieces shared by the serve and mcp commands.
type components struct {
	store *storage.FS
	db    *index.DB
	svc   *viewer.Service
}

func (c *components) close() {
	c.svc.Close()
	c.db.Close()
}

func newApplication(opts []Option) (*application, *slog.Logger, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return app, logger, nil
}

// build opens storage and the catalog, starts the viewer and restores the
// persisted state.
func build(ctx context.Context, cfg *Config, logger *slog.Logger, vopts ...viewer.Option) (*components, error) {
	// Ensure kneeboard directory exists.
	if err := os.MkdirAll(cfg.Kneeboard.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create kneeboard dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Kneeboard.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	ctrl := kneeboard.NewController(kneeboard.NewDirScanner(store, logger), logger)
	svc := viewer.New(ctrl, logger, append([]viewer.Option{viewer.WithCatalog(db)}, vopts...)...)

	fallback := index.State{
		Aircraft:  cfg.Kneeboard.DefaultAircraft,
		Theater:   cfg.Kneeboard.DefaultTheater,
		NightMode: cfg.Kneeboard.NightMode,
	}
	if err := svc.Restore(ctx, fallback); err != nil {
		svc.Close()
		db.Close()
		return nil, fmt.Errorf("restore state: %w", err)
	}

	return &components{store: store, db: db, svc: svc}, nil
}

// watch refreshes the viewer whenever pages change on disk. It blocks until
// ctx is cancelled and is a no-op when the watcher is disabled.
func watch(ctx context.Context, cfg *Config, c *components, logger *slog.Logger) error {
	if !cfg.Watcher.Enabled {
		return nil
	}
	wcfg := index.WatchConfig{
		Root:     c.store.Root(),
		Debounce: cfg.Watcher.Debounce,
		Ignore:   cfg.Watcher.Ignore,
	}
	return index.Watch(ctx, wcfg, logger, func(changed []string) {
		logger.Info("watcher: pages changed", slog.Int("count", len(changed)))
		if err := c.svc.Refresh(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("watcher: refresh failed", slog.String("error", err.Error()))
		}
	})
}

// Run starts the HTTP server, receiver and watcher with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("kneeboard_root", cfg.Kneeboard.Root),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("receiver_enabled", cfg.Receiver.Enabled),
		slog.Bool("watcher_enabled", cfg.Watcher.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Viewer event stream.
	hub := sse.NewHub()
	defer hub.Close()

	publish := func(e kneeboard.Event, snap kneeboard.Snapshot) {
		hub.Broadcast(sse.Event{Type: e.String(), Data: snap})
	}

	c, err := build(ctx, cfg, logger, viewer.WithPublisher(publish))
	if err != nil {
		return err
	}
	defer c.close()

	apiRouter := api.NewRouter(c.svc, c.store, cfg.Auth.AuthEnabled(), cfg.Auth.Token, hub)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		readyCtx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if _, err := c.svc.State(readyCtx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start directory watcher.
	g.Go(func() error {
		return watch(gCtx, cfg, c, logger)
	})

	// Start page receiver.
	if cfg.Receiver.Enabled {
		rcv := receiver.New(receiver.Config{
			Addr:         cfg.Receiver.Address(),
			MaxFileBytes: cfg.Receiver.MaxFileBytes,
			IdleTimeout:  cfg.Receiver.IdleTimeout,
		}, c.store, logger, func(ctx context.Context, paths []string) {
			if err := c.svc.Refresh(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("receiver: refresh failed", slog.String("error", err.Error()))
			}
		})
		g.Go(func() error {
			return rcv.ListenAndServe(gCtx)
		})
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

		// SSE streams never finish on their own; close them first.
		hub.Close()

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

// errShutdown cancels the errgroup so the watcher and receiver stop after a
// signal.
var errShutdown = errors.New("shutdown")

// RunMCP serves the kneeboard tools over stdio until stdin closes.
func RunMCP(ctx context.Context, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	app, logger, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("MCP server starting",
		slog.String("kneeboard_root", cfg.Kneeboard.Root),
		slog.String("sqlite_path", cfg.SQLite.Path))

	c, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.close()

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := watch(watchCtx, cfg, c, logger); err != nil {
			logger.Warn("watcher: stopped", slog.String("error", err.Error()))
		}
	}()

	srv := mcpserver.New(c.svc, c.store)
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

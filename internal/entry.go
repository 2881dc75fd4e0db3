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

	"github.com/starford/mdpad/internal/api"
	"github.com/starford/mdpad/internal/mcpserver"
	"github.com/starford/mdpad/internal/noteservice"
	"github.com/starford/mdpad/internal/notes"
	"github.com/starford/mdpad/internal/render"
	"github.com/starford/mdpad/internal/sse"
	"github.com/starford/mdpad/internal/storage"
)

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

// setup installs the JSON logger and prepares the export directory.
func (a *application) setup() (*slog.Logger, *storage.FS, error) {
	cfg := a.config

	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("export_dir", cfg.Export.Dir),
		slog.String("export_filename", cfg.Export.Filename),
		slog.Bool("sanitize", cfg.Render.Sanitize),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create export dir: %w", err)
	}
	files, err := storage.NewFS(cfg.Export.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("init export storage: %w", err)
	}
	return logger, files, nil
}

func (a *application) newService(logger *slog.Logger, opts ...noteservice.Option) *noteservice.Service {
	opts = append([]noteservice.Option{
		noteservice.WithExportFilename(a.config.Export.Filename),
		noteservice.WithLogger(logger),
	}, opts...)
	return noteservice.New(notes.NewStore(), render.New(render.WithSanitize(a.config.Render.Sanitize)), opts...)
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger, files, err := app.setup()
	if err != nil {
		return err
	}

	broker := sse.NewBroker(cfg.Events.Throttle)
	defer broker.Close()

	svc := app.newService(logger, noteservice.WithEventFunc(broker.PublishSessionEvent))
	defer svc.Close()

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, files)

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
		if _, err := svc.Snapshot(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		// Close open SSE streams first so Shutdown does not wait on them.
		broker.Close()

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

// RunMCP serves the editing session to an MCP client over stdio.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}

	logger, files, err := app.setup()
	if err != nil {
		return err
	}

	svc := app.newService(logger)
	defer svc.Close()

	srv := mcpserver.New(svc, files, app.version)

	logger.Info("Starting MCP server on stdio")
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ServeStdio()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		return nil
	}
}

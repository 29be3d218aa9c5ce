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

	"github.com/kedbin/ai-devops-journal/internal/api"
	"github.com/kedbin/ai-devops-journal/internal/index"
	"github.com/kedbin/ai-devops-journal/internal/journal"
	"github.com/kedbin/ai-devops-journal/internal/links"
	"github.com/kedbin/ai-devops-journal/internal/mcpserver"
	"github.com/kedbin/ai-devops-journal/internal/ocr"
	"github.com/kedbin/ai-devops-journal/internal/sse"
	"github.com/kedbin/ai-devops-journal/internal/storage"
	"github.com/kedbin/ai-devops-journal/internal/synthesis"
)

// Run starts the capture service with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("archive_path", cfg.Archive.Path),
		slog.String("index_path", cfg.Index.Path),
		slog.String("ocr_provider", cfg.OCR.Provider),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure archive directory exists.
	if err := os.MkdirAll(cfg.Archive.Path, 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	// Initialize storage.
	store, err := storage.NewFS(cfg.Archive.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Initialize SQLite index.
	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Run initial sync.
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Pipeline stages.
	extractor := app.extractor
	if extractor == nil {
		extractor, err = newExtractor(cfg)
		if err != nil {
			return fmt.Errorf("init ocr provider: %w", err)
		}
	}

	generator, err := synthesis.NewAnthropicGenerator(
		cfg.Synthesis.APIKey, cfg.Synthesis.Model, cfg.Synthesis.MaxTokens, cfg.Synthesis.Temperature)
	if err != nil {
		return fmt.Errorf("init synthesis: %w", err)
	}
	synth := synthesis.New(generator)

	signer, err := links.NewSigner(cfg.Links.Secret, cfg.Links.BaseURL, cfg.Links.TTL.Std())
	if err != nil {
		return fmt.Errorf("init link signer: %w", err)
	}

	svc := journal.NewService(extractor, synth, store, db, signer, broker.PublishEntryEvent)

	var verifier api.Verifier
	if cfg.Auth.AuthEnabled() {
		verifier = api.StaticVerifier{Token: cfg.Auth.Token, Subject: cfg.Auth.Subject}
	} else {
		verifier = api.PermissiveVerifier{Subject: cfg.Auth.Subject}
	}

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
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount authenticated API routes under /api, with SSE inside the group.
	r.Mount("/api", api.NewRouter(svc, verifier, broker))

	// Signed-link downloads need no bearer credential.
	r.Mount("/d", api.NewDownloadRouter(signer, store))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start archive watcher. It keeps the index honest when the external
	// retention policy prunes or restores artifacts. Creations are announced
	// by the pipeline itself, so only removals are forwarded here.
	g.Go(func() error {
		index.Watch(gCtx, db, store, cfg.Archive.Path, logger, func(kind, path string) {
			if kind == "removed" {
				broker.PublishEntryEvent(kind, path)
			}
		})
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

// RunMCP serves the read-only archive tools over stdio. Logs go to stderr so
// stdout stays clean for the MCP transport.
func RunMCP(cfg *Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	store, err := storage.NewFS(cfg.Archive.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return mcpserver.New(store, db).ServeStdio()
}

func newExtractor(cfg *Config) (ocr.Provider, error) {
	switch cfg.OCR.Provider {
	case OCRProviderTesseract:
		return ocr.NewTesseractEngine(cfg.OCR.Language), nil
	default:
		return ocr.NewAzureClient(cfg.OCR.Endpoint, cfg.OCR.Key, cfg.OCR.Language, cfg.OCR.Timeout.Std())
	}
}

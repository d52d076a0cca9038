// Command api is the Hockey League Manager server: GraphQL over Neo4j, the
// S3 upload signer, the JSON relation panels and the admin pages.
//
// Usage:
//
//	phm-api
//	API_PORT=8080 phm-api
//	MEMORY_STORE=true phm-api

// @title Hockey League Manager API
// @version 1.0.0
// @description League data over GraphQL (Neo4j), signed S3 uploads, relation panels as JSON and the server-rendered admin.
// @host localhost:4000
// @BasePath /
// @schemes http https
// @contact.name PHM
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vladpavlovski/phm-sub006/internal/admin"
	"github.com/vladpavlovski/phm-sub006/internal/api"
	"github.com/vladpavlovski/phm-sub006/internal/boundary"
	"github.com/vladpavlovski/phm-sub006/internal/cache"
	"github.com/vladpavlovski/phm-sub006/internal/catalog"
	"github.com/vladpavlovski/phm-sub006/internal/config"
	"github.com/vladpavlovski/phm-sub006/internal/gql"
	"github.com/vladpavlovski/phm-sub006/internal/graph"
	"github.com/vladpavlovski/phm-sub006/internal/graph/memstore"
	"github.com/vladpavlovski/phm-sub006/internal/graph/neostore"
	"github.com/vladpavlovski/phm-sub006/internal/maintenance"
	"github.com/vladpavlovski/phm-sub006/internal/prefs"
	"github.com/vladpavlovski/phm-sub006/internal/upload"

	_ "github.com/vladpavlovski/phm-sub006/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	cat := catalog.Hockey()

	// Graph database
	store, closeStore, err := openGraph(ctx, cfg, cat, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Client preferences
	prefStore, err := prefs.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open preference store: %w", err)
	}
	defer prefStore.Close()
	logger.Info("Preference store ready", "postgres", cfg.PrefsDatabaseURL != "")

	// Initialize cache
	appCache := cache.New(ctx, cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Render failure reporting
	var reporter boundary.Reporter = boundary.LogReporter{Logger: logger}
	if cfg.SentryDSN != "" {
		sr, err := boundary.NewSentryReporter(cfg.SentryDSN, cfg.Environment, reporter)
		if err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sr.Flush(2 * time.Second)
		reporter = sr
		logger.Info("Sentry reporting enabled")
	}

	// GraphQL
	schema, err := gql.New(store, cat)
	if err != nil {
		return fmt.Errorf("build graphql schema: %w", err)
	}

	// Admin pages
	adminHandler, err := admin.New(admin.Deps{
		Store:    store,
		Catalog:  cat,
		Prefs:    prefStore,
		Boundary: boundary.New(reporter),
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("build admin: %w", err)
	}

	deps := api.Deps{
		Config:  cfg,
		Store:   store,
		Prefs:   prefStore,
		Cache:   appCache,
		Catalog: cat,
		GraphQL: gql.NewHandler(schema, logger),
		Admin:   adminHandler.Routes(),
		Logger:  logger,
	}

	// S3 upload signer
	signer, err := upload.NewS3Signer(ctx, upload.S3Options{
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Region:          cfg.AWSRegion,
		Bucket:          cfg.S3Bucket,
		Expiry:          cfg.UploadURLExpiry,
	})
	if err != nil {
		logger.Warn("Upload endpoint disabled", "error", err)
	} else {
		deps.Upload = upload.NewHandler(signer, signer.Bucket(), logger)
	}

	// Start maintenance tickers (preference pruning, graph health)
	go maintenance.Start(ctx, prefStore, store, maintenance.DefaultConfig(cfg.PrefsRetention), logger)

	// Create router
	router, err := api.NewRouter(deps)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting Hockey League Manager API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
	return nil
}

// openGraph connects to Neo4j, or builds an in-memory graph when
// MEMORY_STORE is set.
func openGraph(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, logger *slog.Logger) (graph.Store, func(), error) {
	if cfg.MemoryStore {
		logger.Warn("Serving from an in-memory graph; data is lost on exit")
		return memstore.New(cat), func() {}, nil
	}

	logger.Info("Connecting to Neo4j...", "uri", cfg.Neo4jURI, "database", cfg.Neo4jDatabase)
	exec, err := neostore.NewExecutor(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := exec.Close(closeCtx); err != nil {
			logger.Warn("Neo4j close failed", "error", err)
		}
	}
	if err := exec.Verify(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("connect to neo4j: %w", err)
	}
	logger.Info("Neo4j connected")
	return neostore.New(exec, cat), closeFn, nil
}

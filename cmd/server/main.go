/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the quote engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (file, env, defaults)
  2. Initialize structured logging
  3. Initialize SQLite store, seed reference data on first run
  4. Create API handler with dependencies
  5. Start HTTP server and expiry sweeper with graceful shutdown

CONFIGURATION:
  All config via quote-engine.yaml or QUOTE_-prefixed env vars, see
  config/config.go. Examples:

  # Run with file database
  QUOTE_DB_PATH=./data/quotes.db ./quoted

  # Run with in-memory database
  QUOTE_DB_PATH=":memory:" ./quoted

  # Run on different port
  QUOTE_PORT=3000 ./quoted

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the expiry sweeper
  4. Close database connection
  5. Exit

SEE ALSO:
  - config/config.go: Configuration keys and precedence
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aurora/quote-engine/api"
	"github.com/aurora/quote-engine/catalog"
	"github.com/aurora/quote-engine/config"
	"github.com/aurora/quote-engine/rating"
	"github.com/aurora/quote-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync()

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()

	// Seed reference data on first run
	seeded, err := store.HasReferenceData(ctx)
	if err != nil {
		logger.Fatal("failed to check reference data", zap.Error(err))
	}
	if !seeded {
		if err := store.Seed(ctx, catalog.Default()); err != nil {
			logger.Fatal("failed to seed reference data", zap.Error(err))
		}
		logger.Info("reference data seeded")
	}

	// Initialize handler
	engine := &rating.Engine{Source: store, Logger: logger.Named("rating")}
	mailer := &api.LogMailer{Sender: cfg.MailSender, Logger: logger.Named("mail")}
	handler := api.NewHandler(store, engine, mailer, logger.Named("api"))

	if err := handler.LoadReferenceData(ctx); err != nil {
		logger.Fatal("failed to load reference data", zap.Error(err))
	}

	// Expiry sweeper
	sweeper := api.NewExpirySweeper(store, logger.Named("sweeper"))
	sweeper.Validity = cfg.QuoteValidity
	sweeper.CheckInterval = cfg.SweepInterval
	sweeper.Start()
	defer sweeper.Stop()

	// Create router and server
	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger.Named("http"),
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Addr()),
			zap.String("db", cfg.DBPath))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}

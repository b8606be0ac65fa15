// Command main is the entry point for the Inkwell blog server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/observability"
	"inkwell/internal/server"

	"go.uber.org/zap"
)

// @title Inkwell API
// @version 1.0
// @description Blog platform API with articles, comments and session-based sign-in

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

const version = "1.0.0"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := observability.InitLogger(observability.LoggingConfig{
		Level: cfg.LogLevel,
		Env:   cfg.Env,
		File:  cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "inkwell",
		ServiceVersion: version,
		Environment:    cfg.Env,
		DBDriver:       cfg.DBDriver,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampler,
	})
	if err != nil {
		logger.Fatal("Failed to initialise tracing", zap.Error(err))
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutting down server...", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("Server stopped unexpectedly", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server resource shutdown error", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Error("Tracer shutdown error", zap.Error(err))
	}
}

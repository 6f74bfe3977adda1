package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dayjournal/backend/internal/audit"
	"github.com/dayjournal/backend/internal/config"
	"github.com/dayjournal/backend/internal/database"
	"github.com/dayjournal/backend/internal/logging"
	"github.com/dayjournal/backend/internal/routes"
	"github.com/dayjournal/backend/internal/services"
	"github.com/dayjournal/backend/internal/version"
)

// @title Journal API
// @version 1.0
// @description Personal journaling service: CRUD over journal entries stored in PostgreSQL or YugabyteDB
// @host localhost:5001
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a JWT.

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env", slog.String("error", err.Error()))
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)
	logger.Info("starting journal service",
		slog.String("version", version.Version),
		slog.String("variant", string(cfg.Database.Variant)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer src.Close()

	if err := database.EnsureSchema(ctx, src); err != nil {
		logger.Error("failed to initialize schema", slog.String("error", err.Error()))
		src.Close()
		os.Exit(1)
	}
	logger.Info("database schema ready")

	redisClient := database.NewRedis(ctx, cfg.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	entryService := services.NewEntryService(src, audit.NewLogger(logger))

	handler, err := routes.SetupRoutes(routes.Deps{
		Config:  cfg,
		Logger:  logger,
		Source:  src,
		Store:   entryService,
		Redis:   redisClient,
		Version: version.Version,
	})
	if err != nil {
		logger.Error("failed to build router", slog.String("error", err.Error()))
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

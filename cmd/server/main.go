package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"graphlet/internal/api"
	"graphlet/internal/config"
	"graphlet/internal/db"
	"graphlet/internal/repository"
	"graphlet/internal/services/live"
	"graphlet/internal/telemetry"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	log.Logger = logger

	logger.Info().Msg("starting graphlet server")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	jaegerShutdown, err := telemetry.InitJaeger("graphlet", cfg.JaegerEndpoint)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize tracing, continuing without it")
		jaegerShutdown = func(ctx context.Context) error { return nil }
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := jaegerShutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to shut down tracing")
		}
	}()

	database, err := db.NewGorm(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	// Repositories
	authRepo := repository.NewAuthRepository(database.DB, cfg.SessionTokenDays)
	workspaceRepo := repository.NewWorkspaceRepository(database.DB)
	accessRepo := repository.NewAccessRepository(database.DB)
	tagRepo := repository.NewTagRepository(database.DB, accessRepo)
	noteRepo := repository.NewNoteRepository(database.DB, accessRepo)

	// Live collaboration
	registry := live.NewRegistry(logger)
	wsHandler := live.NewWebSocketHandler(registry, authRepo, accessRepo, logger)

	handler := api.NewHandler(authRepo, workspaceRepo, accessRepo, tagRepo, noteRepo, wsHandler)
	router := api.SetupRoutes(handler, authRepo)

	addr := cfg.ServerAddr()
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("server forced to shut down")
	}

	// Stop every live session after the HTTP listener so no new
	// connections arrive while sessions drain.
	registry.Shutdown()

	logger.Info().Msg("server shutdown complete")
}

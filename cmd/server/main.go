// Package main implements the entry point for the lexidrill API server,
// which quizzes learners on the terms of a knowledge domain and tracks
// per-term mastery over time.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lexidrill/lexidrill-api/internal/config"
	"github.com/lexidrill/lexidrill-api/internal/domain/mastery"
	"github.com/lexidrill/lexidrill-api/internal/evaluator"
	"github.com/lexidrill/lexidrill-api/internal/platform/gemini"
	"github.com/lexidrill/lexidrill-api/internal/platform/logger"
	"github.com/lexidrill/lexidrill-api/internal/platform/postgres"
	"github.com/lexidrill/lexidrill-api/internal/service/progress"
	"github.com/lexidrill/lexidrill-api/internal/service/quiz"
	"github.com/lexidrill/lexidrill-api/internal/tree"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up|down|status) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("embedding_enabled", cfg.Evaluator.GeminiAPIKey != ""))

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()

	if migrateCmd != "" {
		return runMigrations(db, cfg.Database.MigrationsDir, migrateCmd, appLogger)
	}

	// Wire stores and services bottom up.
	nodeStore := postgres.NewPostgresNodeStore(db, appLogger)
	sessionStore := postgres.NewPostgresSessionStore(db, appLogger)
	attemptStore := postgres.NewPostgresAttemptStore(db, appLogger)

	treeService := tree.NewService(nodeStore, appLogger)

	// Without an API key the evaluator runs on the degraded token-overlap
	// path only; useful for local development.
	var encoder evaluator.Encoder
	if cfg.Evaluator.GeminiAPIKey != "" {
		geminiEncoder, err := gemini.NewEncoder(context.Background(), appLogger, cfg.Evaluator)
		if err != nil {
			return fmt.Errorf("failed to create embedding encoder: %w", err)
		}
		encoder = geminiEncoder
	} else {
		appLogger.Warn("no embedding API key configured, answer evaluation will be degraded")
	}
	answerEvaluator := evaluator.NewEvaluator(encoder, cfg.Evaluator.DefaultThreshold, appLogger)

	sessionService := quiz.NewSessionService(
		quiz.NewSessionRepositoryAdapter(sessionStore, db),
		quiz.NewAttemptRepositoryAdapter(attemptStore),
		treeService,
		answerEvaluator,
		appLogger,
	)
	progressService := progress.NewProgressService(
		treeService,
		attemptStore,
		mastery.NewDefaultService(),
		appLogger,
	)

	router := setupRouter(appLogger, sessionService, progressService)

	return startHTTPServer(cfg, appLogger, router)
}

// startHTTPServer runs the HTTP server until SIGINT or SIGTERM, then shuts
// down gracefully.
func startHTTPServer(cfg *config.Config, appLogger *slog.Logger, router http.Handler) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-shutdownCh:
		appLogger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	appLogger.Info("server shutdown completed")
	return nil
}

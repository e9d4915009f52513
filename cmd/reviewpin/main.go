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

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/reviewpin/reviewpin/internal/adapter/driven/github"
	"github.com/reviewpin/reviewpin/internal/adapter/driven/localfs"
	sqliteadapter "github.com/reviewpin/reviewpin/internal/adapter/driven/sqlite"
	httphandler "github.com/reviewpin/reviewpin/internal/adapter/driving/http"
	"github.com/reviewpin/reviewpin/internal/application"
	"github.com/reviewpin/reviewpin/internal/config"
	"github.com/reviewpin/reviewpin/internal/domain/port/driven"
	"github.com/reviewpin/reviewpin/internal/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)

	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"repo_root", cfg.RepoRoot,
		"context_lines", cfg.ContextLines,
		"match_threshold", cfg.ContextMatchThreshold,
		"github_source", cfg.HasGitHubSource(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire adapters.
	annotationStore := sqliteadapter.NewAnnotationRepo(db)

	var contents driven.ContentProvider
	if cfg.HasGitHubSource() {
		provider, err := githubadapter.NewProvider(cfg.GitHubToken, cfg.GitHubRepo, cfg.GitHubRef)
		if err != nil {
			return err
		}
		contents = provider
		slog.Info("using github content source", "repo", cfg.GitHubRepo, "ref", cfg.GitHubRef)
	} else {
		contents = localfs.NewProvider(cfg.RepoRoot)
		slog.Info("using local content source", "root", cfg.RepoRoot)
	}

	// 6. Create the annotation service with the configured tunables.
	validator := &application.Validator{MatchThreshold: cfg.ContextMatchThreshold}
	annotationSvc := application.NewAnnotationService(annotationStore, validator, cfg.ContextLines)

	// 7. Create HTTP handler and server.
	handler := httphandler.NewHandler(annotationSvc, contents, logger)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(handler, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("reviewpin started", "listen_addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 8. Wait for shutdown signal or server failure.
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	// 9. Graceful shutdown with 10s timeout to drain the HTTP server.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("shutdown complete")
	return nil
}

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

	githubadapter "github.com/maximilien/repoagent/internal/adapter/driven/github"
	sqliteadapter "github.com/maximilien/repoagent/internal/adapter/driven/sqlite"
	"github.com/maximilien/repoagent/internal/adapter/driven/workspace"
	httphandler "github.com/maximilien/repoagent/internal/adapter/driving/http"
	"github.com/maximilien/repoagent/internal/application"
	"github.com/maximilien/repoagent/internal/config"
	"github.com/maximilien/repoagent/internal/domain/model"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"repository", cfg.RepoOwner+"/"+cfg.RepoName,
		"github_configured", cfg.HasGitHubToken(),
	)

	// Audit-log database.
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	opStore := sqliteadapter.NewOperationRepo(db)

	// GitHub client (nil when no credential is configured; every
	// repository operation then short-circuits at the tool boundary).
	target := model.Repository{
		Owner: cfg.RepoOwner,
		Name:  cfg.RepoName,
		Token: cfg.GitHubToken,
	}

	var ghClient *githubadapter.Client
	if cfg.HasGitHubToken() {
		ghClient = githubadapter.NewClient(cfg.GitHubToken, cfg.RepoOwner, cfg.RepoName)
		slog.Info("github client created", "repository", target.FullName())
	} else {
		slog.Info("no github token found, repository operations disabled")
	}

	var provider *application.ClientProvider
	if ghClient != nil {
		provider = application.NewClientProvider(ghClient, target)
	} else {
		provider = application.NewClientProvider(nil, target)
	}

	// Classification rules: built-in defaults, optionally replaced from file.
	rules := application.DefaultRules()
	if cfg.RulesPath != "" {
		loaded, err := application.LoadRules(cfg.RulesPath)
		if err != nil {
			return err
		}
		rules = loaded
		slog.Info("classification rules loaded", "path", cfg.RulesPath, "rules", len(rules))
	}

	locator := workspace.NewLocator(cfg.ConfigServiceURL)
	detector := application.NewDetector(locator, rules)
	catalog := application.NewCatalog(provider, detector, locator, opStore)

	handler := httphandler.NewHandler(catalog, provider, opStore, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(handler, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("repoagent started",
		"listen_addr", cfg.ListenAddr,
		"repository", target.FullName(),
	)

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

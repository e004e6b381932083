// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/orgdesk/orgdesk/internal/api"
	"github.com/orgdesk/orgdesk/internal/cache"
	"github.com/orgdesk/orgdesk/internal/config"
	"github.com/orgdesk/orgdesk/internal/handler"
	"github.com/orgdesk/orgdesk/internal/localdb"
	"github.com/orgdesk/orgdesk/internal/logging"
	"github.com/orgdesk/orgdesk/internal/refdata"
	"github.com/orgdesk/orgdesk/internal/render"
	"github.com/orgdesk/orgdesk/internal/scheduler"
	"github.com/orgdesk/orgdesk/internal/schema"
	"github.com/orgdesk/orgdesk/internal/session"
	"github.com/orgdesk/orgdesk/internal/staging"
	"github.com/orgdesk/orgdesk/internal/version"
	"github.com/orgdesk/orgdesk/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "OrgDesk - Organization Content Dashboard\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ORGDESK_API_BASE_URL   Remote content API root (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ORGDESK_SESSION_SECRET Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ORGDESK_DB_PATH        SQLite database path (default: ./data/orgdesk.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ORGDESK_SERVER_PORT    Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ORGDESK_ENV            Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ORGDESK_STAGING_DIR    Staged upload directory (default: ./data/staging)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ORGDESK_REDIS_URL      Redis URL for distributed caching (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("orgdesk %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure local data directories exist
	for _, dir := range []string{filepath.Dir(cfg.DBPath), cfg.StagingDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	slog.Info("initializing local database", "path", cfg.DBPath)
	db, err := localdb.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := localdb.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	apiClient := api.New(api.Options{
		BaseURL:   cfg.APIBaseURL,
		Token:     cfg.APIToken,
		UserAgent: versionInfo.UserAgent(),
	})
	slog.Info("remote API client configured", "base_url", cfg.APIBaseURL)

	// Upgrade logger to forward WARN and ERROR records to the remote
	// audit endpoint.
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewAuditHandler(textHandler, apiClient))
	slog.SetDefault(logger)
	slog.Info("audit log forwarding enabled", "min_level", "warn")

	// A malformed descriptor is a programming error; fail before serving.
	for _, e := range schema.Registry() {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("validating entity registry: %w", err)
		}
	}

	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	cacheBackend, err := cache.New(cache.Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:    cfg.CacheMaxSize,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := cacheBackend.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	slog.Info("cache initialized", "redis", cfg.UseRedisCache())

	refdataService := refdata.New(apiClient, cacheBackend, time.Duration(cfg.CacheTTL)*time.Second)

	stagingStore, err := staging.NewStore(db, cfg.StagingDir)
	if err != nil {
		return fmt.Errorf("initializing staging store: %w", err)
	}

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("accessing embedded templates: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("accessing embedded static files: %w", err)
	}

	sched := scheduler.New(scheduler.Config{
		Logger:        logger,
		Staging:       stagingStore,
		Refdata:       refdataService,
		StagingMaxAge: time.Duration(cfg.StagingMaxAge) * time.Second,
	})
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	router := handler.Routes(handler.Deps{
		Client:         apiClient,
		Renderer:       renderer,
		SessionManager: sessionManager,
		Staging:        stagingStore,
		Refdata:        refdataService,
		StaticFS:       staticFS,
		CSRFKey:        []byte(cfg.SessionSecret)[:32],
		ServerAddr:     cfg.ServerAddr(),
		IsDev:          cfg.IsDevelopment(),
		MaxUploadSize:  cfg.MaxUploadSize,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

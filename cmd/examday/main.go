// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/examday-go/internal/auth"
	"github.com/olegiv/examday-go/internal/config"
	"github.com/olegiv/examday-go/internal/dispatcher"
	"github.com/olegiv/examday-go/internal/handler"
	"github.com/olegiv/examday-go/internal/logging"
	"github.com/olegiv/examday-go/internal/model"
	"github.com/olegiv/examday-go/internal/reminder"
	"github.com/olegiv/examday-go/internal/scheduler"
	"github.com/olegiv/examday-go/internal/slackx"
	"github.com/olegiv/examday-go/internal/store"
	"github.com/olegiv/examday-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")
	importCSV := flag.String("import-csv", "", "Import an exam schedule CSV and exit")
	importCategory := flag.String("import-category", "", "Category for imported events (with -import-csv)")
	importDeadline := flag.String("import-deadline", "", "Registration deadline YYYY-MM-DD for imported events (with -import-csv)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Examday - exam and deadline tracking Slack bot\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SLACK_BOT_TOKEN           Slack bot token (required, xoxb-...)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SLACK_SIGNING_SECRET      Slack signing secret (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EXAMDAY_ROOT_ADMIN_ID     Slack user ID of the root admin (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EXAMDAY_CRON_SECRET       Bearer token for /api/run-reminders (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EXAMDAY_DB_PATH           SQLite database path (default: ./data/examday.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EXAMDAY_SERVER_PORT       Server port (default: 3000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EXAMDAY_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EXAMDAY_REMINDER_CRON     Cron spec for in-process reminders (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EXAMDAY_LEAD_DAYS         Reminder lead days (default: 0,1,2,3)\n")
		_, _ = fmt.Fprintf(os.Stderr, "\nFor more information, see: https://github.com/olegiv/examday-go\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("examday %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(*importCSV, *importCategory, *importDeadline); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(importCSV, importCategory, importDeadline string) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := &version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
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

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// One-shot import mode: load the CSV and exit without serving.
	if importCSV != "" {
		return runImport(db, importCSV, importCategory, importDeadline)
	}

	// Upgrade logger to also mirror WARN and ERROR logs into the audit log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	auditHandler := logging.NewAuditLogHandler(textHandler, db)
	logger = slog.New(auditHandler)
	slog.SetDefault(logger)
	slog.Info("audit log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if err := store.Seed(ctx, db, cfg.DoSeed); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	// Wire the Slack surface
	messenger := slackx.New(cfg.SlackBotToken)
	checker := auth.NewChecker(cfg.RootAdminID, db)
	disp := dispatcher.New(db, checker, messenger, logger)
	runner := reminder.NewRunner(db, messenger, logger, cfg.LeadDays)

	// Optional in-process reminder schedule, for deployments without an
	// external cron service hitting /api/run-reminders.
	if cfg.ReminderCron != "" {
		sched := scheduler.New(runner, cfg.ReminderCron, logger)
		if err := sched.Start(); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
		defer sched.Stop()
	}

	healthHandler := handler.NewHealthHandler(db)
	reminderHandler := handler.NewReminderHandler(runner, cfg.CronSecret, logger)
	slackHandler := handler.NewSlackHandler(disp, cfg.SlackSigningSecret, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if cfg.IsDevelopment() {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/keep-alive", healthHandler.KeepAlive)
	r.Get("/health", healthHandler.Health)
	r.Post("/api/run-reminders", reminderHandler.Run)
	r.Post("/slack/events", slackHandler.Events)
	r.Post("/slack/actions", slackHandler.Actions)
	r.Post("/slack/commands", slackHandler.Commands)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server",
			"addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// runImport ingests an exam schedule CSV and exits.
func runImport(db *sql.DB, path, category, deadline string) error {
	if category == "" || deadline == "" {
		return errors.New("-import-csv requires -import-category and -import-deadline")
	}
	deadlineDate, err := time.Parse(model.DateFormat, deadline)
	if err != nil {
		return fmt.Errorf("parsing -import-deadline: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	imported, err := store.ImportExamCSV(context.Background(), db, f, store.ImportParams{
		Category: category,
		Deadline: deadlineDate,
	})
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}
	slog.Info("import complete", "file", path, "category", category, "events", imported)
	return nil
}

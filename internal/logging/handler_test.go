package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/olegiv/examday-go/internal/model"
	"github.com/olegiv/examday-go/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "examday-logging-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := store.NewDB(f.Name())
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func recentEntries(t *testing.T, db *sql.DB) []model.AuditEntry {
	t.Helper()
	entries, err := store.New(db).ListRecentAuditEntries(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentAuditEntries: %v", err)
	}
	return entries
}

func TestHandleErrorLevel(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewAuditLogHandler(discardHandler{}, db))

	logger.Error("reminder delivery failed", "user_id", "U1", "event_id", 7)

	entries := recentEntries(t, db)
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != model.AuditLevelError {
		t.Errorf("level = %q", e.Level)
	}
	if e.Category != model.AuditCategoryReminder {
		t.Errorf("category = %q, want inferred reminder", e.Category)
	}
	if e.UserID != "U1" {
		t.Errorf("user_id = %q", e.UserID)
	}
	if !strings.Contains(e.Metadata, `"event_id":"7"`) {
		t.Errorf("metadata = %q", e.Metadata)
	}
}

func TestHandleInfoLevelNotMirrored(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewAuditLogHandler(discardHandler{}, db))

	logger.Info("reminder cycle complete", "sent", 3)

	if entries := recentEntries(t, db); len(entries) != 0 {
		t.Fatalf("info log mirrored to audit log: %+v", entries)
	}
}

func TestHandleExplicitCategory(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewAuditLogHandler(discardHandler{}, db))

	logger.Warn("something odd", "category", model.AuditCategoryAdmin)

	entries := recentEntries(t, db)
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	if entries[0].Category != model.AuditCategoryAdmin {
		t.Errorf("category = %q", entries[0].Category)
	}
}

func TestCustomMirrorLevel(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewAuditLogHandlerWithLevel(discardHandler{}, db, slog.LevelInfo))

	logger.Info("subscription created")

	entries := recentEntries(t, db)
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	if entries[0].Category != model.AuditCategorySubscription {
		t.Errorf("category = %q", entries[0].Category)
	}
}

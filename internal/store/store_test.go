package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/olegiv/examday-go/internal/model"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "examday-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func date(s string) time.Time {
	t, err := time.Parse(model.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustCreateEvent(t *testing.T, q *Queries, title, category, eventDate, deadline string) model.Event {
	t.Helper()
	now := time.Now()
	e, err := q.CreateEvent(context.Background(), CreateEventParams{
		Title:                title,
		Category:             category,
		EventDate:            date(eventDate),
		RegistrationDeadline: date(deadline),
		CreatedAt:            now,
		UpdatedAt:            now,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	return e
}

func TestCreateAndGetEvent(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	q := New(db)

	e := mustCreateEvent(t, q, "SAT Nov", "SAT", "2025-11-08", "2025-10-10")
	if e.ID == 0 {
		t.Error("event.ID should not be 0")
	}

	got, err := q.GetEvent(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Title != "SAT Nov" {
		t.Errorf("Title = %q, want %q", got.Title, "SAT Nov")
	}
	if !got.EventDate.Equal(date("2025-11-08")) {
		t.Errorf("EventDate = %v, want %v", got.EventDate, date("2025-11-08"))
	}
	if !got.RegistrationDeadline.Equal(date("2025-10-10")) {
		t.Errorf("RegistrationDeadline = %v, want %v", got.RegistrationDeadline, date("2025-10-10"))
	}
}

func TestListEventsByCategoryFromFilter(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	q := New(db)
	ctx := context.Background()

	mustCreateEvent(t, q, "old", "SAT", "2025-01-01", "2024-12-01")
	mustCreateEvent(t, q, "upcoming", "SAT", "2025-12-01", "2025-11-01")
	mustCreateEvent(t, q, "other cat", "ACT", "2025-12-01", "2025-11-01")

	events, err := q.ListEventsByCategory(ctx, ListEventsByCategoryParams{
		Category: "SAT",
		From:     date("2025-06-01"),
	})
	if err != nil {
		t.Fatalf("ListEventsByCategory: %v", err)
	}
	if len(events) != 1 || events[0].Title != "upcoming" {
		t.Fatalf("filtered events = %+v, want only %q", events, "upcoming")
	}

	// Zero From includes past events
	events, err = q.ListEventsByCategory(ctx, ListEventsByCategoryParams{Category: "SAT"})
	if err != nil {
		t.Fatalf("ListEventsByCategory: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("unfiltered events = %d, want 2", len(events))
	}
	if events[0].Title != "old" {
		t.Errorf("events should be ordered by date, got %q first", events[0].Title)
	}
}

func TestListEventsByDeadline(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	q := New(db)
	ctx := context.Background()

	mustCreateEvent(t, q, "due", "AP", "2026-05-04", "2026-03-10")
	mustCreateEvent(t, q, "not due", "AP", "2026-05-04", "2026-03-11")

	events, err := q.ListEventsByDeadline(ctx, date("2026-03-10"))
	if err != nil {
		t.Fatalf("ListEventsByDeadline: %v", err)
	}
	if len(events) != 1 || events[0].Title != "due" {
		t.Fatalf("events = %+v, want only %q", events, "due")
	}
}

func TestSubscriptionUniqueness(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	q := New(db)
	ctx := context.Background()

	e := mustCreateEvent(t, q, "SAT Nov", "SAT", "2025-11-08", "2025-10-10")

	params := CreateSubscriptionParams{
		UserID:    "U123",
		EventID:   e.ID,
		Status:    model.StatusPending,
		CreatedAt: time.Now(),
	}
	if err := q.CreateSubscription(ctx, params); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	// Second insert must be a silent no-op
	if err := q.CreateSubscription(ctx, params); err != nil {
		t.Fatalf("duplicate CreateSubscription should be a no-op, got: %v", err)
	}

	subs, err := q.ListSubscriptionsByEvent(ctx, e.ID)
	if err != nil {
		t.Fatalf("ListSubscriptionsByEvent: %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("subscriptions = %d, want exactly 1", len(subs))
	}
}

func TestUpdateSubscriptionStatus(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	q := New(db)
	ctx := context.Background()

	e := mustCreateEvent(t, q, "AP Bio", "AP", "2026-05-04", "2026-03-10")
	if err := q.CreateSubscription(ctx, CreateSubscriptionParams{
		UserID: "U123", EventID: e.ID, Status: model.StatusPending, CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}

	updated, err := q.UpdateSubscriptionStatus(ctx, UpdateSubscriptionStatusParams{
		UserID: "U123", EventID: e.ID, Status: model.StatusRegistered,
	})
	if err != nil {
		t.Fatalf("UpdateSubscriptionStatus: %v", err)
	}
	if !updated {
		t.Error("expected a row to be updated")
	}

	sub, err := q.GetSubscription(ctx, SubscriptionKeyParams{UserID: "U123", EventID: e.ID})
	if err != nil {
		t.Fatalf("GetSubscription: %v", err)
	}
	if sub.Status != model.StatusRegistered {
		t.Errorf("Status = %q, want %q", sub.Status, model.StatusRegistered)
	}

	// Vanished subscription reports no update
	updated, err = q.UpdateSubscriptionStatus(ctx, UpdateSubscriptionStatusParams{
		UserID: "U999", EventID: e.ID, Status: model.StatusRegistered,
	})
	if err != nil {
		t.Fatalf("UpdateSubscriptionStatus: %v", err)
	}
	if updated {
		t.Error("no row should be updated for an unknown subscriber")
	}
}

func TestAdminAllowList(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	q := New(db)
	ctx := context.Background()

	exists, err := q.AdminExists(ctx, "U123")
	if err != nil {
		t.Fatalf("AdminExists: %v", err)
	}
	if exists {
		t.Error("U123 should not be an admin yet")
	}

	if err := q.CreateAdmin(ctx, "U123"); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if err := q.CreateAdmin(ctx, "U123"); err != nil {
		t.Fatalf("re-adding admin should be a no-op, got: %v", err)
	}

	exists, err = q.AdminExists(ctx, "U123")
	if err != nil {
		t.Fatalf("AdminExists: %v", err)
	}
	if !exists {
		t.Error("U123 should be an admin")
	}

	if err := q.DeleteAdmin(ctx, "U123"); err != nil {
		t.Fatalf("DeleteAdmin: %v", err)
	}
	exists, _ = q.AdminExists(ctx, "U123")
	if exists {
		t.Error("U123 should no longer be an admin")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	q := New(db)
	ctx := context.Background()

	if _, err := q.GetSetting(ctx, model.SettingBriefingChannel); err != sql.ErrNoRows {
		t.Fatalf("GetSetting on empty table = %v, want sql.ErrNoRows", err)
	}

	if err := q.UpsertSetting(ctx, UpsertSettingParams{Key: model.SettingBriefingChannel, Value: "C111"}); err != nil {
		t.Fatalf("UpsertSetting: %v", err)
	}
	if err := q.UpsertSetting(ctx, UpsertSettingParams{Key: model.SettingBriefingChannel, Value: "C222"}); err != nil {
		t.Fatalf("UpsertSetting overwrite: %v", err)
	}

	s, err := q.GetSetting(ctx, model.SettingBriefingChannel)
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if s.Value != "C222" {
		t.Errorf("Value = %q, want %q", s.Value, "C222")
	}
}

func TestSeedDefaultCategories(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	ctx := context.Background()

	if err := Seed(ctx, db, true); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	// Seeding twice must not duplicate
	if err := Seed(ctx, db, true); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	categories, err := New(db).ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != len(DefaultCategories) {
		t.Errorf("categories = %d, want %d", len(categories), len(DefaultCategories))
	}
}

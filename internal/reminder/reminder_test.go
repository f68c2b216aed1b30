package reminder

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/slack-go/slack"

	"github.com/olegiv/examday-go/internal/model"
	"github.com/olegiv/examday-go/internal/store"
)

type sentMsg struct {
	target string
	text   string
}

type fakeMessenger struct {
	dms      []sentMsg
	channels []sentMsg
	failFor  map[string]bool
}

func (f *fakeMessenger) PostDM(_ context.Context, userID, text string) error {
	if f.failFor[userID] {
		return errors.New("channel_not_found")
	}
	f.dms = append(f.dms, sentMsg{userID, text})
	return nil
}

func (f *fakeMessenger) PostChannel(_ context.Context, channelID, text string) error {
	f.channels = append(f.channels, sentMsg{channelID, text})
	return nil
}

func (f *fakeMessenger) PostEphemeral(context.Context, string, string, string) error { return nil }

func (f *fakeMessenger) PublishHome(context.Context, string, []slack.Block) error { return nil }

func (f *fakeMessenger) OpenModal(context.Context, string, slack.ModalViewRequest) error { return nil }

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "examday-reminder-test-*.db")
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

func date(s string) time.Time {
	t, err := time.Parse(model.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func seedEvent(t *testing.T, db *sql.DB, title, eventDate, deadline string, subscribers ...string) model.Event {
	t.Helper()
	ctx := context.Background()
	q := store.New(db)

	now := time.Now().UTC()
	event, err := q.CreateEvent(ctx, store.CreateEventParams{
		Title:                title,
		Category:             "SAT",
		EventDate:            date(eventDate),
		RegistrationDeadline: date(deadline),
		CreatedAt:            now,
		UpdatedAt:            now,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	for _, userID := range subscribers {
		err := q.CreateSubscription(ctx, store.CreateSubscriptionParams{
			UserID:    userID,
			EventID:   event.ID,
			Status:    model.StatusPending,
			CreatedAt: now,
		})
		if err != nil {
			t.Fatalf("CreateSubscription: %v", err)
		}
	}
	return event
}

func newTestRunner(db *sql.DB, m *fakeMessenger) *Runner {
	return NewRunner(db, m, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})), []int{0, 1, 2, 3})
}

func TestRunCycleDeadlineTomorrow(t *testing.T) {
	db := testDB(t)
	today := date("2026-03-01")
	seedEvent(t, db, "SAT March", "2026-05-02", "2026-03-02", "U1", "U2")

	m := &fakeMessenger{}
	sent, err := newTestRunner(db, m).RunCycle(context.Background(), today)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if sent != 2 || len(m.dms) != 2 {
		t.Fatalf("sent=%d dms=%d, want 2 and 2", sent, len(m.dms))
	}
	for _, dm := range m.dms {
		if !strings.Contains(dm.text, "tomorrow") {
			t.Errorf("expected tomorrow label in %q", dm.text)
		}
	}
}

func TestRunCycleIgnoresDistantDeadlines(t *testing.T) {
	db := testDB(t)
	today := date("2026-03-01")
	seedEvent(t, db, "SAT May", "2026-06-01", "2026-03-11", "U1")

	m := &fakeMessenger{}
	sent, err := newTestRunner(db, m).RunCycle(context.Background(), today)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if sent != 0 || len(m.dms) != 0 {
		t.Fatalf("sent=%d dms=%d, want 0 and 0", sent, len(m.dms))
	}
}

func TestRunCycleEventDayNotice(t *testing.T) {
	db := testDB(t)
	today := date("2026-05-02")
	seedEvent(t, db, "SAT May", "2026-05-02", "2026-03-02", "U1")

	m := &fakeMessenger{}
	sent, err := newTestRunner(db, m).RunCycle(context.Background(), today)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent=%d, want 1", sent)
	}
	if !strings.Contains(m.dms[0].text, "today") {
		t.Errorf("expected event-day text, got %q", m.dms[0].text)
	}
}

func TestRunCycleSkipsFailedRecipient(t *testing.T) {
	db := testDB(t)
	today := date("2026-03-02")
	seedEvent(t, db, "SAT March", "2026-05-02", "2026-03-02", "U1", "U2", "U3")

	m := &fakeMessenger{failFor: map[string]bool{"U2": true}}
	sent, err := newTestRunner(db, m).RunCycle(context.Background(), today)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if sent != 2 || len(m.dms) != 2 {
		t.Fatalf("sent=%d dms=%d, want 2 and 2", sent, len(m.dms))
	}
}

func TestRunBriefingSkipsWhenUnconfigured(t *testing.T) {
	db := testDB(t)
	m := &fakeMessenger{}
	if err := newTestRunner(db, m).RunBriefing(context.Background(), date("2026-03-01")); err != nil {
		t.Fatalf("RunBriefing: %v", err)
	}
	if len(m.channels) != 0 {
		t.Fatalf("briefing posted without a configured channel")
	}
}

func TestRunBriefingTrafficLights(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := store.New(db)

	if err := q.UpsertSetting(ctx, store.UpsertSettingParams{
		Key:   model.SettingBriefingChannel,
		Value: "C123",
	}); err != nil {
		t.Fatalf("UpsertSetting: %v", err)
	}

	today := date("2026-03-01")
	// Deadline in 2 days, 3 pending: red, and in the 48h pending list.
	seedEvent(t, db, "SAT March", "2026-05-02", "2026-03-03", "U1", "U2", "U3")
	// Deadline in 5 days, 1 pending: yellow, outside the 48h window.
	seedEvent(t, db, "ACT March", "2026-05-10", "2026-03-06", "U4")
	// Deadline in 6 days, 1 registered: green.
	green := seedEvent(t, db, "AP March", "2026-05-12", "2026-03-07", "U5")
	if _, err := q.UpdateSubscriptionStatus(ctx, store.UpdateSubscriptionStatusParams{
		UserID:  "U5",
		EventID: green.ID,
		Status:  model.StatusRegistered,
	}); err != nil {
		t.Fatalf("UpdateSubscriptionStatus: %v", err)
	}

	m := &fakeMessenger{}
	if err := newTestRunner(db, m).RunBriefing(ctx, today); err != nil {
		t.Fatalf("RunBriefing: %v", err)
	}
	if len(m.channels) != 1 || m.channels[0].target != "C123" {
		t.Fatalf("briefing channels = %+v", m.channels)
	}

	text := m.channels[0].text
	for _, want := range []string{"🔴 *SAT March*", "🟡 *ACT March*", "🟢 *AP March*", "<@U1>"} {
		if !strings.Contains(text, want) {
			t.Errorf("briefing missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(strings.SplitN(text, "*7-day", 2)[0], "ACT March") {
		t.Errorf("ACT March should not be in the 48h pending section:\n%s", text)
	}
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package reminder sends deadline warnings and event-day notices to
// subscribers, and the operator briefing to the configured channel.
package reminder

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/examday-go/internal/model"
	"github.com/olegiv/examday-go/internal/slackx"
	"github.com/olegiv/examday-go/internal/store"
)

// Runner drives one reminder cycle. It is stateless between cycles: the
// external trigger (cron endpoint or in-process scheduler) owns
// at-most-once-per-day semantics, so invoking RunCycle twice on the same
// day re-sends every reminder.
type Runner struct {
	queries   *store.Queries
	messenger slackx.Messenger
	logger    *slog.Logger
	leadDays  []int
}

func NewRunner(db *sql.DB, messenger slackx.Messenger, logger *slog.Logger, leadDays []int) *Runner {
	return &Runner{
		queries:   store.New(db),
		messenger: messenger,
		logger:    logger,
		leadDays:  leadDays,
	}
}

// RunCycle sends every due reminder for today and returns the number of
// messages delivered. A failed DM is logged and skipped; the rest of the
// fan-out continues.
func (r *Runner) RunCycle(ctx context.Context, today time.Time) (int, error) {
	today = model.DateOnly(today)
	sent := 0

	for _, lead := range r.leadDays {
		target := today.AddDate(0, 0, lead)

		deadline, err := r.queries.ListEventsByDeadline(ctx, target)
		if err != nil {
			return sent, fmt.Errorf("listing deadline events for %s: %w", target.Format(model.DateFormat), err)
		}
		for _, event := range deadline {
			sent += r.fanOut(ctx, event, deadlineText(event, lead))
		}

		eventDay, err := r.queries.ListEventsByDate(ctx, target)
		if err != nil {
			return sent, fmt.Errorf("listing events on %s: %w", target.Format(model.DateFormat), err)
		}
		for _, event := range eventDay {
			sent += r.fanOut(ctx, event, eventDayText(event, lead))
		}
	}

	r.logger.Info("reminder cycle complete", "date", today.Format(model.DateFormat), "sent", sent)
	return sent, nil
}

// fanOut DMs every subscriber of the event and returns how many sends
// succeeded.
func (r *Runner) fanOut(ctx context.Context, event model.Event, text string) int {
	subs, err := r.queries.ListSubscriptionsByEvent(ctx, event.ID)
	if err != nil {
		r.logger.Error("listing subscribers", "event_id", event.ID, "error", err)
		return 0
	}

	sent := 0
	for _, sub := range subs {
		if err := r.messenger.PostDM(ctx, sub.UserID, text); err != nil {
			r.logger.Warn("reminder delivery failed", "user_id", sub.UserID, "event_id", event.ID, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// humanLabel renders a lead time the way a person says it.
func humanLabel(lead int) string {
	switch lead {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", lead)
	}
}

func deadlineText(event model.Event, lead int) string {
	return fmt.Sprintf("⏰ *Registration deadline %s* for *%s* (%s). Register before %s.",
		humanLabel(lead), event.Title, event.Category,
		event.RegistrationDeadline.Format(model.DateFormat))
}

func eventDayText(event model.Event, lead int) string {
	if lead == 0 {
		return fmt.Sprintf("📅 *%s* (%s) is *today*. Good luck!", event.Title, event.Category)
	}
	return fmt.Sprintf("📅 *%s* (%s) is %s, on %s.",
		event.Title, event.Category, humanLabel(lead),
		event.EventDate.Format(model.DateFormat))
}

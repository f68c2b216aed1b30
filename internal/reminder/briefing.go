// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reminder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/examday-go/internal/model"
	"github.com/olegiv/examday-go/internal/store"
)

const (
	briefingPendingWindow = 2 // days of deadline look-ahead for the pending list
	briefingOutlookWindow = 7 // days of event look-ahead for the traffic lights
	redPendingThreshold   = 3
)

// RunBriefing posts the operator briefing to the configured channel. When no
// channel is configured the briefing is skipped, not failed.
func (r *Runner) RunBriefing(ctx context.Context, today time.Time) error {
	today = model.DateOnly(today)

	setting, err := r.queries.GetSetting(ctx, model.SettingBriefingChannel)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("briefing channel not configured, skipping briefing")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading briefing channel: %w", err)
	}

	var b strings.Builder
	b.WriteString("*📋 Operator Briefing — " + today.Format(model.DateFormat) + "*\n")

	if err := r.writePendingSection(ctx, &b, today); err != nil {
		return err
	}
	if err := r.writeOutlookSection(ctx, &b, today); err != nil {
		return err
	}

	if err := r.messenger.PostChannel(ctx, setting.Value, b.String()); err != nil {
		return fmt.Errorf("posting briefing: %w", err)
	}
	return nil
}

// writePendingSection lists events whose deadline falls within the next 48
// hours and still have pending subscribers.
func (r *Runner) writePendingSection(ctx context.Context, b *strings.Builder, today time.Time) error {
	events, err := r.queries.ListEventsByDeadlineRange(ctx, store.ListEventsByDeadlineRangeParams{
		From: today,
		To:   today.AddDate(0, 0, briefingPendingWindow+1),
	})
	if err != nil {
		return fmt.Errorf("listing imminent deadlines: %w", err)
	}

	b.WriteString("\n*Deadlines in the next 48h with unregistered subscribers:*\n")
	found := false
	for _, event := range events {
		pending, err := r.pendingUsers(ctx, event.ID)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			continue
		}
		found = true
		fmt.Fprintf(b, "• *%s* (deadline %s): %s\n",
			event.Title, event.RegistrationDeadline.Format(model.DateFormat),
			mentionList(pending))
	}
	if !found {
		b.WriteString("_None._\n")
	}
	return nil
}

// writeOutlookSection renders a traffic light per event in the next 7 days.
func (r *Runner) writeOutlookSection(ctx context.Context, b *strings.Builder, today time.Time) error {
	events, err := r.queries.ListEventsByDeadlineRange(ctx, store.ListEventsByDeadlineRangeParams{
		From: today,
		To:   today.AddDate(0, 0, briefingOutlookWindow+1),
	})
	if err != nil {
		return fmt.Errorf("listing outlook deadlines: %w", err)
	}

	b.WriteString("\n*7-day deadline outlook:*\n")
	if len(events) == 0 {
		b.WriteString("_No deadlines in the next 7 days._\n")
		return nil
	}
	for _, event := range events {
		pending, err := r.pendingUsers(ctx, event.ID)
		if err != nil {
			return err
		}
		light := "🟢"
		switch {
		case len(pending) >= redPendingThreshold:
			light = "🔴"
		case len(pending) > 0:
			light = "🟡"
		}
		fmt.Fprintf(b, "%s *%s* — deadline %s, %d pending\n",
			light, event.Title,
			event.RegistrationDeadline.Format(model.DateFormat), len(pending))
	}
	return nil
}

func (r *Runner) pendingUsers(ctx context.Context, eventID int64) ([]string, error) {
	subs, err := r.queries.ListSubscriptionsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("listing subscribers for event %d: %w", eventID, err)
	}
	var pending []string
	for _, sub := range subs {
		if sub.IsPending() {
			pending = append(pending, sub.UserID)
		}
	}
	return pending, nil
}

func mentionList(userIDs []string) string {
	mentions := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		mentions = append(mentions, "<@"+id+">")
	}
	return strings.Join(mentions, ", ")
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/olegiv/examday-go/internal/model"
	"github.com/olegiv/examday-go/internal/service"
	"github.com/olegiv/examday-go/internal/store"
)

const helpText = "*Examday commands:*\n" +
	"• `/examday find <text>` — look up an event by title\n" +
	"• `/examday watch @user` — follow a student's registrations\n" +
	"• `/examday unwatch @user` — stop following\n" +
	"• `/examday watching` — list followed students\n" +
	"• `/examday pending` — upcoming deadlines with unregistered subscribers (admins)\n" +
	"• `/examday briefing-here` — post the daily briefing to this channel (admins)\n" +
	"• `/examday help` — this message"

// HandleSlashCommand executes a /examday subcommand and returns the
// ephemeral response text.
func (d *Dispatcher) HandleSlashCommand(ctx context.Context, cmd slack.SlashCommand) (string, error) {
	sub, rest := splitCommand(cmd.Text)

	switch sub {
	case "", "help":
		return helpText, nil
	case "find":
		return d.findCommand(ctx, rest)
	case "pending":
		return d.pendingCommand(ctx, cmd.UserID)
	case "watch":
		return d.watchCommand(ctx, cmd.UserID, rest, true)
	case "unwatch":
		return d.watchCommand(ctx, cmd.UserID, rest, false)
	case "watching":
		return d.watchingCommand(ctx, cmd.UserID)
	case "briefing-here":
		return d.briefingHereCommand(ctx, cmd)
	default:
		return fmt.Sprintf("Unknown command %q. Try `/examday help`.", sub), nil
	}
}

func splitCommand(text string) (sub, rest string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", ""
	}
	return strings.ToLower(fields[0]), strings.Join(fields[1:], " ")
}

func (d *Dispatcher) findCommand(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "Usage: `/examday find <text>`", nil
	}

	event, err := d.events.Search(ctx, text)
	var ambiguous *service.AmbiguousMatchError
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fmt.Sprintf("No event matches %q.", text), nil
	case errors.As(err, &ambiguous):
		var b strings.Builder
		fmt.Fprintf(&b, "%d events match %q:\n", len(ambiguous.Matches), text)
		for _, m := range ambiguous.Matches {
			fmt.Fprintf(&b, "• *%s* (%s) — %s\n", m.Title, m.Category, m.EventDate.Format(model.DateFormat))
		}
		return b.String(), nil
	case err != nil:
		return "", fmt.Errorf("searching %q: %w", text, err)
	}

	return fmt.Sprintf("*%s* (%s)\n📅 %s | ⏰ Deadline: %s",
		event.Title, event.Category,
		event.EventDate.Format(model.DateFormat),
		event.RegistrationDeadline.Format(model.DateFormat)), nil
}

// pendingCommand lists events with a deadline in the next 7 days that still
// have unregistered subscribers.
func (d *Dispatcher) pendingCommand(ctx context.Context, userID string) (string, error) {
	if !d.checker.IsOperator(ctx, userID) {
		return operatorOnlyNotice, nil
	}

	today := model.DateOnly(d.now().UTC())
	events, err := d.queries.ListEventsByDeadlineRange(ctx, store.ListEventsByDeadlineRangeParams{
		From: today,
		To:   today.AddDate(0, 0, 8),
	})
	if err != nil {
		return "", fmt.Errorf("listing upcoming deadlines: %w", err)
	}

	var b strings.Builder
	b.WriteString("*Pending registrations (deadlines in the next 7 days):*\n")
	found := false
	for _, event := range events {
		report, err := d.subs.PendingReport(ctx, event.ID)
		if err != nil {
			return "", err
		}
		if len(report.PendingUserIDs) == 0 {
			continue
		}
		found = true
		mentions := make([]string, 0, len(report.PendingUserIDs))
		for _, id := range report.PendingUserIDs {
			mentions = append(mentions, "<@"+id+">")
		}
		fmt.Fprintf(&b, "• *%s* (deadline %s): %s\n",
			event.Title, event.RegistrationDeadline.Format(model.DateFormat),
			strings.Join(mentions, ", "))
	}
	if !found {
		b.WriteString("_Nothing pending._")
	}
	return b.String(), nil
}

// parseMention extracts a user ID from a Slack mention escape like
// <@U123|name>, or accepts a bare ID.
func parseMention(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "<@") && strings.HasSuffix(text, ">") {
		inner := text[2 : len(text)-1]
		if i := strings.IndexByte(inner, '|'); i >= 0 {
			inner = inner[:i]
		}
		text = inner
	}
	if text == "" || strings.ContainsAny(text, " <>@") {
		return "", false
	}
	return text, true
}

func (d *Dispatcher) watchCommand(ctx context.Context, userID, rest string, watch bool) (string, error) {
	studentID, ok := parseMention(rest)
	if !ok {
		return "Usage: `/examday watch @user`", nil
	}

	if watch {
		if err := d.roster.Watch(ctx, userID, studentID); err != nil {
			return "", fmt.Errorf("watching %s: %w", studentID, err)
		}
		return fmt.Sprintf("👀 Now watching <@%s>.", studentID), nil
	}
	if err := d.roster.Unwatch(ctx, userID, studentID); err != nil {
		return "", fmt.Errorf("unwatching %s: %w", studentID, err)
	}
	return fmt.Sprintf("Stopped watching <@%s>.", studentID), nil
}

func (d *Dispatcher) watchingCommand(ctx context.Context, userID string) (string, error) {
	students, err := d.roster.Watching(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("listing watched students: %w", err)
	}
	if len(students) == 0 {
		return "You are not watching anyone. Try `/examday watch @user`.", nil
	}
	mentions := make([]string, 0, len(students))
	for _, id := range students {
		mentions = append(mentions, "<@"+id+">")
	}
	return "Watching: " + strings.Join(mentions, ", "), nil
}

func (d *Dispatcher) briefingHereCommand(ctx context.Context, cmd slack.SlashCommand) (string, error) {
	if !d.checker.IsOperator(ctx, cmd.UserID) {
		return operatorOnlyNotice, nil
	}
	err := d.queries.UpsertSetting(ctx, store.UpsertSettingParams{
		Key:   model.SettingBriefingChannel,
		Value: cmd.ChannelID,
	})
	if err != nil {
		return "", fmt.Errorf("saving briefing channel: %w", err)
	}
	d.logOperator(ctx, model.AuditCategorySystem, "Briefing channel set", cmd.UserID,
		map[string]any{"channel_id": cmd.ChannelID})
	return "📋 Daily briefings will be posted to this channel.", nil
}

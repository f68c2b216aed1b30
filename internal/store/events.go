// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/examday-go/internal/model"
)

const eventColumns = "id, title, category, event_date, registration_deadline, created_at, updated_at"

func scanEvent(row interface{ Scan(...any) error }) (model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Category, &e.EventDate, &e.RegistrationDeadline, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// CreateEventParams holds parameters for CreateEvent.
type CreateEventParams struct {
	Title                string
	Category             string
	EventDate            time.Time
	RegistrationDeadline time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// CreateEvent inserts a new event and returns it with its assigned ID.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (model.Event, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO events (title, category, event_date, registration_deadline, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+eventColumns,
		arg.Title, arg.Category, model.DateOnly(arg.EventDate), model.DateOnly(arg.RegistrationDeadline),
		arg.CreatedAt, arg.UpdatedAt,
	)
	return scanEvent(row)
}

// GetEvent returns a single event by ID.
func (q *Queries) GetEvent(ctx context.Context, id int64) (model.Event, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

// UpdateEventParams holds parameters for UpdateEvent.
type UpdateEventParams struct {
	ID                   int64
	Title                string
	Category             string
	EventDate            time.Time
	RegistrationDeadline time.Time
	UpdatedAt            time.Time
}

// UpdateEvent overwrites an event in place. Missing rows are not an error;
// callers check with GetEvent first when they need not-found semantics.
func (q *Queries) UpdateEvent(ctx context.Context, arg UpdateEventParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE events
		SET title = ?, category = ?, event_date = ?, registration_deadline = ?, updated_at = ?
		WHERE id = ?`,
		arg.Title, arg.Category, model.DateOnly(arg.EventDate), model.DateOnly(arg.RegistrationDeadline),
		arg.UpdatedAt, arg.ID,
	)
	return err
}

// DeleteEvent removes an event row. Subscriptions are cascaded by the
// service layer inside the same transaction.
func (q *Queries) DeleteEvent(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	return err
}

func (q *Queries) listEvents(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListEvents returns all events ordered by event date, then ID.
func (q *Queries) ListEvents(ctx context.Context) ([]model.Event, error) {
	return q.listEvents(ctx, `SELECT `+eventColumns+` FROM events ORDER BY event_date, id`)
}

// ListEventsByCategoryParams holds parameters for ListEventsByCategory.
type ListEventsByCategoryParams struct {
	Category string
	// From filters out events dated before it; zero means no date filter.
	From time.Time
}

// ListEventsByCategory returns a category's events ordered by event date,
// then ID, optionally excluding events dated before From.
func (q *Queries) ListEventsByCategory(ctx context.Context, arg ListEventsByCategoryParams) ([]model.Event, error) {
	if arg.From.IsZero() {
		return q.listEvents(ctx,
			`SELECT `+eventColumns+` FROM events WHERE category = ? ORDER BY event_date, id`,
			arg.Category)
	}
	return q.listEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE category = ? AND event_date >= ? ORDER BY event_date, id`,
		arg.Category, model.DateOnly(arg.From))
}

// ListEventsByDeadline returns events whose registration deadline falls on
// the given day.
func (q *Queries) ListEventsByDeadline(ctx context.Context, day time.Time) ([]model.Event, error) {
	return q.listEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE registration_deadline = ? ORDER BY event_date, id`,
		model.DateOnly(day))
}

// ListEventsByDate returns events taking place on the given day.
func (q *Queries) ListEventsByDate(ctx context.Context, day time.Time) ([]model.Event, error) {
	return q.listEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE event_date = ? ORDER BY event_date, id`,
		model.DateOnly(day))
}

// ListEventsByDeadlineRangeParams holds parameters for ListEventsByDeadlineRange.
type ListEventsByDeadlineRangeParams struct {
	From time.Time // inclusive
	To   time.Time // exclusive
}

// ListEventsByDeadlineRange returns events with a registration deadline in
// [From, To), ordered by deadline.
func (q *Queries) ListEventsByDeadlineRange(ctx context.Context, arg ListEventsByDeadlineRangeParams) ([]model.Event, error) {
	return q.listEvents(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE registration_deadline >= ? AND registration_deadline < ?
		 ORDER BY registration_deadline, id`,
		model.DateOnly(arg.From), model.DateOnly(arg.To))
}

// SearchEventsByTitle returns events whose title contains the given text,
// case-insensitively.
func (q *Queries) SearchEventsByTitle(ctx context.Context, text string) ([]model.Event, error) {
	return q.listEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE title LIKE '%' || ? || '%' ORDER BY event_date, id`,
		text)
}

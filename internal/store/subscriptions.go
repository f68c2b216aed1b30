// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/examday-go/internal/model"
)

const subscriptionColumns = "id, user_id, event_id, status, created_at"

func scanSubscription(row interface{ Scan(...any) error }) (model.Subscription, error) {
	var s model.Subscription
	err := row.Scan(&s.ID, &s.UserID, &s.EventID, &s.Status, &s.CreatedAt)
	return s, err
}

// CreateSubscriptionParams holds parameters for CreateSubscription.
type CreateSubscriptionParams struct {
	UserID    string
	EventID   int64
	Status    string
	CreatedAt time.Time
}

// CreateSubscription inserts a subscription. The (user_id, event_id) unique
// constraint makes a duplicate insert a no-op, which keeps rapid
// double-subscribe clicks safe without application-level locking.
func (q *Queries) CreateSubscription(ctx context.Context, arg CreateSubscriptionParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO subscriptions (user_id, event_id, status, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, event_id) DO NOTHING`,
		arg.UserID, arg.EventID, arg.Status, arg.CreatedAt,
	)
	return err
}

// SubscriptionKeyParams identifies one (user, event) subscription.
type SubscriptionKeyParams struct {
	UserID  string
	EventID int64
}

// GetSubscription returns the subscription for (user, event).
func (q *Queries) GetSubscription(ctx context.Context, arg SubscriptionKeyParams) (model.Subscription, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = ? AND event_id = ?`,
		arg.UserID, arg.EventID)
	return scanSubscription(row)
}

// DeleteSubscription removes the subscription for (user, event), if any.
func (q *Queries) DeleteSubscription(ctx context.Context, arg SubscriptionKeyParams) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE user_id = ? AND event_id = ?`,
		arg.UserID, arg.EventID)
	return err
}

// DeleteSubscriptionsByEvent removes every subscription on an event.
func (q *Queries) DeleteSubscriptionsByEvent(ctx context.Context, eventID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE event_id = ?`, eventID)
	return err
}

func (q *Queries) listSubscriptions(ctx context.Context, query string, args ...any) ([]model.Subscription, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// ListSubscriptionsByUser returns all of a user's subscriptions.
func (q *Queries) ListSubscriptionsByUser(ctx context.Context, userID string) ([]model.Subscription, error) {
	return q.listSubscriptions(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = ? ORDER BY id`, userID)
}

// ListSubscriptionsByEvent returns all subscriptions on an event.
func (q *Queries) ListSubscriptionsByEvent(ctx context.Context, eventID int64) ([]model.Subscription, error) {
	return q.listSubscriptions(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE event_id = ? ORDER BY id`, eventID)
}

// UpdateSubscriptionStatusParams holds parameters for UpdateSubscriptionStatus.
type UpdateSubscriptionStatusParams struct {
	UserID  string
	EventID int64
	Status  string
}

// UpdateSubscriptionStatus sets the status of one subscription and reports
// whether a row was updated.
func (q *Queries) UpdateSubscriptionStatus(ctx context.Context, arg UpdateSubscriptionStatusParams) (bool, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE subscriptions SET status = ? WHERE user_id = ? AND event_id = ?`,
		arg.Status, arg.UserID, arg.EventID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// SetEventSubscriptionsStatusParams holds parameters for SetEventSubscriptionsStatus.
type SetEventSubscriptionsStatusParams struct {
	EventID int64
	Status  string
}

// SetEventSubscriptionsStatus sets the status of every subscription on an
// event and returns the number of rows changed.
func (q *Queries) SetEventSubscriptionsStatus(ctx context.Context, arg SetEventSubscriptionsStatusParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE subscriptions SET status = ? WHERE event_id = ?`, arg.Status, arg.EventID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountSubscriptionsByEvent returns the number of subscriptions on an event.
func (q *Queries) CountSubscriptionsByEvent(ctx context.Context, eventID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE event_id = ?`, eventID).Scan(&n)
	return n, err
}

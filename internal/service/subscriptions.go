// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/examday-go/internal/model"
	"github.com/olegiv/examday-go/internal/store"
)

// SubscriptionService implements subscription opt-in/out and status tracking.
type SubscriptionService struct {
	queries *store.Queries
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(db *sql.DB) *SubscriptionService {
	return &SubscriptionService{queries: store.New(db)}
}

// Subscribe opts a user in to an event. Subscribing twice is a no-op; the
// (user, event) uniqueness constraint absorbs concurrent double clicks.
// Subscribing to a vanished event maps to ErrNotFound.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID string, eventID int64) error {
	if _, err := s.queries.GetEvent(ctx, eventID); errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	} else if err != nil {
		return fmt.Errorf("checking event %d: %w", eventID, err)
	}

	err := s.queries.CreateSubscription(ctx, store.CreateSubscriptionParams{
		UserID:    userID,
		EventID:   eventID,
		Status:    model.StatusPending,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("subscribing %s to event %d: %w", userID, eventID, err)
	}
	return nil
}

// Unsubscribe opts a user out of an event. Unsubscribing when not
// subscribed is a no-op.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID string, eventID int64) error {
	err := s.queries.DeleteSubscription(ctx, store.SubscriptionKeyParams{UserID: userID, EventID: eventID})
	if err != nil {
		return fmt.Errorf("unsubscribing %s from event %d: %w", userID, eventID, err)
	}
	return nil
}

// Confirm marks the user's subscription as registered. A vanished
// subscription maps to ErrNotFound.
func (s *SubscriptionService) Confirm(ctx context.Context, userID string, eventID int64) error {
	updated, err := s.queries.UpdateSubscriptionStatus(ctx, store.UpdateSubscriptionStatusParams{
		UserID:  userID,
		EventID: eventID,
		Status:  model.StatusRegistered,
	})
	if err != nil {
		return fmt.Errorf("confirming registration of %s for event %d: %w", userID, eventID, err)
	}
	if !updated {
		return ErrNotFound
	}
	return nil
}

// SetEventStatus is the operator bulk action: it sets every subscription on
// an event to the given status and returns the number of rows changed.
func (s *SubscriptionService) SetEventStatus(ctx context.Context, eventID int64, status string) (int64, error) {
	if status != model.StatusPending && status != model.StatusRegistered {
		return 0, fmt.Errorf("invalid subscription status %q", status)
	}
	n, err := s.queries.SetEventSubscriptionsStatus(ctx, store.SetEventSubscriptionsStatusParams{
		EventID: eventID,
		Status:  status,
	})
	if err != nil {
		return 0, fmt.Errorf("setting status on event %d: %w", eventID, err)
	}
	return n, nil
}

// PendingReport lists the subscribers of an event that have not confirmed
// registration, plus the count of those that have.
func (s *SubscriptionService) PendingReport(ctx context.Context, eventID int64) (model.PendingReport, error) {
	event, err := s.queries.GetEvent(ctx, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PendingReport{}, ErrNotFound
	}
	if err != nil {
		return model.PendingReport{}, fmt.Errorf("getting event %d: %w", eventID, err)
	}

	subs, err := s.queries.ListSubscriptionsByEvent(ctx, eventID)
	if err != nil {
		return model.PendingReport{}, fmt.Errorf("listing subscriptions for event %d: %w", eventID, err)
	}

	report := model.PendingReport{EventID: eventID, Title: event.Title}
	for _, sub := range subs {
		if sub.IsPending() {
			report.PendingUserIDs = append(report.PendingUserIDs, sub.UserID)
		} else {
			report.RegisteredCount++
		}
	}
	return report, nil
}

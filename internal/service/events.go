// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the business logic over the store: event
// listing/sorting, CRUD with subscription cascade, subscription status
// tracking and the free-text event search.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/olegiv/examday-go/internal/model"
	"github.com/olegiv/examday-go/internal/store"
)

// ErrNotFound is returned when a referenced event or subscription no longer
// exists. Callers treat it as a no-op with an optional notice, never as a
// transport-level failure.
var ErrNotFound = errors.New("not found")

// AmbiguousMatchError is returned by Search when free text matches more
// than one event; it carries the candidates for disambiguation.
type AmbiguousMatchError struct {
	Matches []model.Event
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%d events match", len(e.Matches))
}

// Filter narrows an event listing.
//
// IncludePast preserves a deliberate asymmetry from the product: category
// views hide events dated before Today, while operator-facing unscoped
// listings include them.
type Filter struct {
	Category    string
	IncludePast bool
	Today       time.Time
}

// EventService implements event listing and CRUD.
type EventService struct {
	db      *sql.DB
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		db:      db,
		queries: store.New(db),
	}
}

// List returns events visible under the filter, ordered subscribed-first
// and then by event date ascending, together with the viewer's subscription
// per event ID. The underlying store order (date, then ID) breaks ties.
func (s *EventService) List(ctx context.Context, viewerID string, f Filter) ([]model.Event, map[int64]model.Subscription, error) {
	var (
		events []model.Event
		err    error
	)
	if f.Category != "" {
		params := store.ListEventsByCategoryParams{Category: f.Category}
		if !f.IncludePast {
			params.From = f.Today
		}
		events, err = s.queries.ListEventsByCategory(ctx, params)
	} else {
		events, err = s.queries.ListEvents(ctx)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("listing events: %w", err)
	}

	subs, err := s.queries.ListSubscriptionsByUser(ctx, viewerID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	index := make(map[int64]model.Subscription, len(subs))
	for _, sub := range subs {
		index[sub.EventID] = sub
	}

	// Events arrive date-ordered; a stable sort on the subscribed bit alone
	// yields subscribed-first with date order preserved inside each group.
	sort.SliceStable(events, func(i, j int) bool {
		_, si := index[events[i].ID]
		_, sj := index[events[j].ID]
		return si && !sj
	})

	return events, index, nil
}

// Get returns one event, mapping a missing row to ErrNotFound.
func (s *EventService) Get(ctx context.Context, id int64) (model.Event, error) {
	e, err := s.queries.GetEvent(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrNotFound
	}
	if err != nil {
		return model.Event{}, fmt.Errorf("getting event %d: %w", id, err)
	}
	return e, nil
}

// CreateParams holds the operator-supplied fields of an event.
type CreateParams struct {
	Title                string
	Category             string
	EventDate            time.Time
	RegistrationDeadline time.Time
}

// Create inserts a new event.
func (s *EventService) Create(ctx context.Context, p CreateParams) (model.Event, error) {
	now := time.Now()
	e, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Title:                p.Title,
		Category:             p.Category,
		EventDate:            p.EventDate,
		RegistrationDeadline: p.RegistrationDeadline,
		CreatedAt:            now,
		UpdatedAt:            now,
	})
	if err != nil {
		return model.Event{}, fmt.Errorf("creating event: %w", err)
	}
	return e, nil
}

// Update overwrites an event in place. A vanished event maps to ErrNotFound.
func (s *EventService) Update(ctx context.Context, id int64, p CreateParams) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	err := s.queries.UpdateEvent(ctx, store.UpdateEventParams{
		ID:                   id,
		Title:                p.Title,
		Category:             p.Category,
		EventDate:            p.EventDate,
		RegistrationDeadline: p.RegistrationDeadline,
		UpdatedAt:            time.Now(),
	})
	if err != nil {
		return fmt.Errorf("updating event %d: %w", id, err)
	}
	return nil
}

// Delete removes an event and all of its subscriptions in one transaction,
// so no orphan subscription rows remain queryable. A vanished event maps to
// ErrNotFound.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)
	if err := qtx.DeleteSubscriptionsByEvent(ctx, id); err != nil {
		return fmt.Errorf("deleting subscriptions for event %d: %w", id, err)
	}
	if err := qtx.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("deleting event %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

// CreateCategory adds a category; re-adding an existing name is a no-op.
func (s *EventService) CreateCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("category name must not be empty")
	}
	if err := s.queries.CreateCategory(ctx, name); err != nil {
		return fmt.Errorf("creating category %q: %w", name, err)
	}
	return nil
}

// Categories returns all category names in insertion order.
func (s *EventService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names, nil
}

// Search resolves free text to a single event. Zero matches surface as
// ErrNotFound; multiple matches surface as *AmbiguousMatchError carrying
// the candidate list. Never mutates.
func (s *EventService) Search(ctx context.Context, text string) (model.Event, error) {
	matches, err := s.queries.SearchEventsByTitle(ctx, strings.TrimSpace(text))
	if err != nil {
		return model.Event{}, fmt.Errorf("searching events: %w", err)
	}
	switch len(matches) {
	case 0:
		return model.Event{}, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return model.Event{}, &AmbiguousMatchError{Matches: matches}
	}
}

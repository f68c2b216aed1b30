// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/olegiv/examday-go/internal/auth"
	"github.com/olegiv/examday-go/internal/model"
	"github.com/olegiv/examday-go/internal/render"
	"github.com/olegiv/examday-go/internal/service"
)

// HandleViewSubmission processes a modal submit. All submissions are
// operator-only since only operators can open these modals.
func (d *Dispatcher) HandleViewSubmission(ctx context.Context, callback *slack.InteractionCallback) error {
	userID := callback.User.ID
	if !d.checker.IsOperator(ctx, userID) {
		return d.rejectNonOperator(ctx, callback)
	}

	switch callback.View.CallbackID {
	case render.CallbackNewEvent:
		return d.submitNewEvent(ctx, userID, callback)
	case render.CallbackEditEvent:
		return d.submitEditEvent(ctx, userID, callback)
	case render.CallbackNewType:
		return d.submitNewCategory(ctx, userID, callback)
	case render.CallbackNewAdmin:
		return d.submitNewAdmin(ctx, userID, callback)
	default:
		return fmt.Errorf("unknown view callback %q", callback.View.CallbackID)
	}
}

// stateValue digs one input's value out of the view state.
func stateValue(callback *slack.InteractionCallback, blockID string) slack.BlockAction {
	return callback.View.State.Values[blockID]["i"]
}

func eventParamsFromView(callback *slack.InteractionCallback) (service.CreateParams, error) {
	title := strings.TrimSpace(stateValue(callback, render.InputBlockTitle).Value)
	if title == "" {
		return service.CreateParams{}, errors.New("empty title")
	}
	category := stateValue(callback, render.InputBlockCategory).SelectedOption.Value
	if category == "" {
		return service.CreateParams{}, errors.New("no category selected")
	}

	eventDate, err := time.Parse(model.DateFormat, stateValue(callback, render.InputBlockDate).SelectedDate)
	if err != nil {
		return service.CreateParams{}, fmt.Errorf("parsing event date: %w", err)
	}
	deadline, err := time.Parse(model.DateFormat, stateValue(callback, render.InputBlockDeadline).SelectedDate)
	if err != nil {
		return service.CreateParams{}, fmt.Errorf("parsing deadline: %w", err)
	}

	return service.CreateParams{
		Title:                title,
		Category:             category,
		EventDate:            eventDate,
		RegistrationDeadline: deadline,
	}, nil
}

func (d *Dispatcher) submitNewEvent(ctx context.Context, userID string, callback *slack.InteractionCallback) error {
	params, err := eventParamsFromView(callback)
	if err != nil {
		return err
	}
	event, err := d.events.Create(ctx, params)
	if err != nil {
		return fmt.Errorf("creating event: %w", err)
	}
	d.logOperator(ctx, model.AuditCategoryEvent, "Event created: "+event.Title, userID,
		map[string]any{"event_id": event.ID, "category": event.Category})
	return d.publishDashboard(ctx, userID)
}

func (d *Dispatcher) submitEditEvent(ctx context.Context, userID string, callback *slack.InteractionCallback) error {
	eventID, err := strconv.ParseInt(callback.View.PrivateMetadata, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing event ID from metadata: %w", err)
	}
	params, err := eventParamsFromView(callback)
	if err != nil {
		return err
	}
	if err := d.events.Update(ctx, eventID, params); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return d.publishDashboard(ctx, userID)
		}
		return fmt.Errorf("updating event %d: %w", eventID, err)
	}
	d.logOperator(ctx, model.AuditCategoryEvent, "Event updated: "+params.Title, userID,
		map[string]any{"event_id": eventID})
	return d.publishDashboard(ctx, userID)
}

func (d *Dispatcher) submitNewCategory(ctx context.Context, userID string, callback *slack.InteractionCallback) error {
	name := strings.TrimSpace(stateValue(callback, render.InputBlockName).Value)
	if err := d.events.CreateCategory(ctx, name); err != nil {
		return fmt.Errorf("creating category: %w", err)
	}
	d.logOperator(ctx, model.AuditCategoryCategory, "Category created: "+name, userID, nil)
	return d.publishDashboard(ctx, userID)
}

func (d *Dispatcher) submitNewAdmin(ctx context.Context, userID string, callback *slack.InteractionCallback) error {
	target := stateValue(callback, render.InputBlockUser).SelectedUser
	if target == "" {
		return errors.New("no user selected")
	}
	if err := d.checker.Grant(ctx, target); err != nil {
		if errors.Is(err, auth.ErrRootImmutable) {
			return d.messenger.PostDM(ctx, userID, "That user is the root admin already.")
		}
		return fmt.Errorf("granting admin to %s: %w", target, err)
	}
	d.logOperator(ctx, model.AuditCategoryAdmin, "Admin granted: "+target, userID,
		map[string]any{"target": target})
	return d.publishDashboard(ctx, userID)
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package dispatcher routes Slack interactions (home opens, block actions,
// view submissions, slash commands) to the services and renders the
// responses.
package dispatcher

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/slack-go/slack"

	"github.com/olegiv/examday-go/internal/auth"
	"github.com/olegiv/examday-go/internal/model"
	"github.com/olegiv/examday-go/internal/render"
	"github.com/olegiv/examday-go/internal/service"
	"github.com/olegiv/examday-go/internal/slackx"
	"github.com/olegiv/examday-go/internal/store"
)

const operatorOnlyNotice = "🔒 That action is for admins only."

// Dispatcher wires interactions to the services.
type Dispatcher struct {
	checker   *auth.Checker
	events    *service.EventService
	subs      *service.SubscriptionService
	roster    *service.RosterService
	audit     *service.AuditService
	queries   *store.Queries
	messenger slackx.Messenger
	logger    *slog.Logger

	// now is swappable in tests.
	now func() time.Time
}

func New(db *sql.DB, checker *auth.Checker, messenger slackx.Messenger, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		checker:   checker,
		events:    service.NewEventService(db),
		subs:      service.NewSubscriptionService(db),
		roster:    service.NewRosterService(db),
		audit:     service.NewAuditService(db),
		queries:   store.New(db),
		messenger: messenger,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleHomeOpened publishes the dashboard for the user who opened the
// home tab.
func (d *Dispatcher) HandleHomeOpened(ctx context.Context, userID string) error {
	return d.publishDashboard(ctx, userID)
}

func (d *Dispatcher) publishDashboard(ctx context.Context, userID string) error {
	categories, err := d.events.Categories(ctx)
	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}

	isOperator := d.checker.IsOperator(ctx, userID)
	blocks, err := render.Dashboard(ctx, d.events, userID, isOperator, categories, model.DateOnly(d.now().UTC()))
	if err != nil {
		return fmt.Errorf("rendering dashboard: %w", err)
	}
	return d.messenger.PublishHome(ctx, userID, blocks)
}

// publishCategory replaces the user's home tab with a category page.
// Operators see past events on it too, so stale entries stay reachable for
// editing and deletion.
func (d *Dispatcher) publishCategory(ctx context.Context, userID, category string, page int) error {
	isOperator := d.checker.IsOperator(ctx, userID)
	events, subs, err := d.events.List(ctx, userID, service.Filter{
		Category:    category,
		IncludePast: isOperator,
		Today:       model.DateOnly(d.now().UTC()),
	})
	if err != nil {
		return fmt.Errorf("listing %q events: %w", category, err)
	}
	blocks := render.CategoryView(category, page, events, subs, isOperator)
	return d.messenger.PublishHome(ctx, userID, blocks)
}

// HandleBlockAction processes one interaction callback. Unknown action IDs
// are logged and ignored so stale views cannot error-loop.
func (d *Dispatcher) HandleBlockAction(ctx context.Context, callback *slack.InteractionCallback) error {
	userID := callback.User.ID

	for _, action := range callback.ActionCallback.BlockActions {
		var err error
		switch action.ActionID {
		case render.ActionNavHome:
			err = d.publishDashboard(ctx, userID)

		case render.ActionNavViewCategory, render.ActionNavPrevPage, render.ActionNavNextPage:
			err = d.handleNav(ctx, userID, action.Value)

		case render.ActionToggleSubscription:
			err = d.handleToggleSubscription(ctx, userID, action.Value)

		case render.ActionConfirmRegistration:
			err = d.handleConfirm(ctx, userID, action.Value)

		case render.ActionOpenAddEventModal:
			err = d.openOperatorModal(ctx, callback, d.newEventModal)

		case render.ActionOpenAddTypeModal:
			err = d.openOperatorModal(ctx, callback, func(context.Context) (slack.ModalViewRequest, error) {
				return render.CategoryModal(), nil
			})

		case render.ActionOpenManageAdmins:
			err = d.openOperatorModal(ctx, callback, d.manageAdminsModal)

		case render.ActionRemoveAdmin:
			err = d.handleRemoveAdmin(ctx, callback, action.Value)

		case render.ActionEventOverflow:
			err = d.handleOverflow(ctx, callback, action.SelectedOption.Value)

		default:
			d.logger.Warn("unknown block action", "action_id", action.ActionID, "user_id", userID)
		}
		if err != nil {
			return fmt.Errorf("action %s: %w", action.ActionID, err)
		}
	}
	return nil
}

func (d *Dispatcher) handleNav(ctx context.Context, userID, value string) error {
	payload, err := model.ParseActionPayload(value)
	if err != nil {
		return err
	}
	return d.publishCategory(ctx, userID, payload.Category, payload.Page)
}

func (d *Dispatcher) handleToggleSubscription(ctx context.Context, userID, value string) error {
	payload, err := model.ParseActionPayload(value)
	if err != nil {
		return err
	}

	switch payload.Kind {
	case model.ActionSubscribe:
		err = d.subs.Subscribe(ctx, userID, payload.EventID)
	case model.ActionUnsubscribe:
		err = d.subs.Unsubscribe(ctx, userID, payload.EventID)
	default:
		return fmt.Errorf("unexpected toggle kind %q", payload.Kind)
	}
	if errors.Is(err, service.ErrNotFound) {
		// Event vanished under a stale view; refresh instead of failing.
		d.logger.Warn("subscription toggle on missing event", "event_id", payload.EventID, "user_id", userID)
	} else if err != nil {
		return err
	}
	return d.publishDashboard(ctx, userID)
}

func (d *Dispatcher) handleConfirm(ctx context.Context, userID, value string) error {
	payload, err := model.ParseActionPayload(value)
	if err != nil {
		return err
	}
	if err := d.subs.Confirm(ctx, userID, payload.EventID); err != nil && !errors.Is(err, service.ErrNotFound) {
		return err
	}
	return d.publishDashboard(ctx, userID)
}

// openOperatorModal checks operator privileges, builds the modal and opens
// it on the interaction's trigger ID.
func (d *Dispatcher) openOperatorModal(ctx context.Context, callback *slack.InteractionCallback, build func(context.Context) (slack.ModalViewRequest, error)) error {
	userID := callback.User.ID
	if !d.checker.IsOperator(ctx, userID) {
		return d.rejectNonOperator(ctx, callback)
	}
	view, err := build(ctx)
	if err != nil {
		return err
	}
	return d.messenger.OpenModal(ctx, callback.TriggerID, view)
}

func (d *Dispatcher) manageAdminsModal(ctx context.Context) (slack.ModalViewRequest, error) {
	admins, err := d.checker.Operators(ctx)
	if err != nil {
		return slack.ModalViewRequest{}, fmt.Errorf("listing admins: %w", err)
	}
	return render.AdminModal(admins), nil
}

// handleRemoveAdmin drops a user from the operator allow-list. The remove
// buttons live inside the manage-admins modal, so the refusal notices go
// over DM.
func (d *Dispatcher) handleRemoveAdmin(ctx context.Context, callback *slack.InteractionCallback, targetID string) error {
	userID := callback.User.ID
	if !d.checker.IsOperator(ctx, userID) {
		return d.rejectNonOperator(ctx, callback)
	}

	err := d.checker.Revoke(ctx, targetID)
	if errors.Is(err, auth.ErrRootImmutable) {
		return d.messenger.PostDM(ctx, userID, "🔒 The root admin cannot be removed.")
	}
	if err != nil {
		return fmt.Errorf("revoking admin %s: %w", targetID, err)
	}
	d.logOperator(ctx, model.AuditCategoryAdmin, "Admin removed: "+targetID, userID,
		map[string]any{"target_user_id": targetID})
	return d.publishDashboard(ctx, userID)
}

func (d *Dispatcher) newEventModal(ctx context.Context) (slack.ModalViewRequest, error) {
	categories, err := d.events.Categories(ctx)
	if err != nil {
		return slack.ModalViewRequest{}, fmt.Errorf("listing categories: %w", err)
	}
	return render.EventModal(categories, nil), nil
}

func (d *Dispatcher) handleOverflow(ctx context.Context, callback *slack.InteractionCallback, value string) error {
	userID := callback.User.ID
	if !d.checker.IsOperator(ctx, userID) {
		return d.rejectNonOperator(ctx, callback)
	}

	payload, err := model.ParseActionPayload(value)
	if err != nil {
		return err
	}

	switch payload.Kind {
	case model.ActionEdit:
		event, err := d.events.Get(ctx, payload.EventID)
		if errors.Is(err, service.ErrNotFound) {
			return d.publishDashboard(ctx, userID)
		}
		if err != nil {
			return err
		}
		categories, err := d.events.Categories(ctx)
		if err != nil {
			return err
		}
		return d.messenger.OpenModal(ctx, callback.TriggerID, render.EventModal(categories, &event))

	case model.ActionDelete:
		event, err := d.events.Get(ctx, payload.EventID)
		if errors.Is(err, service.ErrNotFound) {
			return d.publishDashboard(ctx, userID)
		}
		if err != nil {
			return err
		}
		// Counted before the delete cascades the subscriptions away.
		subCount, err := d.queries.CountSubscriptionsByEvent(ctx, payload.EventID)
		if err != nil {
			return err
		}
		if err := d.events.Delete(ctx, payload.EventID); err != nil {
			return err
		}
		d.logOperator(ctx, model.AuditCategoryEvent, "Event deleted: "+event.Title, userID,
			map[string]any{"event_id": event.ID, "subscriptions": subCount})
		return d.publishDashboard(ctx, userID)

	case model.ActionToggleStatus:
		return d.toggleEventStatus(ctx, userID, payload.EventID)

	default:
		return fmt.Errorf("unexpected overflow kind %q", payload.Kind)
	}
}

// toggleEventStatus flips an event's subscriptions in bulk: registered if
// any are still pending, otherwise back to pending.
func (d *Dispatcher) toggleEventStatus(ctx context.Context, userID string, eventID int64) error {
	report, err := d.subs.PendingReport(ctx, eventID)
	if err != nil {
		return err
	}
	status := model.StatusRegistered
	if len(report.PendingUserIDs) == 0 {
		status = model.StatusPending
	}
	changed, err := d.subs.SetEventStatus(ctx, eventID, status)
	if err != nil {
		return err
	}
	d.logOperator(ctx, model.AuditCategorySubscription,
		fmt.Sprintf("Bulk status set to %s for event %d", status, eventID),
		userID, map[string]any{"event_id": eventID, "changed": changed})
	return d.publishDashboard(ctx, userID)
}

// rejectNonOperator tells the user the action is restricted. Home-tab
// interactions have no channel, so the notice goes over DM there.
func (d *Dispatcher) rejectNonOperator(ctx context.Context, callback *slack.InteractionCallback) error {
	userID := callback.User.ID
	d.logger.Info("operator action rejected", "user_id", userID)
	if callback.Channel.ID != "" {
		return d.messenger.PostEphemeral(ctx, callback.Channel.ID, userID, operatorOnlyNotice)
	}
	return d.messenger.PostDM(ctx, userID, operatorOnlyNotice)
}

func (d *Dispatcher) logOperator(ctx context.Context, category, message, userID string, metadata map[string]any) {
	if err := d.audit.LogOperatorAction(ctx, category, message, userID, metadata); err != nil {
		d.logger.Warn("audit write failed", "error", err)
	}
}

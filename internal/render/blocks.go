// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render builds Slack Block Kit views: the budgeted home dashboard,
// the paginated category detail view and the operator modals.
package render

import (
	"fmt"

	"github.com/slack-go/slack"

	"github.com/olegiv/examday-go/internal/model"
)

// Action IDs attached to interactive elements. The dispatcher switches on
// these.
const (
	ActionToggleSubscription  = "toggle_subscription"
	ActionConfirmRegistration = "confirm_registration"
	ActionEventOverflow       = "event_actions"
	ActionNavHome             = "nav_home"
	ActionNavViewCategory     = "nav_view_category"
	ActionNavPrevPage         = "nav_prev_page"
	ActionNavNextPage         = "nav_next_page"
	ActionOpenAddEventModal   = "open_add_event_modal"
	ActionOpenAddTypeModal    = "open_add_type_modal"
	ActionOpenManageAdmins    = "open_manage_admins_modal"
	ActionRemoveAdmin         = "remove_admin"
)

// View submission callback IDs.
const (
	CallbackNewEvent  = "submit_new_event"
	CallbackEditEvent = "submit_edit_event"
	CallbackNewType   = "submit_new_type"
	CallbackNewAdmin  = "submit_new_admin"
)

func plainText(s string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, s, true, false)
}

func mrkdwn(s string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, s, false, false)
}

// eventPanels renders one event as 1-2 blocks: the event row itself, plus a
// confirmation prompt when the viewer's subscription is still pending.
func eventPanels(event model.Event, sub *model.Subscription, isOperator bool) []slack.Block {
	text := fmt.Sprintf("*%s*\n📅 %s | ⏰ Deadline: %s",
		event.Title,
		event.EventDate.Format(model.DateFormat),
		event.RegistrationDeadline.Format(model.DateFormat),
	)

	var accessory *slack.Accessory
	if isOperator {
		accessory = slack.NewAccessory(slack.NewOverflowBlockElement(ActionEventOverflow,
			slack.NewOptionBlockObject(
				model.ActionPayload{Kind: model.ActionEdit, EventID: event.ID}.Encode(),
				plainText("✏️ Edit"), nil),
			slack.NewOptionBlockObject(
				model.ActionPayload{Kind: model.ActionDelete, EventID: event.ID}.Encode(),
				plainText("🗑️ Delete"), nil),
			slack.NewOptionBlockObject(
				model.ActionPayload{Kind: model.ActionToggleStatus, EventID: event.ID}.Encode(),
				plainText("🔁 Toggle status"), nil),
		))
	} else {
		kind := model.ActionSubscribe
		label := "Subscribe"
		style := slack.StylePrimary
		if sub != nil {
			kind = model.ActionUnsubscribe
			label = "Unsubscribe"
			style = slack.StyleDanger
		}
		btn := slack.NewButtonBlockElement(ActionToggleSubscription,
			model.ActionPayload{Kind: kind, EventID: event.ID}.Encode(),
			plainText(label))
		btn.WithStyle(style)
		accessory = slack.NewAccessory(btn)
	}

	blocks := []slack.Block{
		slack.NewSectionBlock(mrkdwn(text), nil, accessory),
	}

	if sub != nil && sub.IsPending() {
		confirm := slack.NewButtonBlockElement(ActionConfirmRegistration,
			model.ActionPayload{Kind: model.ActionConfirm, EventID: event.ID}.Encode(),
			plainText("✅ I've registered"))
		confirm.WithStyle(slack.StylePrimary)
		blocks = append(blocks, slack.NewActionBlock("", confirm))
	}

	return blocks
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"fmt"
	"strconv"

	"github.com/slack-go/slack"

	"github.com/olegiv/examday-go/internal/model"
)

// Input block IDs used by the modals. Every input element uses action ID
// "i"; the block ID carries the field name.
const (
	InputBlockTitle    = "title"
	InputBlockCategory = "category"
	InputBlockDate     = "date"
	InputBlockDeadline = "deadline"
	InputBlockName     = "name"
	InputBlockUser     = "user"

	inputActionID = "i"
)

// EventModal builds the create-event modal, or the edit-event modal when
// event is non-nil (the event ID travels in private metadata).
func EventModal(categories []string, event *model.Event) slack.ModalViewRequest {
	options := make([]*slack.OptionBlockObject, 0, len(categories))
	for _, c := range categories {
		options = append(options, slack.NewOptionBlockObject(c, plainText(c), nil))
	}

	titleInput := slack.NewPlainTextInputBlockElement(nil, inputActionID)
	categorySelect := slack.NewOptionsSelectBlockElement(slack.OptTypeStatic, nil, inputActionID, options...)
	datePicker := slack.NewDatePickerBlockElement(inputActionID)
	deadlinePicker := slack.NewDatePickerBlockElement(inputActionID)

	title := "Create Event"
	submit := "Create"
	callbackID := CallbackNewEvent
	metadata := ""
	if event != nil {
		title = "Edit Event"
		submit = "Save"
		callbackID = CallbackEditEvent
		metadata = strconv.FormatInt(event.ID, 10)

		titleInput.InitialValue = event.Title
		datePicker.InitialDate = event.EventDate.Format(model.DateFormat)
		deadlinePicker.InitialDate = event.RegistrationDeadline.Format(model.DateFormat)
		for _, opt := range options {
			if opt.Value == event.Category {
				categorySelect.InitialOption = opt
			}
		}
	}

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		Title:           plainText(title),
		Submit:          plainText(submit),
		Close:           plainText("Cancel"),
		CallbackID:      callbackID,
		PrivateMetadata: metadata,
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewInputBlock(InputBlockTitle, plainText("Title"), nil, titleInput),
			slack.NewInputBlock(InputBlockCategory, plainText("Category"), nil, categorySelect),
			slack.NewInputBlock(InputBlockDate, plainText("Event Date"), nil, datePicker),
			slack.NewInputBlock(InputBlockDeadline, plainText("Reg. Deadline"), nil, deadlinePicker),
		}},
	}
}

// CategoryModal builds the add-category modal.
func CategoryModal() slack.ModalViewRequest {
	return slack.ModalViewRequest{
		Type:       slack.VTModal,
		Title:      plainText("Add Category"),
		Submit:     plainText("Add"),
		Close:      plainText("Cancel"),
		CallbackID: CallbackNewType,
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewInputBlock(InputBlockName, plainText("Category Name"), nil,
				slack.NewPlainTextInputBlockElement(nil, inputActionID)),
		}},
	}
}

// AdminModal builds the manage-admins modal: the current allow-list with a
// remove button per admin, plus a user select for granting. The root admin
// is configured, not listed, and cannot be removed here.
func AdminModal(admins []model.Admin) slack.ModalViewRequest {
	blocks := []slack.Block{
		slack.NewSectionBlock(mrkdwn("Select a user to grant Admin privileges."), nil, nil),
		slack.NewInputBlock(InputBlockUser, plainText("Select User"), nil,
			slack.NewOptionsSelectBlockElement(slack.OptTypeUser, nil, inputActionID)),
	}

	if len(admins) > 0 {
		blocks = append(blocks,
			slack.NewDividerBlock(),
			slack.NewSectionBlock(mrkdwn("*Current Admins*"), nil, nil),
		)
		for _, admin := range admins {
			remove := slack.NewButtonBlockElement(ActionRemoveAdmin, admin.UserID, plainText("Remove"))
			remove.WithStyle(slack.StyleDanger)
			blocks = append(blocks, slack.NewSectionBlock(
				mrkdwn(fmt.Sprintf("<@%s>", admin.UserID)), nil, slack.NewAccessory(remove)))
		}
	}

	return slack.ModalViewRequest{
		Type:       slack.VTModal,
		Title:      plainText("Manage Admins"),
		Submit:     plainText("Add User"),
		Close:      plainText("Cancel"),
		CallbackID: CallbackNewAdmin,
		Blocks:     slack.Blocks{BlockSet: blocks},
	}
}

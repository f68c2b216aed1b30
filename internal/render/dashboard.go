// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"context"
	"fmt"
	"time"

	"github.com/slack-go/slack"

	"github.com/olegiv/examday-go/internal/model"
	"github.com/olegiv/examday-go/internal/service"
)

// Render budget constants. Slack rejects home views with more than 100
// blocks, so the dashboard divides what is left after fixed chrome across
// categories.
const (
	HardBlockLimit      = 100
	PerCategoryOverhead = 2 // header + potential "view all" control
	PerCategoryCap      = 10
)

// EventLister is the slice of the event service the dashboard needs.
type EventLister interface {
	List(ctx context.Context, viewerID string, f service.Filter) ([]model.Event, map[int64]model.Subscription, error)
}

// ItemsPerCategory computes how many event rows each category may show so
// the whole view stays under the block limit. Always in [0, PerCategoryCap].
func ItemsPerCategory(blocksUsed, numCategories int) int {
	if numCategories <= 0 {
		return 0
	}
	available := HardBlockLimit - blocksUsed - numCategories*PerCategoryOverhead
	if available <= 0 {
		return 0
	}
	n := available / numCategories
	if n > PerCategoryCap {
		n = PerCategoryCap
	}
	return n
}

// Dashboard builds the home tab for a viewer. The budget is recomputed on
// every call: category count and the viewer's subscriptions change between
// renders.
func Dashboard(ctx context.Context, lister EventLister, viewerID string, isOperator bool, categories []string, today time.Time) ([]slack.Block, error) {
	blocks := []slack.Block{
		slack.NewHeaderBlock(plainText("📅 Event Tracker")),
		slack.NewDividerBlock(),
	}

	if isOperator {
		addEvent := slack.NewButtonBlockElement(ActionOpenAddEventModal, "", plainText("+ Event"))
		addEvent.WithStyle(slack.StylePrimary)
		blocks = append(blocks,
			slack.NewSectionBlock(mrkdwn("⚙️ *Admin Controls*"), nil, nil),
			slack.NewActionBlock("",
				addEvent,
				slack.NewButtonBlockElement(ActionOpenAddTypeModal, "", plainText("+ Category")),
				slack.NewButtonBlockElement(ActionOpenManageAdmins, "", plainText("Manage Admins")),
			),
			slack.NewDividerBlock(),
		)
	}

	if len(categories) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(mrkdwn("No categories defined."), nil, nil))
		return blocks, nil
	}

	itemsPerCategory := ItemsPerCategory(len(blocks), len(categories))

	for _, category := range categories {
		// A category is only worth starting if its header plus at least one
		// row or control still fit. The chrome counts against the same hard
		// limit as the event rows.
		if len(blocks)+PerCategoryOverhead > HardBlockLimit {
			break
		}
		blocks = append(blocks, slack.NewSectionBlock(mrkdwn(fmt.Sprintf("📂 *%s*", category)), nil, nil))

		events, subs, err := lister.List(ctx, viewerID, service.Filter{Category: category, Today: today})
		if err != nil {
			return nil, fmt.Errorf("listing %q events: %w", category, err)
		}

		display := events
		if len(display) > itemsPerCategory {
			display = display[:itemsPerCategory]
		}

		shown := 0
		for _, event := range display {
			var sub *model.Subscription
			if s, ok := subs[event.ID]; ok {
				sub = &s
			}
			panels := eventPanels(event, sub, isOperator)
			// A pending subscription expands an item to two blocks; never
			// let the expansion push the view past the hard limit.
			if len(blocks)+len(panels)+1 > HardBlockLimit {
				break
			}
			blocks = append(blocks, panels...)
			shown++
		}

		if len(events) == 0 {
			if len(blocks) < HardBlockLimit {
				blocks = append(blocks, slack.NewContextBlock("", mrkdwn("No events")))
			}
		} else if shown < len(events) && len(blocks) < HardBlockLimit {
			viewAll := slack.NewButtonBlockElement(ActionNavViewCategory,
				model.ActionPayload{Kind: model.ActionViewCategory, Category: category}.Encode(),
				plainText(fmt.Sprintf("View all %s (%d)", category, len(events))))
			blocks = append(blocks, slack.NewActionBlock("", viewAll))
		}
		// No divider between categories: the headers separate them and the
		// saved blocks go to event rows.
	}

	return blocks, nil
}

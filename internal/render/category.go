// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"fmt"

	"github.com/slack-go/slack"

	"github.com/olegiv/examday-go/internal/model"
)

// PageSize is the number of events per page in the category detail view.
const PageSize = 20

// TotalPages returns the page count for n events.
func TotalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}

// CategoryView builds the paginated detail view for one category. The
// caller supplies the full sorted event list; page k shows
// events[20k : 20k+20]. An out-of-range page yields an empty slice, not an
// error, with the previous control still enabled.
func CategoryView(category string, page int, events []model.Event, subs map[int64]model.Subscription, isOperator bool) []slack.Block {
	if page < 0 {
		page = 0
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(plainText(fmt.Sprintf("📂 %s Events", category))),
		slack.NewActionBlock("",
			slack.NewButtonBlockElement(ActionNavHome, "", plainText("« Back to home")),
		),
		slack.NewDividerBlock(),
	}

	start := page * PageSize
	end := start + PageSize
	if start > len(events) {
		start = len(events)
	}
	if end > len(events) {
		end = len(events)
	}

	for _, event := range events[start:end] {
		var sub *model.Subscription
		if s, ok := subs[event.ID]; ok {
			sub = &s
		}
		blocks = append(blocks, eventPanels(event, sub, isOperator)...)
		blocks = append(blocks, slack.NewDividerBlock())
	}

	totalPages := TotalPages(len(events))
	var nav []slack.BlockElement
	if page > 0 {
		nav = append(nav, slack.NewButtonBlockElement(ActionNavPrevPage,
			model.ActionPayload{Kind: model.ActionPage, Category: category, Page: page - 1}.Encode(),
			plainText("Previous")))
	}
	if page < totalPages-1 {
		nav = append(nav, slack.NewButtonBlockElement(ActionNavNextPage,
			model.ActionPayload{Kind: model.ActionPage, Category: category, Page: page + 1}.Encode(),
			plainText("Next")))
	}
	if len(nav) > 0 {
		blocks = append(blocks, slack.NewActionBlock("", nav...))
	}

	return blocks
}

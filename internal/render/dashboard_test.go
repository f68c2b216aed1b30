// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/slack-go/slack"

	"github.com/olegiv/examday-go/internal/model"
	"github.com/olegiv/examday-go/internal/service"
)

type fakeLister struct {
	calls  int
	events map[string][]model.Event
	subs   map[int64]model.Subscription
}

func (f *fakeLister) List(_ context.Context, _ string, flt service.Filter) ([]model.Event, map[int64]model.Subscription, error) {
	f.calls++
	return f.events[flt.Category], f.subs, nil
}

func makeEvents(category string, n int) []model.Event {
	events := make([]model.Event, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, model.Event{
			ID:                   int64(i + 1),
			Title:                category + " event",
			Category:             category,
			EventDate:            time.Date(2026, 5, 1+i%20, 0, 0, 0, 0, time.UTC),
			RegistrationDeadline: time.Date(2026, 4, 1+i%20, 0, 0, 0, 0, time.UTC),
		})
	}
	return events
}

func TestItemsPerCategoryBounds(t *testing.T) {
	cases := []struct {
		name       string
		used       int
		categories int
		want       int
	}{
		{"typical", 2, 5, 10},
		{"many categories", 2, 12, 6},
		{"zero categories", 2, 0, 0},
		{"budget exhausted", 100, 5, 0},
		{"overhead alone exhausts", 90, 6, 0},
		{"single category capped", 2, 1, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ItemsPerCategory(tc.used, tc.categories)
			if got != tc.want {
				t.Errorf("ItemsPerCategory(%d, %d) = %d, want %d", tc.used, tc.categories, got, tc.want)
			}
			if got < 0 || got > PerCategoryCap {
				t.Errorf("ItemsPerCategory(%d, %d) = %d, outside [0, %d]", tc.used, tc.categories, got, PerCategoryCap)
			}
		})
	}
}

func TestItemsPerCategoryNeverNegative(t *testing.T) {
	for used := 0; used <= HardBlockLimit+10; used++ {
		for categories := 0; categories <= 50; categories++ {
			got := ItemsPerCategory(used, categories)
			if got < 0 || got > PerCategoryCap {
				t.Fatalf("ItemsPerCategory(%d, %d) = %d", used, categories, got)
			}
		}
	}
}

func TestDashboardNoCategories(t *testing.T) {
	lister := &fakeLister{}
	blocks, err := Dashboard(context.Background(), lister, "U1", false, nil, time.Now())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if lister.calls != 0 {
		t.Errorf("expected no event queries, got %d", lister.calls)
	}
	// Header, divider, info panel.
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	if _, ok := blocks[2].(*slack.SectionBlock); !ok {
		t.Errorf("expected info section, got %T", blocks[2])
	}
}

func TestDashboardStaysUnderBlockLimit(t *testing.T) {
	categories := []string{"SAT", "ACT", "AP", "GCSE", "Extracurricular", "IB", "MAT", "LNAT", "UCAT", "BMAT", "TSA", "PAT"}
	lister := &fakeLister{events: map[string][]model.Event{}, subs: map[int64]model.Subscription{}}
	for _, c := range categories {
		lister.events[c] = makeEvents(c, 40)
	}
	// Pending subscriptions expand items to two blocks each.
	for id := int64(1); id <= 40; id++ {
		lister.subs[id] = model.Subscription{UserID: "U1", EventID: id, Status: model.StatusPending}
	}

	blocks, err := Dashboard(context.Background(), lister, "U1", false, categories, time.Now())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(blocks) > HardBlockLimit {
		t.Errorf("dashboard emitted %d blocks, limit is %d", len(blocks), HardBlockLimit)
	}
	// Once the budget is spent the remaining categories are not even queried.
	if lister.calls == 0 || lister.calls > len(categories) {
		t.Errorf("unexpected list call count %d for %d categories", lister.calls, len(categories))
	}
}

func TestDashboardManyCategoriesStaysUnderBlockLimit(t *testing.T) {
	// With enough categories the per-category budget is zero and every
	// category would emit only chrome. The chrome must obey the same limit.
	categories := make([]string, 60)
	lister := &fakeLister{events: map[string][]model.Event{}}
	for i := range categories {
		categories[i] = fmt.Sprintf("Category %02d", i)
		lister.events[categories[i]] = makeEvents(categories[i], 3)
	}

	blocks, err := Dashboard(context.Background(), lister, "U1", false, categories, time.Now())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(blocks) > HardBlockLimit {
		t.Errorf("dashboard emitted %d blocks, limit is %d", len(blocks), HardBlockLimit)
	}
	if lister.calls >= len(categories) {
		t.Errorf("expected categories past the budget to be skipped, got %d list calls", lister.calls)
	}
}

func TestDashboardViewAllOnlyWhenTruncated(t *testing.T) {
	lister := &fakeLister{events: map[string][]model.Event{
		"SAT": makeEvents("SAT", 3),
		"ACT": makeEvents("ACT", 25),
	}}
	blocks, err := Dashboard(context.Background(), lister, "U1", false, []string{"SAT", "ACT"}, time.Now())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	var viewAlls []string
	for _, b := range blocks {
		ab, ok := b.(*slack.ActionBlock)
		if !ok {
			continue
		}
		for _, el := range ab.Elements.ElementSet {
			btn, ok := el.(*slack.ButtonBlockElement)
			if !ok || btn.ActionID != ActionNavViewCategory {
				continue
			}
			payload, err := model.ParseActionPayload(btn.Value)
			if err != nil {
				t.Fatalf("parsing view-all payload: %v", err)
			}
			viewAlls = append(viewAlls, payload.Category)
		}
	}
	if len(viewAlls) != 1 || viewAlls[0] != "ACT" {
		t.Errorf("expected one view-all for ACT, got %v", viewAlls)
	}
}

func TestDashboardOperatorControls(t *testing.T) {
	lister := &fakeLister{events: map[string][]model.Event{"SAT": makeEvents("SAT", 1)}}

	memberBlocks, err := Dashboard(context.Background(), lister, "U1", false, []string{"SAT"}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	operatorBlocks, err := Dashboard(context.Background(), lister, "U2", true, []string{"SAT"}, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	if countButtons(operatorBlocks, ActionOpenAddEventModal) != 1 {
		t.Error("operator view missing the add-event button")
	}
	if countButtons(memberBlocks, ActionOpenAddEventModal) != 0 {
		t.Error("member view should not carry admin controls")
	}
	if countButtons(memberBlocks, ActionToggleSubscription) != 1 {
		t.Error("member view missing the subscribe button")
	}
}

func countButtons(blocks []slack.Block, actionID string) int {
	n := 0
	for _, b := range blocks {
		switch blk := b.(type) {
		case *slack.ActionBlock:
			for _, el := range blk.Elements.ElementSet {
				if btn, ok := el.(*slack.ButtonBlockElement); ok && btn.ActionID == actionID {
					n++
				}
			}
		case *slack.SectionBlock:
			if blk.Accessory != nil && blk.Accessory.ButtonElement != nil &&
				blk.Accessory.ButtonElement.ActionID == actionID {
				n++
			}
		}
	}
	return n
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Subscription statuses
const (
	StatusPending    = "pending"
	StatusRegistered = "registered"
)

// Subscription links a Slack user to an event they want reminders for.
// (UserID, EventID) is unique: a user has at most one row per event.
type Subscription struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	EventID   int64     `json:"event_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// IsPending returns true if the subscriber has not yet confirmed their
// real-world registration for the event.
func (s *Subscription) IsPending() bool {
	return s.Status == StatusPending
}

// PendingReport summarizes confirmation status for a single event.
type PendingReport struct {
	EventID         int64    `json:"event_id"`
	Title           string   `json:"title"`
	PendingUserIDs  []string `json:"pending_user_ids"`
	RegisteredCount int      `json:"registered_count"`
}

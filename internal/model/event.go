// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including Event, Category, Subscription and admin structures.
package model

import "time"

// DateFormat is the wire and display format for event dates.
const DateFormat = "2006-01-02"

// Category is a dynamic event category (SAT, ACT, AP, ...).
// Categories are created by operators or seeded at startup; they are never
// deleted automatically.
type Category struct {
	Name string `json:"name"`
}

// Event is a tracked, time-bound event with a registration deadline.
type Event struct {
	ID                   int64     `json:"id"`
	Title                string    `json:"title"`
	Category             string    `json:"category"` // soft reference to Category.Name
	EventDate            time.Time `json:"event_date"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DateOnly truncates t to midnight UTC. All event dates and deadlines are
// stored normalized through this so that date equality works in SQL.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

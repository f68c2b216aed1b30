// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Admin is a dynamic allow-list entry granting operator privileges.
// The root admin comes from configuration, is never persisted here and
// cannot be removed.
type Admin struct {
	UserID string `json:"user_id"`
}

// Setting is a persisted key/value configuration entry.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SettingBriefingChannel holds the channel ID the operator briefing posts to.
const SettingBriefingChannel = "briefing_channel"

// WatchedStudent is an informational consultant-to-student roster entry.
// It carries no cascading effect on subscriptions.
type WatchedStudent struct {
	ConsultantID string `json:"consultant_id"`
	StudentID    string `json:"student_id"`
}

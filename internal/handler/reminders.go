// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// CycleRunner is the slice of the reminder runner this handler needs.
type CycleRunner interface {
	RunCycle(ctx context.Context, today time.Time) (int, error)
	RunBriefing(ctx context.Context, today time.Time) error
}

// ReminderHandler exposes the externally-triggered reminder cycle. The
// trigger (an uptime pinger or external cron service) authenticates with a
// bearer token.
type ReminderHandler struct {
	runner CycleRunner
	secret string
	logger *slog.Logger
}

// NewReminderHandler creates a new reminder trigger handler.
func NewReminderHandler(runner CycleRunner, secret string, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{
		runner: runner,
		secret: secret,
		logger: logger,
	}
}

// Run handles POST /api/run-reminders. Authentication happens before any
// domain logic; a failed cycle still reports what was sent so the caller
// knows partial delivery happened.
func (h *ReminderHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	today := time.Now().UTC()
	sent, err := h.runner.RunCycle(r.Context(), today)
	if err != nil {
		h.logger.Error("reminder cycle failed", "sent", sent, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":          "reminder cycle failed",
			"reminders_sent": sent,
		})
		return
	}

	if err := h.runner.RunBriefing(r.Context(), today); err != nil {
		h.logger.Error("briefing failed", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "success",
		"reminders_sent": sent,
	})
}

func (h *ReminderHandler) authorized(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/olegiv/examday-go/internal/slackx"
)

// dispatchTimeout bounds async work kicked off after the HTTP ack.
const dispatchTimeout = 30 * time.Second

// EventDispatcher is the slice of the dispatcher the Slack endpoints need.
type EventDispatcher interface {
	HandleHomeOpened(ctx context.Context, userID string) error
	HandleBlockAction(ctx context.Context, callback *slack.InteractionCallback) error
	HandleViewSubmission(ctx context.Context, callback *slack.InteractionCallback) error
	HandleSlashCommand(ctx context.Context, cmd slack.SlashCommand) (string, error)
}

// SlackHandler terminates the Slack webhook endpoints. Every request is
// signature-verified; events and actions are acked inside Slack's 3-second
// window and dispatched on a background goroutine.
type SlackHandler struct {
	dispatcher    EventDispatcher
	signingSecret string
	logger        *slog.Logger
}

// NewSlackHandler creates a new Slack webhook handler.
func NewSlackHandler(dispatcher EventDispatcher, signingSecret string, logger *slog.Logger) *SlackHandler {
	return &SlackHandler{
		dispatcher:    dispatcher,
		signingSecret: signingSecret,
		logger:        logger,
	}
}

// Events handles POST /slack/events: the URL verification handshake and the
// Events API callbacks.
func (h *SlackHandler) Events(w http.ResponseWriter, r *http.Request) {
	body, err := slackx.ReadVerifiedBody(r, h.signingSecret)
	if err != nil {
		h.logger.Warn("event signature rejected", "error", err)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		http.Error(w, "unparseable event", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			http.Error(w, "bad challenge", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(challenge.Challenge))

	case slackevents.CallbackEvent:
		// Ack first, work after.
		w.WriteHeader(http.StatusOK)
		h.dispatchCallback(event.InnerEvent)

	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (h *SlackHandler) dispatchCallback(inner slackevents.EventsAPIInnerEvent) {
	switch ev := inner.Data.(type) {
	case *slackevents.AppHomeOpenedEvent:
		userID := ev.User
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
			defer cancel()
			if err := h.dispatcher.HandleHomeOpened(ctx, userID); err != nil {
				h.logger.Error("home open failed", "user_id", userID, "error", err)
			}
		}()
	default:
		h.logger.Debug("ignoring event", "type", inner.Type)
	}
}

// Actions handles POST /slack/actions: block actions and view submissions.
func (h *SlackHandler) Actions(w http.ResponseWriter, r *http.Request) {
	body, err := slackx.ReadVerifiedBody(r, h.signingSecret)
	if err != nil {
		h.logger.Warn("action signature rejected", "error", err)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		http.Error(w, "unparseable form", http.StatusBadRequest)
		return
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(values.Get("payload")), &callback); err != nil {
		http.Error(w, "unparseable payload", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		var err error
		switch callback.Type {
		case slack.InteractionTypeBlockActions:
			err = h.dispatcher.HandleBlockAction(ctx, &callback)
		case slack.InteractionTypeViewSubmission:
			err = h.dispatcher.HandleViewSubmission(ctx, &callback)
		default:
			h.logger.Debug("ignoring interaction", "type", callback.Type)
		}
		if err != nil {
			h.logger.Error("interaction failed", "type", callback.Type, "user_id", callback.User.ID, "error", err)
		}
	}()
}

// Commands handles POST /slack/commands. Slash responses are small and
// fast, so they are answered synchronously as ephemeral JSON.
func (h *SlackHandler) Commands(w http.ResponseWriter, r *http.Request) {
	body, err := slackx.ReadVerifiedBody(r, h.signingSecret)
	if err != nil {
		h.logger.Warn("command signature rejected", "error", err)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	// The signature check consumed the body; restore it for the parser.
	r.Body = io.NopCloser(bytes.NewReader(body))
	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		http.Error(w, "unparseable command", http.StatusBadRequest)
		return
	}

	text, err := h.dispatcher.HandleSlashCommand(r.Context(), cmd)
	if err != nil {
		h.logger.Error("slash command failed", "command", cmd.Text, "user_id", cmd.UserID, "error", err)
		text = "Something went wrong. Try again in a minute."
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"response_type": "ephemeral",
		"text":          text,
	})
}

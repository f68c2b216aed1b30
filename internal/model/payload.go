// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
)

// Action kinds carried in interactive control payloads.
const (
	ActionSubscribe    = "subscribe"
	ActionUnsubscribe  = "unsubscribe"
	ActionConfirm      = "confirm"
	ActionEdit         = "edit"
	ActionDelete       = "delete"
	ActionToggleStatus = "toggle_status"
	ActionViewCategory = "view_category"
	ActionPage         = "page"
)

// ActionPayload is the value attached to interactive UI controls. It is a
// small tagged union serialized to JSON only at the transport boundary,
// replacing ad hoc "id|action" composite strings.
type ActionPayload struct {
	Kind     string `json:"kind"`
	EventID  int64  `json:"event_id,omitempty"`
	Category string `json:"category,omitempty"`
	Page     int    `json:"page,omitempty"`
}

// Encode serializes the payload for use as a block element value.
func (p ActionPayload) Encode() string {
	b, err := json.Marshal(p)
	if err != nil {
		// Marshal of this struct cannot fail; keep the signature simple.
		return "{}"
	}
	return string(b)
}

// ParseActionPayload decodes a block element value back into a payload.
func ParseActionPayload(s string) (ActionPayload, error) {
	var p ActionPayload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return ActionPayload{}, fmt.Errorf("parsing action payload: %w", err)
	}
	if p.Kind == "" {
		return ActionPayload{}, fmt.Errorf("action payload missing kind: %q", s)
	}
	return p, nil
}

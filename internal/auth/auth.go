// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth implements the operator authorization check: a fixed root
// admin from configuration plus a dynamic allow-list in the database.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/olegiv/examday-go/internal/model"
	"github.com/olegiv/examday-go/internal/store"
)

// Checker answers whether an identity has operator privileges. It is cheap
// enough to call on every inbound interaction.
type Checker struct {
	rootID  string
	queries *store.Queries
}

// NewChecker creates a Checker with the configured root admin ID.
func NewChecker(rootID string, db *sql.DB) *Checker {
	return &Checker{
		rootID:  rootID,
		queries: store.New(db),
	}
}

// RootID returns the fixed root admin identity.
func (c *Checker) RootID() string {
	return c.rootID
}

// IsOperator returns true iff userID is the root admin or on the allow-list.
// Lookup failures are logged and treated as not-an-operator.
func (c *Checker) IsOperator(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}
	if userID == c.rootID {
		return true
	}
	exists, err := c.queries.AdminExists(ctx, userID)
	if err != nil {
		slog.Error("admin lookup failed", "user_id", userID, "error", err)
		return false
	}
	return exists
}

// ErrRootImmutable is returned when a grant or revoke targets the root
// admin, whose privileges come from configuration alone.
var ErrRootImmutable = errors.New("root admin cannot be modified")

// Grant adds userID to the operator allow-list. Idempotent.
func (c *Checker) Grant(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("empty user ID")
	}
	if userID == c.rootID {
		return ErrRootImmutable
	}
	return c.queries.CreateAdmin(ctx, userID)
}

// Revoke removes userID from the operator allow-list.
func (c *Checker) Revoke(ctx context.Context, userID string) error {
	if userID == c.rootID {
		return ErrRootImmutable
	}
	return c.queries.DeleteAdmin(ctx, userID)
}

// Operators returns the allow-listed admin IDs, root excluded.
func (c *Checker) Operators(ctx context.Context) ([]model.Admin, error) {
	return c.queries.ListAdmins(ctx)
}

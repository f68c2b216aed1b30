// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/olegiv/examday-go/internal/model"
)

// CreateAdmin grants operator privileges to a user. Re-adding is a no-op.
func (q *Queries) CreateAdmin(ctx context.Context, userID string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO admins (user_id) VALUES (?) ON CONFLICT (user_id) DO NOTHING`, userID)
	return err
}

// DeleteAdmin revokes operator privileges from a user.
func (q *Queries) DeleteAdmin(ctx context.Context, userID string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM admins WHERE user_id = ?`, userID)
	return err
}

// AdminExists reports whether the user is on the admin allow-list.
func (q *Queries) AdminExists(ctx context.Context, userID string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM admins WHERE user_id = ?`, userID).Scan(&n)
	return n > 0, err
}

// ListAdmins returns the full admin allow-list.
func (q *Queries) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT user_id FROM admins ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []model.Admin
	for rows.Next() {
		var a model.Admin
		if err := rows.Scan(&a.UserID); err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

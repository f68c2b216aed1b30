// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/olegiv/examday-go/internal/model"
)

// CreateCategory inserts a category. Inserting an existing name is a no-op.
func (q *Queries) CreateCategory(ctx context.Context, name string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO categories (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name)
	return err
}

// ListCategories returns all categories in insertion order.
func (q *Queries) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CountCategories returns the number of categories.
func (q *Queries) CountCategories(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n)
	return n, err
}

// CategoryExists reports whether a category with the given name exists.
func (q *Queries) CategoryExists(ctx context.Context, name string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE name = ?`, name).Scan(&n)
	return n > 0, err
}

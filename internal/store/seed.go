// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// DefaultCategories are seeded when the categories table is empty.
var DefaultCategories = []string{"SAT", "ACT", "AP", "GCSE", "Extracurricular"}

// Seed creates initial data in the database.
func Seed(ctx context.Context, db *sql.DB, doSeed bool) error {
	if !doSeed {
		return nil
	}

	queries := New(db)

	count, err := queries.CountCategories(ctx)
	if err != nil {
		return fmt.Errorf("counting categories: %w", err)
	}
	if count > 0 {
		slog.Info("categories already present, skipping seed", "count", count)
		return nil
	}

	for _, name := range DefaultCategories {
		if err := queries.CreateCategory(ctx, name); err != nil {
			return fmt.Errorf("seeding category %q: %w", name, err)
		}
	}

	slog.Info("seeded default categories", "categories", DefaultCategories)
	return nil
}

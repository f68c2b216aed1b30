// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/olegiv/examday-go/internal/model"
)

// ImportParams configures an exam sheet import.
type ImportParams struct {
	// Category tags every imported event (e.g. "AP").
	Category string
	// Deadline is the registration deadline shared by the whole sheet.
	Deadline time.Time
}

// ImportExamCSV ingests an exam schedule CSV with the columns
// Exam Name, Window, Format, Location, Date, Status. Each row becomes one
// event; rows with unparseable dates are skipped with a log line. Returns
// the number of events inserted.
func ImportExamCSV(ctx context.Context, db *sql.DB, r io.Reader, params ImportParams) (int, error) {
	queries := New(db)

	if err := queries.CreateCategory(ctx, params.Category); err != nil {
		return 0, fmt.Errorf("ensuring category %q: %w", params.Category, err)
	}

	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("reading CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"Exam Name", "Window", "Location", "Date", "Status"} {
		if _, ok := col[required]; !ok {
			return 0, fmt.Errorf("CSV missing required column %q", required)
		}
	}

	now := time.Now()
	inserted := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return inserted, fmt.Errorf("reading CSV row: %w", err)
		}

		name := row[col["Exam Name"]]
		date, err := time.Parse(model.DateFormat, row[col["Date"]])
		if err != nil {
			slog.Warn("skipping row with bad date", "exam", name, "date", row[col["Date"]])
			continue
		}

		suffix := ""
		switch row[col["Status"]] {
		case "Full":
			suffix = " (FULL)"
		case "Limited seats":
			suffix = " (Low Seats)"
		}
		title := fmt.Sprintf("%s [%s, %s]%s", name, row[col["Window"]], row[col["Location"]], suffix)

		if _, err := queries.CreateEvent(ctx, CreateEventParams{
			Title:                title,
			Category:             params.Category,
			EventDate:            date,
			RegistrationDeadline: params.Deadline,
			CreatedAt:            now,
			UpdatedAt:            now,
		}); err != nil {
			return inserted, fmt.Errorf("inserting event %q: %w", title, err)
		}
		inserted++
	}

	return inserted, nil
}

package store

import (
	"context"

	"github.com/olegiv/examday-go/internal/model"
)

// GetSetting returns one setting by key. Missing keys surface as
// sql.ErrNoRows.
func (q *Queries) GetSetting(ctx context.Context, key string) (model.Setting, error) {
	var s model.Setting
	err := q.db.QueryRowContext(ctx,
		`SELECT key, value FROM settings WHERE key = ?`, key).Scan(&s.Key, &s.Value)
	return s, err
}

// UpsertSettingParams holds parameters for UpsertSetting.
type UpsertSettingParams struct {
	Key   string
	Value string
}

// UpsertSetting creates or replaces a setting.
func (q *Queries) UpsertSetting(ctx context.Context, arg UpsertSettingParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		arg.Key, arg.Value)
	return err
}

// CreateWatchedStudent adds a student to a consultant's roster. Duplicate
// pairs are a no-op.
func (q *Queries) CreateWatchedStudent(ctx context.Context, arg model.WatchedStudent) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO watched_students (consultant_id, student_id) VALUES (?, ?)
		ON CONFLICT (consultant_id, student_id) DO NOTHING`,
		arg.ConsultantID, arg.StudentID)
	return err
}

// DeleteWatchedStudent removes a student from a consultant's roster.
func (q *Queries) DeleteWatchedStudent(ctx context.Context, arg model.WatchedStudent) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM watched_students WHERE consultant_id = ? AND student_id = ?`,
		arg.ConsultantID, arg.StudentID)
	return err
}

// ListWatchedStudents returns the students a consultant watches.
func (q *Queries) ListWatchedStudents(ctx context.Context, consultantID string) ([]model.WatchedStudent, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT consultant_id, student_id FROM watched_students WHERE consultant_id = ? ORDER BY student_id`,
		consultantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var watched []model.WatchedStudent
	for rows.Next() {
		var w model.WatchedStudent
		if err := rows.Scan(&w.ConsultantID, &w.StudentID); err != nil {
			return nil, err
		}
		watched = append(watched, w)
	}
	return watched, rows.Err()
}

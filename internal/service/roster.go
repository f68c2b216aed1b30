package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/olegiv/examday-go/internal/model"
	"github.com/olegiv/examday-go/internal/store"
)

// RosterService maintains the informational consultant-to-student roster.
// Watching a student has no effect on that student's subscriptions.
type RosterService struct {
	queries *store.Queries
}

// NewRosterService creates a new RosterService.
func NewRosterService(db *sql.DB) *RosterService {
	return &RosterService{queries: store.New(db)}
}

// Watch adds a student to the consultant's roster; duplicates are a no-op.
func (s *RosterService) Watch(ctx context.Context, consultantID, studentID string) error {
	err := s.queries.CreateWatchedStudent(ctx, model.WatchedStudent{
		ConsultantID: consultantID,
		StudentID:    studentID,
	})
	if err != nil {
		return fmt.Errorf("watching %s for %s: %w", studentID, consultantID, err)
	}
	return nil
}

// Unwatch removes a student from the consultant's roster.
func (s *RosterService) Unwatch(ctx context.Context, consultantID, studentID string) error {
	err := s.queries.DeleteWatchedStudent(ctx, model.WatchedStudent{
		ConsultantID: consultantID,
		StudentID:    studentID,
	})
	if err != nil {
		return fmt.Errorf("unwatching %s for %s: %w", studentID, consultantID, err)
	}
	return nil
}

// Watching returns the IDs of the students the consultant watches.
func (s *RosterService) Watching(ctx context.Context, consultantID string) ([]string, error) {
	watched, err := s.queries.ListWatchedStudents(ctx, consultantID)
	if err != nil {
		return nil, fmt.Errorf("listing watched students: %w", err)
	}
	ids := make([]string, 0, len(watched))
	for _, w := range watched {
		ids = append(ids, w.StudentID)
	}
	return ids, nil
}

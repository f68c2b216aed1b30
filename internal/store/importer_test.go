package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Exam Name,Window,Format,Location,Date,Status
Biology,Standard,Hybrid Digital,"KAEC, Seoul",2026-05-04,Limited seats
Latin,Standard,Fully Digital,"KAEC, Seoul",2026-05-04,Open
Chemistry,Standard,Hybrid Digital,"KAEC, Seoul",not-a-date,Full
Calculus AB,Late,Hybrid Digital,"KAEC, Seoul",2026-05-21,Full
`

func TestImportExamCSV(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	ctx := context.Background()

	n, err := ImportExamCSV(ctx, db, strings.NewReader(sampleCSV), ImportParams{
		Category: "AP",
		Deadline: date("2026-03-10"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n, "bad-date row should be skipped")

	events, err := New(db).ListEventsByCategory(ctx, ListEventsByCategoryParams{Category: "AP"})
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "Biology [Standard, KAEC, Seoul] (Low Seats)", events[0].Title)
	assert.Equal(t, "Latin [Standard, KAEC, Seoul]", events[1].Title)
	assert.Equal(t, "Calculus AB [Late, KAEC, Seoul] (FULL)", events[2].Title)
	for _, e := range events {
		assert.True(t, e.RegistrationDeadline.Equal(date("2026-03-10")))
	}

	exists, err := New(db).CategoryExists(ctx, "AP")
	require.NoError(t, err)
	assert.True(t, exists, "import should ensure the category exists")
}

func TestImportExamCSVMissingColumn(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	_, err := ImportExamCSV(context.Background(), db, strings.NewReader("Name,Date\nBio,2026-05-04\n"), ImportParams{
		Category: "AP",
		Deadline: date("2026-03-10"),
	})
	require.Error(t, err)
}

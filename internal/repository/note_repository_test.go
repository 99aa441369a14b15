package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etutplan/etut-api/internal/models"
)

func noteRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "student_id", "author_id", "title", "content", "category", "created_at", "updated_at"})
	now := time.Now()
	for _, id := range ids {
		rows.AddRow(id, "s1", "u1", "title", "content", "General", now, now)
	}
	return rows
}

func TestNoteListFiltersAndCounts(t *testing.T) {
	db, mock, closeFn := newRepoMock(t)
	defer closeFn()
	repo := NewNoteRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, author_id, title, content, category, created_at, updated_at FROM study_notes WHERE 1=1 AND student_id = $1 AND author_id = $2 AND category = $3 ORDER BY updated_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("s1", "u1", "General").
		WillReturnRows(noteRows("note-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM study_notes WHERE 1=1 AND student_id = $1 AND author_id = $2 AND category = $3")).
		WithArgs("s1", "u1", "General").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	notes, total, err := repo.List(context.Background(), models.NoteFilter{StudentID: "s1", AuthorID: "u1", Category: "General"})
	require.NoError(t, err)
	assert.Len(t, notes, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteCreateAssignsIDAndTimestamps(t *testing.T) {
	db, mock, closeFn := newRepoMock(t)
	defer closeFn()
	repo := NewNoteRepository(db)

	mock.ExpectExec(`INSERT INTO study_notes`).WillReturnResult(sqlmock.NewResult(0, 1))

	note := &models.StudyNote{StudentID: "s1", AuthorID: "u1", Title: "title", Content: "content", Category: "General"}
	require.NoError(t, repo.Create(context.Background(), note))
	assert.NotEmpty(t, note.ID)
	assert.False(t, note.CreatedAt.IsZero())
	assert.Equal(t, note.CreatedAt, note.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteUpdateTouchesUpdatedAt(t *testing.T) {
	db, mock, closeFn := newRepoMock(t)
	defer closeFn()
	repo := NewNoteRepository(db)

	mock.ExpectExec(`UPDATE study_notes SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	created := time.Now().UTC().Add(-time.Hour)
	note := &models.StudyNote{ID: "note-1", Title: "new", Content: "new", Category: "General", CreatedAt: created, UpdatedAt: created}
	require.NoError(t, repo.Update(context.Background(), note))
	assert.True(t, note.UpdatedAt.After(created))
	assert.NoError(t, mock.ExpectationsWereMet())
}

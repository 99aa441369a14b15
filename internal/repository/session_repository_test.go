package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etutplan/etut-api/internal/models"
	appErrors "github.com/etutplan/etut-api/pkg/errors"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sessionRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "teacher_id", "student_id", "classroom_id", "slot_id", "session_date", "mode", "attendance_status", "notes", "created_at", "updated_at"})
	now := time.Now()
	for _, id := range ids {
		rows.AddRow(id, "t1", "s1", "c1", "slot-1", now, models.SessionModeIndividual, models.AttendancePending, "", now, now)
	}
	return rows
}

func TestSessionRepositoryTeacherBusy(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, teacher_id, student_id, classroom_id, slot_id, session_date, mode, attendance_status, notes, created_at, updated_at FROM study_sessions WHERE teacher_id = $1 AND session_date = $2 AND slot_id = $3")).
		WithArgs("t1", date, "slot-1").
		WillReturnRows(sessionRows("sess-1"))

	sessions, err := repo.TeacherBusy(context.Background(), db, "t1", date, "slot-1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryStudentBusyExcept(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM study_sessions WHERE student_id = $1 AND session_date = $2 AND slot_id = $3 AND id <> $4)")).
		WithArgs("s1", date, "slot-1", "sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	busy, err := repo.StudentBusyExcept(context.Background(), db, "s1", date, "slot-1", "sess-1")
	require.NoError(t, err)
	assert.False(t, busy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryInsertGeneratesID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec("INSERT INTO study_sessions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	session := &models.StudySession{
		TeacherID:        "t1",
		StudentID:        "s1",
		ClassroomID:      "c1",
		SlotID:           "slot-1",
		SessionDate:      time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		Mode:             models.SessionModeIndividual,
		AttendanceStatus: models.AttendancePending,
	}
	err := repo.Insert(context.Background(), db, session)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.False(t, session.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryWithinBookingRollsBackBusinessError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := repo.WithinBooking(context.Background(), func(q sqlx.ExtContext) error {
		return appErrors.ErrSlotTaken
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrSlotTaken))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryWithinBookingCommits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM study_sessions").
		WithArgs("sess-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.WithinBooking(context.Background(), func(q sqlx.ExtContext) error {
		_, execErr := q.ExecContext(context.Background(), `DELETE FROM study_sessions WHERE id = $1`, "sess-1")
		return execErr
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListFiltersAndCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery("SELECT id, teacher_id, .+ FROM study_sessions WHERE 1=1 AND teacher_id = \\$1 ORDER BY session_date ASC LIMIT 20 OFFSET 0").
		WithArgs("t1").
		WillReturnRows(sessionRows("sess-1", "sess-2"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM study_sessions WHERE 1=1 AND teacher_id = $1")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	sessions, total, err := repo.List(context.Background(), models.SessionFilter{TeacherID: "t1"})
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
	assert.Equal(t, 2, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryAttendanceSummary(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT student_id,").
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "total", "attended", "not_attended", "pending"}).
			AddRow("s1", 4, 2, 1, 1))

	summary, err := repo.AttendanceSummary(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, 4, summary[0].Total)
	require.NoError(t, mock.ExpectationsWereMet())
}

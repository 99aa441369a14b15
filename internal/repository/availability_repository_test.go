package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etutplan/etut-api/internal/models"
)

func TestAvailabilityRepositoryExists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM teacher_availabilities WHERE teacher_id = $1 AND weekday = $2 AND slot_id = $3)")).
		WithArgs("t1", 7, "slot-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	available, err := repo.IsAvailable(context.Background(), "t1", 7, "slot-1")
	require.NoError(t, err)
	assert.True(t, available)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryAddAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec("INSERT INTO teacher_availabilities").
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.TeacherAvailability{TeacherID: "t1", Weekday: 1, SlotID: "slot-1"}
	err := repo.Add(context.Background(), entry)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryAddDuplicateIsNoOp(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	// ON CONFLICT DO NOTHING reports zero affected rows, which is not an error.
	mock.ExpectExec("INSERT INTO teacher_availabilities").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Add(context.Background(), &models.TeacherAvailability{TeacherID: "t1", Weekday: 1, SlotID: "slot-1"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryReplaceAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teacher_availabilities WHERE teacher_id = $1")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO teacher_availabilities").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO teacher_availabilities").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	entries := []models.AvailabilityEntry{
		{Weekday: 1, SlotID: "slot-1"},
		{Weekday: 3, SlotID: "slot-2"},
	}
	err := repo.ReplaceAll(context.Background(), "t1", entries)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryReplaceAllRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teacher_availabilities WHERE teacher_id = $1")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO teacher_availabilities").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.ReplaceAll(context.Background(), "t1", []models.AvailabilityEntry{{Weekday: 2, SlotID: "slot-1"}})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryListByTeacher(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "weekday", "slot_id", "slot_name", "start_time", "end_time"}).
		AddRow("a1", "t1", 1, "slot-1", "1st Period", "09:00", "09:45").
		AddRow("a2", "t1", 1, "slot-2", "2nd Period", "10:00", "10:45")
	mock.ExpectQuery("SELECT a.id, a.teacher_id, .+ FROM teacher_availabilities a").
		WithArgs("t1").
		WillReturnRows(rows)

	entries, err := repo.ListByTeacher(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "1st Period", entries[0].SlotName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositorySlotReferenced(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM teacher_availabilities WHERE slot_id = $1)")).
		WithArgs("slot-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	referenced, err := repo.SlotReferenced(context.Background(), "slot-1")
	require.NoError(t, err)
	assert.False(t, referenced)
	require.NoError(t, mock.ExpectationsWereMet())
}

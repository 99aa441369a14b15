package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/etutplan/etut-api/internal/models"
	appErrors "github.com/etutplan/etut-api/pkg/errors"
)

const sessionColumns = "id, teacher_id, student_id, classroom_id, slot_id, session_date, mode, attendance_status, notes, created_at, updated_at"

// SessionRepository is the booking ledger: committed study sessions plus the
// occupancy probes the engine uses along the teacher, student and classroom
// axes. Probes accept an sqlx.ExtContext so validation and commit can share
// one transaction.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// WithinBooking runs fn inside one serializable transaction so the engine's
// conflict probes and the subsequent commit observe a single ledger snapshot.
// Two concurrent bookings for the same keys cannot both pass validation: one
// of them aborts with a serialization failure, surfaced as
// ErrStorageUnavailable for the caller to retry. A business error returned by
// fn rolls the transaction back untouched.
func (r *SessionRepository) WithinBooking(ctx context.Context, fn func(q sqlx.ExtContext) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to open booking transaction")
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return translateTxError(err)
	}
	return nil
}

// translateTxError distinguishes retryable transaction aborts from genuine
// storage faults. Both are transient to the caller, never business errors.
func translateTxError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// serialization_failure / deadlock_detected
		if pqErr.Code == "40001" || pqErr.Code == "40P01" {
			return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "booking transaction aborted, retry the request")
		}
	}
	return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to commit booking transaction")
}

// TeacherBusy returns every session occupying the teacher's slot on the date.
// The engine decides what occupancy means under the active mode policy.
func (r *SessionRepository) TeacherBusy(ctx context.Context, q sqlx.ExtContext, teacherID string, date time.Time, slotID string) ([]models.StudySession, error) {
	query := fmt.Sprintf("SELECT %s FROM study_sessions WHERE teacher_id = $1 AND session_date = $2 AND slot_id = $3", sessionColumns)
	var sessions []models.StudySession
	if err := sqlx.SelectContext(ctx, q, &sessions, query, teacherID, date, slotID); err != nil {
		return nil, fmt.Errorf("probe teacher occupancy: %w", err)
	}
	return sessions, nil
}

// StudentBusy reports whether the student has any session at the date+slot,
// regardless of teacher.
func (r *SessionRepository) StudentBusy(ctx context.Context, q sqlx.ExtContext, studentID string, date time.Time, slotID string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, q, &exists, "SELECT EXISTS (SELECT 1 FROM study_sessions WHERE student_id = $1 AND session_date = $2 AND slot_id = $3)", studentID, date, slotID)
	if err != nil {
		return false, fmt.Errorf("probe student occupancy: %w", err)
	}
	return exists, nil
}

// StudentBusyExcept is StudentBusy ignoring one session id. Used by the
// reschedule path so a session does not conflict with itself.
func (r *SessionRepository) StudentBusyExcept(ctx context.Context, q sqlx.ExtContext, studentID string, date time.Time, slotID, exceptID string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, q, &exists, "SELECT EXISTS (SELECT 1 FROM study_sessions WHERE student_id = $1 AND session_date = $2 AND slot_id = $3 AND id <> $4)", studentID, date, slotID, exceptID)
	if err != nil {
		return false, fmt.Errorf("probe student occupancy: %w", err)
	}
	return exists, nil
}

// ClassroomBusy reports whether the classroom hosts any session at the
// date+slot. Advisory in the current booking policy.
func (r *SessionRepository) ClassroomBusy(ctx context.Context, q sqlx.ExtContext, classroomID string, date time.Time, slotID string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, q, &exists, "SELECT EXISTS (SELECT 1 FROM study_sessions WHERE classroom_id = $1 AND session_date = $2 AND slot_id = $3)", classroomID, date, slotID)
	if err != nil {
		return false, fmt.Errorf("probe classroom occupancy: %w", err)
	}
	return exists, nil
}

// Exists reports whether an identical teacher+student+date+slot row exists.
func (r *SessionRepository) Exists(ctx context.Context, q sqlx.ExtContext, teacherID, studentID string, date time.Time, slotID string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, q, &exists, "SELECT EXISTS (SELECT 1 FROM study_sessions WHERE teacher_id = $1 AND student_id = $2 AND session_date = $3 AND slot_id = $4)", teacherID, studentID, date, slotID)
	if err != nil {
		return false, fmt.Errorf("probe duplicate session: %w", err)
	}
	return exists, nil
}

// Insert stores a new session row using the provided executor.
func (r *SessionRepository) Insert(ctx context.Context, q sqlx.ExtContext, session *models.StudySession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	const query = `INSERT INTO study_sessions (id, teacher_id, student_id, classroom_id, slot_id, session_date, mode, attendance_status, notes, created_at, updated_at)
		VALUES (:id, :teacher_id, :student_id, :classroom_id, :slot_id, :session_date, :mode, :attendance_status, :notes, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, q, query, session); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// FindByID loads a session by id from the pool.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.StudySession, error) {
	return r.FindByIDTx(ctx, r.db, id)
}

// FindByIDTx loads a session by id using the provided executor.
func (r *SessionRepository) FindByIDTx(ctx context.Context, q sqlx.ExtContext, id string) (*models.StudySession, error) {
	query := fmt.Sprintf("SELECT %s FROM study_sessions WHERE id = $1", sessionColumns)
	var session models.StudySession
	if err := sqlx.GetContext(ctx, q, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateSchedule moves a session to a new date and slot. Identity and the
// other fields stay untouched.
func (r *SessionRepository) UpdateSchedule(ctx context.Context, q sqlx.ExtContext, id string, date time.Time, slotID string) error {
	if _, err := q.ExecContext(ctx, `UPDATE study_sessions SET session_date = $2, slot_id = $3, updated_at = $4 WHERE id = $1`, id, date, slotID, time.Now().UTC()); err != nil {
		return fmt.Errorf("move session: %w", err)
	}
	return nil
}

// UpdateAttendance sets the attendance label on a session.
func (r *SessionRepository) UpdateAttendance(ctx context.Context, id string, status models.AttendanceStatus) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE study_sessions SET attendance_status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	return nil
}

// Delete removes a session by id. Cascades are the caller's responsibility.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM study_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// List returns sessions with optional filtering and pagination.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.StudySession, int, error) {
	base := "FROM study_sessions WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.ClassroomID != "" {
		conditions = append(conditions, fmt.Sprintf("classroom_id = $%d", len(args)+1))
		args = append(args, filter.ClassroomID)
	}
	if filter.SlotID != "" {
		conditions = append(conditions, fmt.Sprintf("slot_id = $%d", len(args)+1))
		args = append(args, filter.SlotID)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("session_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("session_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("attendance_status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Mode != "" {
		conditions = append(conditions, fmt.Sprintf("mode = $%d", len(args)+1))
		args = append(args, filter.Mode)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"session_date": true,
		"created_at":   true,
		"updated_at":   true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "session_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", sessionColumns, base, sortBy, order, size, offset)
	var sessions []models.StudySession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	return sessions, total, nil
}

// ListRange returns a teacher's sessions between two dates, inclusive, for
// calendar and report views.
func (r *SessionRepository) ListRange(ctx context.Context, teacherID string, from, to time.Time) ([]models.StudySession, error) {
	query := fmt.Sprintf("SELECT %s FROM study_sessions WHERE teacher_id = $1 AND session_date BETWEEN $2 AND $3 ORDER BY session_date ASC", sessionColumns)
	var sessions []models.StudySession
	if err := r.db.SelectContext(ctx, &sessions, query, teacherID, from, to); err != nil {
		return nil, fmt.Errorf("list sessions in range: %w", err)
	}
	return sessions, nil
}

// ListByDateRange returns all sessions between two dates for reporting.
func (r *SessionRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.StudySession, error) {
	query := fmt.Sprintf("SELECT %s FROM study_sessions WHERE session_date BETWEEN $1 AND $2 ORDER BY session_date ASC, slot_id ASC", sessionColumns)
	var sessions []models.StudySession
	if err := r.db.SelectContext(ctx, &sessions, query, from, to); err != nil {
		return nil, fmt.Errorf("list sessions by date range: %w", err)
	}
	return sessions, nil
}

// AttendanceSummary aggregates per-student attendance counts over a range.
func (r *SessionRepository) AttendanceSummary(ctx context.Context, from, to time.Time) ([]models.AttendanceSummary, error) {
	const query = `SELECT student_id,
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE attendance_status = 'ATTENDED') AS attended,
		COUNT(*) FILTER (WHERE attendance_status = 'NOT_ATTENDED') AS not_attended,
		COUNT(*) FILTER (WHERE attendance_status = 'PENDING') AS pending
		FROM study_sessions WHERE session_date BETWEEN $1 AND $2 GROUP BY student_id ORDER BY student_id`
	var summaries []models.AttendanceSummary
	if err := r.db.SelectContext(ctx, &summaries, query, from, to); err != nil {
		return nil, fmt.Errorf("attendance summary: %w", err)
	}
	return summaries, nil
}

// SlotReferenced reports whether any session references the slot. Used to
// keep referenced catalog slots immutable.
func (r *SessionRepository) SlotReferenced(ctx context.Context, slotID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM study_sessions WHERE slot_id = $1)", slotID); err != nil {
		return false, fmt.Errorf("probe slot references: %w", err)
	}
	return exists, nil
}

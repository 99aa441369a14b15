package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/etutplan/etut-api/internal/models"
)

// AvailabilityRepository persists the per-teacher weekly availability
// templates. Entries are a sparse set keyed by (teacher, weekday, slot).
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs the repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// Exists reports whether the teacher is available for the weekday+slot. It
// accepts an executor so the booking engine can read the template inside its
// own transaction.
func (r *AvailabilityRepository) Exists(ctx context.Context, q sqlx.ExtContext, teacherID string, weekday int, slotID string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, q, &exists, "SELECT EXISTS (SELECT 1 FROM teacher_availabilities WHERE teacher_id = $1 AND weekday = $2 AND slot_id = $3)", teacherID, weekday, slotID)
	if err != nil {
		return false, fmt.Errorf("probe availability: %w", err)
	}
	return exists, nil
}

// IsAvailable is the pool-backed convenience form of Exists.
func (r *AvailabilityRepository) IsAvailable(ctx context.Context, teacherID string, weekday int, slotID string) (bool, error) {
	return r.Exists(ctx, r.db, teacherID, weekday, slotID)
}

// Add inserts an availability entry. Re-adding an existing triple is a no-op.
func (r *AvailabilityRepository) Add(ctx context.Context, entry *models.TeacherAvailability) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO teacher_availabilities (id, teacher_id, weekday, slot_id, created_at)
		VALUES (:id, :teacher_id, :weekday, :slot_id, :created_at)
		ON CONFLICT (teacher_id, weekday, slot_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("add availability: %w", err)
	}
	return nil
}

// Remove deletes an availability entry. Removing an absent triple is a no-op.
func (r *AvailabilityRepository) Remove(ctx context.Context, teacherID string, weekday int, slotID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM teacher_availabilities WHERE teacher_id = $1 AND weekday = $2 AND slot_id = $3`, teacherID, weekday, slotID); err != nil {
		return fmt.Errorf("remove availability: %w", err)
	}
	return nil
}

// ListByTeacher returns a teacher's full weekly template joined with slot
// details, ordered by weekday then slot order.
func (r *AvailabilityRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.AvailabilityDetail, error) {
	const query = `SELECT a.id, a.teacher_id, a.weekday, a.slot_id, a.created_at,
		t.name AS slot_name, t.start_time, t.end_time
		FROM teacher_availabilities a
		JOIN time_slots t ON t.id = a.slot_id
		WHERE a.teacher_id = $1
		ORDER BY a.weekday ASC, t.order_index ASC`
	var entries []models.AvailabilityDetail
	if err := r.db.SelectContext(ctx, &entries, query, teacherID); err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return entries, nil
}

// ReplaceAll atomically swaps a teacher's whole weekly template. On failure
// the transaction rolls back and the prior template stays visible.
func (r *AvailabilityRepository) ReplaceAll(ctx context.Context, teacherID string, entries []models.AvailabilityEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace availability: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM teacher_availabilities WHERE teacher_id = $1`, teacherID); err != nil {
		return fmt.Errorf("clear availability template: %w", err)
	}

	now := time.Now().UTC()
	for _, entry := range entries {
		row := models.TeacherAvailability{
			ID:        uuid.NewString(),
			TeacherID: teacherID,
			Weekday:   entry.Weekday,
			SlotID:    entry.SlotID,
			CreatedAt: now,
		}
		if _, err = sqlx.NamedExecContext(ctx, tx, `INSERT INTO teacher_availabilities (id, teacher_id, weekday, slot_id, created_at)
			VALUES (:id, :teacher_id, :weekday, :slot_id, :created_at)
			ON CONFLICT (teacher_id, weekday, slot_id) DO NOTHING`, &row); err != nil {
			return fmt.Errorf("repopulate availability template: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace availability: %w", err)
	}
	return nil
}

// SlotReferenced reports whether any availability entry references the slot.
func (r *AvailabilityRepository) SlotReferenced(ctx context.Context, slotID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM teacher_availabilities WHERE slot_id = $1)", slotID); err != nil {
		return false, fmt.Errorf("probe slot references: %w", err)
	}
	return exists, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/etutplan/etut-api/internal/models"
	appErrors "github.com/etutplan/etut-api/pkg/errors"
	"github.com/etutplan/etut-api/pkg/weekday"
)

type bookingLedger interface {
	WithinBooking(ctx context.Context, fn func(q sqlx.ExtContext) error) error
	TeacherBusy(ctx context.Context, q sqlx.ExtContext, teacherID string, date time.Time, slotID string) ([]models.StudySession, error)
	StudentBusy(ctx context.Context, q sqlx.ExtContext, studentID string, date time.Time, slotID string) (bool, error)
	StudentBusyExcept(ctx context.Context, q sqlx.ExtContext, studentID string, date time.Time, slotID, exceptID string) (bool, error)
	ClassroomBusy(ctx context.Context, q sqlx.ExtContext, classroomID string, date time.Time, slotID string) (bool, error)
	Exists(ctx context.Context, q sqlx.ExtContext, teacherID, studentID string, date time.Time, slotID string) (bool, error)
	Insert(ctx context.Context, q sqlx.ExtContext, session *models.StudySession) error
	FindByID(ctx context.Context, id string) (*models.StudySession, error)
	UpdateSchedule(ctx context.Context, q sqlx.ExtContext, id string, date time.Time, slotID string) error
	UpdateAttendance(ctx context.Context, id string, status models.AttendanceStatus) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.SessionFilter) ([]models.StudySession, int, error)
	ListRange(ctx context.Context, teacherID string, from, to time.Time) ([]models.StudySession, error)
}

type availabilityProbe interface {
	Exists(ctx context.Context, q sqlx.ExtContext, teacherID string, weekday int, slotID string) (bool, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.AvailabilityDetail, error)
}

type slotCatalog interface {
	FindByID(ctx context.Context, id string) (*models.TimeSlot, error)
	FindByIDTx(ctx context.Context, q sqlx.ExtContext, id string) (*models.TimeSlot, error)
	List(ctx context.Context) ([]models.TimeSlot, error)
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type classroomReader interface {
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
}

// BookSingleRequest describes payload for booking one session.
type BookSingleRequest struct {
	TeacherID   string `json:"teacher_id" validate:"required"`
	StudentID   string `json:"student_id" validate:"required"`
	ClassroomID string `json:"classroom_id" validate:"required"`
	SlotID      string `json:"slot_id" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Notes       string `json:"notes" validate:"max=500"`
}

// BookSingleResult carries the committed session plus advisory findings.
type BookSingleResult struct {
	Session *models.StudySession `json:"session"`
	// ClassroomBusy flags a classroom double-booking at commit time. It is
	// advisory in the current policy, not a rejection.
	ClassroomBusy bool `json:"classroom_busy"`
}

// BookBulkRequest describes payload for bulk multi-student enrollment.
type BookBulkRequest struct {
	TeacherID   string   `json:"teacher_id" validate:"required"`
	StudentIDs  []string `json:"student_ids" validate:"required,min=1"`
	ClassroomID string   `json:"classroom_id" validate:"required"`
	SlotID      string   `json:"slot_id" validate:"required"`
	Date        string   `json:"date" validate:"required"`
	Mode        string   `json:"mode" validate:"required"`
	Notes       string   `json:"notes" validate:"max=500"`
}

// MoveSessionRequest describes a reschedule target.
type MoveSessionRequest struct {
	NewDate   string `json:"new_date" validate:"required"`
	NewSlotID string `json:"new_slot_id" validate:"required"`
}

// UpdateAttendanceRequest sets the attendance label on a session.
type UpdateAttendanceRequest struct {
	Status string `json:"status" validate:"required"`
}

// TeacherCalendar combines the pieces a week view needs.
type TeacherCalendar struct {
	Slots        []models.TimeSlot           `json:"slots"`
	Availability []models.AvailabilityDetail `json:"availability"`
	Sessions     []models.StudySession       `json:"sessions"`
}

// BookingService is the conflict-resolution engine. It expands weekly
// availability against concrete dates, probes the ledger along the teacher,
// student and classroom axes under the active mode policy, and commits or
// rejects with a typed reason. Every check-then-commit sequence runs in one
// ledger transaction.
type BookingService struct {
	ledger       bookingLedger
	availability availabilityProbe
	slots        slotCatalog
	teachers     teacherReader
	students     studentReader
	classrooms   classroomReader
	cache        *CacheService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewBookingService instantiates BookingService. The cache may be nil.
func NewBookingService(ledger bookingLedger, availability availabilityProbe, slots slotCatalog, teachers teacherReader, students studentReader, classrooms classroomReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		ledger:       ledger,
		availability: availability,
		slots:        slots,
		teachers:     teachers,
		classrooms:   classrooms,
		students:     students,
		cache:        cache,
		validator:    validate,
		logger:       logger,
	}
}

// invalidateReports drops cached report summaries after a ledger mutation so
// attendance counts never serve stale data inside the cache TTL.
func (s *BookingService) invalidateReports(ctx context.Context) {
	s.cache.Invalidate(ctx, "reports:attendance:*")
}

// BookSingle validates and commits one Individual session. The single-booking
// entry point never shares a teacher's slot: any session at the teacher
// triple rejects with SlotTaken.
func (s *BookingService) BookSingle(ctx context.Context, req BookSingleRequest) (*BookSingleResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req.TeacherID, req.ClassroomID, req.SlotID); err != nil {
		return nil, err
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		return nil, notFoundOr(err, "student not found")
	}

	day := weekday.Of(date)
	session := &models.StudySession{
		TeacherID:        req.TeacherID,
		StudentID:        req.StudentID,
		ClassroomID:      req.ClassroomID,
		SlotID:           req.SlotID,
		SessionDate:      date,
		Mode:             models.SessionModeIndividual,
		AttendanceStatus: models.AttendancePending,
		Notes:            req.Notes,
	}
	result := &BookSingleResult{}

	err = s.ledger.WithinBooking(ctx, func(q sqlx.ExtContext) error {
		available, err := s.availability.Exists(ctx, q, req.TeacherID, day, req.SlotID)
		if err != nil {
			return storageErr(err, "failed to check availability")
		}
		if !available {
			return appErrors.ErrTeacherUnavailable
		}

		studentBusy, err := s.ledger.StudentBusy(ctx, q, req.StudentID, date, req.SlotID)
		if err != nil {
			return storageErr(err, "failed to probe student occupancy")
		}
		if studentBusy {
			return appErrors.ErrStudentConflict
		}

		existing, err := s.ledger.TeacherBusy(ctx, q, req.TeacherID, date, req.SlotID)
		if err != nil {
			return storageErr(err, "failed to probe teacher occupancy")
		}
		if len(existing) > 0 {
			return appErrors.ErrSlotTaken
		}

		classroomBusy, err := s.ledger.ClassroomBusy(ctx, q, req.ClassroomID, date, req.SlotID)
		if err != nil {
			return storageErr(err, "failed to probe classroom occupancy")
		}
		result.ClassroomBusy = classroomBusy

		return s.ledger.Insert(ctx, q, session)
	})
	if err != nil {
		return nil, err
	}

	if result.ClassroomBusy {
		s.logger.Warn("classroom double-booked",
			zap.String("classroom_id", req.ClassroomID),
			zap.String("slot_id", req.SlotID),
			zap.String("date", req.Date))
	}
	s.invalidateReports(ctx)
	result.Session = session
	return result, nil
}

// BookBulk enrolls several students into one teacher's slot on one date.
// Batch-level preconditions reject the whole request; per-student conflicts
// in group mode are collected as skips, and every commit of the call shares
// one ledger transaction.
func (s *BookingService) BookBulk(ctx context.Context, req BookBulkRequest) (*models.BulkBookingResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk booking payload")
	}
	mode := models.SessionMode(req.Mode)
	if !models.ValidSessionMode(mode) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown session mode")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req.TeacherID, req.ClassroomID, req.SlotID); err != nil {
		return nil, err
	}

	studentIDs := dedupe(req.StudentIDs)
	if mode == models.SessionModeIndividual && len(studentIDs) != 1 {
		return nil, appErrors.ErrInvalidModeCardinality
	}

	day := weekday.Of(date)
	result := &models.BulkBookingResult{
		Committed: []models.StudySession{},
		Skipped:   []models.SkippedStudent{},
	}

	err = s.ledger.WithinBooking(ctx, func(q sqlx.ExtContext) error {
		available, err := s.availability.Exists(ctx, q, req.TeacherID, day, req.SlotID)
		if err != nil {
			return storageErr(err, "failed to check availability")
		}
		if !available {
			return appErrors.ErrTeacherUnavailable
		}

		existing, err := s.ledger.TeacherBusy(ctx, q, req.TeacherID, date, req.SlotID)
		if err != nil {
			return storageErr(err, "failed to probe teacher occupancy")
		}
		if mode == models.SessionModeIndividual {
			if len(existing) > 0 {
				return appErrors.ErrSlotTaken
			}
			busy, err := s.ledger.StudentBusy(ctx, q, studentIDs[0], date, req.SlotID)
			if err != nil {
				return storageErr(err, "failed to probe student occupancy")
			}
			if busy {
				return appErrors.ErrStudentConflict
			}
		} else {
			// An Individual session holds its slot exclusively. Group rows may
			// share the triple with each other, never with an Individual one.
			for _, held := range existing {
				if held.Mode == models.SessionModeIndividual {
					return appErrors.ErrSlotTaken
				}
			}
		}

		for _, studentID := range studentIDs {
			if _, err := s.students.FindByID(ctx, studentID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					result.Skipped = append(result.Skipped, models.SkippedStudent{StudentID: studentID, Reason: appErrors.ErrNotFound.Code})
					continue
				}
				return storageErr(err, "failed to load student")
			}

			busy, err := s.ledger.StudentBusy(ctx, q, studentID, date, req.SlotID)
			if err != nil {
				return storageErr(err, "failed to probe student occupancy")
			}
			if busy {
				result.Skipped = append(result.Skipped, models.SkippedStudent{StudentID: studentID, Reason: appErrors.ErrStudentConflict.Code})
				continue
			}

			duplicate, err := s.ledger.Exists(ctx, q, req.TeacherID, studentID, date, req.SlotID)
			if err != nil {
				return storageErr(err, "failed to probe duplicate session")
			}
			if duplicate {
				result.Skipped = append(result.Skipped, models.SkippedStudent{StudentID: studentID, Reason: appErrors.ErrDuplicateBooking.Code})
				continue
			}

			session := models.StudySession{
				TeacherID:        req.TeacherID,
				StudentID:        studentID,
				ClassroomID:      req.ClassroomID,
				SlotID:           req.SlotID,
				SessionDate:      date,
				Mode:             mode,
				AttendanceStatus: models.AttendancePending,
				Notes:            req.Notes,
			}
			if err := s.ledger.Insert(ctx, q, &session); err != nil {
				return storageErr(err, "failed to insert session")
			}
			result.Committed = append(result.Committed, session)

			if mode == models.SessionModeIndividual {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.Committed) > 0 {
		s.invalidateReports(ctx)
	}
	s.logger.Info("bulk booking completed",
		zap.String("teacher_id", req.TeacherID),
		zap.String("mode", string(mode)),
		zap.Int("committed", len(result.Committed)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// Move revalidates and applies a reschedule. Identity and resource bindings
// never change; only date, slot and updated_at do.
func (s *BookingService) Move(ctx context.Context, sessionID string, req MoveSessionRequest) (*models.StudySession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}
	newDate, err := parseDate(req.NewDate)
	if err != nil {
		return nil, err
	}

	session, err := s.ledger.FindByID(ctx, sessionID)
	if err != nil {
		return nil, notFoundOr(err, "session not found")
	}

	day := weekday.Of(newDate)
	err = s.ledger.WithinBooking(ctx, func(q sqlx.ExtContext) error {
		available, err := s.availability.Exists(ctx, q, session.TeacherID, day, req.NewSlotID)
		if err != nil {
			return storageErr(err, "failed to check availability")
		}
		if !available {
			return appErrors.ErrTeacherUnavailable
		}

		existing, err := s.ledger.TeacherBusy(ctx, q, session.TeacherID, newDate, req.NewSlotID)
		if err != nil {
			return storageErr(err, "failed to probe teacher occupancy")
		}
		for _, other := range existing {
			if other.ID != session.ID {
				return appErrors.ErrTeacherConflict
			}
		}

		studentBusy, err := s.ledger.StudentBusyExcept(ctx, q, session.StudentID, newDate, req.NewSlotID, session.ID)
		if err != nil {
			return storageErr(err, "failed to probe student occupancy")
		}
		if studentBusy {
			return appErrors.ErrStudentConflict
		}

		slot, err := s.slots.FindByIDTx(ctx, q, req.NewSlotID)
		if err != nil {
			return notFoundOr(err, "time slot not found")
		}
		if slot.Kind != models.SlotKindLesson {
			return appErrors.ErrInvalidSlotKind
		}

		return s.ledger.UpdateSchedule(ctx, q, session.ID, newDate, req.NewSlotID)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateReports(ctx)
	session.SessionDate = newDate
	session.SlotID = req.NewSlotID
	session.UpdatedAt = time.Now().UTC()
	return session, nil
}

// UpdateAttendance sets the attendance label. The label is freely mutable;
// there is no transition restriction.
func (s *BookingService) UpdateAttendance(ctx context.Context, sessionID string, req UpdateAttendanceRequest) (*models.StudySession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	status := models.AttendanceStatus(req.Status)
	if !models.ValidAttendanceStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
	}

	session, err := s.ledger.FindByID(ctx, sessionID)
	if err != nil {
		return nil, notFoundOr(err, "session not found")
	}

	if err := s.ledger.UpdateAttendance(ctx, sessionID, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
	}
	s.invalidateReports(ctx)
	session.AttendanceStatus = status
	session.UpdatedAt = time.Now().UTC()
	return session, nil
}

// Delete removes a session. Cascades are the caller's responsibility.
func (s *BookingService) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.ledger.FindByID(ctx, sessionID); err != nil {
		return notFoundOr(err, "session not found")
	}
	if err := s.ledger.Delete(ctx, sessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	s.invalidateReports(ctx)
	return nil
}

// List returns sessions with pagination metadata.
func (s *BookingService) List(ctx context.Context, filter models.SessionFilter) ([]models.StudySession, *models.Pagination, error) {
	sessions, total, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, paginationOf(filter.Page, filter.PageSize, total), nil
}

// TeacherCalendar assembles the slot catalog, the weekly template and the
// committed sessions of one teacher for a date range.
func (s *BookingService) TeacherCalendar(ctx context.Context, teacherID string, from, to time.Time) (*TeacherCalendar, error) {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		return nil, notFoundOr(err, "teacher not found")
	}
	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time catalog")
	}
	availability, err := s.availability.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	sessions, err := s.ledger.ListRange(ctx, teacherID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	return &TeacherCalendar{Slots: slots, Availability: availability, Sessions: sessions}, nil
}

func (s *BookingService) checkReferences(ctx context.Context, teacherID, classroomID, slotID string) error {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		return notFoundOr(err, "teacher not found")
	}
	if _, err := s.classrooms.FindByID(ctx, classroomID); err != nil {
		return notFoundOr(err, "classroom not found")
	}
	if _, err := s.slots.FindByID(ctx, slotID); err != nil {
		return notFoundOr(err, "time slot not found")
	}
	return nil
}

// parseDate parses a calendar date and truncates it to midnight UTC so every
// ledger key compares date-only values.
func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be formatted YYYY-MM-DD")
	}
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC), nil
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, message)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func storageErr(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, message)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

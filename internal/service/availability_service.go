package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/etutplan/etut-api/internal/models"
	appErrors "github.com/etutplan/etut-api/pkg/errors"
	"github.com/etutplan/etut-api/pkg/weekday"
)

type availabilityStore interface {
	IsAvailable(ctx context.Context, teacherID string, weekday int, slotID string) (bool, error)
	Add(ctx context.Context, entry *models.TeacherAvailability) error
	Remove(ctx context.Context, teacherID string, weekday int, slotID string) error
	ListByTeacher(ctx context.Context, teacherID string) ([]models.AvailabilityDetail, error)
	ReplaceAll(ctx context.Context, teacherID string, entries []models.AvailabilityEntry) error
}

// AvailabilityEntryRequest adds or removes one weekly template entry.
type AvailabilityEntryRequest struct {
	Weekday int    `json:"weekday" validate:"required,min=1,max=7"`
	SlotID  string `json:"slot_id" validate:"required"`
}

// ReplaceAvailabilityRequest swaps a teacher's whole weekly template.
type ReplaceAvailabilityRequest struct {
	Entries []models.AvailabilityEntry `json:"entries" validate:"required,dive"`
}

// WeeklyTemplate is the template grouped by weekday for presentation.
type WeeklyTemplate struct {
	TeacherID string                              `json:"teacher_id"`
	Days      map[string][]models.AvailabilityDetail `json:"days"`
}

// AvailabilityService manages the per-teacher weekly templates.
type AvailabilityService struct {
	store     availabilityStore
	teachers  teacherReader
	slots     slotCatalog
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService instantiates AvailabilityService.
func NewAvailabilityService(store availabilityStore, teachers teacherReader, slots slotCatalog, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{store: store, teachers: teachers, slots: slots, validator: validate, logger: logger}
}

// Add declares a teacher available for one weekday+slot. Re-adding an
// existing triple succeeds without duplicating it.
func (s *AvailabilityService) Add(ctx context.Context, teacherID string, req AvailabilityEntryRequest) (*models.TeacherAvailability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability entry")
	}
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		return nil, notFoundOr(err, "teacher not found")
	}
	if _, err := s.slots.FindByID(ctx, req.SlotID); err != nil {
		return nil, notFoundOr(err, "time slot not found")
	}

	entry := &models.TeacherAvailability{
		TeacherID: teacherID,
		Weekday:   req.Weekday,
		SlotID:    req.SlotID,
	}
	if err := s.store.Add(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add availability")
	}
	return entry, nil
}

// Remove withdraws one weekday+slot from the teacher's template. Removing an
// absent triple succeeds; sessions already booked through it stay committed.
func (s *AvailabilityService) Remove(ctx context.Context, teacherID string, req AvailabilityEntryRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability entry")
	}
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		return notFoundOr(err, "teacher not found")
	}
	if err := s.store.Remove(ctx, teacherID, req.Weekday, req.SlotID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove availability")
	}
	return nil
}

// Replace swaps the whole weekly template in one transaction.
func (s *AvailabilityService) Replace(ctx context.Context, teacherID string, req ReplaceAvailabilityRequest) ([]models.AvailabilityDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability template")
	}
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		return nil, notFoundOr(err, "teacher not found")
	}
	for _, entry := range req.Entries {
		if _, err := s.slots.FindByID(ctx, entry.SlotID); err != nil {
			return nil, notFoundOr(err, "time slot not found")
		}
	}

	if err := s.store.ReplaceAll(ctx, teacherID, req.Entries); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace availability template")
	}
	s.logger.Info("availability template replaced",
		zap.String("teacher_id", teacherID),
		zap.Int("entries", len(req.Entries)))
	return s.store.ListByTeacher(ctx, teacherID)
}

// List returns the teacher's template ordered by weekday and slot order.
func (s *AvailabilityService) List(ctx context.Context, teacherID string) ([]models.AvailabilityDetail, error) {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		return nil, notFoundOr(err, "teacher not found")
	}
	entries, err := s.store.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availability")
	}
	return entries, nil
}

// WeeklyTemplate groups the template by weekday name for presentation.
func (s *AvailabilityService) WeeklyTemplate(ctx context.Context, teacherID string) (*WeeklyTemplate, error) {
	entries, err := s.List(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	days := make(map[string][]models.AvailabilityDetail)
	for _, entry := range entries {
		name := weekday.Name(entry.Weekday)
		days[name] = append(days[name], entry)
	}
	return &WeeklyTemplate{TeacherID: teacherID, Days: days}, nil
}

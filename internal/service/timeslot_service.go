package service

import (
	"context"
	"regexp"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/etutplan/etut-api/internal/models"
	appErrors "github.com/etutplan/etut-api/pkg/errors"
)

type timeSlotStore interface {
	List(ctx context.Context) ([]models.TimeSlot, error)
	FindByID(ctx context.Context, id string) (*models.TimeSlot, error)
	Create(ctx context.Context, slot *models.TimeSlot) error
	Update(ctx context.Context, slot *models.TimeSlot) error
	Delete(ctx context.Context, id string) error
}

type slotReferenceProbe interface {
	SlotReferenced(ctx context.Context, slotID string) (bool, error)
}

// TimeSlotRequest creates or updates a catalog slot.
type TimeSlotRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	StartTime  string `json:"start_time" validate:"required"`
	EndTime    string `json:"end_time" validate:"required"`
	Kind       string `json:"kind" validate:"required"`
	OrderIndex int    `json:"order_index" validate:"min=0"`
}

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// TimeSlotService manages the daily time catalog. Slots become immutable once
// a session or availability entry references them.
type TimeSlotService struct {
	store        timeSlotStore
	sessions     slotReferenceProbe
	availability slotReferenceProbe
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewTimeSlotService instantiates TimeSlotService.
func NewTimeSlotService(store timeSlotStore, sessions, availability slotReferenceProbe, validate *validator.Validate, logger *zap.Logger) *TimeSlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeSlotService{store: store, sessions: sessions, availability: availability, validator: validate, logger: logger}
}

// List returns the catalog in chronological order.
func (s *TimeSlotService) List(ctx context.Context) ([]models.TimeSlot, error) {
	slots, err := s.store.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots")
	}
	return slots, nil
}

// Get returns one catalog slot.
func (s *TimeSlotService) Get(ctx context.Context, id string) (*models.TimeSlot, error) {
	slot, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "time slot not found")
	}
	return slot, nil
}

// Create adds a slot to the catalog.
func (s *TimeSlotService) Create(ctx context.Context, req TimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}
	slot := &models.TimeSlot{
		Name:       req.Name,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Kind:       models.SlotKind(req.Kind),
		OrderIndex: req.OrderIndex,
	}
	if err := s.store.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create time slot")
	}
	return slot, nil
}

// Update modifies an unreferenced slot. A referenced slot cannot change
// because bookings keyed on it would silently shift time.
func (s *TimeSlotService) Update(ctx context.Context, id string, req TimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}
	slot, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "time slot not found")
	}
	if err := s.checkUnreferenced(ctx, id); err != nil {
		return nil, err
	}

	slot.Name = req.Name
	slot.StartTime = req.StartTime
	slot.EndTime = req.EndTime
	slot.Kind = models.SlotKind(req.Kind)
	slot.OrderIndex = req.OrderIndex
	if err := s.store.Update(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update time slot")
	}
	return slot, nil
}

// Delete removes an unreferenced slot from the catalog.
func (s *TimeSlotService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return notFoundOr(err, "time slot not found")
	}
	if err := s.checkUnreferenced(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete time slot")
	}
	return nil
}

func (s *TimeSlotService) checkRequest(req TimeSlotRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}
	if !models.ValidSlotKind(models.SlotKind(req.Kind)) {
		return appErrors.Clone(appErrors.ErrValidation, "unknown slot kind")
	}
	if !clockPattern.MatchString(req.StartTime) || !clockPattern.MatchString(req.EndTime) {
		return appErrors.Clone(appErrors.ErrValidation, "times must be formatted HH:MM")
	}
	if req.EndTime <= req.StartTime {
		return appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}
	return nil
}

func (s *TimeSlotService) checkUnreferenced(ctx context.Context, id string) error {
	referenced, err := s.sessions.SlotReferenced(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to probe slot references")
	}
	if !referenced {
		referenced, err = s.availability.SlotReferenced(ctx, id)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to probe slot references")
		}
	}
	if referenced {
		return appErrors.ErrSlotReferenced
	}
	return nil
}

package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/etutplan/etut-api/internal/models"
	appErrors "github.com/etutplan/etut-api/pkg/errors"
)

type mockTimeSlotStore struct {
	slots   map[string]models.TimeSlot
	deleted []string
}

func (m *mockTimeSlotStore) List(ctx context.Context) ([]models.TimeSlot, error) {
	var list []models.TimeSlot
	for _, s := range m.slots {
		list = append(list, s)
	}
	return list, nil
}

func (m *mockTimeSlotStore) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	if s, ok := m.slots[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTimeSlotStore) Create(ctx context.Context, slot *models.TimeSlot) error {
	if m.slots == nil {
		m.slots = make(map[string]models.TimeSlot)
	}
	if slot.ID == "" {
		slot.ID = "new-slot"
	}
	m.slots[slot.ID] = *slot
	return nil
}

func (m *mockTimeSlotStore) Update(ctx context.Context, slot *models.TimeSlot) error {
	m.slots[slot.ID] = *slot
	return nil
}

func (m *mockTimeSlotStore) Delete(ctx context.Context, id string) error {
	delete(m.slots, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockReferenceProbe struct{ referenced map[string]bool }

func (m *mockReferenceProbe) SlotReferenced(ctx context.Context, slotID string) (bool, error) {
	return m.referenced[slotID], nil
}

func newTimeSlotService(store *mockTimeSlotStore, sessionRefs, availabilityRefs map[string]bool) *TimeSlotService {
	return NewTimeSlotService(store,
		&mockReferenceProbe{referenced: sessionRefs},
		&mockReferenceProbe{referenced: availabilityRefs},
		validator.New(), zap.NewNop())
}

func TestTimeSlotCreate(t *testing.T) {
	store := &mockTimeSlotStore{}
	svc := newTimeSlotService(store, nil, nil)

	slot, err := svc.Create(context.Background(), TimeSlotRequest{
		Name: "1st Lesson", StartTime: "09:00", EndTime: "09:45", Kind: "LESSON", OrderIndex: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SlotKindLesson, slot.Kind)
	assert.Len(t, store.slots, 1)
}

func TestTimeSlotCreateRejectsUnknownKind(t *testing.T) {
	svc := newTimeSlotService(&mockTimeSlotStore{}, nil, nil)

	_, err := svc.Create(context.Background(), TimeSlotRequest{
		Name: "Gap", StartTime: "09:00", EndTime: "09:45", Kind: "RECESS",
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestTimeSlotCreateRejectsInvertedInterval(t *testing.T) {
	svc := newTimeSlotService(&mockTimeSlotStore{}, nil, nil)

	_, err := svc.Create(context.Background(), TimeSlotRequest{
		Name: "Backwards", StartTime: "10:00", EndTime: "09:00", Kind: "LESSON",
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestTimeSlotCreateRejectsMalformedClock(t *testing.T) {
	svc := newTimeSlotService(&mockTimeSlotStore{}, nil, nil)

	_, err := svc.Create(context.Background(), TimeSlotRequest{
		Name: "Odd", StartTime: "9am", EndTime: "10am", Kind: "LESSON",
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestTimeSlotUpdateBlockedWhenSessionsReference(t *testing.T) {
	store := &mockTimeSlotStore{slots: map[string]models.TimeSlot{
		"slot-1": {ID: "slot-1", Name: "1st", StartTime: "09:00", EndTime: "09:45", Kind: models.SlotKindLesson},
	}}
	svc := newTimeSlotService(store, map[string]bool{"slot-1": true}, nil)

	_, err := svc.Update(context.Background(), "slot-1", TimeSlotRequest{
		Name: "Renamed", StartTime: "10:00", EndTime: "10:45", Kind: "LESSON",
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrSlotReferenced))
	assert.Equal(t, "09:00", store.slots["slot-1"].StartTime)
}

func TestTimeSlotDeleteBlockedWhenAvailabilityReferences(t *testing.T) {
	store := &mockTimeSlotStore{slots: map[string]models.TimeSlot{
		"slot-1": {ID: "slot-1", Kind: models.SlotKindLesson},
	}}
	svc := newTimeSlotService(store, nil, map[string]bool{"slot-1": true})

	err := svc.Delete(context.Background(), "slot-1")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrSlotReferenced))
	assert.Empty(t, store.deleted)
}

func TestTimeSlotDeleteUnreferenced(t *testing.T) {
	store := &mockTimeSlotStore{slots: map[string]models.TimeSlot{
		"slot-1": {ID: "slot-1", Kind: models.SlotKindBreak},
	}}
	svc := newTimeSlotService(store, nil, nil)

	err := svc.Delete(context.Background(), "slot-1")
	require.NoError(t, err)
	assert.Contains(t, store.deleted, "slot-1")
}

package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/etutplan/etut-api/internal/models"
	appErrors "github.com/etutplan/etut-api/pkg/errors"
)

type mockAvailabilityStore struct {
	entries map[string]models.TeacherAvailability
}

func (m *mockAvailabilityStore) key(teacherID string, day int, slotID string) string {
	return availabilityKey(teacherID, day, slotID)
}

func (m *mockAvailabilityStore) IsAvailable(ctx context.Context, teacherID string, day int, slotID string) (bool, error) {
	_, ok := m.entries[m.key(teacherID, day, slotID)]
	return ok, nil
}

func (m *mockAvailabilityStore) Add(ctx context.Context, entry *models.TeacherAvailability) error {
	if m.entries == nil {
		m.entries = make(map[string]models.TeacherAvailability)
	}
	key := m.key(entry.TeacherID, entry.Weekday, entry.SlotID)
	if existing, ok := m.entries[key]; ok {
		*entry = existing
		return nil
	}
	m.entries[key] = *entry
	return nil
}

func (m *mockAvailabilityStore) Remove(ctx context.Context, teacherID string, day int, slotID string) error {
	delete(m.entries, m.key(teacherID, day, slotID))
	return nil
}

func (m *mockAvailabilityStore) ListByTeacher(ctx context.Context, teacherID string) ([]models.AvailabilityDetail, error) {
	var list []models.AvailabilityDetail
	for _, e := range m.entries {
		if e.TeacherID == teacherID {
			list = append(list, models.AvailabilityDetail{TeacherAvailability: e})
		}
	}
	return list, nil
}

func (m *mockAvailabilityStore) ReplaceAll(ctx context.Context, teacherID string, entries []models.AvailabilityEntry) error {
	if m.entries == nil {
		m.entries = make(map[string]models.TeacherAvailability)
	}
	for key, e := range m.entries {
		if e.TeacherID == teacherID {
			delete(m.entries, key)
		}
	}
	for _, entry := range entries {
		m.entries[m.key(teacherID, entry.Weekday, entry.SlotID)] = models.TeacherAvailability{
			TeacherID: teacherID, Weekday: entry.Weekday, SlotID: entry.SlotID,
		}
	}
	return nil
}

func newAvailabilityService(store *mockAvailabilityStore) *AvailabilityService {
	slots := &mockSlots{slots: map[string]models.TimeSlot{
		"slot-1": {ID: "slot-1", Kind: models.SlotKindLesson},
		"slot-2": {ID: "slot-2", Kind: models.SlotKindLesson},
	}}
	return NewAvailabilityService(store, &mockTeachers{}, slots, validator.New(), zap.NewNop())
}

func TestAvailabilityAddIsIdempotent(t *testing.T) {
	store := &mockAvailabilityStore{}
	svc := newAvailabilityService(store)

	first, err := svc.Add(context.Background(), "t1", AvailabilityEntryRequest{Weekday: 3, SlotID: "slot-1"})
	require.NoError(t, err)

	second, err := svc.Add(context.Background(), "t1", AvailabilityEntryRequest{Weekday: 3, SlotID: "slot-1"})
	require.NoError(t, err)

	assert.Equal(t, first.TeacherID, second.TeacherID)
	assert.Len(t, store.entries, 1)
}

func TestAvailabilityAddRejectsWeekdayOutOfRange(t *testing.T) {
	svc := newAvailabilityService(&mockAvailabilityStore{})

	for _, day := range []int{0, 8, -1} {
		_, err := svc.Add(context.Background(), "t1", AvailabilityEntryRequest{Weekday: day, SlotID: "slot-1"})
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
	}
}

func TestAvailabilityAddRejectsUnknownSlot(t *testing.T) {
	svc := newAvailabilityService(&mockAvailabilityStore{})

	_, err := svc.Add(context.Background(), "t1", AvailabilityEntryRequest{Weekday: 2, SlotID: "ghost"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestAvailabilityRemoveAbsentEntrySucceeds(t *testing.T) {
	store := &mockAvailabilityStore{}
	svc := newAvailabilityService(store)

	err := svc.Remove(context.Background(), "t1", AvailabilityEntryRequest{Weekday: 5, SlotID: "slot-1"})
	require.NoError(t, err)
}

func TestAvailabilityReplaceSwapsTemplate(t *testing.T) {
	store := &mockAvailabilityStore{}
	svc := newAvailabilityService(store)

	_, err := svc.Add(context.Background(), "t1", AvailabilityEntryRequest{Weekday: 1, SlotID: "slot-1"})
	require.NoError(t, err)

	entries, err := svc.Replace(context.Background(), "t1", ReplaceAvailabilityRequest{Entries: []models.AvailabilityEntry{
		{Weekday: 2, SlotID: "slot-1"},
		{Weekday: 2, SlotID: "slot-2"},
	}})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	gone, err := store.IsAvailable(context.Background(), "t1", 1, "slot-1")
	require.NoError(t, err)
	assert.False(t, gone)
}

func TestAvailabilityWeeklyTemplateGroupsByDayName(t *testing.T) {
	store := &mockAvailabilityStore{}
	svc := newAvailabilityService(store)

	_, err := svc.Add(context.Background(), "t1", AvailabilityEntryRequest{Weekday: 1, SlotID: "slot-1"})
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), "t1", AvailabilityEntryRequest{Weekday: 7, SlotID: "slot-2"})
	require.NoError(t, err)

	template, err := svc.WeeklyTemplate(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, template.Days["Monday"], 1)
	assert.Len(t, template.Days["Sunday"], 1)
}

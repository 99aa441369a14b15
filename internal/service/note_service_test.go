package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etutplan/etut-api/internal/models"
	appErrors "github.com/etutplan/etut-api/pkg/errors"
)

type mockNoteStore struct {
	notes  map[string]models.StudyNote
	nextID int
}

func (m *mockNoteStore) List(ctx context.Context, filter models.NoteFilter) ([]models.StudyNote, int, error) {
	var out []models.StudyNote
	for _, n := range m.notes {
		if filter.StudentID != "" && n.StudentID != filter.StudentID {
			continue
		}
		if filter.AuthorID != "" && n.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Category != "" && n.Category != filter.Category {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *mockNoteStore) FindByID(ctx context.Context, id string) (*models.StudyNote, error) {
	n, ok := m.notes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &n, nil
}

func (m *mockNoteStore) Create(ctx context.Context, note *models.StudyNote) error {
	m.nextID++
	note.ID = fmt.Sprintf("note-%d", m.nextID)
	if m.notes == nil {
		m.notes = make(map[string]models.StudyNote)
	}
	m.notes[note.ID] = *note
	return nil
}

func (m *mockNoteStore) Update(ctx context.Context, note *models.StudyNote) error {
	m.notes[note.ID] = *note
	return nil
}

func (m *mockNoteStore) Delete(ctx context.Context, id string) error {
	delete(m.notes, id)
	return nil
}

type mockBranches struct {
	branches []string
}

func (m *mockBranches) Branches(ctx context.Context) ([]string, error) {
	return m.branches, nil
}

var (
	asAdmin   = NoteActor{UserID: "u-admin", Admin: true}
	asTeacher = NoteActor{UserID: "u-teach"}
)

func newNoteService(store *mockNoteStore, branches []string) *NoteService {
	return NewNoteService(store, &mockStudents{}, &mockBranches{branches: branches}, nil, nil)
}

func TestNoteCreateDefaultsCategoryAndAuthor(t *testing.T) {
	store := &mockNoteStore{}
	svc := newNoteService(store, nil)

	note, err := svc.Create(context.Background(), asTeacher, "s1", NoteRequest{Title: "Fractions", Content: "Struggles with mixed numbers"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultNoteCategory, note.Category)
	assert.Equal(t, "u-teach", note.AuthorID)
	assert.Equal(t, "s1", note.StudentID)
	assert.Len(t, store.notes, 1)
}

func TestNoteCreateUnknownStudent(t *testing.T) {
	store := &mockNoteStore{}
	svc := NewNoteService(store, &mockStudents{missing: map[string]bool{"ghost": true}}, &mockBranches{}, nil, nil)

	_, err := svc.Create(context.Background(), asTeacher, "ghost", NoteRequest{Title: "x", Content: "y"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
	assert.Empty(t, store.notes)
}

func TestNoteCreateRequiresTitleAndContent(t *testing.T) {
	svc := newNoteService(&mockNoteStore{}, nil)

	_, err := svc.Create(context.Background(), asTeacher, "s1", NoteRequest{Content: "no title"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	_, err = svc.Create(context.Background(), asTeacher, "s1", NoteRequest{Title: "no content"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestNoteListScopesNonAdminToOwnNotes(t *testing.T) {
	store := &mockNoteStore{notes: map[string]models.StudyNote{
		"note-1": {ID: "note-1", StudentID: "s1", AuthorID: "u-teach", Title: "mine"},
		"note-2": {ID: "note-2", StudentID: "s1", AuthorID: "u-other", Title: "theirs"},
	}}
	svc := newNoteService(store, nil)

	own, _, err := svc.List(context.Background(), asTeacher, models.NoteFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "note-1", own[0].ID)

	all, _, err := svc.List(context.Background(), asAdmin, models.NoteFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestNoteListFiltersByCategory(t *testing.T) {
	store := &mockNoteStore{notes: map[string]models.StudyNote{
		"note-1": {ID: "note-1", StudentID: "s1", AuthorID: "u-admin", Category: "Mathematics"},
		"note-2": {ID: "note-2", StudentID: "s1", AuthorID: "u-admin", Category: "Physics"},
	}}
	svc := newNoteService(store, nil)

	notes, _, err := svc.List(context.Background(), asAdmin, models.NoteFilter{Category: "Physics"})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "note-2", notes[0].ID)
}

func TestNoteListTrimsLongContent(t *testing.T) {
	long := strings.Repeat("a", 150)
	store := &mockNoteStore{notes: map[string]models.StudyNote{
		"note-1": {ID: "note-1", AuthorID: "u-admin", Content: long},
	}}
	svc := newNoteService(store, nil)

	notes, _, err := svc.List(context.Background(), asAdmin, models.NoteFilter{})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, strings.Repeat("a", 100)+"...", notes[0].Preview)
}

func TestNoteGetForbiddenForOtherAuthor(t *testing.T) {
	store := &mockNoteStore{notes: map[string]models.StudyNote{
		"note-1": {ID: "note-1", AuthorID: "u-other"},
	}}
	svc := newNoteService(store, nil)

	_, err := svc.Get(context.Background(), asTeacher, "note-1")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))

	note, err := svc.Get(context.Background(), asAdmin, "note-1")
	require.NoError(t, err)
	assert.Equal(t, "note-1", note.ID)
}

func TestNoteUpdateKeepsCategoryWhenOmitted(t *testing.T) {
	store := &mockNoteStore{notes: map[string]models.StudyNote{
		"note-1": {ID: "note-1", AuthorID: "u-teach", Category: "Physics", Title: "old", Content: "old"},
	}}
	svc := newNoteService(store, nil)

	note, err := svc.Update(context.Background(), asTeacher, "note-1", NoteRequest{Title: "new", Content: "new"})
	require.NoError(t, err)
	assert.Equal(t, "Physics", note.Category)
	assert.Equal(t, "new", store.notes["note-1"].Title)
}

func TestNoteUpdateForbiddenForOtherAuthor(t *testing.T) {
	store := &mockNoteStore{notes: map[string]models.StudyNote{
		"note-1": {ID: "note-1", AuthorID: "u-other", Title: "old", Content: "old"},
	}}
	svc := newNoteService(store, nil)

	_, err := svc.Update(context.Background(), asTeacher, "note-1", NoteRequest{Title: "new", Content: "new"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
	assert.Equal(t, "old", store.notes["note-1"].Title)
}

func TestNoteDeleteOwnershipEnforced(t *testing.T) {
	store := &mockNoteStore{notes: map[string]models.StudyNote{
		"note-1": {ID: "note-1", AuthorID: "u-other"},
	}}
	svc := newNoteService(store, nil)

	err := svc.Delete(context.Background(), asTeacher, "note-1")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
	assert.Len(t, store.notes, 1)

	require.NoError(t, svc.Delete(context.Background(), asAdmin, "note-1"))
	assert.Empty(t, store.notes)
}

func TestNoteDeleteUnknown(t *testing.T) {
	svc := newNoteService(&mockNoteStore{}, nil)

	err := svc.Delete(context.Background(), asTeacher, "ghost")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestNoteCategoriesFallBackToDefaults(t *testing.T) {
	svc := newNoteService(&mockNoteStore{}, nil)

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, defaultNoteCategories, categories)
}

func TestNoteCategoriesUseTeacherBranches(t *testing.T) {
	svc := newNoteService(&mockNoteStore{}, []string{"Chemistry", "Mathematics"})

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Chemistry", "Mathematics"}, categories)
}

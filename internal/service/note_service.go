package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/etutplan/etut-api/internal/models"
	appErrors "github.com/etutplan/etut-api/pkg/errors"
)

type noteStore interface {
	List(ctx context.Context, filter models.NoteFilter) ([]models.StudyNote, int, error)
	FindByID(ctx context.Context, id string) (*models.StudyNote, error)
	Create(ctx context.Context, note *models.StudyNote) error
	Update(ctx context.Context, note *models.StudyNote) error
	Delete(ctx context.Context, id string) error
}

type branchLister interface {
	Branches(ctx context.Context) ([]string, error)
}

// NoteActor identifies the caller for ownership checks. Admins see and edit
// every note; other staff only the notes they authored.
type NoteActor struct {
	UserID string
	Admin  bool
}

// NoteRequest creates or updates a study note. An empty category falls back
// to the default on create and keeps the stored value on update.
type NoteRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category" validate:"omitempty,max=50"`
}

// NoteSummary is the list-view projection of a note, with content trimmed.
type NoteSummary struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Preview   string    `json:"preview"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Fallback vocabulary used while the teacher roster carries no branches.
var defaultNoteCategories = []string{
	"Mathematics", "Physics", "Chemistry", "Biology",
	"English", "History", "Geography", "Literature", "Other",
}

// NoteService manages per-student study notes.
type NoteService struct {
	store     noteStore
	students  studentReader
	branches  branchLister
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNoteService instantiates NoteService.
func NewNoteService(store noteStore, students studentReader, branches branchLister, validate *validator.Validate, logger *zap.Logger) *NoteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteService{store: store, students: students, branches: branches, validator: validate, logger: logger}
}

// List returns note summaries matching the filter, newest edits first.
// Non-admin callers only see notes they authored.
func (s *NoteService) List(ctx context.Context, actor NoteActor, filter models.NoteFilter) ([]NoteSummary, *models.Pagination, error) {
	if !actor.Admin {
		filter.AuthorID = actor.UserID
	}
	notes, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notes")
	}
	summaries := make([]NoteSummary, 0, len(notes))
	for _, n := range notes {
		summaries = append(summaries, NoteSummary{
			ID:        n.ID,
			StudentID: n.StudentID,
			AuthorID:  n.AuthorID,
			Title:     n.Title,
			Category:  n.Category,
			Preview:   n.Preview(),
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
		})
	}
	return summaries, paginationOf(filter.Page, filter.PageSize, total), nil
}

// Get returns one note with full content.
func (s *NoteService) Get(ctx context.Context, actor NoteActor, id string) (*models.StudyNote, error) {
	note, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "note not found")
	}
	if !actor.Admin && note.AuthorID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not the author of this note")
	}
	return note, nil
}

// Create records a note about a student, authored by the caller.
func (s *NoteService) Create(ctx context.Context, actor NoteActor, studentID string, req NoteRequest) (*models.StudyNote, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return nil, notFoundOr(err, "student not found")
	}
	category := req.Category
	if category == "" {
		category = models.DefaultNoteCategory
	}
	note := &models.StudyNote{
		StudentID: studentID,
		AuthorID:  actor.UserID,
		Title:     req.Title,
		Content:   req.Content,
		Category:  category,
	}
	if err := s.store.Create(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create note")
	}
	return note, nil
}

// Update edits a note. Only the author or an admin may change it.
func (s *NoteService) Update(ctx context.Context, actor NoteActor, id string, req NoteRequest) (*models.StudyNote, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}
	note, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "note not found")
	}
	if !actor.Admin && note.AuthorID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not the author of this note")
	}
	note.Title = req.Title
	note.Content = req.Content
	if req.Category != "" {
		note.Category = req.Category
	}
	if err := s.store.Update(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update note")
	}
	return note, nil
}

// Delete removes a note. Only the author or an admin may delete it.
func (s *NoteService) Delete(ctx context.Context, actor NoteActor, id string) error {
	note, err := s.store.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "note not found")
	}
	if !actor.Admin && note.AuthorID != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "not the author of this note")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete note")
	}
	return nil
}

// Categories returns the subject vocabulary for tagging notes: the distinct
// teacher branches, or a fixed fallback while the roster is empty.
func (s *NoteService) Categories(ctx context.Context) ([]string, error) {
	branches, err := s.branches.Branches(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list note categories")
	}
	if len(branches) == 0 {
		return defaultNoteCategories, nil
	}
	return branches, nil
}

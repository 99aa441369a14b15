package models

import "time"

// DefaultNoteCategory tags notes created without an explicit category.
const DefaultNoteCategory = "General"

// StudyNote is a free-form note a staff member keeps about a student,
// tagged with a subject category for filtering.
type StudyNote struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	AuthorID  string    `db:"author_id" json:"author_id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Category  string    `db:"category" json:"category"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Preview truncates the content for list views. Full content is served by
// the single-note endpoint.
func (n StudyNote) Preview() string {
	const max = 100
	runes := []rune(n.Content)
	if len(runes) <= max {
		return n.Content
	}
	return string(runes[:max]) + "..."
}

// NoteFilter captures filtering criteria for listing study notes.
type NoteFilter struct {
	StudentID string
	AuthorID  string
	Category  string
	Page      int
	PageSize  int
}

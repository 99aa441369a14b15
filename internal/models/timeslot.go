package models

import "time"

// SlotKind classifies a time slot in the daily catalog.
type SlotKind string

const (
	SlotKindLesson SlotKind = "LESSON"
	SlotKindBreak  SlotKind = "BREAK"
	SlotKindLunch  SlotKind = "LUNCH"
)

// ValidSlotKind reports whether the value belongs to the closed kind set.
func ValidSlotKind(k SlotKind) bool {
	switch k {
	case SlotKindLesson, SlotKindBreak, SlotKindLunch:
		return true
	}
	return false
}

// TimeSlot is a named daily time interval from the time catalog. Slots are
// created administratively and become immutable once any session or
// availability row references them.
type TimeSlot struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	Kind       SlotKind  `db:"kind" json:"kind"`
	OrderIndex int       `db:"order_index" json:"order_index"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// TimeRange renders the slot interval for display.
func (s TimeSlot) TimeRange() string {
	return s.StartTime + " - " + s.EndTime
}

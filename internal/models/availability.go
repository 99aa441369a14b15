package models

import "time"

// TeacherAvailability is a recurring weekly template entry: the teacher is
// willing to teach the slot on this weekday, every week. It carries no date;
// concrete dates are resolved through the weekday number at booking time.
// (teacher_id, weekday, slot_id) is unique.
type TeacherAvailability struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	Weekday   int       `db:"weekday" json:"weekday"`
	SlotID    string    `db:"slot_id" json:"slot_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AvailabilityEntry is the weekday/slot pair used by bulk template edits.
type AvailabilityEntry struct {
	Weekday int    `json:"weekday" validate:"required,min=1,max=7"`
	SlotID  string `json:"slot_id" validate:"required"`
}

// AvailabilityDetail joins an availability row with its slot for list views.
type AvailabilityDetail struct {
	TeacherAvailability
	SlotName  string `db:"slot_name" json:"slot_name"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
}

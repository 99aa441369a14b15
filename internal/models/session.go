package models

import "time"

// SessionMode is the booking policy for a study session.
type SessionMode string

const (
	// SessionModeIndividual claims the teacher's (date, slot) exclusively for
	// one student.
	SessionModeIndividual SessionMode = "INDIVIDUAL"
	// SessionModeGroup lets several students share one teacher's (date, slot),
	// stored as one session row per enrolled student.
	SessionModeGroup SessionMode = "GROUP"
)

// ValidSessionMode reports whether the value belongs to the closed mode set.
// Unknown strings are rejected at the boundary, never defaulted.
func ValidSessionMode(m SessionMode) bool {
	return m == SessionModeIndividual || m == SessionModeGroup
}

// AttendanceStatus is a freely settable label, not a workflow gate.
type AttendanceStatus string

const (
	AttendancePending     AttendanceStatus = "PENDING"
	AttendanceAttended    AttendanceStatus = "ATTENDED"
	AttendanceNotAttended AttendanceStatus = "NOT_ATTENDED"
)

// ValidAttendanceStatus reports whether the value belongs to the status set.
func ValidAttendanceStatus(s AttendanceStatus) bool {
	switch s {
	case AttendancePending, AttendanceAttended, AttendanceNotAttended:
		return true
	}
	return false
}

// StudySession is a committed booking binding teacher, student, classroom and
// time slot on a concrete calendar date.
type StudySession struct {
	ID               string           `db:"id" json:"id"`
	TeacherID        string           `db:"teacher_id" json:"teacher_id"`
	StudentID        string           `db:"student_id" json:"student_id"`
	ClassroomID      string           `db:"classroom_id" json:"classroom_id"`
	SlotID           string           `db:"slot_id" json:"slot_id"`
	SessionDate      time.Time        `db:"session_date" json:"session_date"`
	Mode             SessionMode      `db:"mode" json:"mode"`
	AttendanceStatus AttendanceStatus `db:"attendance_status" json:"attendance_status"`
	Notes            string           `db:"notes" json:"notes"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// SessionFilter describes query params for listing sessions.
type SessionFilter struct {
	TeacherID   string
	StudentID   string
	ClassroomID string
	SlotID      string
	DateFrom    *time.Time
	DateTo      *time.Time
	Status      AttendanceStatus
	Mode        SessionMode
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// SkippedStudent reports why one student of a bulk request was not booked.
type SkippedStudent struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

// BulkBookingResult summarises a bulk enrollment: committed rows and skips.
// Partial success is the contract for group mode.
type BulkBookingResult struct {
	Committed []StudySession   `json:"committed"`
	Skipped   []SkippedStudent `json:"skipped"`
}

// AttendanceSummary aggregates attendance counts for reporting.
type AttendanceSummary struct {
	StudentID   string `db:"student_id" json:"student_id"`
	Total       int    `db:"total" json:"total"`
	Attended    int    `db:"attended" json:"attended"`
	NotAttended int    `db:"not_attended" json:"not_attended"`
	Pending     int    `db:"pending" json:"pending"`
}

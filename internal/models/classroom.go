package models

import "time"

// Classroom is a bookable physical room.
type Classroom struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Type      string    `db:"type" json:"type"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassroomFilter captures filtering criteria for listing classrooms.
type ClassroomFilter struct {
	Search    string
	Type      string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

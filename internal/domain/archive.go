package domain

import "time"

// DeletedStudent is the copy kept after a student is removed from the roster.
type DeletedStudent struct {
	Student
	DeletedAt time.Time `json:"deleted_at"`
}

// DeletedTimeline is the copy kept after a timeline entry is removed.
type DeletedTimeline struct {
	Timeline
	DeletedAt time.Time `json:"deleted_at"`
}

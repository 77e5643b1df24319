package models

import "time"

// EventDirection selects events relative to the captured "now" of a dashboard build.
type EventDirection string

// Supported event directions.
const (
	EventDirectionFuture EventDirection = "future"
	EventDirectionPast   EventDirection = "past"
)

// DefaultEventLimit bounds each class listing on the dashboard.
const DefaultEventLimit = 20

// ClassEvent is a class taught by an instructor. Rows are owned by the events subsystem.
type ClassEvent struct {
	ID              int64     `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	StartDate       time.Time `db:"start_date" json:"start_date"`
	MaxParticipants *int      `db:"max_participants" json:"max_participants,omitempty"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	IsTemplate      bool      `db:"is_template" json:"is_template"`
	InstructorID    int64     `db:"instructor_id" json:"instructor_id"`
}

// Eligible reports whether the event may appear on a dashboard.
func (e ClassEvent) Eligible() bool {
	return e.IsActive && !e.IsTemplate
}

// EventFilter narrows the events listed for one instructor.
type EventFilter struct {
	InstructorID int64
	Direction    EventDirection
	Now          time.Time
	Limit        int
}

// Matches applies the filter semantics to a single event. The SQL repository
// expresses the same predicate in its WHERE clause.
func (f EventFilter) Matches(e ClassEvent) bool {
	if e.InstructorID != f.InstructorID || !e.Eligible() {
		return false
	}
	switch f.Direction {
	case EventDirectionFuture:
		return !e.StartDate.Before(f.Now)
	case EventDirectionPast:
		return e.StartDate.Before(f.Now)
	default:
		return false
	}
}

// InstructorTotals aggregates lifetime teaching volume over past events.
type InstructorTotals struct {
	ClassesCount  int `db:"classes_count" json:"classes_count"`
	StudentsCount int `db:"students_count" json:"students_count"`
}

package models

import "database/sql"

// RatingFilter selects the survey answers averaged into an instructor rating.
type RatingFilter struct {
	InstructorID  int64
	SurveyID      string
	QuestionKey   string
	EventFieldKey string
}

// RatingAnswer is one raw satisfaction answer joined to the event it rates.
type RatingAnswer struct {
	SubmissionID int64          `db:"submission_id"`
	EventID      int64          `db:"event_id"`
	Value        sql.NullString `db:"value"`
}

// RatingSummary is the mean of all numeric answers for an instructor.
type RatingSummary struct {
	Average   float64
	Responses int
	Degraded  bool
}

// HasData reports whether at least one numeric answer contributed to Average.
func (r RatingSummary) HasData() bool {
	return r.Responses > 0
}

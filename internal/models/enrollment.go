package models

// EnrollmentRecord is a participant registration for an event. Whether a status
// counts towards enrollment is decided by the participant status type table.
type EnrollmentRecord struct {
	ID        int64 `db:"id" json:"id"`
	EventID   int64 `db:"event_id" json:"event_id"`
	StatusID  int64 `db:"status_id" json:"status_id"`
	IsCounted bool  `db:"is_counted" json:"is_counted"`
	IsTest    bool  `db:"is_test" json:"is_test"`
}

// Counted reports whether the record contributes to an enrollment total.
func (r EnrollmentRecord) Counted() bool {
	return r.IsCounted && !r.IsTest
}

// EnrollmentCount is the result of counting one event's enrollments.
// Degraded is set when the count fell back to zero because the query failed.
type EnrollmentCount struct {
	EventID  int64
	Count    int
	Degraded bool
}

package dto

import "time"

// Link purposes attached to class rows and the toolkit.
const (
	LinkPurposeRoster              = "roster"
	LinkPurposeLogHours            = "log_hours"
	LinkPurposeReimburse           = "reimburse"
	LinkPurposePaymentStatus       = "payment_status"
	LinkPurposeFeedback            = "feedback"
	LinkPurposeEmergencyProcedures = "emergency_procedures"
	LinkPurposeHandbook            = "handbook"
)

// Widget names reported in InstructorDashboard.Degraded.
const (
	WidgetStats         = "stats"
	WidgetRating        = "rating"
	WidgetUpcoming      = "upcoming"
	WidgetCompleted     = "completed"
	WidgetEnrollment    = "enrollment"
	WidgetPaymentStatus = "payment_status"
	WidgetProfile       = "profile"
	WidgetSettings      = "settings"
	WidgetDashboard     = "dashboard"
)

// DashboardRequest identifies whose dashboard is being built.
type DashboardRequest struct {
	InstructorID int64 `json:"instructorId" validate:"required,gt=0"`
}

// InstructorDashboard is the structured payload handed to the presentation layer.
type InstructorDashboard struct {
	InstructorID   int64           `json:"instructorId"`
	Stats          InstructorStats `json:"stats"`
	Toolkit        []Link          `json:"toolkit"`
	ProfileMissing bool            `json:"profileMissing"`
	ProfileLink    *string         `json:"profileLink,omitempty"`
	Upcoming       ClassSection    `json:"upcoming"`
	Completed      ClassSection    `json:"completed"`
	Degraded       []string        `json:"degraded,omitempty"`
}

// InstructorStats are lifetime teaching statistics. AverageRating is nil when
// no survey answers exist, in which case the rating card is hidden.
type InstructorStats struct {
	ClassesCount  int      `json:"classesCount"`
	StudentsCount int      `json:"studentsCount"`
	AverageRating *float64 `json:"averageRating"`
	ShowRating    bool     `json:"showRating"`
}

// ClassSection is one table of classes.
type ClassSection struct {
	Caption      string     `json:"caption"`
	EmptyMessage string     `json:"emptyMessage"`
	Rows         []ClassRow `json:"rows"`
}

// ClassRow is one class with its display fields and action links.
type ClassRow struct {
	EventID       int64     `json:"eventId"`
	Date          string    `json:"date"`
	StartsAt      time.Time `json:"startsAt"`
	Title         string    `json:"title"`
	Enrolled      string    `json:"enrolled"`
	PaymentStatus string    `json:"paymentStatus"`
	Links         []Link    `json:"links"`
}

// Link is a tagged action link.
type Link struct {
	Purpose string `json:"purpose"`
	Title   string `json:"title"`
	URL     string `json:"url"`
}

// LinkByPurpose returns the first link with the given purpose.
func (r ClassRow) LinkByPurpose(purpose string) (Link, bool) {
	for _, link := range r.Links {
		if link.Purpose == purpose {
			return link, true
		}
	}
	return Link{}, false
}

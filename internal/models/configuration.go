package models

import "time"

// Configuration represents a platform settings entry owned by the admin settings form.
type Configuration struct {
	Key         string    `db:"key" json:"key"`
	Value       string    `db:"value" json:"value"`
	Description *string   `db:"description" json:"description,omitempty"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Setting keys for the instructor toolkit links.
const (
	SettingEmergencyProceduresURL  = "emergency_procedures_url"
	SettingInstructorHandbookURL   = "instructor_handbook_url"
	SettingRequestReimbursementURL = "request_reimbursement_url"
	SettingLogHoursURL             = "log_hours_url"
	SettingPaymentStatusURL        = "payment_status_url"
)

// LinkSettingKeys lists every toolkit link setting in display order.
var LinkSettingKeys = []string{
	SettingEmergencyProceduresURL,
	SettingInstructorHandbookURL,
	SettingRequestReimbursementURL,
	SettingLogHoursURL,
	SettingPaymentStatusURL,
}

// LinkSettings are the raw, unvalidated toolkit link values.
type LinkSettings struct {
	EmergencyProcedures  string `json:"emergency_procedures_url"`
	InstructorHandbook   string `json:"instructor_handbook_url"`
	RequestReimbursement string `json:"request_reimbursement_url"`
	LogHours             string `json:"log_hours_url"`
	PaymentStatus        string `json:"payment_status_url"`
}

// Set assigns a value by setting key, ignoring unknown keys.
func (s *LinkSettings) Set(key, value string) {
	switch key {
	case SettingEmergencyProceduresURL:
		s.EmergencyProcedures = value
	case SettingInstructorHandbookURL:
		s.InstructorHandbook = value
	case SettingRequestReimbursementURL:
		s.RequestReimbursement = value
	case SettingLogHoursURL:
		s.LogHours = value
	case SettingPaymentStatusURL:
		s.PaymentStatus = value
	}
}

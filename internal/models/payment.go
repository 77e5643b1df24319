package models

// PaymentStatus is the workflow state of a payment or reimbursement request.
type PaymentStatus string

// Known payment statuses in display priority order.
const (
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusApproved  PaymentStatus = "approved"
	PaymentStatusSubmitted PaymentStatus = "submitted"
	PaymentStatusDraft     PaymentStatus = "draft"
	PaymentStatusRejected  PaymentStatus = "rejected"
	PaymentStatusUnknown   PaymentStatus = "unknown"
)

// NoPaymentRequestsLabel is shown for events without any request.
const NoPaymentRequestsLabel = "No requests logged"

var paymentStatusPriority = map[PaymentStatus]int{
	PaymentStatusPaid:      1,
	PaymentStatusApproved:  2,
	PaymentStatusSubmitted: 3,
	PaymentStatusDraft:     4,
	PaymentStatusRejected:  5,
	PaymentStatusUnknown:   6,
}

var paymentStatusLabels = map[PaymentStatus]string{
	PaymentStatusPaid:      "Paid",
	PaymentStatusApproved:  "Approved",
	PaymentStatusSubmitted: "Submitted",
	PaymentStatusDraft:     "Draft",
	PaymentStatusRejected:  "Rejected",
	PaymentStatusUnknown:   "Unknown",
}

// Priority returns the display rank of the status. Unrecognised statuses rank after unknown.
func (s PaymentStatus) Priority() int {
	if p, ok := paymentStatusPriority[s]; ok {
		return p
	}
	return len(paymentStatusPriority) + 1
}

// Known reports whether the status is part of the fixed priority table.
func (s PaymentStatus) Known() bool {
	_, ok := paymentStatusPriority[s]
	return ok
}

// Label returns the display label for a known status.
func (s PaymentStatus) Label() (string, bool) {
	label, ok := paymentStatusLabels[s]
	return label, ok
}

// PaymentStatusCount is the number of requests in one (event, status) group.
type PaymentStatusCount struct {
	EventID int64         `db:"event_id"`
	Status  PaymentStatus `db:"status"`
	Total   int           `db:"total"`
}

// PaymentSummaries maps event IDs to their rendered status summary.
// Events without requests are absent from ByEvent.
type PaymentSummaries struct {
	ByEvent  map[int64]string
	Degraded bool
}

// For returns the summary for an event or the "no requests" sentinel.
func (p PaymentSummaries) For(eventID int64) string {
	if summary, ok := p.ByEvent[eventID]; ok {
		return summary
	}
	return NoPaymentRequestsLabel
}

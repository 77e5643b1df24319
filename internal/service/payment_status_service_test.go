package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/instructor-companion-api/internal/models"
)

type stubPaymentRepo struct {
	rows     []models.PaymentStatusCount
	err      error
	calls    int
	payeeID  int64
	eventIDs []int64
}

func (s *stubPaymentRepo) StatusCounts(_ context.Context, payeeID int64, eventIDs []int64) ([]models.PaymentStatusCount, error) {
	s.calls++
	s.payeeID = payeeID
	s.eventIDs = eventIDs
	return s.rows, s.err
}

func TestPaymentStatusServiceOrdersByPriority(t *testing.T) {
	repo := &stubPaymentRepo{rows: []models.PaymentStatusCount{
		{EventID: 10, Status: models.PaymentStatusRejected, Total: 3},
		{EventID: 10, Status: models.PaymentStatusPaid, Total: 2},
		{EventID: 10, Status: models.PaymentStatusDraft, Total: 1},
		{EventID: 11, Status: models.PaymentStatusSubmitted, Total: 1},
	}}
	svc := NewPaymentStatusService(repo, nil, zap.NewNop())

	result := svc.SummarizeByEvent(context.Background(), 42, []int64{10, 11, 12})
	require.False(t, result.Degraded)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, int64(42), repo.payeeID)
	assert.Equal(t, []int64{10, 11, 12}, repo.eventIDs)

	assert.Equal(t, "Paid (2), Draft (1), Rejected (3)", result.For(10))
	assert.Equal(t, "Submitted (1)", result.For(11))
	_, present := result.ByEvent[12]
	assert.False(t, present)
	assert.Equal(t, models.NoPaymentRequestsLabel, result.For(12))
}

func TestPaymentStatusServiceUnrecognisedStatusesSortAfterUnknown(t *testing.T) {
	repo := &stubPaymentRepo{rows: []models.PaymentStatusCount{
		{EventID: 5, Status: "on_hold", Total: 1},
		{EventID: 5, Status: models.PaymentStatusUnknown, Total: 2},
		{EventID: 5, Status: "escalated", Total: 4},
		{EventID: 5, Status: models.PaymentStatusApproved, Total: 1},
	}}
	svc := NewPaymentStatusService(repo, nil, nil)

	first := svc.SummarizeByEvent(context.Background(), 42, []int64{5})
	assert.Equal(t, "Approved (1), Unknown (2), Escalated (4), On Hold (1)", first.For(5))

	repo.rows[0], repo.rows[2] = repo.rows[2], repo.rows[0]
	second := svc.SummarizeByEvent(context.Background(), 42, []int64{5})
	assert.Equal(t, first.For(5), second.For(5))
}

func TestPaymentStatusServiceSkipsQueryForEmptyEventSet(t *testing.T) {
	repo := &stubPaymentRepo{}
	svc := NewPaymentStatusService(repo, nil, zap.NewNop())

	result := svc.SummarizeByEvent(context.Background(), 42, nil)
	assert.Empty(t, result.ByEvent)
	assert.False(t, result.Degraded)
	assert.Zero(t, repo.calls)
}

func TestPaymentStatusServiceDegradesOnError(t *testing.T) {
	repo := &stubPaymentRepo{err: errors.New("timeout")}
	svc := NewPaymentStatusService(repo, nil, zap.NewNop())

	result := svc.SummarizeByEvent(context.Background(), 42, []int64{1})
	assert.True(t, result.Degraded)
	assert.Empty(t, result.ByEvent)
	assert.Equal(t, models.NoPaymentRequestsLabel, result.For(1))
}

func TestPaymentStatusLabel(t *testing.T) {
	assert.Equal(t, "Paid", paymentStatusLabel(models.PaymentStatusPaid))
	assert.Equal(t, "On Hold", paymentStatusLabel("on_hold"))
	assert.Equal(t, "Needs Review", paymentStatusLabel("needs-review"))
}

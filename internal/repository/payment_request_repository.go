package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/instructor-companion-api/internal/models"
)

const paymentStatusExpr = "COALESCE(NULLIF(LOWER(TRIM(prs.status)), ''), 'unknown')"

// PaymentRequestRepository reads payment and reimbursement requests.
type PaymentRequestRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewPaymentRequestRepository constructs the repository.
func NewPaymentRequestRepository(db *sqlx.DB) *PaymentRequestRepository {
	return &PaymentRequestRepository{db: db, sb: newStatementBuilder()}
}

// StatusCounts groups the payee's requests for the given events by (event, status).
// Requests without a status row, or with a blank status, are grouped as unknown.
func (r *PaymentRequestRepository) StatusCounts(ctx context.Context, payeeID int64, eventIDs []int64) ([]models.PaymentStatusCount, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}

	sqlStr, args, err := r.sb.Select("pr.event_id", paymentStatusExpr+" AS status", "COUNT(*) AS total").
		From("payment_requests pr").
		LeftJoin("payment_request_statuses prs ON prs.request_id = pr.id").
		Where(squirrel.Eq{"pr.payee_id": payeeID}).
		Where(squirrel.Eq{"pr.event_id": eventIDs}).
		GroupBy("pr.event_id", paymentStatusExpr).
		OrderBy("pr.event_id ASC", "status ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build payment status query: %w", err)
	}

	var counts []models.PaymentStatusCount
	if err := r.db.SelectContext(ctx, &counts, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("count payment requests by status: %w", err)
	}
	return counts, nil
}

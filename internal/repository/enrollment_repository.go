package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// EnrollmentRepository reads participant registrations.
type EnrollmentRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db, sb: newStatementBuilder()}
}

// CountCounted returns the number of counted, non-test participants of an event.
func (r *EnrollmentRepository) CountCounted(ctx context.Context, eventID int64) (int, error) {
	sqlStr, args, err := r.sb.Select("COUNT(p.id)").
		From("participants p").
		Join("participant_status_types pst ON pst.id = p.status_id").
		Where(squirrel.Eq{"p.event_id": eventID}).
		Where(squirrel.Eq{"p.is_test": false}).
		Where(squirrel.Eq{"pst.is_counted": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build enrollment count query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, sqlStr, args...); err != nil {
		return 0, fmt.Errorf("count enrollments for event %d: %w", eventID, err)
	}
	return count, nil
}

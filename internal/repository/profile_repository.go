package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const instructorProfileType = "instructor"

// ProfileRepository checks user profiles owned by the accounts subsystem.
type ProfileRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db, sb: newStatementBuilder()}
}

// HasInstructorProfile reports whether the user filled out an instructor profile.
func (r *ProfileRepository) HasInstructorProfile(ctx context.Context, userID int64) (bool, error) {
	sqlStr, args, err := r.sb.Select("COUNT(*)").
		From("profiles").
		Where(squirrel.Eq{"uid": userID}).
		Where(squirrel.Eq{"type": instructorProfileType}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build profile query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, sqlStr, args...); err != nil {
		return false, fmt.Errorf("count instructor profiles: %w", err)
	}
	return count > 0, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/instructor-companion-api/internal/models"
)

// SurveyRepository reads satisfaction survey answers stored as key/value rows per submission.
type SurveyRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewSurveyRepository constructs the repository.
func NewSurveyRepository(db *sqlx.DB) *SurveyRepository {
	return &SurveyRepository{db: db, sb: newStatementBuilder()}
}

// RatingAnswers returns the raw rating answers of submissions whose companion
// event field points at an event taught by the instructor. Values are returned
// unparsed; callers decide what counts as numeric.
func (r *SurveyRepository) RatingAnswers(ctx context.Context, filter models.RatingFilter) ([]models.RatingAnswer, error) {
	sqlStr, args, err := r.sb.Select("rating.submission_id", "e.id AS event_id", "rating.value").
		From("survey_submission_data rating").
		Join("survey_submission_data link ON link.submission_id = rating.submission_id AND link.survey_id = rating.survey_id AND link.name = ?", filter.EventFieldKey).
		Join("events e ON CAST(e.id AS TEXT) = TRIM(link.value)").
		Where(squirrel.Eq{"rating.survey_id": filter.SurveyID}).
		Where(squirrel.Eq{"rating.name": filter.QuestionKey}).
		Where(squirrel.Eq{"e.instructor_id": filter.InstructorID}).
		OrderBy("rating.submission_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build rating answers query: %w", err)
	}

	var answers []models.RatingAnswer
	if err := r.db.SelectContext(ctx, &answers, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("list rating answers: %w", err)
	}
	return answers, nil
}

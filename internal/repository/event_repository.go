package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/instructor-companion-api/internal/models"
)

// EventRepository reads class events owned by the events subsystem.
type EventRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db, sb: newStatementBuilder()}
}

// ListByInstructor returns eligible events on one side of filter.Now.
// Future events are ordered soonest first, past events most recent first.
func (r *EventRepository) ListByInstructor(ctx context.Context, filter models.EventFilter) ([]models.ClassEvent, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = models.DefaultEventLimit
	}

	query := r.sb.Select("e.id", "e.title", "e.start_date", "e.max_participants", "e.is_active", "e.is_template", "e.instructor_id").
		From("events e").
		Where(squirrel.Eq{"e.instructor_id": filter.InstructorID}).
		Where(squirrel.Eq{"e.is_active": true}).
		Where(squirrel.Eq{"e.is_template": false})

	switch filter.Direction {
	case models.EventDirectionFuture:
		query = query.Where(squirrel.GtOrEq{"e.start_date": filter.Now}).OrderBy("e.start_date ASC", "e.id ASC")
	case models.EventDirectionPast:
		query = query.Where(squirrel.Lt{"e.start_date": filter.Now}).OrderBy("e.start_date DESC", "e.id DESC")
	default:
		return nil, fmt.Errorf("unsupported event direction %q", filter.Direction)
	}

	sqlStr, args, err := query.Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list events query: %w", err)
	}

	var events []models.ClassEvent
	if err := r.db.SelectContext(ctx, &events, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("list %s events: %w", filter.Direction, err)
	}
	return events, nil
}

// TotalsBefore counts eligible events that started before now and the counted,
// non-test participants enrolled in them.
func (r *EventRepository) TotalsBefore(ctx context.Context, instructorID int64, now time.Time) (models.InstructorTotals, error) {
	sqlStr, args, err := r.sb.Select("COUNT(DISTINCT e.id) AS classes_count", "COUNT(p.id) AS students_count").
		From("events e").
		LeftJoin("participants p ON p.event_id = e.id AND p.is_test = false AND p.status_id IN (" + countedStatusSubquery + ")").
		Where(squirrel.Eq{"e.instructor_id": instructorID}).
		Where(squirrel.Eq{"e.is_active": true}).
		Where(squirrel.Eq{"e.is_template": false}).
		Where(squirrel.Lt{"e.start_date": now}).
		ToSql()
	if err != nil {
		return models.InstructorTotals{}, fmt.Errorf("build instructor totals query: %w", err)
	}

	var totals models.InstructorTotals
	if err := r.db.GetContext(ctx, &totals, sqlStr, args...); err != nil {
		return models.InstructorTotals{}, fmt.Errorf("instructor totals: %w", err)
	}
	return totals, nil
}

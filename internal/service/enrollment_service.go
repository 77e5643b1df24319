package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/instructor-companion-api/internal/dto"
	"github.com/noah-isme/instructor-companion-api/internal/models"
)

type enrollmentCounter interface {
	CountCounted(ctx context.Context, eventID int64) (int, error)
}

// EnrollmentService counts confirmed, non-test registrations per event.
type EnrollmentService struct {
	repo    enrollmentCounter
	metrics *MetricsService
	logger  *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentCounter, metrics *MetricsService, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, metrics: metrics, logger: logger}
}

// CountEnrolled returns the counted enrollment total for an event. A failed
// lookup is reported as zero with Degraded set.
func (s *EnrollmentService) CountEnrolled(ctx context.Context, eventID int64) models.EnrollmentCount {
	result := models.EnrollmentCount{EventID: eventID}

	start := time.Now()
	count, err := s.repo.CountCounted(ctx, eventID)
	s.metrics.ObserveDBQuery("enrollment_count", time.Since(start), err)
	if err != nil {
		s.logger.Warn("enrollment count unavailable",
			zap.String("component", dto.WidgetEnrollment),
			zap.Int64("event_id", eventID),
			zap.Error(err),
		)
		s.metrics.RecordDegraded(dto.WidgetEnrollment)
		result.Degraded = true
		return result
	}
	result.Count = count
	return result
}

package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/instructor-companion-api/internal/dto"
	"github.com/noah-isme/instructor-companion-api/internal/models"
)

type ratingAnswerReader interface {
	RatingAnswers(ctx context.Context, filter models.RatingFilter) ([]models.RatingAnswer, error)
}

// RatingServiceConfig selects the survey question that carries the rating.
type RatingServiceConfig struct {
	SurveyID      string
	QuestionKey   string
	EventFieldKey string
}

// RatingService averages satisfaction answers for classes an instructor taught.
type RatingService struct {
	repo    ratingAnswerReader
	metrics *MetricsService
	logger  *zap.Logger
	cfg     RatingServiceConfig
}

// NewRatingService constructs RatingService with default survey keys.
func NewRatingService(repo ratingAnswerReader, metrics *MetricsService, logger *zap.Logger, cfg RatingServiceConfig) *RatingService {
	if cfg.SurveyID == "" {
		cfg.SurveyID = "instructor_feedback"
	}
	if cfg.QuestionKey == "" {
		cfg.QuestionKey = "overall_satisfaction"
	}
	if cfg.EventFieldKey == "" {
		cfg.EventFieldKey = "event_id"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatingService{repo: repo, metrics: metrics, logger: logger, cfg: cfg}
}

// AverageRating returns the mean of every numeric answer. Non-numeric answers
// are skipped rather than counted as zero.
func (s *RatingService) AverageRating(ctx context.Context, instructorID int64) models.RatingSummary {
	filter := models.RatingFilter{
		InstructorID:  instructorID,
		SurveyID:      s.cfg.SurveyID,
		QuestionKey:   s.cfg.QuestionKey,
		EventFieldKey: s.cfg.EventFieldKey,
	}

	start := time.Now()
	answers, err := s.repo.RatingAnswers(ctx, filter)
	s.metrics.ObserveDBQuery("rating_answers", time.Since(start), err)
	if err != nil {
		s.logger.Warn("rating unavailable",
			zap.String("component", dto.WidgetRating),
			zap.Int64("instructor_id", instructorID),
			zap.Error(err),
		)
		s.metrics.RecordDegraded(dto.WidgetRating)
		return models.RatingSummary{Degraded: true}
	}

	var (
		sum     float64
		counted int
	)
	for _, answer := range answers {
		value, ok := parseRating(answer.Value.String, answer.Value.Valid)
		if !ok {
			continue
		}
		sum += value
		counted++
	}
	if counted == 0 {
		return models.RatingSummary{}
	}
	return models.RatingSummary{Average: sum / float64(counted), Responses: counted}
}

func parseRating(raw string, valid bool) (float64, bool) {
	if !valid {
		return 0, false
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/noah-isme/instructor-companion-api/internal/dto"
	"github.com/noah-isme/instructor-companion-api/internal/models"
)

type paymentStatusReader interface {
	StatusCounts(ctx context.Context, payeeID int64, eventIDs []int64) ([]models.PaymentStatusCount, error)
}

// PaymentStatusService renders per-event payment request summaries.
type PaymentStatusService struct {
	repo    paymentStatusReader
	metrics *MetricsService
	logger  *zap.Logger
}

// NewPaymentStatusService constructs PaymentStatusService.
func NewPaymentStatusService(repo paymentStatusReader, metrics *MetricsService, logger *zap.Logger) *PaymentStatusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentStatusService{repo: repo, metrics: metrics, logger: logger}
}

// SummarizeByEvent returns "Label (count)" summaries keyed by event for the
// instructor's payment requests. Events without requests are left out.
func (s *PaymentStatusService) SummarizeByEvent(ctx context.Context, instructorID int64, eventIDs []int64) models.PaymentSummaries {
	result := models.PaymentSummaries{ByEvent: map[int64]string{}}
	if len(eventIDs) == 0 {
		return result
	}

	start := time.Now()
	rows, err := s.repo.StatusCounts(ctx, instructorID, eventIDs)
	s.metrics.ObserveDBQuery("payment_status_counts", time.Since(start), err)
	if err != nil {
		s.logger.Warn("payment status unavailable",
			zap.String("component", dto.WidgetPaymentStatus),
			zap.Int64("instructor_id", instructorID),
			zap.Int("events", len(eventIDs)),
			zap.Error(err),
		)
		s.metrics.RecordDegraded(dto.WidgetPaymentStatus)
		result.Degraded = true
		return result
	}

	grouped := make(map[int64][]models.PaymentStatusCount)
	for _, row := range rows {
		if row.Total <= 0 {
			continue
		}
		grouped[row.EventID] = append(grouped[row.EventID], row)
	}
	for eventID, counts := range grouped {
		result.ByEvent[eventID] = renderPaymentSummary(counts)
	}
	return result
}

func renderPaymentSummary(counts []models.PaymentStatusCount) string {
	sort.SliceStable(counts, func(i, j int) bool {
		pi, pj := counts[i].Status.Priority(), counts[j].Status.Priority()
		if pi != pj {
			return pi < pj
		}
		return counts[i].Status < counts[j].Status
	})
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s (%d)", paymentStatusLabel(c.Status), c.Total))
	}
	return strings.Join(parts, ", ")
}

// paymentStatusLabel title-cases statuses outside the fixed table, so
// "on_hold" reads "On Hold". Casers hold state and are not shared.
func paymentStatusLabel(status models.PaymentStatus) string {
	if label, ok := status.Label(); ok {
		return label
	}
	raw := strings.NewReplacer("_", " ", "-", " ").Replace(string(status))
	return cases.Title(language.English).String(strings.Join(strings.Fields(raw), " "))
}

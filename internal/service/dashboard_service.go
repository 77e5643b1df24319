package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/instructor-companion-api/internal/dto"
	"github.com/noah-isme/instructor-companion-api/internal/models"
	appErrors "github.com/noah-isme/instructor-companion-api/pkg/errors"
)

const (
	upcomingCaption      = "My Upcoming Classes"
	completedCaption     = "My Completed Classes"
	upcomingEmptyMessage = "You have no upcoming classes assigned."
	completedEmptyMsg    = "You have no completed classes yet."
	unlimitedCapacity    = "∞"
)

type eventReader interface {
	ListByInstructor(ctx context.Context, filter models.EventFilter) ([]models.ClassEvent, error)
	TotalsBefore(ctx context.Context, instructorID int64, now time.Time) (models.InstructorTotals, error)
}

type enrollmentProvider interface {
	CountEnrolled(ctx context.Context, eventID int64) models.EnrollmentCount
}

type ratingProvider interface {
	AverageRating(ctx context.Context, instructorID int64) models.RatingSummary
}

type paymentSummaryProvider interface {
	SummarizeByEvent(ctx context.Context, instructorID int64, eventIDs []int64) models.PaymentSummaries
}

type linkSettingsProvider interface {
	LinkSettings(ctx context.Context) (models.LinkSettings, bool)
}

type profileChecker interface {
	HasInstructorProfile(ctx context.Context, userID int64) (bool, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	EventsLimit  int
	Location     *time.Location
	RosterPath   string
	FeedbackPath string
	ProfilePath  string
}

// DashboardService assembles the instructor dashboard from the aggregation services.
type DashboardService struct {
	events      eventReader
	enrollments enrollmentProvider
	ratings     ratingProvider
	payments    paymentSummaryProvider
	settings    linkSettingsProvider
	profiles    profileChecker
	links       *LinkBuilder
	validator   *validator.Validate
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time
	cfg         DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Events      eventReader
	Enrollments enrollmentProvider
	Ratings     ratingProvider
	Payments    paymentSummaryProvider
	Settings    linkSettingsProvider
	Profiles    profileChecker
	Links       *LinkBuilder
	Validator   *validator.Validate
	Metrics     *MetricsService
	Logger      *zap.Logger
	Config      DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.EventsLimit <= 0 {
		cfg.EventsLimit = models.DefaultEventLimit
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.RosterPath == "" {
		cfg.RosterPath = "/civicrm/event/participant"
	}
	if cfg.FeedbackPath == "" {
		cfg.FeedbackPath = "/form/instructor_feedback"
	}
	if cfg.ProfilePath == "" {
		cfg.ProfilePath = "/user/%d/instructor"
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	links := params.Links
	if links == nil {
		links = NewLinkBuilder(logger)
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	return &DashboardService{
		events:      params.Events,
		enrollments: params.Enrollments,
		ratings:     params.Ratings,
		payments:    params.Payments,
		settings:    params.Settings,
		profiles:    params.Profiles,
		links:       links,
		validator:   validate,
		metrics:     params.Metrics,
		logger:      logger,
		now:         time.Now,
		cfg:         cfg,
	}
}

// degradedWidgets records widgets that fell back, in first-seen order.
type degradedWidgets struct {
	names []string
	seen  map[string]struct{}
}

func (d *degradedWidgets) add(name string) {
	if d.seen == nil {
		d.seen = make(map[string]struct{})
	}
	if _, ok := d.seen[name]; ok {
		return
	}
	d.seen[name] = struct{}{}
	d.names = append(d.names, name)
}

// rowLinks are the validated settings links attached to every class row.
type rowLinks struct {
	logHours      string
	reimburse     string
	paymentStatus string
}

// Build assembles the dashboard for one instructor. Only an invalid identity
// is reported as an error; every data failure degrades its widget instead.
func (s *DashboardService) Build(ctx context.Context, instructorID int64) (result *dto.InstructorDashboard, err error) {
	if err := s.validator.Struct(dto.DashboardRequest{InstructorID: instructorID}); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "instructorId must be a positive integer")
	}

	start := time.Now()
	logger := s.logger.With(zap.Int64("instructor_id", instructorID))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("dashboard build panicked", zap.Any("panic", r))
			s.metrics.RecordDegraded(dto.WidgetDashboard)
			result = s.emptyDashboard(instructorID)
			result.Degraded = []string{dto.WidgetDashboard}
			err = nil
		}
		s.metrics.ObserveDashboardBuild(time.Since(start))
	}()

	now := s.now().UTC()
	var degraded degradedWidgets

	result = s.emptyDashboard(instructorID)
	result.Stats = s.stats(ctx, logger, instructorID, now, &degraded)

	var settings models.LinkSettings
	if s.settings != nil {
		var settingsDegraded bool
		settings, settingsDegraded = s.settings.LinkSettings(ctx)
		if settingsDegraded {
			degraded.add(dto.WidgetSettings)
		}
	}
	result.Toolkit = s.toolkit(settings)
	resolved := rowLinks{}
	resolved.logHours, _ = s.links.Build(settings.LogHours)
	resolved.reimburse, _ = s.links.Build(settings.RequestReimbursement)
	resolved.paymentStatus, _ = s.links.Build(settings.PaymentStatus)

	if missing, ok := s.profileMissing(ctx, logger, instructorID, &degraded); ok && missing {
		link := s.profileLink(instructorID)
		result.ProfileMissing = true
		result.ProfileLink = &link
	}

	upcoming := s.listEvents(ctx, logger, instructorID, models.EventDirectionFuture, now, &degraded)
	completed := s.listEvents(ctx, logger, instructorID, models.EventDirectionPast, now, &degraded)

	summaries := s.payments.SummarizeByEvent(ctx, instructorID, eventIDs(upcoming, completed))
	if summaries.Degraded {
		degraded.add(dto.WidgetPaymentStatus)
	}

	result.Upcoming.Rows = s.rows(ctx, upcoming, summaries, resolved, false, &degraded)
	result.Completed.Rows = s.rows(ctx, completed, summaries, resolved, true, &degraded)
	result.Degraded = degraded.names

	return result, nil
}

func (s *DashboardService) emptyDashboard(instructorID int64) *dto.InstructorDashboard {
	return &dto.InstructorDashboard{
		InstructorID: instructorID,
		Toolkit:      []dto.Link{},
		Upcoming: dto.ClassSection{
			Caption:      upcomingCaption,
			EmptyMessage: upcomingEmptyMessage,
			Rows:         []dto.ClassRow{},
		},
		Completed: dto.ClassSection{
			Caption:      completedCaption,
			EmptyMessage: completedEmptyMsg,
			Rows:         []dto.ClassRow{},
		},
	}
}

func (s *DashboardService) stats(ctx context.Context, logger *zap.Logger, instructorID int64, now time.Time, degraded *degradedWidgets) dto.InstructorStats {
	var stats dto.InstructorStats

	queryStart := time.Now()
	totals, err := s.events.TotalsBefore(ctx, instructorID, now)
	s.metrics.ObserveDBQuery("instructor_totals", time.Since(queryStart), err)
	if err != nil {
		logger.Warn("instructor totals unavailable", zap.String("component", dto.WidgetStats), zap.Error(err))
		s.metrics.RecordDegraded(dto.WidgetStats)
		degraded.add(dto.WidgetStats)
	} else {
		stats.ClassesCount = totals.ClassesCount
		stats.StudentsCount = totals.StudentsCount
	}

	rating := s.ratings.AverageRating(ctx, instructorID)
	if rating.Degraded {
		degraded.add(dto.WidgetRating)
	}
	if rating.HasData() {
		average := rating.Average
		stats.AverageRating = &average
		stats.ShowRating = true
	}
	return stats
}

func (s *DashboardService) toolkit(settings models.LinkSettings) []dto.Link {
	entries := []struct {
		purpose string
		title   string
		raw     string
	}{
		{dto.LinkPurposeEmergencyProcedures, "Emergency Procedures", settings.EmergencyProcedures},
		{dto.LinkPurposeHandbook, "Instructor Handbook", settings.InstructorHandbook},
		{dto.LinkPurposeReimburse, "Request Reimbursement", settings.RequestReimbursement},
		{dto.LinkPurposeLogHours, "Log Hours", settings.LogHours},
		{dto.LinkPurposePaymentStatus, "Payment Status", settings.PaymentStatus},
	}
	links := make([]dto.Link, 0, len(entries))
	for _, entry := range entries {
		if url, ok := s.links.Build(entry.raw); ok {
			links = append(links, dto.Link{Purpose: entry.purpose, Title: entry.title, URL: url})
		}
	}
	return links
}

// profileMissing reports whether the instructor lacks a profile. The second
// value is false when the check itself failed.
func (s *DashboardService) profileMissing(ctx context.Context, logger *zap.Logger, instructorID int64, degraded *degradedWidgets) (bool, bool) {
	if s.profiles == nil {
		return false, false
	}
	queryStart := time.Now()
	has, err := s.profiles.HasInstructorProfile(ctx, instructorID)
	s.metrics.ObserveDBQuery("instructor_profile", time.Since(queryStart), err)
	if err != nil {
		logger.Warn("profile check unavailable", zap.String("component", dto.WidgetProfile), zap.Error(err))
		s.metrics.RecordDegraded(dto.WidgetProfile)
		degraded.add(dto.WidgetProfile)
		return false, false
	}
	return !has, true
}

func (s *DashboardService) profileLink(instructorID int64) string {
	if strings.Contains(s.cfg.ProfilePath, "%d") {
		return fmt.Sprintf(s.cfg.ProfilePath, instructorID)
	}
	return s.cfg.ProfilePath
}

func (s *DashboardService) listEvents(ctx context.Context, logger *zap.Logger, instructorID int64, direction models.EventDirection, now time.Time, degraded *degradedWidgets) []models.ClassEvent {
	widget := dto.WidgetUpcoming
	if direction == models.EventDirectionPast {
		widget = dto.WidgetCompleted
	}

	queryStart := time.Now()
	events, err := s.events.ListByInstructor(ctx, models.EventFilter{
		InstructorID: instructorID,
		Direction:    direction,
		Now:          now,
		Limit:        s.cfg.EventsLimit,
	})
	s.metrics.ObserveDBQuery("list_"+string(direction)+"_events", time.Since(queryStart), err)
	if err != nil {
		logger.Warn("class listing unavailable", zap.String("component", widget), zap.Error(err))
		s.metrics.RecordDegraded(widget)
		degraded.add(widget)
		return nil
	}
	return events
}

func eventIDs(groups ...[]models.ClassEvent) []int64 {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, group := range groups {
		for _, event := range group {
			if _, ok := seen[event.ID]; ok {
				continue
			}
			seen[event.ID] = struct{}{}
			ids = append(ids, event.ID)
		}
	}
	return ids
}

func (s *DashboardService) rows(ctx context.Context, events []models.ClassEvent, summaries models.PaymentSummaries, resolved rowLinks, completed bool, degraded *degradedWidgets) []dto.ClassRow {
	rows := make([]dto.ClassRow, 0, len(events))
	for _, event := range events {
		enrolled := s.enrollments.CountEnrolled(ctx, event.ID)
		if enrolled.Degraded {
			degraded.add(dto.WidgetEnrollment)
		}
		rows = append(rows, dto.ClassRow{
			EventID:       event.ID,
			Date:          s.formatDate(event.StartDate),
			StartsAt:      event.StartDate.UTC(),
			Title:         event.Title,
			Enrolled:      formatEnrolled(enrolled.Count, event.MaxParticipants),
			PaymentStatus: summaries.For(event.ID),
			Links:         s.rowLinks(event.ID, resolved, completed),
		})
	}
	return rows
}

func (s *DashboardService) formatDate(t time.Time) string {
	local := t.In(s.cfg.Location)
	return local.Format("Mon, Jan 2, 2006") + " at " + local.Format("3:04pm")
}

func formatEnrolled(count int, capacity *int) string {
	limit := unlimitedCapacity
	if capacity != nil {
		limit = strconv.Itoa(*capacity)
	}
	return fmt.Sprintf("%d / %s", count, limit)
}

func (s *DashboardService) rowLinks(eventID int64, resolved rowLinks, completed bool) []dto.Link {
	id := strconv.FormatInt(eventID, 10)
	links := make([]dto.Link, 0, 5)

	roster := WithQuery(WithQuery(s.cfg.RosterPath, "reset", "1"), "id", id)
	links = append(links, dto.Link{Purpose: dto.LinkPurposeRoster, Title: "Roster", URL: roster})

	if resolved.logHours != "" {
		links = append(links, dto.Link{Purpose: dto.LinkPurposeLogHours, Title: "Log Hours", URL: WithQuery(resolved.logHours, "event_id", id)})
	}
	if resolved.reimburse != "" {
		links = append(links, dto.Link{Purpose: dto.LinkPurposeReimburse, Title: "Request Reimbursement", URL: WithQuery(resolved.reimburse, "event_id", id)})
	}
	if resolved.paymentStatus != "" {
		links = append(links, dto.Link{Purpose: dto.LinkPurposePaymentStatus, Title: "Payment Status", URL: WithQuery(resolved.paymentStatus, "event_id", id)})
	}
	if completed {
		links = append(links, dto.Link{Purpose: dto.LinkPurposeFeedback, Title: "Submit Feedback", URL: WithQuery(s.cfg.FeedbackPath, "event_id", id)})
	}
	return links
}

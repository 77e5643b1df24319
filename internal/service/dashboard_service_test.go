package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/instructor-companion-api/internal/dto"
	"github.com/noah-isme/instructor-companion-api/internal/models"
	appErrors "github.com/noah-isme/instructor-companion-api/pkg/errors"
)

type fakeEventReader struct {
	events    []models.ClassEvent
	students  map[int64]int
	listErr   map[models.EventDirection]error
	totalsErr error
	filters   []models.EventFilter
	totalsAt  time.Time
}

func (f *fakeEventReader) ListByInstructor(_ context.Context, filter models.EventFilter) ([]models.ClassEvent, error) {
	f.filters = append(f.filters, filter)
	if err := f.listErr[filter.Direction]; err != nil {
		return nil, err
	}
	var matched []models.ClassEvent
	for _, event := range f.events {
		if filter.Matches(event) {
			matched = append(matched, event)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if filter.Direction == models.EventDirectionPast {
			return matched[i].StartDate.After(matched[j].StartDate)
		}
		return matched[i].StartDate.Before(matched[j].StartDate)
	})
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (f *fakeEventReader) TotalsBefore(_ context.Context, instructorID int64, now time.Time) (models.InstructorTotals, error) {
	f.totalsAt = now
	if f.totalsErr != nil {
		return models.InstructorTotals{}, f.totalsErr
	}
	past := models.EventFilter{InstructorID: instructorID, Direction: models.EventDirectionPast, Now: now}
	var totals models.InstructorTotals
	for _, event := range f.events {
		if past.Matches(event) {
			totals.ClassesCount++
			totals.StudentsCount += f.students[event.ID]
		}
	}
	return totals, nil
}

type fakeEnrollments struct {
	counts  map[int64]int
	failing map[int64]bool
	panics  bool
}

func (f *fakeEnrollments) CountEnrolled(_ context.Context, eventID int64) models.EnrollmentCount {
	if f.panics {
		panic("enrollment backend exploded")
	}
	if f.failing[eventID] {
		return models.EnrollmentCount{EventID: eventID, Degraded: true}
	}
	return models.EnrollmentCount{EventID: eventID, Count: f.counts[eventID]}
}

type fakeRatings struct {
	summary models.RatingSummary
}

func (f *fakeRatings) AverageRating(context.Context, int64) models.RatingSummary {
	return f.summary
}

type fakePayments struct {
	summaries map[int64]string
	degraded  bool
	calls     [][]int64
}

func (f *fakePayments) SummarizeByEvent(_ context.Context, _ int64, eventIDs []int64) models.PaymentSummaries {
	f.calls = append(f.calls, eventIDs)
	if f.degraded {
		return models.PaymentSummaries{ByEvent: map[int64]string{}, Degraded: true}
	}
	return models.PaymentSummaries{ByEvent: f.summaries}
}

type fakeSettings struct {
	settings models.LinkSettings
	degraded bool
}

func (f *fakeSettings) LinkSettings(context.Context) (models.LinkSettings, bool) {
	return f.settings, f.degraded
}

type fakeProfiles struct {
	has bool
	err error
}

func (f *fakeProfiles) HasInstructorProfile(context.Context, int64) (bool, error) {
	return f.has, f.err
}

var dashboardNow = time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func classEvent(id int64, start time.Time, capacity *int) models.ClassEvent {
	return models.ClassEvent{
		ID:              id,
		Title:           "Class " + string(rune('A'+id-1)),
		StartDate:       start,
		MaxParticipants: capacity,
		IsActive:        true,
		InstructorID:    42,
	}
}

type dashboardFixture struct {
	events      *fakeEventReader
	enrollments *fakeEnrollments
	ratings     *fakeRatings
	payments    *fakePayments
	settings    *fakeSettings
	profiles    *fakeProfiles
	metrics     *MetricsService
	cfg         DashboardServiceConfig
}

func newDashboardFixture() *dashboardFixture {
	inactive := classEvent(4, dashboardNow.Add(48*time.Hour), nil)
	inactive.IsActive = false
	template := classEvent(5, dashboardNow.Add(72*time.Hour), nil)
	template.IsTemplate = true
	foreign := classEvent(6, dashboardNow.Add(24*time.Hour), nil)
	foreign.InstructorID = 7

	return &dashboardFixture{
		events: &fakeEventReader{
			events: []models.ClassEvent{
				classEvent(1, time.Date(2024, time.May, 3, 14, 30, 0, 0, time.UTC), intPtr(12)),
				classEvent(2, time.Date(2024, time.April, 20, 9, 0, 0, 0, time.UTC), nil),
				classEvent(3, dashboardNow, intPtr(8)),
				inactive,
				template,
				foreign,
			},
			students: map[int64]int{2: 7},
		},
		enrollments: &fakeEnrollments{counts: map[int64]int{1: 5, 2: 7}},
		ratings:     &fakeRatings{summary: models.RatingSummary{Average: 4.5, Responses: 2}},
		payments:    &fakePayments{summaries: map[int64]string{2: "Paid (2), Draft (1), Rejected (3)"}},
		settings: &fakeSettings{settings: models.LinkSettings{
			EmergencyProcedures:  "https://example.org/emergency",
			LogHours:             "hours",
			RequestReimbursement: "javascript:alert(1)",
			PaymentStatus:        "https://pay.example.org/status",
		}},
		profiles: &fakeProfiles{has: true},
		metrics:  NewMetricsService(),
	}
}

func (f *dashboardFixture) service() *DashboardService {
	svc := NewDashboardService(DashboardServiceParams{
		Events:      f.events,
		Enrollments: f.enrollments,
		Ratings:     f.ratings,
		Payments:    f.payments,
		Settings:    f.settings,
		Profiles:    f.profiles,
		Metrics:     f.metrics,
		Logger:      zap.NewNop(),
		Config:      f.cfg,
	})
	svc.now = func() time.Time { return dashboardNow }
	return svc
}

func rowIDs(rows []dto.ClassRow) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.EventID)
	}
	return ids
}

func linkPurposes(links []dto.Link) []string {
	purposes := make([]string, 0, len(links))
	for _, link := range links {
		purposes = append(purposes, link.Purpose)
	}
	return purposes
}

func TestDashboardBuildRejectsInvalidInstructor(t *testing.T) {
	svc := newDashboardFixture().service()

	for _, id := range []int64{0, -3} {
		result, err := svc.Build(context.Background(), id)
		require.Error(t, err)
		assert.Nil(t, result)
		var appErr *appErrors.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	}
}

func TestDashboardBuildAssemblesSections(t *testing.T) {
	fixture := newDashboardFixture()
	result, err := fixture.service().Build(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, int64(42), result.InstructorID)
	assert.Empty(t, result.Degraded)
	assert.False(t, result.ProfileMissing)
	assert.Nil(t, result.ProfileLink)

	assert.Equal(t, 1, result.Stats.ClassesCount)
	assert.Equal(t, 7, result.Stats.StudentsCount)
	require.NotNil(t, result.Stats.AverageRating)
	assert.Equal(t, 4.5, *result.Stats.AverageRating)
	assert.True(t, result.Stats.ShowRating)
	assert.Equal(t, dashboardNow, fixture.events.totalsAt)

	// an event starting exactly at "now" is upcoming
	assert.Equal(t, []int64{3, 1}, rowIDs(result.Upcoming.Rows))
	assert.Equal(t, []int64{2}, rowIDs(result.Completed.Rows))
	assert.Equal(t, "My Upcoming Classes", result.Upcoming.Caption)
	assert.Equal(t, "You have no upcoming classes assigned.", result.Upcoming.EmptyMessage)
	assert.Equal(t, "You have no completed classes yet.", result.Completed.EmptyMessage)

	require.Len(t, fixture.events.filters, 2)
	for _, filter := range fixture.events.filters {
		assert.Equal(t, dashboardNow, filter.Now)
		assert.Equal(t, models.DefaultEventLimit, filter.Limit)
	}

	require.Len(t, fixture.payments.calls, 1)
	assert.Equal(t, []int64{3, 1, 2}, fixture.payments.calls[0])

	upcoming := result.Upcoming.Rows[1]
	assert.Equal(t, "Fri, May 3, 2024 at 2:30pm", upcoming.Date)
	assert.Equal(t, "Class A", upcoming.Title)
	assert.Equal(t, "5 / 12", upcoming.Enrolled)
	assert.Equal(t, "No requests logged", upcoming.PaymentStatus)
	assert.Equal(t, []string{dto.LinkPurposeRoster, dto.LinkPurposeLogHours, dto.LinkPurposePaymentStatus}, linkPurposes(upcoming.Links))
	roster, ok := upcoming.LinkByPurpose(dto.LinkPurposeRoster)
	require.True(t, ok)
	assert.Equal(t, "/civicrm/event/participant?id=1&reset=1", roster.URL)
	logHours, _ := upcoming.LinkByPurpose(dto.LinkPurposeLogHours)
	assert.Equal(t, "/hours?event_id=1", logHours.URL)
	payment, _ := upcoming.LinkByPurpose(dto.LinkPurposePaymentStatus)
	assert.Equal(t, "https://pay.example.org/status?event_id=1", payment.URL)

	assert.Equal(t, "0 / 8", result.Upcoming.Rows[0].Enrolled)

	completed := result.Completed.Rows[0]
	assert.Equal(t, "7 / ∞", completed.Enrolled)
	assert.Equal(t, "Paid (2), Draft (1), Rejected (3)", completed.PaymentStatus)
	assert.Equal(t, "Sat, Apr 20, 2024 at 9:00am", completed.Date)
	feedback, ok := completed.LinkByPurpose(dto.LinkPurposeFeedback)
	require.True(t, ok)
	assert.Equal(t, "/form/instructor_feedback?event_id=2", feedback.URL)

	assert.Equal(t, []string{dto.LinkPurposeEmergencyProcedures, dto.LinkPurposeLogHours, dto.LinkPurposePaymentStatus}, linkPurposes(result.Toolkit))
	assert.Equal(t, "/hours", result.Toolkit[1].URL)
}

func TestDashboardBuildFormatsInDisplayTimezone(t *testing.T) {
	fixture := newDashboardFixture()
	fixture.cfg.Location = time.FixedZone("CDT", -5*3600)
	fixture.events.events = []models.ClassEvent{classEvent(1, time.Date(2024, time.May, 3, 1, 30, 0, 0, time.UTC), nil)}

	result, err := fixture.service().Build(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, result.Upcoming.Rows, 1)
	assert.Equal(t, "Thu, May 2, 2024 at 8:30pm", result.Upcoming.Rows[0].Date)
	assert.Equal(t, time.UTC, result.Upcoming.Rows[0].StartsAt.Location())
}

func TestDashboardBuildAppliesLimit(t *testing.T) {
	fixture := newDashboardFixture()
	fixture.cfg.EventsLimit = 1

	result, err := fixture.service().Build(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, rowIDs(result.Upcoming.Rows))
	assert.Equal(t, []int64{2}, rowIDs(result.Completed.Rows))
}

func TestDashboardBuildHidesRatingAndFlagsMissingProfile(t *testing.T) {
	fixture := newDashboardFixture()
	fixture.ratings.summary = models.RatingSummary{}
	fixture.profiles.has = false

	result, err := fixture.service().Build(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, result.Stats.AverageRating)
	assert.False(t, result.Stats.ShowRating)
	assert.True(t, result.ProfileMissing)
	require.NotNil(t, result.ProfileLink)
	assert.Equal(t, "/user/42/instructor", *result.ProfileLink)
}

func TestDashboardBuildDegradesFailedWidgets(t *testing.T) {
	fixture := newDashboardFixture()
	fixture.events.totalsErr = errors.New("stats query failed")
	fixture.events.listErr = map[models.EventDirection]error{models.EventDirectionFuture: errors.New("upcoming query failed")}
	fixture.enrollments.failing = map[int64]bool{2: true}
	fixture.ratings.summary = models.RatingSummary{Degraded: true}
	fixture.payments.degraded = true
	fixture.settings.degraded = true
	fixture.profiles.err = errors.New("profiles table missing")

	result, err := fixture.service().Build(context.Background(), 42)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		dto.WidgetStats, dto.WidgetRating, dto.WidgetSettings, dto.WidgetProfile,
		dto.WidgetUpcoming, dto.WidgetPaymentStatus, dto.WidgetEnrollment,
	}, result.Degraded)

	assert.Zero(t, result.Stats.ClassesCount)
	assert.Zero(t, result.Stats.StudentsCount)
	assert.False(t, result.Stats.ShowRating)
	assert.False(t, result.ProfileMissing)
	assert.NotNil(t, result.Upcoming.Rows)
	assert.Empty(t, result.Upcoming.Rows)

	require.Len(t, result.Completed.Rows, 1)
	assert.Equal(t, "0 / ∞", result.Completed.Rows[0].Enrolled)
	assert.Equal(t, "No requests logged", result.Completed.Rows[0].PaymentStatus)

	assert.Equal(t, float64(1), testutil.ToFloat64(fixture.metrics.degraded.WithLabelValues(dto.WidgetStats)))
	assert.Equal(t, float64(1), testutil.ToFloat64(fixture.metrics.degraded.WithLabelValues(dto.WidgetUpcoming)))
	assert.Equal(t, float64(1), testutil.ToFloat64(fixture.metrics.degraded.WithLabelValues(dto.WidgetProfile)))
}

func TestDashboardBuildEmptyInstructorSkipsPaymentQuery(t *testing.T) {
	fixture := newDashboardFixture()
	fixture.events.events = nil
	paymentRepo := &stubPaymentRepo{}

	svc := NewDashboardService(DashboardServiceParams{
		Events:      fixture.events,
		Enrollments: fixture.enrollments,
		Ratings:     &fakeRatings{},
		Payments:    NewPaymentStatusService(paymentRepo, nil, nil),
		Settings:    &fakeSettings{},
		Profiles:    fixture.profiles,
	})
	svc.now = func() time.Time { return dashboardNow }

	result, err := svc.Build(context.Background(), 42)
	require.NoError(t, err)
	assert.Zero(t, paymentRepo.calls)
	assert.Empty(t, result.Upcoming.Rows)
	assert.Empty(t, result.Completed.Rows)
	assert.Empty(t, result.Toolkit)
	assert.Zero(t, result.Stats.ClassesCount)
	assert.Empty(t, result.Degraded)
}

func TestDashboardBuildIsIdempotent(t *testing.T) {
	fixture := newDashboardFixture()
	svc := fixture.service()

	first, err := svc.Build(context.Background(), 42)
	require.NoError(t, err)
	second, err := svc.Build(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDashboardBuildRecoversFromPanic(t *testing.T) {
	fixture := newDashboardFixture()
	fixture.enrollments.panics = true

	result, err := fixture.service().Build(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []string{dto.WidgetDashboard}, result.Degraded)
	assert.Empty(t, result.Upcoming.Rows)
	assert.Empty(t, result.Completed.Rows)
	assert.Equal(t, float64(1), testutil.ToFloat64(fixture.metrics.degraded.WithLabelValues(dto.WidgetDashboard)))
}

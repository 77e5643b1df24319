package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/instructor-companion-api/internal/dto"
	"github.com/noah-isme/instructor-companion-api/internal/middleware"
	appErrors "github.com/noah-isme/instructor-companion-api/pkg/errors"
)

type fakeDashboardSrv struct {
	resp  *dto.InstructorDashboard
	err   error
	calls []int64
}

func (f *fakeDashboardSrv) Build(_ context.Context, instructorID int64) (*dto.InstructorDashboard, error) {
	f.calls = append(f.calls, instructorID)
	return f.resp, f.err
}

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newDashboardRouter(srv dashboardService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	router.GET("/instructors/:instructorId/dashboard", NewDashboardHandler(srv).Instructor)
	return router
}

func TestDashboardHandlerRejectsInvalidID(t *testing.T) {
	srv := &fakeDashboardSrv{}
	router := newDashboardRouter(srv)

	for _, id := range []string{"abc", "0", "-4", "1.5"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/instructors/"+id+"/dashboard", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code, id)
		var envelope responseEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, "VALIDATION_ERROR", envelope.Error["code"])
	}
	assert.Empty(t, srv.calls)
}

func TestDashboardHandlerSuccess(t *testing.T) {
	srv := &fakeDashboardSrv{resp: &dto.InstructorDashboard{
		InstructorID: 42,
		Upcoming:     dto.ClassSection{Caption: "My Upcoming Classes", Rows: []dto.ClassRow{}},
		Degraded:     []string{dto.WidgetRating},
	}}
	router := newDashboardRouter(srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/instructors/42/dashboard", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, []int64{42}, srv.calls)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, float64(42), envelope.Data["instructorId"])
	assert.Equal(t, []interface{}{"rating"}, envelope.Meta["degraded"])
	assert.Contains(t, envelope.Meta, "processing_time_ms")
}

func TestDashboardHandlerPropagatesServiceError(t *testing.T) {
	srv := &fakeDashboardSrv{err: appErrors.Clone(appErrors.ErrValidation, "instructorId must be a positive integer")}
	router := newDashboardRouter(srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/instructors/9/dashboard", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	srv.err = errors.New("boom")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/instructors/9/dashboard", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

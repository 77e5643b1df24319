package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/instructor-companion-api/internal/dto"
	"github.com/noah-isme/instructor-companion-api/internal/middleware"
	appErrors "github.com/noah-isme/instructor-companion-api/pkg/errors"
	"github.com/noah-isme/instructor-companion-api/pkg/response"
)

type dashboardService interface {
	Build(ctx context.Context, instructorID int64) (*dto.InstructorDashboard, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Instructor godoc
// @Summary Instructor dashboard
// @Description Lifetime stats, upcoming and completed classes with enrollment and payment status for one instructor.
// @Tags Dashboard
// @Produce json
// @Param instructorId path int true "Instructor (user) ID"
// @Success 200 {object} response.Envelope{data=dto.InstructorDashboard}
// @Failure 400 {object} response.Envelope
// @Router /instructors/{instructorId}/dashboard [get]
func (h *DashboardHandler) Instructor(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	instructorID, err := strconv.ParseInt(strings.TrimSpace(c.Param("instructorId")), 10, 64)
	if err != nil || instructorID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "instructorId must be a positive integer"))
		return
	}

	start := time.Now()
	dashboard, err := h.service.Build(c.Request.Context(), instructorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetDegraded(c, dashboard.Degraded)
	meta := middleware.ExtractMeta(c)
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, dashboard, meta)
}

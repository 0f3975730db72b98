package availability

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dentalops/clinic-api/internal/handler"
	"github.com/dentalops/clinic-api/internal/middleware"
	"github.com/dentalops/clinic-api/internal/model"
	"github.com/dentalops/clinic-api/internal/service/availability"
)

type Handler struct {
	service *availability.Service
}

func NewHandler(service *availability.Service) *Handler {
	return &Handler{service: service}
}

// GetWeeklySchedule returns a doctor's weekly template, both as the flat
// slot list and as per-day working windows.
func (h *Handler) GetWeeklySchedule(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	week, err := h.service.GetWeeklySchedule(c.Request.Context(), doctorID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(week))
}

// UpdateWeeklySchedule replaces the calling doctor's template with the
// submitted slot list.
func (h *Handler) UpdateWeeklySchedule(c *gin.Context) {
	doctorID, err := uuid.Parse(c.GetString(middleware.ContextProfileID))
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid doctor profile"))
		return
	}

	var req model.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.ReplaceWeeklySchedule(c.Request.Context(), doctorID, &req); err != nil {
		c.Error(err)
		return
	}

	week, err := h.service.GetWeeklySchedule(c.Request.Context(), doctorID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(week))
}

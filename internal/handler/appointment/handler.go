package appointment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dentalops/clinic-api/internal/handler"
	"github.com/dentalops/clinic-api/internal/middleware"
	"github.com/dentalops/clinic-api/internal/model"
	"github.com/dentalops/clinic-api/internal/schedule"
	"github.com/dentalops/clinic-api/internal/service/appointment"
	"github.com/dentalops/clinic-api/pkg/auth"
	apperrors "github.com/dentalops/clinic-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

// ListSlots returns the bookable start times for a doctor, date and service.
func (h *Handler) ListSlots(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	serviceID, err := uuid.Parse(c.Query("service_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid service ID"))
		return
	}

	date, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date, expected YYYY-MM-DD"))
		return
	}

	slots, err := h.service.ComputeSlots(c.Request.Context(), doctorID, date, serviceID)
	if err != nil {
		c.Error(err)
		return
	}

	times := make([]string, 0, len(slots))
	for _, s := range slots {
		times = append(times, s.String())
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"doctor_id":  doctorID,
		"service_id": serviceID,
		"date":       date.Format(dateLayout),
		"slots":      times,
	}))
}

// BookAppointment books a slot. Patients book for themselves and start in
// PENDING; doctors book on a patient's behalf and the appointment is
// CONFIRMED immediately.
func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	start, err := schedule.ParseTimePoint(req.Time)
	if err != nil {
		c.Error(apperrors.InvalidTime(err.Error()))
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date, expected YYYY-MM-DD"))
		return
	}

	booking := &appointment.BookingRequest{
		DoctorID:          req.DoctorID,
		ServiceID:         req.ServiceID,
		Date:              date,
		Start:             start,
		Notes:             req.Notes,
		PaymentReceiptURL: req.PaymentReceiptURL,
	}

	switch c.GetString(middleware.ContextRole) {
	case auth.RoleDoctor:
		if req.PatientID == nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("patient_id is required"))
			return
		}
		booking.PatientID = *req.PatientID
		booking.InitialStatus = model.AppointmentStatusConfirmed
	default:
		profileID, err := uuid.Parse(c.GetString(middleware.ContextProfileID))
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid patient profile"))
			return
		}
		booking.PatientID = profileID
		booking.InitialStatus = model.AppointmentStatusPending
	}

	apt, err := h.service.BookAppointment(c.Request.Context(), booking)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(apt))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	apt, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters := &model.AppointmentFilters{}

	if id := c.Query("doctor_id"); id != "" {
		doctorID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
			return
		}
		filters.DoctorID = doctorID
	}

	if id := c.Query("patient_id"); id != "" {
		patientID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
			return
		}
		filters.PatientID = patientID
	}

	if status := c.Query("status"); status != "" {
		filters.Status = model.AppointmentStatus(status)
	}

	if date := c.Query("start_date"); date != "" {
		start, err := time.Parse(dateLayout, date)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid start_date"))
			return
		}
		filters.StartDate = start
	}

	if date := c.Query("end_date"); date != "" {
		end, err := time.Parse(dateLayout, date)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid end_date"))
			return
		}
		filters.EndDate = end
	}

	appointments, err := h.service.ListAppointments(c.Request.Context(), filters)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

// UpdateStatus handles the doctor's confirm/cancel decision.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"turnoplus/internal/domain"
)

// @Summary Book an appointment
// @Description Claims the free block matching the requested slot and creates a pending appointment
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body domain.CreateAppointmentDTO true "Slot and participants"
// @Success 201 {object} domain.Appointment
// @Failure 422 {object} errorBody "Appointment block not found or already booked / past slot"
// @Router /appointments [post]
func (h *Handler) bookAppointment(c *gin.Context) {
	var input domain.CreateAppointmentDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("malformed request body", zap.Error(err))
		badRequestResponse(c, "Malformed request body")
		return
	}

	// Patients may only book for themselves.
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}
	role, _ := getUserRole(c)
	if role == domain.UserRolePatient && input.PatientID != userID {
		forbiddenResponse(c)
		return
	}

	appointment, err := h.services.Appointment.Book(c.Request.Context(), input)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	createdResponse(c, appointment)
}

// @Summary Get an appointment
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Appointment id"
// @Success 200 {object} domain.Appointment
// @Failure 404 {object} errorBody "Appointment not found"
// @Router /appointments/{id} [get]
func (h *Handler) getAppointmentByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	appointment, err := h.services.Appointment.GetByID(c.Request.Context(), id)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

// @Summary Cancel an appointment
// @Description pending or confirmed only; the claimed block is released for rebooking
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Appointment id"
// @Success 200 {object} domain.Appointment
// @Failure 404 {object} errorBody "Appointment not found"
// @Failure 422 {object} errorBody "Cannot cancel a completed or canceled appointment"
// @Router /appointments/{id}/cancel [post]
func (h *Handler) cancelAppointment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	appointment, err := h.services.Appointment.Cancel(c.Request.Context(), id)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

// @Summary Confirm an appointment
// @Description pending → confirmed
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Appointment id"
// @Success 200 {object} domain.Appointment
// @Failure 404 {object} errorBody "Appointment not found"
// @Failure 422 {object} errorBody "Cannot confirm a canceled appointment"
// @Router /appointments/{id}/confirm [post]
func (h *Handler) confirmAppointment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	appointment, err := h.services.Appointment.Confirm(c.Request.Context(), id)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

// @Summary Complete an appointment
// @Description confirmed → completed
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Appointment id"
// @Success 200 {object} domain.Appointment
// @Failure 404 {object} errorBody "Appointment not found"
// @Failure 422 {object} errorBody "Only confirmed appointments can be completed"
// @Router /appointments/{id}/complete [post]
func (h *Handler) completeAppointment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	appointment, err := h.services.Appointment.Complete(c.Request.Context(), id)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

func (h *Handler) listAppointments(c *gin.Context, filter domain.AppointmentFilter) {
	limit, offset := parsePagination(c)
	filter.Limit = limit
	filter.Offset = offset

	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.AppointmentStatus(statusStr)
		filter.Status = &status
	}

	appointments, total, err := h.services.Appointment.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("appointment listing failed", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	page := offset/limit + 1

	paginatedSuccessResponse(c, appointments, total, page, limit)
}

// @Summary Patient appointments
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Patient id"
// @Param status query string false "Filter by status"
// @Success 200 {object} paginatedResponse
// @Router /appointments/patients/{id} [get]
func (h *Handler) getPatientAppointments(c *gin.Context) {
	patientID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	h.listAppointments(c, domain.AppointmentFilter{PatientID: &patientID})
}

// @Summary Patient appointments in a date range
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Patient id"
// @Param start_date query string true "YYYY-MM-DD inclusive"
// @Param end_date query string true "YYYY-MM-DD inclusive"
// @Success 200 {object} paginatedResponse
// @Router /appointments/patients/{id}/filtered [get]
func (h *Handler) getPatientAppointmentsFiltered(c *gin.Context) {
	patientID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	startDate, err := time.Parse("2006-01-02", c.Query("start_date"))
	if err != nil {
		badRequestResponse(c, "Malformed start_date parameter")
		return
	}

	endDate, err := time.Parse("2006-01-02", c.Query("end_date"))
	if err != nil {
		badRequestResponse(c, "Malformed end_date parameter")
		return
	}
	// end_date is inclusive; the filter upper bound is exclusive.
	endDate = endDate.AddDate(0, 0, 1)

	h.listAppointments(c, domain.AppointmentFilter{
		PatientID: &patientID,
		StartDate: &startDate,
		EndDate:   &endDate,
	})
}

// @Summary Doctor appointments
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Doctor id"
// @Param status query string false "Filter by status"
// @Success 200 {object} paginatedResponse
// @Router /appointments/doctors/{id} [get]
func (h *Handler) getDoctorAppointments(c *gin.Context) {
	doctorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	h.listAppointments(c, domain.AppointmentFilter{DoctorID: &doctorID})
}

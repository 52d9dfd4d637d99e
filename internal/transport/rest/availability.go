package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"turnoplus/internal/domain"
)

// @Summary Publish an availability window
// @Description Creates a window and materializes its 30-minute blocks
// @Tags Availability
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body domain.CreateAvailabilityDTO true "Window bounds"
// @Success 201 {object} domain.AvailabilityWindow
// @Failure 422 {object} errorBody "Overlapping availability slot / alignment / duration"
// @Router /appointments/availability [post]
func (h *Handler) createAvailability(c *gin.Context) {
	var input domain.CreateAvailabilityDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("malformed request body", zap.Error(err))
		badRequestResponse(c, "Malformed request body")
		return
	}

	window, err := h.services.Availability.Create(c.Request.Context(), input)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	createdResponse(c, window)
}

// @Summary Update an availability window
// @Description Re-validates bounds and overlap, re-materializes blocks. Fails when the window has booked blocks.
// @Tags Availability
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Window id"
// @Param input body domain.UpdateAvailabilityDTO true "New bounds"
// @Success 200 {object} domain.AvailabilityWindow
// @Failure 404 {object} errorBody "Availability not found"
// @Failure 422 {object} errorBody "Validation error"
// @Router /appointments/availability/{id} [patch]
func (h *Handler) updateAvailability(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input domain.UpdateAvailabilityDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequestResponse(c, "Malformed request body")
		return
	}

	window, err := h.services.Availability.Update(c.Request.Context(), id, input)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, window)
}

// @Summary Remove free capacity of a window
// @Description Deletes the window's unbooked blocks; booked blocks and their window survive
// @Tags Availability
// @Security BearerAuth
// @Produce json
// @Param id path int true "Window id"
// @Param mode query string false "delete-unbooked (default)"
// @Success 200 {object} domain.DeleteUnbookedResult
// @Failure 404 {object} errorBody "Availability not found"
// @Router /appointments/availability/{id} [delete]
func (h *Handler) deleteAvailability(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if mode := c.DefaultQuery("mode", "delete-unbooked"); mode != "delete-unbooked" {
		badRequestResponse(c, "Unsupported delete mode")
		return
	}

	result, err := h.services.Availability.DeleteUnbooked(c.Request.Context(), id)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, result)
}

// @Summary Delete a single unbooked block
// @Tags Availability
// @Security BearerAuth
// @Param id path int true "Block id"
// @Success 204
// @Failure 422 {object} errorBody "Appointment block not found or already booked"
// @Router /appointments/blocks/{id} [delete]
func (h *Handler) deleteBlock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.services.Availability.DeleteBlock(c.Request.Context(), id); err != nil {
		domainErrorResponse(c, err)
		return
	}

	noContentResponse(c)
}

// @Summary Doctor availability windows
// @Tags Availability
// @Security BearerAuth
// @Produce json
// @Param id path int true "Doctor id"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Success 200 {array} domain.AvailabilityWindow
// @Failure 422 {object} errorBody "Doctor not found"
// @Router /appointments/doctor/{id}/availability [get]
func (h *Handler) getDoctorAvailability(c *gin.Context) {
	doctorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	filter := domain.AvailabilityFilter{DoctorID: doctorID}

	if fromStr := c.Query("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			badRequestResponse(c, "Malformed from parameter")
			return
		}
		filter.From = &from
	}

	if toStr := c.Query("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			badRequestResponse(c, "Malformed to parameter")
			return
		}
		filter.To = &to
	}

	windows, err := h.services.Availability.List(c.Request.Context(), filter)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	if windows == nil {
		windows = []domain.AvailabilityWindow{}
	}

	successResponse(c, http.StatusOK, windows)
}

// @Summary Free bookable blocks of a doctor
// @Description Lists unbooked, future blocks inside [start, end)
// @Tags Availability
// @Security BearerAuth
// @Produce json
// @Param id path int true "Doctor id"
// @Param start query string true "RFC3339 range start"
// @Param end query string true "RFC3339 range end"
// @Success 200 {array} domain.AppointmentBlock
// @Failure 422 {object} errorBody "Doctor not found"
// @Router /appointments/doctor/{id}/available-blocks [get]
func (h *Handler) getAvailableBlocks(c *gin.Context) {
	doctorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		badRequestResponse(c, "Malformed start parameter")
		return
	}

	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		badRequestResponse(c, "Malformed end parameter")
		return
	}

	blocks, err := h.services.Availability.AvailableBlocks(c.Request.Context(), doctorID, start, end)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	if blocks == nil {
		blocks = []domain.AppointmentBlock{}
	}

	successResponse(c, http.StatusOK, blocks)
}

// @Summary Per-day counts of free blocks
// @Description Aggregates unbooked, future blocks inside [start, end) into YYYY-MM-DD buckets
// @Tags Availability
// @Security BearerAuth
// @Produce json
// @Param id path int true "Doctor id"
// @Param start query string true "RFC3339 range start"
// @Param end query string true "RFC3339 range end"
// @Param tz query string false "IANA timezone for day bucketing"
// @Success 200 {object} map[string]int
// @Failure 422 {object} errorBody "Doctor not found"
// @Router /appointments/doctor/{id}/available-blocks/day-counts [get]
func (h *Handler) getAvailableBlockCounts(c *gin.Context) {
	doctorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		badRequestResponse(c, "Malformed start parameter")
		return
	}

	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		badRequestResponse(c, "Malformed end parameter")
		return
	}

	counts, err := h.services.Availability.AvailableBlockCounts(c.Request.Context(), doctorID, start, end, c.Query("tz"))
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, counts)
}

// @Summary Month calendar of free blocks
// @Description 42-cell Monday-start month grid with free future blocks bucketed per day
// @Tags Availability
// @Security BearerAuth
// @Produce json
// @Param id path int true "Doctor id"
// @Param month query string true "Month in YYYY-MM"
// @Param tz query string false "IANA timezone for day bucketing"
// @Success 200 {array} calendar.Day[domain.AppointmentBlock]
// @Failure 422 {object} errorBody "Doctor not found"
// @Router /appointments/doctor/{id}/availability/calendar [get]
func (h *Handler) getAvailabilityCalendar(c *gin.Context) {
	doctorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	monthRef, err := time.Parse("2006-01", c.Query("month"))
	if err != nil {
		badRequestResponse(c, "Malformed month parameter, expected YYYY-MM")
		return
	}

	days, err := h.services.Availability.CalendarMonth(c.Request.Context(), doctorID, monthRef.Year(), monthRef.Month(), c.Query("tz"))
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, days)
}

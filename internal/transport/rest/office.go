package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"turnoplus/internal/domain"
)

// @Summary Create an office
// @Tags Offices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body domain.CreateOfficeDTO true "Office data"
// @Success 201 {object} map[string]interface{} "Created office id"
// @Router /offices [post]
func (h *Handler) createOffice(c *gin.Context) {
	var input domain.CreateOfficeDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequestResponse(c, "Malformed request body")
		return
	}

	id, err := h.services.Office.Create(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("office creation failed", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Get an office
// @Tags Offices
// @Security BearerAuth
// @Produce json
// @Param id path int true "Office id"
// @Success 200 {object} domain.Office
// @Failure 404 {object} errorBody "Office not found"
// @Router /offices/{id} [get]
func (h *Handler) getOfficeByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	office, err := h.services.Office.GetByID(c.Request.Context(), id)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, office)
}

// @Summary Update an office
// @Tags Offices
// @Security BearerAuth
// @Accept json
// @Param id path int true "Office id"
// @Param input body domain.UpdateOfficeDTO true "Fields to update"
// @Success 204
// @Failure 404 {object} errorBody "Office not found"
// @Router /offices/{id} [put]
func (h *Handler) updateOffice(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input domain.UpdateOfficeDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequestResponse(c, "Malformed request body")
		return
	}

	if err := h.services.Office.Update(c.Request.Context(), id, input); err != nil {
		domainErrorResponse(c, err)
		return
	}

	noContentResponse(c)
}

// @Summary Delete an office
// @Tags Offices
// @Security BearerAuth
// @Param id path int true "Office id"
// @Success 204
// @Failure 404 {object} errorBody "Office not found"
// @Router /offices/{id} [delete]
func (h *Handler) deleteOffice(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.services.Office.Delete(c.Request.Context(), id); err != nil {
		domainErrorResponse(c, err)
		return
	}

	noContentResponse(c)
}

// @Summary List offices
// @Tags Offices
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.Office
// @Router /offices [get]
func (h *Handler) getOffices(c *gin.Context) {
	offices, err := h.services.Office.List(c.Request.Context())
	if err != nil {
		h.logger.Error("office listing failed", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	if offices == nil {
		offices = []domain.Office{}
	}

	successResponse(c, http.StatusOK, offices)
}

// @Summary Admin dashboard summary
// @Description Aggregated counters: total users, active doctors, today's non-canceled appointments, medical records
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.DashboardSummary
// @Router /admin/dashboard/summary [get]
func (h *Handler) getDashboardSummary(c *gin.Context) {
	summary, err := h.services.Dashboard.Summary(c.Request.Context())
	if err != nil {
		h.logger.Error("dashboard summary failed", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, summary)
}

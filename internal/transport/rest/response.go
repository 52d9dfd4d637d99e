package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"turnoplus/internal/domain"
)

// errorBody is the error contract the TurnoPlus frontend consumes. The
// client substring-matches Detail to choose a localized message, so handlers
// must pass domain error texts through unchanged.
type errorBody struct {
	Detail string `json:"detail"`
}

type paginatedResponse struct {
	Data       interface{} `json:"data"`
	TotalCount int         `json:"total_count"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

func errorResponse(c *gin.Context, statusCode int, detail string) {
	c.AbortWithStatusJSON(statusCode, errorBody{Detail: detail})
}

// domainErrorResponse maps domain errors onto the wire: 404 for missing
// resources, 422 for validation and state-machine failures, 500 otherwise.
func domainErrorResponse(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err):
		errorResponse(c, http.StatusNotFound, err.Error())
	case domain.IsValidation(err):
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
	default:
		errorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}

func successResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

func createdResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func noContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func paginatedSuccessResponse(c *gin.Context, data interface{}, totalCount, page, pageSize int) {
	totalPages := totalCount / pageSize
	if totalCount%pageSize > 0 {
		totalPages++
	}

	c.JSON(http.StatusOK, paginatedResponse{
		Data:       data,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

func badRequestResponse(c *gin.Context, detail string) {
	errorResponse(c, http.StatusBadRequest, detail)
}

func unauthorizedResponse(c *gin.Context) {
	errorResponse(c, http.StatusUnauthorized, "Authentication required")
}

func forbiddenResponse(c *gin.Context) {
	errorResponse(c, http.StatusForbidden, "Access denied")
}

func internalServerErrorResponse(c *gin.Context) {
	errorResponse(c, http.StatusInternalServerError, "Internal server error")
}

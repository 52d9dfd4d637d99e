package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"turnoplus/internal/domain"
)

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "Malformed id parameter")
		return 0, false
	}
	return id, true
}

func parseQueryID(c *gin.Context, value, name string) (int64, bool) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "Malformed "+name+" parameter")
		return 0, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// @Summary Current user profile
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} errorBody "Authentication required"
// @Router /users/me [get]
func (h *Handler) getCurrentUser(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	user, err := h.services.User.GetByID(c.Request.Context(), userID)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, user)
}

// @Summary Get user by id
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param id path int true "User id"
// @Success 200 {object} domain.User
// @Failure 404 {object} errorBody "User not found"
// @Router /users/{id} [get]
func (h *Handler) getUserByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.services.User.GetByID(c.Request.Context(), id)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, user)
}

// @Summary Create a user
// @Description Admin-only user creation, any role
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body domain.CreateUserDTO true "User data"
// @Success 201 {object} map[string]interface{} "Created user id"
// @Failure 400 {object} errorBody "Validation error"
// @Router /users [post]
func (h *Handler) createUser(c *gin.Context) {
	var input domain.CreateUserDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("malformed request body", zap.Error(err))
		badRequestResponse(c, "Malformed request body")
		return
	}

	id, err := h.services.User.Create(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("user creation failed", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Update a user
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "User id"
// @Param input body domain.UpdateUserDTO true "Fields to update"
// @Success 200 {object} domain.User
// @Failure 403 {object} errorBody "Access denied"
// @Failure 404 {object} errorBody "User not found"
// @Router /users/{id} [put]
func (h *Handler) updateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}
	role, _ := getUserRole(c)
	if userID != id && role != domain.UserRoleAdmin {
		forbiddenResponse(c)
		return
	}

	var input domain.UpdateUserDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("malformed request body", zap.Error(err))
		badRequestResponse(c, "Malformed request body")
		return
	}

	if err := h.services.User.Update(c.Request.Context(), id, input); err != nil {
		domainErrorResponse(c, err)
		return
	}

	user, err := h.services.User.GetByID(c.Request.Context(), id)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, user)
}

// @Summary Change password
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Param id path int true "User id"
// @Param input body domain.PasswordUpdateDTO true "Old and new password"
// @Success 204
// @Failure 403 {object} errorBody "Access denied"
// @Router /users/{id}/password [put]
func (h *Handler) updatePassword(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}
	if userID != id {
		forbiddenResponse(c)
		return
	}

	var input domain.PasswordUpdateDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequestResponse(c, "Malformed request body")
		return
	}

	if err := h.services.User.UpdatePassword(c.Request.Context(), id, input); err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Deactivate a user
// @Tags Users
// @Security BearerAuth
// @Param id path int true "User id"
// @Success 204
// @Failure 404 {object} errorBody "User not found"
// @Router /users/{id} [delete]
func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.services.User.Delete(c.Request.Context(), id); err != nil {
		domainErrorResponse(c, err)
		return
	}

	noContentResponse(c)
}

// @Summary List users
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param role query string false "Filter by role"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} paginatedResponse
// @Router /users [get]
func (h *Handler) getUsers(c *gin.Context) {
	limit, offset := parsePagination(c)

	var role *domain.UserRole
	if roleStr := c.Query("role"); roleStr != "" {
		r := domain.UserRole(roleStr)
		role = &r
	}

	users, total, err := h.services.User.List(c.Request.Context(), domain.UserFilter{
		Role:   role,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.logger.Error("user listing failed", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	page := offset/limit + 1

	paginatedSuccessResponse(c, users, total, page, limit)
}

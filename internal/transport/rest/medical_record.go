package rest

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"turnoplus/internal/domain"
)

const maxAttachmentSize = 10 << 20 // 10 MiB

// @Summary Create a medical record
// @Tags MedicalRecords
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body domain.CreateMedicalRecordDTO true "Record data"
// @Success 201 {object} map[string]interface{} "Created record id"
// @Failure 422 {object} errorBody "Patient not found"
// @Router /medical-records [post]
func (h *Handler) createMedicalRecord(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreateMedicalRecordDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("malformed request body", zap.Error(err))
		badRequestResponse(c, "Malformed request body")
		return
	}

	id, err := h.services.MedicalRecord.Create(c.Request.Context(), userID, input)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Get a medical record
// @Tags MedicalRecords
// @Security BearerAuth
// @Produce json
// @Param id path int true "Record id"
// @Success 200 {object} domain.MedicalRecord
// @Failure 404 {object} errorBody "Medical record not found"
// @Router /medical-records/{id} [get]
func (h *Handler) getMedicalRecordByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	record, err := h.services.MedicalRecord.GetByID(c.Request.Context(), id)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	// Patients can only read their own records.
	userID, _ := getUserID(c)
	role, _ := getUserRole(c)
	if role == domain.UserRolePatient && record.PatientID != userID {
		forbiddenResponse(c)
		return
	}

	successResponse(c, http.StatusOK, record)
}

// @Summary Update a medical record
// @Tags MedicalRecords
// @Security BearerAuth
// @Accept json
// @Param id path int true "Record id"
// @Param input body domain.UpdateMedicalRecordDTO true "Fields to update"
// @Success 204
// @Failure 404 {object} errorBody "Medical record not found"
// @Router /medical-records/{id} [put]
func (h *Handler) updateMedicalRecord(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input domain.UpdateMedicalRecordDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequestResponse(c, "Malformed request body")
		return
	}

	if err := h.services.MedicalRecord.Update(c.Request.Context(), id, input); err != nil {
		domainErrorResponse(c, err)
		return
	}

	noContentResponse(c)
}

// @Summary List medical records
// @Tags MedicalRecords
// @Security BearerAuth
// @Produce json
// @Param patient_id query int false "Filter by patient"
// @Param doctor_id query int false "Filter by doctor"
// @Success 200 {object} paginatedResponse
// @Router /medical-records [get]
func (h *Handler) getMedicalRecords(c *gin.Context) {
	limit, offset := parsePagination(c)

	filter := domain.MedicalRecordFilter{Limit: limit, Offset: offset}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}
	role, _ := getUserRole(c)

	switch role {
	case domain.UserRolePatient:
		filter.PatientID = &userID
	case domain.UserRoleDoctor:
		filter.DoctorID = &userID
	default:
		if idStr := c.Query("patient_id"); idStr != "" {
			id, ok := parseQueryID(c, idStr, "patient_id")
			if !ok {
				return
			}
			filter.PatientID = &id
		}
		if idStr := c.Query("doctor_id"); idStr != "" {
			id, ok := parseQueryID(c, idStr, "doctor_id")
			if !ok {
				return
			}
			filter.DoctorID = &id
		}
	}

	records, total, err := h.services.MedicalRecord.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("medical record listing failed", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	page := offset/limit + 1

	paginatedSuccessResponse(c, records, total, page, limit)
}

// @Summary Medical records of a patient
// @Tags MedicalRecords
// @Security BearerAuth
// @Produce json
// @Param id path int true "Patient id"
// @Success 200 {object} paginatedResponse
// @Router /patients/{id}/medical-records [get]
func (h *Handler) getPatientMedicalRecords(c *gin.Context) {
	patientID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, _ := getUserID(c)
	role, _ := getUserRole(c)
	if role == domain.UserRolePatient && patientID != userID {
		forbiddenResponse(c)
		return
	}

	limit, offset := parsePagination(c)

	records, total, err := h.services.MedicalRecord.List(c.Request.Context(), domain.MedicalRecordFilter{
		PatientID: &patientID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		h.logger.Error("medical record listing failed", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	page := offset/limit + 1

	paginatedSuccessResponse(c, records, total, page, limit)
}

// @Summary Attach a file to a medical record
// @Tags MedicalRecords
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Record id"
// @Param file formData file true "Attachment (jpeg, png or pdf)"
// @Success 201 {object} domain.RecordAttachment
// @Failure 404 {object} errorBody "Medical record not found"
// @Router /medical-records/{id}/attachments [post]
func (h *Handler) addRecordAttachment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequestResponse(c, "Missing file field")
		return
	}
	if fileHeader.Size > maxAttachmentSize {
		badRequestResponse(c, "Attachment too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		internalServerErrorResponse(c)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	attachment, err := h.services.MedicalRecord.AddAttachment(
		c.Request.Context(),
		id,
		data,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	createdResponse(c, attachment)
}

// @Summary Temporary download URL for an attachment
// @Tags MedicalRecords
// @Security BearerAuth
// @Produce json
// @Param id path int true "Record id"
// @Param attachmentId path int true "Attachment id"
// @Success 200 {object} map[string]interface{} "Presigned URL"
// @Failure 404 {object} errorBody "Medical record not found"
// @Router /medical-records/{id}/attachments/{attachmentId}/url [get]
func (h *Handler) getRecordAttachmentURL(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := parseIDParam(c, "attachmentId")
	if !ok {
		return
	}

	url, err := h.services.MedicalRecord.AttachmentURL(c.Request.Context(), id, attachmentID)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, map[string]interface{}{
		"url": url,
	})
}

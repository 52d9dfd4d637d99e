package domain

import (
	"time"
)

// MedicalRecord is owned by a patient and authored by a doctor. Free-text
// content, no invariants beyond referential integrity.
type MedicalRecord struct {
	ID            int64              `json:"id"`
	PatientID     int64              `json:"patient_id"`
	DoctorID      int64              `json:"doctor_id"`
	AppointmentID *int64             `json:"appointment_id,omitempty"`
	Diagnosis     string             `json:"diagnosis"`
	Treatment     string             `json:"treatment"`
	Notes         string             `json:"notes,omitempty"`
	Attachments   []RecordAttachment `json:"attachments,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	DoctorName    string             `json:"doctor_name,omitempty"`
}

// RecordAttachment is a document stored in object storage and linked to a
// medical record.
type RecordAttachment struct {
	ID          int64     `json:"id"`
	RecordID    int64     `json:"record_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateMedicalRecordDTO struct {
	PatientID     int64  `json:"patient_id" binding:"required"`
	AppointmentID *int64 `json:"appointment_id"`
	Diagnosis     string `json:"diagnosis" binding:"required"`
	Treatment     string `json:"treatment" binding:"required"`
	Notes         string `json:"notes"`
}

type UpdateMedicalRecordDTO struct {
	Diagnosis *string `json:"diagnosis"`
	Treatment *string `json:"treatment"`
	Notes     *string `json:"notes"`
}

type MedicalRecordFilter struct {
	PatientID *int64
	DoctorID  *int64
	Limit     int
	Offset    int
}

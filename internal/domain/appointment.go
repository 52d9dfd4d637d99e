package domain

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCanceled  AppointmentStatus = "canceled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// Terminal reports whether the status admits no further transitions.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCanceled || s == AppointmentStatusCompleted
}

// Appointment is a patient's claim on one AppointmentBlock. Its (StartAt,
// EndAt) pair always matches the claimed block exactly.
type Appointment struct {
	ID          int64             `json:"id"`
	DoctorID    int64             `json:"doctor_id"`
	PatientID   int64             `json:"patient_id"`
	BlockID     int64             `json:"block_id"`
	StartAt     time.Time         `json:"start_at"`
	EndAt       time.Time         `json:"end_at"`
	Status      AppointmentStatus `json:"status"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DoctorName  string            `json:"doctor_name,omitempty"`
	PatientName string            `json:"patient_name,omitempty"`
}

type CreateAppointmentDTO struct {
	DoctorID  int64     `json:"doctor_id" binding:"required"`
	PatientID int64     `json:"patient_id" binding:"required"`
	StartAt   time.Time `json:"start_at" binding:"required"`
	EndAt     time.Time `json:"end_at" binding:"required"`
	Notes     string    `json:"notes"`
}

type AppointmentFilter struct {
	DoctorID      *int64
	PatientID     *int64
	Status        *AppointmentStatus
	ExcludeStatus *AppointmentStatus
	StartDate     *time.Time
	EndDate       *time.Time
	Limit         int
	Offset        int
}

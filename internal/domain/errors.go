package domain

import "errors"

// Scheduling error taxonomy. The REST layer serializes these verbatim into
// the {"detail": ...} body, and the TurnoPlus frontend substring-matches
// several of them to pick a localized message, so the texts are part of the
// wire contract and must not be reworded.
var (
	ErrInvalidAlignment = errors.New("Start time must align with block boundaries")
	ErrInvalidDuration  = errors.New("Duration must be a multiple of 30 minutes")
	ErrOverlapConflict  = errors.New("Overlapping availability slot")

	ErrAvailabilityNotFound = errors.New("Availability not found")
	ErrAppointmentNotFound  = errors.New("Appointment not found")
	ErrBlockNotFound        = errors.New("Appointment block not found or already booked")
	ErrDoctorNotFound       = errors.New("Doctor not found")
	ErrPatientNotFound      = errors.New("Patient not found")
	ErrUserNotFound         = errors.New("User not found")
	ErrOfficeNotFound       = errors.New("Office not found")
	ErrRecordNotFound       = errors.New("Medical record not found")

	ErrPastSlot = errors.New("Cannot book a slot in the past")

	ErrBlockBooked       = errors.New("Cannot delete a booked block")
	ErrWindowHasBookings = errors.New("Cannot modify availability with booked blocks")

	ErrConfirmCanceled      = errors.New("Cannot confirm a canceled appointment")
	ErrConfirmNotPending    = errors.New("Only pending appointments can be confirmed")
	ErrCompleteNotConfirmed = errors.New("Only confirmed appointments can be completed")
	ErrCancelTerminal       = errors.New("Cannot cancel a completed or canceled appointment")
)

var notFoundErrors = []error{
	ErrAvailabilityNotFound,
	ErrAppointmentNotFound,
	ErrUserNotFound,
	ErrOfficeNotFound,
	ErrRecordNotFound,
}

// IsNotFound reports whether err maps to HTTP 404 rather than 422.
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var validationErrors = []error{
	ErrInvalidAlignment,
	ErrInvalidDuration,
	ErrOverlapConflict,
	ErrBlockNotFound,
	ErrDoctorNotFound,
	ErrPatientNotFound,
	ErrPastSlot,
	ErrBlockBooked,
	ErrWindowHasBookings,
	ErrConfirmCanceled,
	ErrConfirmNotPending,
	ErrCompleteNotConfirmed,
	ErrCancelTerminal,
}

// IsValidation reports whether err is a client-recoverable domain validation
// failure (HTTP 422).
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

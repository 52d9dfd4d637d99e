package domain

import (
	"time"
)

// BlockDuration is the size of the atomic bookable unit. Availability
// windows are always partitioned into sub-intervals of this length.
const BlockDuration = 30 * time.Minute

// AvailabilityWindow is a doctor-declared bookable time range. A window is
// materialized into AppointmentBlocks at creation time; the window itself is
// never booked directly.
type AvailabilityWindow struct {
	ID        int64              `json:"id"`
	DoctorID  int64              `json:"doctor_id"`
	StartAt   time.Time          `json:"start_at"`
	EndAt     time.Time          `json:"end_at"`
	Blocks    []AppointmentBlock `json:"blocks"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Overlaps applies the half-open interval test: [s1,e1) and [s2,e2)
// overlap iff s1 < e2 and s2 < e1.
func (w AvailabilityWindow) Overlaps(startAt, endAt time.Time) bool {
	return w.StartAt.Before(endAt) && startAt.Before(w.EndAt)
}

// AppointmentBlock is the fixed 30-minute sub-unit of a window and the only
// thing a patient can book. A booked block can never be deleted or reassigned.
type AppointmentBlock struct {
	ID       int64     `json:"id"`
	WindowID int64     `json:"availability_id"`
	StartAt  time.Time `json:"start_at"`
	EndAt    time.Time `json:"end_at"`
	IsBooked bool      `json:"is_booked"`
}

// PartitionBlocks splits [startAt, endAt) into consecutive BlockDuration
// sub-intervals. Callers must have validated alignment and duration first.
func PartitionBlocks(windowID int64, startAt, endAt time.Time) []AppointmentBlock {
	var blocks []AppointmentBlock
	for cursor := startAt; cursor.Before(endAt); cursor = cursor.Add(BlockDuration) {
		blocks = append(blocks, AppointmentBlock{
			WindowID: windowID,
			StartAt:  cursor,
			EndAt:    cursor.Add(BlockDuration),
		})
	}
	return blocks
}

// ValidateWindowBounds checks the structural invariants of a window:
// hour-aligned start and a positive duration that is a whole number of
// blocks. Overlap checking is a separate, per-doctor concern.
func ValidateWindowBounds(startAt, endAt time.Time) error {
	if startAt.Minute() != 0 || startAt.Second() != 0 || startAt.Nanosecond() != 0 {
		return ErrInvalidAlignment
	}

	duration := endAt.Sub(startAt)
	if duration <= 0 || duration%BlockDuration != 0 {
		return ErrInvalidDuration
	}

	return nil
}

type CreateAvailabilityDTO struct {
	DoctorID int64     `json:"doctor_id" binding:"required"`
	StartAt  time.Time `json:"start_at" binding:"required"`
	EndAt    time.Time `json:"end_at" binding:"required"`
}

type UpdateAvailabilityDTO struct {
	StartAt *time.Time `json:"start_at"`
	EndAt   *time.Time `json:"end_at"`
}

// AvailabilityFilter restricts window listings to [From, To).
type AvailabilityFilter struct {
	DoctorID int64
	From     *time.Time
	To       *time.Time
}

// DeleteUnbookedResult reports the outcome of removing the free capacity of
// a window. Window is nil when the last block was removed and the window
// itself was deleted.
type DeleteUnbookedResult struct {
	Removed int                 `json:"removed"`
	Window  *AvailabilityWindow `json:"window,omitempty"`
}

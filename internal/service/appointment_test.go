package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"turnoplus/config"
	"turnoplus/internal/domain"
	"turnoplus/internal/lock"
)

type bookingFixture struct {
	availability *AvailabilityServiceImpl
	appointments *AppointmentServiceImpl
	availRepo    *fakeAvailabilityRepo
	apptRepo     *fakeAppointmentRepo
	doctorID     int64
	patientID    int64
	slotStart    time.Time
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	users := newFakeUserRepo()
	doctorID := users.addUser(domain.UserRoleDoctor)
	patientID := users.addUser(domain.UserRolePatient)

	availRepo := newFakeAvailabilityRepo()
	apptRepo := newFakeAppointmentRepo(availRepo)

	now := func() time.Time {
		return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	}

	availability := NewAvailabilityService(availRepo, users, config.BookingConfig{DisplayTimeZone: "UTC"}, zap.NewNop())
	availability.now = now

	appointments := NewAppointmentService(apptRepo, users, lock.NewLocalLocker(), zap.NewNop())
	appointments.now = now

	slotStart := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_, err := availability.Create(context.Background(), domain.CreateAvailabilityDTO{
		DoctorID: doctorID,
		StartAt:  slotStart,
		EndAt:    slotStart.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("seeding availability failed: %v", err)
	}

	return &bookingFixture{
		availability: availability,
		appointments: appointments,
		availRepo:    availRepo,
		apptRepo:     apptRepo,
		doctorID:     doctorID,
		patientID:    patientID,
		slotStart:    slotStart,
	}
}

func (f *bookingFixture) book(ctx context.Context) (*domain.Appointment, error) {
	return f.appointments.Book(ctx, domain.CreateAppointmentDTO{
		DoctorID:  f.doctorID,
		PatientID: f.patientID,
		StartAt:   f.slotStart,
		EndAt:     f.slotStart.Add(domain.BlockDuration),
	})
}

func TestBookCreatesPendingAppointment(t *testing.T) {
	f := newBookingFixture(t)

	appointment, err := f.book(context.Background())
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}

	if appointment.Status != domain.AppointmentStatusPending {
		t.Errorf("new appointment status = %s, want pending", appointment.Status)
	}
	if !appointment.StartAt.Equal(f.slotStart) {
		t.Errorf("appointment start = %v, want %v", appointment.StartAt, f.slotStart)
	}

	block := f.availRepo.blocks[appointment.BlockID]
	if block == nil || !block.IsBooked {
		t.Error("claimed block must be marked booked")
	}
}

func TestBookSameSlotTwiceFails(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	if _, err := f.book(ctx); err != nil {
		t.Fatalf("first Book returned error: %v", err)
	}

	_, err := f.book(ctx)
	if !errors.Is(err, domain.ErrBlockNotFound) {
		t.Fatalf("expected ErrBlockNotFound on double booking, got %v", err)
	}
}

func TestBookRejectsPastSlot(t *testing.T) {
	f := newBookingFixture(t)

	past := time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC)
	_, err := f.appointments.Book(context.Background(), domain.CreateAppointmentDTO{
		DoctorID:  f.doctorID,
		PatientID: f.patientID,
		StartAt:   past,
		EndAt:     past.Add(domain.BlockDuration),
	})
	if !errors.Is(err, domain.ErrPastSlot) {
		t.Fatalf("expected ErrPastSlot, got %v", err)
	}
}

func TestSlotStartingNowNeitherListedNorBookable(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	// A window whose first block starts exactly at now (08:00). Listing and
	// booking must agree: the boundary block is offered by neither.
	boundary := f.appointments.now()
	if _, err := f.availability.Create(ctx, domain.CreateAvailabilityDTO{
		DoctorID: f.doctorID,
		StartAt:  boundary,
		EndAt:    boundary.Add(time.Hour),
	}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	blocks, err := f.availability.AvailableBlocks(ctx, f.doctorID, boundary, boundary.Add(time.Hour))
	if err != nil {
		t.Fatalf("AvailableBlocks returned error: %v", err)
	}
	for _, block := range blocks {
		if block.StartAt.Equal(boundary) {
			t.Error("block starting at now must not be listed as available")
		}
	}

	_, err = f.appointments.Book(ctx, domain.CreateAppointmentDTO{
		DoctorID:  f.doctorID,
		PatientID: f.patientID,
		StartAt:   boundary,
		EndAt:     boundary.Add(domain.BlockDuration),
	})
	if !errors.Is(err, domain.ErrPastSlot) {
		t.Fatalf("expected ErrPastSlot for a slot starting now, got %v", err)
	}
}

func TestBookRejectsUnknownParticipants(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	_, err := f.appointments.Book(ctx, domain.CreateAppointmentDTO{
		DoctorID:  999,
		PatientID: f.patientID,
		StartAt:   f.slotStart,
		EndAt:     f.slotStart.Add(domain.BlockDuration),
	})
	if !errors.Is(err, domain.ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}

	_, err = f.appointments.Book(ctx, domain.CreateAppointmentDTO{
		DoctorID:  f.doctorID,
		PatientID: 999,
		StartAt:   f.slotStart,
		EndAt:     f.slotStart.Add(domain.BlockDuration),
	})
	if !errors.Is(err, domain.ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestConcurrentBookingSingleWinner(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	const attempts = 20

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.book(ctx)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	won, lost := 0, 0
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, domain.ErrBlockNotFound):
			lost++
		default:
			t.Errorf("unexpected booking error: %v", err)
		}
	}

	if won != 1 {
		t.Errorf("expected exactly 1 successful booking, got %d", won)
	}
	if lost != attempts-1 {
		t.Errorf("expected %d losers, got %d", attempts-1, lost)
	}
}

func TestCancelReleasesBlockForRebooking(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	appointment, err := f.book(ctx)
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}

	canceled, err := f.appointments.Cancel(ctx, appointment.ID)
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if canceled.Status != domain.AppointmentStatusCanceled {
		t.Errorf("status = %s, want canceled", canceled.Status)
	}

	if f.availRepo.blocks[appointment.BlockID].IsBooked {
		t.Fatal("cancel must release the claimed block")
	}

	rebooked, err := f.book(ctx)
	if err != nil {
		t.Fatalf("rebooking a released slot failed: %v", err)
	}
	if rebooked.ID == appointment.ID {
		t.Error("rebooking must create a new appointment")
	}
}

func TestConfirmTransitions(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	appointment, err := f.book(ctx)
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}

	confirmed, err := f.appointments.Confirm(ctx, appointment.ID)
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if confirmed.Status != domain.AppointmentStatusConfirmed {
		t.Errorf("status = %s, want confirmed", confirmed.Status)
	}

	// Confirming twice fails: no longer pending.
	if _, err := f.appointments.Confirm(ctx, appointment.ID); !errors.Is(err, domain.ErrConfirmNotPending) {
		t.Fatalf("expected ErrConfirmNotPending, got %v", err)
	}
}

func TestConfirmCanceledAppointmentFails(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	appointment, err := f.book(ctx)
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}
	if _, err := f.appointments.Cancel(ctx, appointment.ID); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}

	if _, err := f.appointments.Confirm(ctx, appointment.ID); !errors.Is(err, domain.ErrConfirmCanceled) {
		t.Fatalf("expected ErrConfirmCanceled, got %v", err)
	}
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	appointment, err := f.book(ctx)
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}

	if _, err := f.appointments.Complete(ctx, appointment.ID); !errors.Is(err, domain.ErrCompleteNotConfirmed) {
		t.Fatalf("expected ErrCompleteNotConfirmed for a pending appointment, got %v", err)
	}

	if _, err := f.appointments.Confirm(ctx, appointment.ID); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}

	completed, err := f.appointments.Complete(ctx, appointment.ID)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if completed.Status != domain.AppointmentStatusCompleted {
		t.Errorf("status = %s, want completed", completed.Status)
	}
}

func TestCancelTerminalAppointmentFails(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	appointment, err := f.book(ctx)
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}
	if _, err := f.appointments.Confirm(ctx, appointment.ID); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if _, err := f.appointments.Complete(ctx, appointment.ID); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	if _, err := f.appointments.Cancel(ctx, appointment.ID); !errors.Is(err, domain.ErrCancelTerminal) {
		t.Fatalf("expected ErrCancelTerminal, got %v", err)
	}

	// The block stays claimed: completed appointments never free capacity.
	if !f.availRepo.blocks[appointment.BlockID].IsBooked {
		t.Error("completed appointment must keep its block booked")
	}
}

func TestTransitionOnMissingAppointment(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	if _, err := f.appointments.Confirm(ctx, 42); !errors.Is(err, domain.ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
	if _, err := f.appointments.Cancel(ctx, 42); !errors.Is(err, domain.ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"turnoplus/internal/domain"
	"turnoplus/internal/lock"
	"turnoplus/internal/repository"
)

type AppointmentServiceImpl struct {
	repo     repository.AppointmentRepository
	userRepo repository.UserRepository
	locker   lock.BlockLocker
	logger   *zap.Logger
	now      func() time.Time
}

func NewAppointmentService(repo repository.AppointmentRepository, userRepo repository.UserRepository, locker lock.BlockLocker, logger *zap.Logger) *AppointmentServiceImpl {
	return &AppointmentServiceImpl{
		repo:     repo,
		userRepo: userRepo,
		locker:   locker,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *AppointmentServiceImpl) Book(ctx context.Context, dto domain.CreateAppointmentDTO) (*domain.Appointment, error) {
	doctor, err := s.userRepo.GetByID(ctx, dto.DoctorID)
	if err != nil || doctor.Role != domain.UserRoleDoctor {
		return nil, domain.ErrDoctorNotFound
	}

	patient, err := s.userRepo.GetByID(ctx, dto.PatientID)
	if err != nil || patient.Role != domain.UserRolePatient {
		return nil, domain.ErrPatientNotFound
	}

	if !dto.StartAt.After(s.now()) {
		return nil, domain.ErrPastSlot
	}

	// The lock narrows the race window; the conditional block claim inside
	// Book is what actually guarantees a single winner.
	key := fmt.Sprintf("booking:%d:%d", dto.DoctorID, dto.StartAt.Unix())

	var appointment *domain.Appointment
	err = s.locker.WithLock(ctx, key, func(ctx context.Context) error {
		appointment, err = s.repo.Book(ctx, dto)
		return err
	})
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, domain.ErrBlockNotFound
		}
		if errors.Is(err, domain.ErrBlockNotFound) {
			return nil, err
		}
		s.logger.Error("booking failed",
			zap.Int64("doctorId", dto.DoctorID),
			zap.Int64("patientId", dto.PatientID),
			zap.Time("startAt", dto.StartAt),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("appointment booked",
		zap.Int64("appointmentId", appointment.ID),
		zap.Int64("doctorId", appointment.DoctorID),
		zap.Int64("patientId", appointment.PatientID),
		zap.Time("startAt", appointment.StartAt),
	)

	return appointment, nil
}

func (s *AppointmentServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AppointmentServiceImpl) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error) {
	total, err := s.repo.CountByFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	appointments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return appointments, total, nil
}

func (s *AppointmentServiceImpl) Confirm(ctx context.Context, id int64) (*domain.Appointment, error) {
	appointment, err := s.repo.UpdateStatus(ctx, id,
		[]domain.AppointmentStatus{domain.AppointmentStatusPending},
		domain.AppointmentStatusConfirmed,
		false,
	)
	if err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			return nil, s.transitionError(ctx, id, confirmFailure)
		}
		return nil, err
	}

	s.logger.Info("appointment confirmed", zap.Int64("appointmentId", id))

	return appointment, nil
}

func (s *AppointmentServiceImpl) Cancel(ctx context.Context, id int64) (*domain.Appointment, error) {
	appointment, err := s.repo.UpdateStatus(ctx, id,
		[]domain.AppointmentStatus{domain.AppointmentStatusPending, domain.AppointmentStatusConfirmed},
		domain.AppointmentStatusCanceled,
		true,
	)
	if err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			return nil, s.transitionError(ctx, id, cancelFailure)
		}
		return nil, err
	}

	s.logger.Info("appointment canceled, block released",
		zap.Int64("appointmentId", id),
		zap.Int64("blockId", appointment.BlockID),
	)

	return appointment, nil
}

func (s *AppointmentServiceImpl) Complete(ctx context.Context, id int64) (*domain.Appointment, error) {
	appointment, err := s.repo.UpdateStatus(ctx, id,
		[]domain.AppointmentStatus{domain.AppointmentStatusConfirmed},
		domain.AppointmentStatusCompleted,
		false,
	)
	if err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			return nil, s.transitionError(ctx, id, completeFailure)
		}
		return nil, err
	}

	s.logger.Info("appointment completed", zap.Int64("appointmentId", id))

	return appointment, nil
}

type transitionKind int

const (
	confirmFailure transitionKind = iota
	cancelFailure
	completeFailure
)

// transitionError re-reads the appointment after a failed conditional update
// to distinguish "does not exist" from "exists in the wrong state".
func (s *AppointmentServiceImpl) transitionError(ctx context.Context, id int64, kind transitionKind) error {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ErrAppointmentNotFound
	}

	switch kind {
	case confirmFailure:
		if appointment.Status == domain.AppointmentStatusCanceled {
			return domain.ErrConfirmCanceled
		}
		return domain.ErrConfirmNotPending
	case cancelFailure:
		return domain.ErrCancelTerminal
	case completeFailure:
		return domain.ErrCompleteNotConfirmed
	}

	return domain.ErrAppointmentNotFound
}

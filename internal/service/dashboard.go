package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"turnoplus/config"
	"turnoplus/internal/domain"
	"turnoplus/internal/repository"
)

type DashboardServiceImpl struct {
	userRepo        repository.UserRepository
	appointmentRepo repository.AppointmentRepository
	recordRepo      repository.MedicalRecordRepository
	cfg             config.BookingConfig
	logger          *zap.Logger
	now             func() time.Time
}

func NewDashboardService(userRepo repository.UserRepository, appointmentRepo repository.AppointmentRepository, recordRepo repository.MedicalRecordRepository, cfg config.BookingConfig, logger *zap.Logger) *DashboardServiceImpl {
	return &DashboardServiceImpl{
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
		recordRepo:      recordRepo,
		cfg:             cfg,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *DashboardServiceImpl) Summary(ctx context.Context) (*domain.DashboardSummary, error) {
	totalUsers, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	activeDoctors, err := s.userRepo.CountByRole(ctx, domain.UserRoleDoctor, true)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(s.cfg.DisplayTimeZone)
	if err != nil {
		loc = time.UTC
	}

	now := s.now().In(loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	appointmentsToday, err := s.appointmentRepo.CountInRange(ctx, dayStart, dayEnd, domain.AppointmentStatusCanceled)
	if err != nil {
		return nil, err
	}

	records, err := s.recordRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.DashboardSummary{
		TotalUsers:        totalUsers,
		ActiveDoctors:     activeDoctors,
		AppointmentsToday: appointmentsToday,
		MedicalRecords:    records,
	}, nil
}

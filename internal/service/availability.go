package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"turnoplus/config"
	"turnoplus/internal/calendar"
	"turnoplus/internal/domain"
	"turnoplus/internal/repository"
)

type AvailabilityServiceImpl struct {
	repo     repository.AvailabilityRepository
	userRepo repository.UserRepository
	cfg      config.BookingConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewAvailabilityService(repo repository.AvailabilityRepository, userRepo repository.UserRepository, cfg config.BookingConfig, logger *zap.Logger) *AvailabilityServiceImpl {
	return &AvailabilityServiceImpl{
		repo:     repo,
		userRepo: userRepo,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *AvailabilityServiceImpl) requireDoctor(ctx context.Context, doctorID int64) error {
	user, err := s.userRepo.GetByID(ctx, doctorID)
	if err != nil {
		return domain.ErrDoctorNotFound
	}
	if user.Role != domain.UserRoleDoctor {
		return domain.ErrDoctorNotFound
	}
	return nil
}

func (s *AvailabilityServiceImpl) Create(ctx context.Context, dto domain.CreateAvailabilityDTO) (*domain.AvailabilityWindow, error) {
	if err := s.requireDoctor(ctx, dto.DoctorID); err != nil {
		return nil, err
	}

	if err := domain.ValidateWindowBounds(dto.StartAt, dto.EndAt); err != nil {
		return nil, err
	}

	overlaps, err := s.repo.AnyOverlapping(ctx, dto.DoctorID, dto.StartAt, dto.EndAt, 0)
	if err != nil {
		s.logger.Error("overlap check failed", zap.Int64("doctorId", dto.DoctorID), zap.Error(err))
		return nil, err
	}
	if overlaps {
		return nil, domain.ErrOverlapConflict
	}

	blocks := domain.PartitionBlocks(0, dto.StartAt, dto.EndAt)

	window, err := s.repo.CreateWindow(ctx, dto.DoctorID, dto.StartAt, dto.EndAt, blocks)
	if err != nil {
		s.logger.Error("failed to create availability window", zap.Int64("doctorId", dto.DoctorID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("availability window created",
		zap.Int64("windowId", window.ID),
		zap.Int64("doctorId", window.DoctorID),
		zap.Int("blocks", len(window.Blocks)),
	)

	return window, nil
}

func (s *AvailabilityServiceImpl) GetByID(ctx context.Context, id int64) (*domain.AvailabilityWindow, error) {
	return s.repo.GetWindowByID(ctx, id)
}

func (s *AvailabilityServiceImpl) List(ctx context.Context, filter domain.AvailabilityFilter) ([]domain.AvailabilityWindow, error) {
	if err := s.requireDoctor(ctx, filter.DoctorID); err != nil {
		return nil, err
	}
	return s.repo.ListWindows(ctx, filter)
}

func (s *AvailabilityServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateAvailabilityDTO) (*domain.AvailabilityWindow, error) {
	window, err := s.repo.GetWindowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	startAt := window.StartAt
	endAt := window.EndAt
	if dto.StartAt != nil {
		startAt = *dto.StartAt
	}
	if dto.EndAt != nil {
		endAt = *dto.EndAt
	}

	if err := domain.ValidateWindowBounds(startAt, endAt); err != nil {
		return nil, err
	}

	overlaps, err := s.repo.AnyOverlapping(ctx, window.DoctorID, startAt, endAt, window.ID)
	if err != nil {
		s.logger.Error("overlap check failed", zap.Int64("windowId", id), zap.Error(err))
		return nil, err
	}
	if overlaps {
		return nil, domain.ErrOverlapConflict
	}

	window.StartAt = startAt
	window.EndAt = endAt
	blocks := domain.PartitionBlocks(window.ID, startAt, endAt)

	updated, err := s.repo.ReplaceWindow(ctx, *window, blocks)
	if err != nil {
		return nil, err
	}

	s.logger.Info("availability window updated", zap.Int64("windowId", id))

	return updated, nil
}

func (s *AvailabilityServiceImpl) DeleteUnbooked(ctx context.Context, id int64) (*domain.DeleteUnbookedResult, error) {
	result, err := s.repo.DeleteUnbooked(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("unbooked blocks removed",
		zap.Int64("windowId", id),
		zap.Int("removed", result.Removed),
		zap.Bool("windowDeleted", result.Window == nil),
	)

	return result, nil
}

func (s *AvailabilityServiceImpl) DeleteBlock(ctx context.Context, blockID int64) error {
	return s.repo.DeleteBlock(ctx, blockID)
}

func (s *AvailabilityServiceImpl) AvailableBlocks(ctx context.Context, doctorID int64, from, to time.Time) ([]domain.AppointmentBlock, error) {
	if err := s.requireDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	// Past blocks are never offered, whatever range the client asked for.
	return s.repo.ListAvailableBlocks(ctx, doctorID, from, to, s.now())
}

func (s *AvailabilityServiceImpl) AvailableBlockCounts(ctx context.Context, doctorID int64, from, to time.Time, tz string) (map[string]int, error) {
	if err := s.requireDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	if tz == "" {
		tz = s.cfg.DisplayTimeZone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}

	blocks, err := s.repo.ListAvailableBlocks(ctx, doctorID, from, to, s.now())
	if err != nil {
		return nil, err
	}

	counts := calendar.CountByDay(
		blocks,
		func(b domain.AppointmentBlock) time.Time { return b.StartAt },
		loc,
	)

	return counts, nil
}

func (s *AvailabilityServiceImpl) CalendarMonth(ctx context.Context, doctorID int64, year int, month time.Month, tz string) ([]calendar.Day[domain.AppointmentBlock], error) {
	if err := s.requireDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	if tz == "" {
		tz = s.cfg.DisplayTimeZone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}

	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(firstOfMonth.Weekday()) - int(time.Monday) + 7) % 7
	gridStart := firstOfMonth.AddDate(0, 0, -offset)
	gridEnd := gridStart.AddDate(0, 0, calendar.GridCells)

	blocks, err := s.repo.ListAvailableBlocks(ctx, doctorID, gridStart, gridEnd, s.now())
	if err != nil {
		return nil, err
	}

	days := calendar.MonthGrid(
		blocks,
		func(b domain.AppointmentBlock) time.Time { return b.StartAt },
		firstOfMonth,
		s.now(),
		time.Monday,
		loc,
	)

	return days, nil
}

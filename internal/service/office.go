package service

import (
	"context"

	"go.uber.org/zap"

	"turnoplus/internal/domain"
	"turnoplus/internal/repository"
)

type OfficeServiceImpl struct {
	repo   repository.OfficeRepository
	logger *zap.Logger
}

func NewOfficeService(repo repository.OfficeRepository, logger *zap.Logger) *OfficeServiceImpl {
	return &OfficeServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *OfficeServiceImpl) Create(ctx context.Context, dto domain.CreateOfficeDTO) (int64, error) {
	id, err := s.repo.Create(ctx, dto)
	if err != nil {
		s.logger.Error("office creation failed", zap.Error(err))
		return 0, err
	}

	s.logger.Info("office created", zap.Int64("officeId", id), zap.String("name", dto.Name))

	return id, nil
}

func (s *OfficeServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Office, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *OfficeServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateOfficeDTO) error {
	return s.repo.Update(ctx, id, dto)
}

func (s *OfficeServiceImpl) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *OfficeServiceImpl) List(ctx context.Context) ([]domain.Office, error) {
	return s.repo.List(ctx)
}

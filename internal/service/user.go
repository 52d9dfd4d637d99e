package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"turnoplus/internal/domain"
	"turnoplus/internal/repository"
	"turnoplus/pkg/auth"
	"turnoplus/pkg/validator"
)

type UserServiceImpl struct {
	repo   repository.UserRepository
	logger *zap.Logger
}

func NewUserService(repo repository.UserRepository, logger *zap.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *UserServiceImpl) Create(ctx context.Context, dto domain.CreateUserDTO) (int64, error) {
	existingUser, err := s.repo.GetByEmail(ctx, dto.Email)
	if err == nil && existingUser != nil {
		return 0, errors.New("user with this email already exists")
	}

	dto.FullName = validator.FormatName(dto.FullName)

	if dto.Phone != nil {
		phone := validator.FormatPhone(*dto.Phone)
		if !validator.ValidatePhone(phone) {
			return 0, errors.New("invalid phone number")
		}
		dto.Phone = &phone
	}

	if dto.Role == domain.UserRoleDoctor && dto.LicenseNumber != nil {
		if !validator.ValidateLicenseNumber(*dto.LicenseNumber) {
			return 0, errors.New("invalid license number")
		}
	}

	hashedPassword, err := auth.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		return 0, errors.New("user creation failed")
	}

	id, err := s.repo.Create(ctx, dto, hashedPassword)
	if err != nil {
		s.logger.Error("user creation failed", zap.Error(err))
		return 0, err
	}

	s.logger.Info("user created", zap.Int64("userId", id), zap.String("role", string(dto.Role)))

	return id, nil
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error {
	if dto.Email != nil {
		existingUser, err := s.repo.GetByEmail(ctx, *dto.Email)
		if err == nil && existingUser != nil && existingUser.ID != id {
			return errors.New("user with this email already exists")
		}
	}

	if dto.Phone != nil {
		phone := validator.FormatPhone(*dto.Phone)
		if !validator.ValidatePhone(phone) {
			return errors.New("invalid phone number")
		}
		dto.Phone = &phone
	}

	return s.repo.Update(ctx, id, dto)
}

func (s *UserServiceImpl) UpdatePassword(ctx context.Context, id int64, dto domain.PasswordUpdateDTO) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	match, err := auth.VerifyPassword(dto.OldPassword, user.PasswordHash)
	if err != nil || !match {
		return errors.New("invalid old password")
	}

	hashedPassword, err := auth.HashPassword(dto.NewPassword)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		return errors.New("password update failed")
	}

	return s.repo.UpdatePassword(ctx, id, hashedPassword)
}

func (s *UserServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deactivated", zap.Int64("userId", id))

	return nil
}

func (s *UserServiceImpl) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	return s.repo.List(ctx, filter)
}

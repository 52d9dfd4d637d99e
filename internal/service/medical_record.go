package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"turnoplus/internal/domain"
	"turnoplus/internal/repository"
	"turnoplus/internal/storage"
)

const attachmentURLExpiry = 15 * time.Minute

type MedicalRecordServiceImpl struct {
	repo        repository.MedicalRecordRepository
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
	logger      *zap.Logger
}

func NewMedicalRecordService(repo repository.MedicalRecordRepository, userRepo repository.UserRepository, fileStorage storage.FileStorage, logger *zap.Logger) *MedicalRecordServiceImpl {
	return &MedicalRecordServiceImpl{
		repo:        repo,
		userRepo:    userRepo,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

func (s *MedicalRecordServiceImpl) Create(ctx context.Context, doctorID int64, dto domain.CreateMedicalRecordDTO) (int64, error) {
	doctor, err := s.userRepo.GetByID(ctx, doctorID)
	if err != nil || doctor.Role != domain.UserRoleDoctor {
		return 0, domain.ErrDoctorNotFound
	}

	patient, err := s.userRepo.GetByID(ctx, dto.PatientID)
	if err != nil || patient.Role != domain.UserRolePatient {
		return 0, domain.ErrPatientNotFound
	}

	id, err := s.repo.Create(ctx, doctorID, dto)
	if err != nil {
		s.logger.Error("medical record creation failed",
			zap.Int64("doctorId", doctorID),
			zap.Int64("patientId", dto.PatientID),
			zap.Error(err),
		)
		return 0, err
	}

	s.logger.Info("medical record created", zap.Int64("recordId", id), zap.Int64("patientId", dto.PatientID))

	return id, nil
}

func (s *MedicalRecordServiceImpl) GetByID(ctx context.Context, id int64) (*domain.MedicalRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *MedicalRecordServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateMedicalRecordDTO) error {
	return s.repo.Update(ctx, id, dto)
}

func (s *MedicalRecordServiceImpl) List(ctx context.Context, filter domain.MedicalRecordFilter) ([]domain.MedicalRecord, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	return s.repo.List(ctx, filter)
}

func (s *MedicalRecordServiceImpl) AddAttachment(ctx context.Context, recordID int64, data []byte, filename, contentType string) (*domain.RecordAttachment, error) {
	if s.fileStorage == nil {
		return nil, errors.New("file storage is not configured")
	}

	if _, err := s.repo.GetByID(ctx, recordID); err != nil {
		return nil, err
	}

	url, err := s.fileStorage.UploadFile(ctx, data, filename, contentType)
	if err != nil {
		s.logger.Error("attachment upload failed", zap.Int64("recordId", recordID), zap.Error(err))
		return nil, err
	}

	attachment := domain.RecordAttachment{
		RecordID:    recordID,
		FileName:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		URL:         url,
	}

	attachment.ID, err = s.repo.AddAttachment(ctx, attachment)
	if err != nil {
		// Upload succeeded but the row did not; remove the orphan object.
		if delErr := s.fileStorage.DeleteFile(ctx, url); delErr != nil {
			s.logger.Warn("failed to remove orphan attachment", zap.String("url", url), zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("attachment added", zap.Int64("recordId", recordID), zap.Int64("attachmentId", attachment.ID))

	return &attachment, nil
}

func (s *MedicalRecordServiceImpl) AttachmentURL(ctx context.Context, recordID, attachmentID int64) (string, error) {
	if s.fileStorage == nil {
		return "", errors.New("file storage is not configured")
	}

	attachments, err := s.repo.ListAttachments(ctx, recordID)
	if err != nil {
		return "", err
	}

	for _, attachment := range attachments {
		if attachment.ID == attachmentID {
			return s.fileStorage.GetPresignedURL(ctx, attachment.URL, attachmentURLExpiry)
		}
	}

	return "", domain.ErrRecordNotFound
}

package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"turnoplus/internal/domain"
)

type Repositories struct {
	User          UserRepository
	Auth          AuthRepository
	Availability  AvailabilityRepository
	Appointment   AppointmentRepository
	MedicalRecord MedicalRecordRepository
	Office        OfficeRepository
}

func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		Auth:          NewAuthRepository(db),
		Availability:  NewAvailabilityRepository(db),
		Appointment:   NewAppointmentRepository(db),
		MedicalRecord: NewMedicalRecordRepository(db),
		Office:        NewOfficeRepository(db),
	}
}

type UserRepository interface {
	Create(ctx context.Context, dto domain.CreateUserDTO, passwordHash string) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error)
	Count(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role domain.UserRole, activeOnly bool) (int, error)
}

type AuthRepository interface {
	CreateSession(ctx context.Context, session domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsByUserID(ctx context.Context, userID int64) error
}

type AvailabilityRepository interface {
	// CreateWindow inserts the window and its eagerly materialized blocks
	// in one transaction and returns the persisted window with blocks.
	CreateWindow(ctx context.Context, doctorID int64, startAt, endAt time.Time, blocks []domain.AppointmentBlock) (*domain.AvailabilityWindow, error)
	GetWindowByID(ctx context.Context, id int64) (*domain.AvailabilityWindow, error)
	ListWindows(ctx context.Context, filter domain.AvailabilityFilter) ([]domain.AvailabilityWindow, error)
	// AnyOverlapping applies the half-open interval test against the
	// doctor's existing windows; excludeWindowID skips one window (for
	// updates) and may be zero.
	AnyOverlapping(ctx context.Context, doctorID int64, startAt, endAt time.Time, excludeWindowID int64) (bool, error)
	// ReplaceWindow rewrites a window's bounds and re-materializes its
	// blocks. Fails with domain.ErrWindowHasBookings when any existing
	// block is booked.
	ReplaceWindow(ctx context.Context, window domain.AvailabilityWindow, blocks []domain.AppointmentBlock) (*domain.AvailabilityWindow, error)
	// DeleteUnbooked removes the free blocks of a window, removing the
	// window itself when nothing remains.
	DeleteUnbooked(ctx context.Context, windowID int64) (*domain.DeleteUnbookedResult, error)
	DeleteBlock(ctx context.Context, blockID int64) error
	ListAvailableBlocks(ctx context.Context, doctorID int64, from, to, notBefore time.Time) ([]domain.AppointmentBlock, error)
}

type AppointmentRepository interface {
	// Book atomically claims the block matching (doctor_id, start_at,
	// end_at) and creates the pending appointment. Returns
	// domain.ErrBlockNotFound when no unbooked block matches, which is
	// also the loser's outcome under concurrent booking.
	Book(ctx context.Context, dto domain.CreateAppointmentDTO) (*domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error)
	CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error)
	// UpdateStatus transitions id from one of the expected statuses,
	// optionally releasing the claimed block in the same transaction.
	// Returns domain.ErrAppointmentNotFound when the row exists in none
	// of the expected statuses.
	UpdateStatus(ctx context.Context, id int64, from []domain.AppointmentStatus, to domain.AppointmentStatus, releaseBlock bool) (*domain.Appointment, error)
	CountInRange(ctx context.Context, from, to time.Time, excludeStatus domain.AppointmentStatus) (int, error)
}

type MedicalRecordRepository interface {
	Create(ctx context.Context, doctorID int64, dto domain.CreateMedicalRecordDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.MedicalRecord, error)
	Update(ctx context.Context, id int64, dto domain.UpdateMedicalRecordDTO) error
	List(ctx context.Context, filter domain.MedicalRecordFilter) ([]domain.MedicalRecord, int, error)
	Count(ctx context.Context) (int, error)
	AddAttachment(ctx context.Context, attachment domain.RecordAttachment) (int64, error)
	ListAttachments(ctx context.Context, recordID int64) ([]domain.RecordAttachment, error)
}

type OfficeRepository interface {
	Create(ctx context.Context, dto domain.CreateOfficeDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Office, error)
	Update(ctx context.Context, id int64, dto domain.UpdateOfficeDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Office, error)
}

package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"turnoplus/config"
	"turnoplus/internal/calendar"
	"turnoplus/internal/domain"
	"turnoplus/internal/lock"
	"turnoplus/internal/repository"
	"turnoplus/internal/storage"
)

type Deps struct {
	Repos       *repository.Repositories
	Logger      *zap.Logger
	Config      *config.Config
	FileStorage storage.FileStorage
	Locker      lock.BlockLocker
}

type Services struct {
	Auth          AuthService
	User          UserService
	Availability  AvailabilityService
	Appointment   AppointmentService
	MedicalRecord MedicalRecordService
	Office        OfficeService
	Dashboard     DashboardService
}

func NewServices(deps Deps) *Services {
	return &Services{
		Auth:          NewAuthService(deps.Repos.Auth, deps.Repos.User, deps.Config.JWT, deps.Logger),
		User:          NewUserService(deps.Repos.User, deps.Logger),
		Availability:  NewAvailabilityService(deps.Repos.Availability, deps.Repos.User, deps.Config.Booking, deps.Logger),
		Appointment:   NewAppointmentService(deps.Repos.Appointment, deps.Repos.User, deps.Locker, deps.Logger),
		MedicalRecord: NewMedicalRecordService(deps.Repos.MedicalRecord, deps.Repos.User, deps.FileStorage, deps.Logger),
		Office:        NewOfficeService(deps.Repos.Office, deps.Logger),
		Dashboard:     NewDashboardService(deps.Repos.User, deps.Repos.Appointment, deps.Repos.MedicalRecord, deps.Config.Booking, deps.Logger),
	}
}

type AuthService interface {
	Register(ctx context.Context, dto domain.RegisterRequest) (int64, error)
	Login(ctx context.Context, dto domain.LoginRequest, userAgent, ip string) (*domain.Tokens, error)
	RefreshTokens(ctx context.Context, refreshToken, userAgent, ip string) (*domain.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ParseToken(ctx context.Context, token string) (int64, domain.UserRole, error)
}

type UserService interface {
	Create(ctx context.Context, dto domain.CreateUserDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, dto domain.PasswordUpdateDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error)
}

type AvailabilityService interface {
	// Create validates alignment, duration and per-doctor overlap, then
	// persists the window together with its 30-minute blocks.
	Create(ctx context.Context, dto domain.CreateAvailabilityDTO) (*domain.AvailabilityWindow, error)
	GetByID(ctx context.Context, id int64) (*domain.AvailabilityWindow, error)
	List(ctx context.Context, filter domain.AvailabilityFilter) ([]domain.AvailabilityWindow, error)
	// Update re-validates the merged bounds and re-materializes blocks.
	// Windows with booked blocks cannot be updated.
	Update(ctx context.Context, id int64, dto domain.UpdateAvailabilityDTO) (*domain.AvailabilityWindow, error)
	// DeleteUnbooked removes the free capacity of a window, keeping booked
	// blocks and their window alive.
	DeleteUnbooked(ctx context.Context, id int64) (*domain.DeleteUnbookedResult, error)
	DeleteBlock(ctx context.Context, blockID int64) error
	// AvailableBlocks lists free, future blocks of a doctor inside [from, to).
	AvailableBlocks(ctx context.Context, doctorID int64, from, to time.Time) ([]domain.AppointmentBlock, error)
	// AvailableBlockCounts aggregates free, future blocks per day (YYYY-MM-DD
	// keys in the requested timezone), the lightweight feed for calendar
	// availability markers.
	AvailableBlockCounts(ctx context.Context, doctorID int64, from, to time.Time, tz string) (map[string]int, error)
	// CalendarMonth returns the 42-cell month grid with free future blocks
	// bucketed per day. tz overrides the configured display timezone when
	// non-empty.
	CalendarMonth(ctx context.Context, doctorID int64, year int, month time.Month, tz string) ([]calendar.Day[domain.AppointmentBlock], error)
}

type AppointmentService interface {
	// Book claims the block matching the requested slot and creates a
	// pending appointment. Exactly one of any set of concurrent bookers of
	// the same slot succeeds.
	Book(ctx context.Context, dto domain.CreateAppointmentDTO) (*domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error)
	Confirm(ctx context.Context, id int64) (*domain.Appointment, error)
	Cancel(ctx context.Context, id int64) (*domain.Appointment, error)
	Complete(ctx context.Context, id int64) (*domain.Appointment, error)
}

type MedicalRecordService interface {
	Create(ctx context.Context, doctorID int64, dto domain.CreateMedicalRecordDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.MedicalRecord, error)
	Update(ctx context.Context, id int64, dto domain.UpdateMedicalRecordDTO) error
	List(ctx context.Context, filter domain.MedicalRecordFilter) ([]domain.MedicalRecord, int, error)
	AddAttachment(ctx context.Context, recordID int64, data []byte, filename, contentType string) (*domain.RecordAttachment, error)
	AttachmentURL(ctx context.Context, recordID, attachmentID int64) (string, error)
}

type OfficeService interface {
	Create(ctx context.Context, dto domain.CreateOfficeDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Office, error)
	Update(ctx context.Context, id int64, dto domain.UpdateOfficeDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Office, error)
}

type DashboardService interface {
	Summary(ctx context.Context) (*domain.DashboardSummary, error)
}

package domain

import (
	"time"
)

type UserRole string

const (
	UserRolePatient UserRole = "patient"
	UserRoleDoctor  UserRole = "doctor"
	UserRoleAdmin   UserRole = "admin"
)

// User covers all three roles; role-specific profile fields are nullable and
// live on the same row, mirroring the single-table account model.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         UserRole  `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Doctor profile
	Specialty       *string `json:"specialty,omitempty"`
	LicenseNumber   *string `json:"license_number,omitempty"`
	YearsExperience *int    `json:"years_experience,omitempty"`
	OfficeID        *int64  `json:"office_id,omitempty"`

	// Patient profile
	DocumentType        *string    `json:"document_type,omitempty"`
	DocumentNumber      *string    `json:"document_number,omitempty"`
	Address             *string    `json:"address,omitempty"`
	Phone               *string    `json:"phone,omitempty"`
	DateOfBirth         *time.Time `json:"date_of_birth,omitempty"`
	MedicalRecordNumber *string    `json:"medical_record_number,omitempty"`
	EmergencyContact    *string    `json:"emergency_contact,omitempty"`
	ObraSocialName      *string    `json:"obra_social_name,omitempty"`
	ObraSocialNumber    *string    `json:"obra_social_number,omitempty"`
}

type CreateUserDTO struct {
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=6"`
	FullName string   `json:"full_name" binding:"required"`
	Role     UserRole `json:"role" binding:"required,oneof=patient doctor admin"`

	Specialty       *string `json:"specialty"`
	LicenseNumber   *string `json:"license_number"`
	YearsExperience *int    `json:"years_experience"`
	OfficeID        *int64  `json:"office_id"`

	DocumentType        *string    `json:"document_type"`
	DocumentNumber      *string    `json:"document_number"`
	Address             *string    `json:"address"`
	Phone               *string    `json:"phone"`
	DateOfBirth         *time.Time `json:"date_of_birth"`
	MedicalRecordNumber *string    `json:"medical_record_number"`
	EmergencyContact    *string    `json:"emergency_contact"`
	ObraSocialName      *string    `json:"obra_social_name"`
	ObraSocialNumber    *string    `json:"obra_social_number"`
}

type UpdateUserDTO struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	FullName *string `json:"full_name"`
	IsActive *bool   `json:"is_active"`

	Specialty       *string `json:"specialty"`
	LicenseNumber   *string `json:"license_number"`
	YearsExperience *int    `json:"years_experience"`
	OfficeID        *int64  `json:"office_id"`

	DocumentNumber      *string    `json:"document_number"`
	Address             *string    `json:"address"`
	Phone               *string    `json:"phone"`
	DateOfBirth         *time.Time `json:"date_of_birth"`
	EmergencyContact    *string    `json:"emergency_contact"`
	ObraSocialName      *string    `json:"obra_social_name"`
	ObraSocialNumber    *string    `json:"obra_social_number"`
}

type PasswordUpdateDTO struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type UserFilter struct {
	Role   *UserRole
	Limit  int
	Offset int
}

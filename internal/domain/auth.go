package domain

import (
	"time"
)

type Session struct {
	ID           string
	UserID       int64
	RefreshToken string
	UserAgent    string
	IP           string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RegisterRequest struct {
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=6"`
	FullName string   `json:"full_name" binding:"required"`
	Role     UserRole `json:"role" binding:"required,oneof=patient doctor"`

	Specialty     *string `json:"specialty"`
	LicenseNumber *string `json:"license_number"`

	DocumentType   *string `json:"document_type"`
	DocumentNumber *string `json:"document_number"`
	Address        *string `json:"address"`
	Phone          *string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

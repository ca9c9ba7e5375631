package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RegisterRequest is the tagged registration schema. Role selects the variant;
// variant-specific fields are validated in the auth service after dispatch.
type RegisterRequest struct {
	Role     Role   `json:"role" binding:"required,oneof=doctor hospital_admin"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone"`

	// doctor variant
	Specialization string    `json:"specialization"`
	LicenseNumber  string    `json:"licenseNumber"`
	CNIC           string    `json:"cnic" binding:"omitempty,cnic"`
	HospitalID     uuid.UUID `json:"hospitalId"`

	// hospital_admin variant
	Hospital *HospitalRegistration `json:"hospital"`
}

type HospitalRegistration struct {
	Name         string `json:"name" binding:"required"`
	Address      string `json:"address" binding:"required"`
	HospitalType string `json:"hospitalType" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenClaims are the JWT claims carried by access and refresh tokens.
type TokenClaims struct {
	jwt.RegisteredClaims
	AccountID uuid.UUID `json:"account_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
}

// RegisterResponse returns the created profile without credential material.
type RegisterResponse struct {
	Profile  *Profile  `json:"profile"`
	Hospital *Hospital `json:"hospital,omitempty"`
}

// CreatePatientRequest is the assistant-submitted patient identity claim.
type CreatePatientRequest struct {
	FullName string     `json:"fullName" binding:"required"`
	CNIC     string     `json:"cnic" binding:"required,cnic"`
	Phone    string     `json:"phone"`
	Gender   string     `json:"gender" binding:"omitempty,oneof=male female other"`
	DOB      *time.Time `json:"dob"`
}

// CreateAssistantRequest is submitted by an approved doctor.
type CreateAssistantRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone"`
}

// OverrideApprovalRequest is the super-admin escape hatch out of terminal
// states.
type OverrideApprovalRequest struct {
	Status ApprovalStatus `json:"status" binding:"required,oneof=pending approved rejected"`
}

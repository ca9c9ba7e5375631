package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSuperAdmin      Role = "super_admin"
	RoleHospitalAdmin   Role = "hospital_admin"
	RoleDoctor          Role = "doctor"
	RoleDoctorAssistant Role = "doctor_assistant"
	RolePatient         Role = "patient"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleHospitalAdmin, RoleDoctor, RoleDoctorAssistant, RolePatient:
		return true
	}
	return false
}

// Account is the credential record behind a profile. One-to-one with Profile,
// sharing the same id.
type Account struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Profile is the generic per-account record holding role and the aggregate
// approval gate. Role-specific detail lives in the sub-record tables.
type Profile struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	FullName       string         `json:"full_name" db:"full_name"`
	Phone          string         `json:"phone" db:"phone"`
	Gender         string         `json:"gender" db:"gender"`
	DOB            *time.Time     `json:"dob,omitempty" db:"dob"`
	Role           Role           `json:"role" db:"role"`
	ApprovalStatus ApprovalStatus `json:"approval_status" db:"approval_status"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// ProfilePatch carries the demographic fields reconciliation may refresh on a
// canonical patient profile. Nil fields are left untouched.
type ProfilePatch struct {
	FullName *string
	Phone    *string
	Gender   *string
	DOB      *time.Time
}

func (p ProfilePatch) Empty() bool {
	return p.FullName == nil && p.Phone == nil && p.Gender == nil && p.DOB == nil
}

// Actor is the authenticated caller resolved from the bearer token, passed
// through the request context instead of any process-wide state.
type Actor struct {
	ProfileID      uuid.UUID
	Email          string
	Role           Role
	ApprovalStatus ApprovalStatus
}

type ProfileFilters struct {
	Role   Role
	Status ApprovalStatus
}

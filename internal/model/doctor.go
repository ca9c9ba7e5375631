package model

import (
	"time"

	"github.com/google/uuid"
)

type DoctorProfile struct {
	ProfileID      uuid.UUID      `json:"profile_id" db:"profile_id"`
	Specialization string         `json:"specialization" db:"specialization"`
	HospitalID     uuid.UUID      `json:"hospital_id" db:"hospital_id"`
	LicenseNumber  string         `json:"license_number" db:"license_number"`
	CNIC           string         `json:"cnic" db:"cnic"`
	ApprovalStatus ApprovalStatus `json:"approval_status" db:"approval_status"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// HospitalAdminProfile links a hospital_admin profile to its hospital. Status
// lives on the Profile and the Hospital, never here.
type HospitalAdminProfile struct {
	ProfileID  uuid.UUID `json:"profile_id" db:"profile_id"`
	HospitalID uuid.UUID `json:"hospital_id" db:"hospital_id"`
}

type DoctorAssistantProfile struct {
	ProfileID       uuid.UUID      `json:"profile_id" db:"profile_id"`
	DoctorProfileID uuid.UUID      `json:"doctor_profile_id" db:"doctor_profile_id"`
	HospitalID      uuid.UUID      `json:"hospital_id" db:"hospital_id"`
	ApprovalStatus  ApprovalStatus `json:"approval_status" db:"approval_status"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// DoctorListing joins the doctor sub-record with its profile for the approval
// dashboards.
type DoctorListing struct {
	DoctorProfile
	FullName      string         `json:"full_name" db:"full_name"`
	ProfileStatus ApprovalStatus `json:"profile_status" db:"profile_status"`
}

type AssistantListing struct {
	DoctorAssistantProfile
	FullName      string         `json:"full_name" db:"full_name"`
	ProfileStatus ApprovalStatus `json:"profile_status" db:"profile_status"`
}

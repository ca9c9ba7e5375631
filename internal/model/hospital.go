package model

import "github.com/google/uuid"

type Hospital struct {
	Base
	Name           string         `json:"name" db:"name"`
	Address        string         `json:"address" db:"address"`
	HospitalType   string         `json:"hospital_type" db:"hospital_type"`
	AdminProfileID uuid.UUID      `json:"admin_profile_id" db:"admin_profile_id"`
	Status         ApprovalStatus `json:"status" db:"status"`
}

// HospitalRef is the compact shape returned by patient search.
type HospitalRef struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}

type HospitalFilters struct {
	Status ApprovalStatus
}

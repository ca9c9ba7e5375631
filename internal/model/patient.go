package model

import (
	"time"

	"github.com/google/uuid"
)

// PatientProfile is one hospital linkage for a patient identity. The same CNIC
// may appear in several rows (one per hospital), all sharing the profile id of
// the first row ever created for that CNIC.
type PatientProfile struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ProfileID  uuid.UUID `json:"profile_id" db:"profile_id"`
	HospitalID uuid.UUID `json:"hospital_id" db:"hospital_id"`
	CNIC       string    `json:"cnic" db:"cnic"`
	CreatedBy  uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ReconciliationStatus is the outcome of a patient submission.
type ReconciliationStatus string

const (
	ReconciliationCreated       ReconciliationStatus = "created"
	ReconciliationAlreadyExists ReconciliationStatus = "already_exists"
	ReconciliationLinked        ReconciliationStatus = "linked"
)

// PatientRecord is the patient view returned to callers: the canonical
// profile merged with the relevant hospital linkage.
type PatientRecord struct {
	ID         uuid.UUID  `json:"id"`
	ProfileID  uuid.UUID  `json:"profile_id"`
	FullName   string     `json:"full_name"`
	CNIC       string     `json:"cnic"`
	Phone      string     `json:"phone,omitempty"`
	Gender     string     `json:"gender,omitempty"`
	DOB        *time.Time `json:"dob,omitempty"`
	HospitalID uuid.UUID  `json:"hospital_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ReconciliationResult pairs the outcome with the resulting patient record.
type ReconciliationResult struct {
	Status  ReconciliationStatus `json:"status"`
	Patient *PatientRecord       `json:"patient"`
}

// PatientSearchResult is the response shape of the CNIC search endpoint.
type PatientSearchResult struct {
	Found     bool           `json:"found"`
	Patient   *PatientRecord `json:"patient,omitempty"`
	Hospitals []HospitalRef  `json:"hospitals,omitempty"`
}

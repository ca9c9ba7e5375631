package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/medpraxis/practice-api/internal/model"
)

// All repository interfaces in one file
type (
	AccountRepository interface {
		Create(ctx context.Context, account *model.Account) error
		Get(ctx context.Context, id uuid.UUID) (*model.Account, error)
		GetByEmail(ctx context.Context, email string) (*model.Account, error)
	}

	ProfileRepository interface {
		Create(ctx context.Context, profile *model.Profile) error
		Get(ctx context.Context, id uuid.UUID) (*model.Profile, error)
		List(ctx context.Context, filters *model.ProfileFilters) ([]*model.Profile, error)
		UpdateApprovalStatus(ctx context.Context, id uuid.UUID, status model.ApprovalStatus) error
		UpdateDemographics(ctx context.Context, id uuid.UUID, patch model.ProfilePatch) error
	}

	HospitalRepository interface {
		Create(ctx context.Context, hospital *model.Hospital) error
		Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error)
		GetRefs(ctx context.Context, ids []uuid.UUID) ([]model.HospitalRef, error)
		List(ctx context.Context, filters *model.HospitalFilters) ([]*model.Hospital, error)
		ListByAdmin(ctx context.Context, adminProfileID uuid.UUID) ([]*model.Hospital, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.ApprovalStatus) error
		UpdateStatusByAdmin(ctx context.Context, adminProfileID uuid.UUID, status model.ApprovalStatus) error
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.DoctorProfile) error
		Get(ctx context.Context, profileID uuid.UUID) (*model.DoctorProfile, error)
		ListByHospitals(ctx context.Context, hospitalIDs []uuid.UUID, status model.ApprovalStatus) ([]*model.DoctorListing, error)
		UpdateApprovalStatus(ctx context.Context, profileID uuid.UUID, status model.ApprovalStatus) error
	}

	HospitalAdminRepository interface {
		Create(ctx context.Context, link *model.HospitalAdminProfile) error
		Get(ctx context.Context, profileID uuid.UUID) (*model.HospitalAdminProfile, error)
	}

	AssistantRepository interface {
		Create(ctx context.Context, assistant *model.DoctorAssistantProfile) error
		Get(ctx context.Context, profileID uuid.UUID) (*model.DoctorAssistantProfile, error)
		ListByDoctor(ctx context.Context, doctorProfileID uuid.UUID) ([]*model.AssistantListing, error)
		ListByHospitals(ctx context.Context, hospitalIDs []uuid.UUID, status model.ApprovalStatus) ([]*model.AssistantListing, error)
		UpdateApprovalStatus(ctx context.Context, profileID uuid.UUID, status model.ApprovalStatus) error
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.PatientProfile) error
		// ListByCNIC returns every hospital linkage for a CNIC, oldest first.
		// The oldest row's profile is the canonical identity.
		ListByCNIC(ctx context.Context, cnic string) ([]*model.PatientProfile, error)
		ListByHospital(ctx context.Context, hospitalID uuid.UUID) ([]*model.PatientProfile, error)
		Relink(ctx context.Context, id uuid.UUID, hospitalID, createdBy uuid.UUID) error
	}
)

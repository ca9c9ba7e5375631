package assistant

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/medpraxis/practice-api/internal/model"
	"github.com/medpraxis/practice-api/internal/repository"
)

const bcryptCost = 12

type Service struct {
	accountRepo   repository.AccountRepository
	profileRepo   repository.ProfileRepository
	doctorRepo    repository.DoctorRepository
	assistantRepo repository.AssistantRepository
}

func NewService(
	accountRepo repository.AccountRepository,
	profileRepo repository.ProfileRepository,
	doctorRepo repository.DoctorRepository,
	assistantRepo repository.AssistantRepository,
) *Service {
	return &Service{
		accountRepo:   accountRepo,
		profileRepo:   profileRepo,
		doctorRepo:    doctorRepo,
		assistantRepo: assistantRepo,
	}
}

// Create registers an assistant on behalf of an approved doctor. The
// assistant inherits the doctor's hospital and starts pending on both gates.
func (s *Service) Create(ctx context.Context, actor model.Actor, req *model.CreateAssistantRequest) (*model.Profile, error) {
	doctor, err := s.doctorRepo.Get(ctx, actor.ProfileID)
	if err != nil {
		return nil, model.NewNotLinkedError("caller has no doctor profile")
	}
	if doctor.ApprovalStatus != model.ApprovalStatusApproved {
		return nil, model.NewValidationError("doctor is not approved")
	}

	if existing, err := s.accountRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, model.NewValidationError("email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, model.NewUpstreamError("hash password", err)
	}

	account := &model.Account{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, model.NewUpstreamError("create account", err)
	}

	profile := &model.Profile{
		ID:             account.ID,
		FullName:       req.FullName,
		Phone:          req.Phone,
		Role:           model.RoleDoctorAssistant,
		ApprovalStatus: model.ApprovalStatusPending,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, model.NewUpstreamError("create profile", err)
	}

	if err := s.assistantRepo.Create(ctx, &model.DoctorAssistantProfile{
		ProfileID:       profile.ID,
		DoctorProfileID: doctor.ProfileID,
		HospitalID:      doctor.HospitalID,
		ApprovalStatus:  model.ApprovalStatusPending,
	}); err != nil {
		return nil, model.NewUpstreamError("create assistant linkage", err)
	}

	return profile, nil
}

// ListForDoctor returns the assistants linked to the calling doctor.
func (s *Service) ListForDoctor(ctx context.Context, doctorProfileID uuid.UUID) ([]*model.AssistantListing, error) {
	assistants, err := s.assistantRepo.ListByDoctor(ctx, doctorProfileID)
	if err != nil {
		return nil, model.NewUpstreamError("list assistants", err)
	}
	return assistants, nil
}

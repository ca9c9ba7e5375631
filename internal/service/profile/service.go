package profile

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/medpraxis/practice-api/internal/model"
	"github.com/medpraxis/practice-api/internal/repository"
)

type Service struct {
	profileRepo repository.ProfileRepository
	accountRepo repository.AccountRepository
	logger      zerolog.Logger
}

func NewService(profileRepo repository.ProfileRepository, accountRepo repository.AccountRepository, logger zerolog.Logger) *Service {
	return &Service{profileRepo: profileRepo, accountRepo: accountRepo, logger: logger}
}

// Ensure returns the caller's profile, auto-provisioning one on first
// authenticated access. The role comes from the token metadata and defaults
// to patient; auto-provisioned patient profiles skip the approval gates.
func (s *Service) Ensure(ctx context.Context, actor model.Actor) (*model.Profile, error) {
	if profile, err := s.profileRepo.Get(ctx, actor.ProfileID); err == nil {
		return profile, nil
	}

	role := actor.Role
	if !role.Valid() {
		role = model.RolePatient
	}

	status := model.ApprovalStatusPending
	if role == model.RolePatient || role == model.RoleSuperAdmin {
		status = model.ApprovalStatusApproved
	}

	profile := &model.Profile{
		ID:             actor.ProfileID,
		Role:           role,
		ApprovalStatus: status,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, model.NewUpstreamError("provision profile", err)
	}

	s.logger.Info().
		Str("profile_id", profile.ID.String()).
		Str("role", string(role)).
		Msg("auto-provisioned profile on first access")

	return profile, nil
}

// Package approval implements the multi-gate approval workflow: profile-level
// role approval, hospital approval, doctor approval and assistant approval,
// with the cascades between them.
//
// Doctor and assistant approval flip two physically separate records (the
// role-specific table and the generic profile) that the store cannot update
// atomically. The engine sequences the writes, specific record first, and
// reports a distinct partial-failure error when the second write fails so a
// retry can safely re-apply the same status.
package approval

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/medpraxis/practice-api/internal/email"
	"github.com/medpraxis/practice-api/internal/model"
	"github.com/medpraxis/practice-api/internal/repository"
	"github.com/medpraxis/practice-api/pkg/metrics"
)

const (
	scopeCacheTTL     = 1 * time.Minute
	scopeCacheCleanup = 5 * time.Minute
)

type Service struct {
	profileRepo   repository.ProfileRepository
	hospitalRepo  repository.HospitalRepository
	doctorRepo    repository.DoctorRepository
	assistantRepo repository.AssistantRepository
	accountRepo   repository.AccountRepository
	emailSvc      email.Service
	metrics       *metrics.Metrics
	scopeCache    *gocache.Cache
	logger        zerolog.Logger
}

func NewService(
	profileRepo repository.ProfileRepository,
	hospitalRepo repository.HospitalRepository,
	doctorRepo repository.DoctorRepository,
	assistantRepo repository.AssistantRepository,
	accountRepo repository.AccountRepository,
	emailSvc email.Service,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		profileRepo:   profileRepo,
		hospitalRepo:  hospitalRepo,
		doctorRepo:    doctorRepo,
		assistantRepo: assistantRepo,
		accountRepo:   accountRepo,
		emailSvc:      emailSvc,
		metrics:       m,
		scopeCache:    gocache.New(scopeCacheTTL, scopeCacheCleanup),
		logger:        logger,
	}
}

// DecideHospitalAdmin applies an approve/reject decision to a hospital_admin
// profile. Rejection cascades to every hospital owned by that admin; approval
// leaves hospital status untouched, since hospital approval is a separate
// gate. The cascade check always runs on reject, even when the profile is
// already rejected, so a retry after a partial failure converges the lagging
// hospitals.
func (s *Service) DecideHospitalAdmin(ctx context.Context, actor model.Actor, profileID uuid.UUID, decision model.Decision) error {
	if actor.Role != model.RoleSuperAdmin {
		return model.NewValidationError("only a super admin may decide hospital admin approvals")
	}

	profile, err := s.profileRepo.Get(ctx, profileID)
	if err != nil {
		return model.NewUpstreamError("get hospital admin profile", err)
	}
	if profile.Role != model.RoleHospitalAdmin {
		return model.NewNotFoundError("hospital admin")
	}

	target := decision.Status()
	noop := profile.ApprovalStatus == target

	if !noop {
		if profile.ApprovalStatus.Terminal() {
			return model.NewValidationError("hospital admin approval already decided")
		}
		if err := s.profileRepo.UpdateApprovalStatus(ctx, profileID, target); err != nil {
			return model.NewUpstreamError("update hospital admin approval", err)
		}
	}

	if target == model.ApprovalStatusRejected {
		converged, err := s.adminHospitalsRejected(ctx, profileID)
		if err != nil {
			s.metrics.PartialFailures.WithLabelValues("hospital_admin").Inc()
			return model.NewPartialFailureError("hospital admin profile rejection", err)
		}
		if !converged {
			if err := s.hospitalRepo.UpdateStatusByAdmin(ctx, profileID, model.ApprovalStatusRejected); err != nil {
				s.metrics.PartialFailures.WithLabelValues("hospital_admin").Inc()
				return model.NewPartialFailureError("hospital admin profile rejection", err)
			}
			noop = false
		}
	}

	if noop {
		return nil
	}

	s.metrics.ApprovalDecisions.WithLabelValues("hospital_admin", string(decision)).Inc()
	s.notify(ctx, profileID, profile.FullName, "hospital admin", target)
	return nil
}

// adminHospitalsRejected reports whether every hospital owned by the admin is
// already rejected.
func (s *Service) adminHospitalsRejected(ctx context.Context, adminProfileID uuid.UUID) (bool, error) {
	hospitals, err := s.hospitalRepo.ListByAdmin(ctx, adminProfileID)
	if err != nil {
		return false, err
	}
	for _, h := range hospitals {
		if h.Status != model.ApprovalStatusRejected {
			return false, nil
		}
	}
	return true, nil
}

// DecideHospital applies an approve/reject decision to a hospital. No
// cascade in either direction.
func (s *Service) DecideHospital(ctx context.Context, actor model.Actor, hospitalID uuid.UUID, decision model.Decision) error {
	if actor.Role != model.RoleSuperAdmin {
		return model.NewValidationError("only a super admin may decide hospital approvals")
	}

	hospital, err := s.hospitalRepo.Get(ctx, hospitalID)
	if err != nil {
		return model.NewUpstreamError("get hospital", err)
	}

	target := decision.Status()
	if hospital.Status == target {
		return nil
	}
	if hospital.Status.Terminal() {
		return model.NewValidationError("hospital approval already decided")
	}

	if err := s.hospitalRepo.UpdateStatus(ctx, hospitalID, target); err != nil {
		return model.NewUpstreamError("update hospital status", err)
	}

	s.metrics.ApprovalDecisions.WithLabelValues("hospital", string(decision)).Inc()
	return nil
}

// DecideDoctor applies a coupled approve/reject decision to a doctor: the
// doctor_profiles row first, then the generic profile. A hospital_admin actor
// is scoped to doctors of hospitals they administer.
func (s *Service) DecideDoctor(ctx context.Context, actor model.Actor, profileID uuid.UUID, decision model.Decision) error {
	doctor, err := s.doctorRepo.Get(ctx, profileID)
	if err != nil {
		return model.NewNotFoundError("doctor")
	}

	if actor.Role == model.RoleHospitalAdmin {
		ok, err := s.inAdminScope(ctx, actor.ProfileID, doctor.HospitalID)
		if err != nil {
			return err
		}
		if !ok {
			return model.NewNotFoundError("doctor")
		}
	} else if actor.Role != model.RoleSuperAdmin {
		return model.NewValidationError("caller may not decide doctor approvals")
	}

	if err := s.applyCoupled(ctx, "doctor", profileID, doctor.ApprovalStatus, decision,
		func() error { return s.doctorRepo.UpdateApprovalStatus(ctx, profileID, decision.Status()) },
	); err != nil {
		return err
	}

	profile, err := s.profileRepo.Get(ctx, profileID)
	if err == nil {
		s.notify(ctx, profileID, profile.FullName, "doctor", decision.Status())
	}
	return nil
}

// DecideAssistant applies a coupled approve/reject decision to an assistant.
// Allowed for super admins, for hospital admins scoped to the assistant's
// hospital, and for the doctor the assistant is linked to.
func (s *Service) DecideAssistant(ctx context.Context, actor model.Actor, profileID uuid.UUID, decision model.Decision) error {
	assistant, err := s.assistantRepo.Get(ctx, profileID)
	if err != nil {
		return model.NewNotFoundError("assistant")
	}

	switch actor.Role {
	case model.RoleSuperAdmin:
	case model.RoleHospitalAdmin:
		ok, err := s.inAdminScope(ctx, actor.ProfileID, assistant.HospitalID)
		if err != nil {
			return err
		}
		if !ok {
			return model.NewNotFoundError("assistant")
		}
	case model.RoleDoctor:
		if assistant.DoctorProfileID != actor.ProfileID {
			return model.NewNotFoundError("assistant")
		}
	default:
		return model.NewValidationError("caller may not decide assistant approvals")
	}

	if err := s.applyCoupled(ctx, "assistant", profileID, assistant.ApprovalStatus, decision,
		func() error { return s.assistantRepo.UpdateApprovalStatus(ctx, profileID, decision.Status()) },
	); err != nil {
		return err
	}

	profile, err := s.profileRepo.Get(ctx, profileID)
	if err == nil {
		s.notify(ctx, profileID, profile.FullName, "assistant", decision.Status())
	}
	return nil
}

// applyCoupled sequences the two writes of a coupled decision. Re-applying
// the current state is a no-op; the profile write is always attempted when it
// lags the specific record, which makes a retry after partial failure
// converge.
func (s *Service) applyCoupled(ctx context.Context, entity string, profileID uuid.UUID, current model.ApprovalStatus, decision model.Decision, updateSpecific func() error) error {
	target := decision.Status()

	if current != target {
		if current.Terminal() {
			return model.NewValidationError(entity + " approval already decided")
		}
		if err := updateSpecific(); err != nil {
			return model.NewUpstreamError("update "+entity+" approval", err)
		}
	}

	profile, err := s.profileRepo.Get(ctx, profileID)
	if err != nil {
		s.metrics.PartialFailures.WithLabelValues(entity).Inc()
		return model.NewPartialFailureError(entity+" status update", err)
	}
	if profile.ApprovalStatus != target {
		if err := s.profileRepo.UpdateApprovalStatus(ctx, profileID, target); err != nil {
			s.metrics.PartialFailures.WithLabelValues(entity).Inc()
			return model.NewPartialFailureError(entity+" status update", err)
		}
	} else if current == target {
		// both records already at target, nothing to report
		return nil
	}

	s.metrics.ApprovalDecisions.WithLabelValues(entity, string(decision)).Inc()
	return nil
}

// OverrideProfileStatus is the super-admin escape hatch: the only exposed
// transition out of a terminal state.
func (s *Service) OverrideProfileStatus(ctx context.Context, actor model.Actor, profileID uuid.UUID, status model.ApprovalStatus) error {
	if actor.Role != model.RoleSuperAdmin {
		return model.NewValidationError("only a super admin may override approval status")
	}
	if !status.Valid() {
		return model.NewValidationError("invalid approval status")
	}

	if _, err := s.profileRepo.Get(ctx, profileID); err != nil {
		return model.NewNotFoundError("profile")
	}
	if err := s.profileRepo.UpdateApprovalStatus(ctx, profileID, status); err != nil {
		return model.NewUpstreamError("override profile approval", err)
	}
	return nil
}

// ListHospitalAdmins returns hospital_admin profiles for the super-admin
// dashboard.
func (s *Service) ListHospitalAdmins(ctx context.Context, actor model.Actor, status model.ApprovalStatus) ([]*model.Profile, error) {
	if actor.Role != model.RoleSuperAdmin {
		return nil, model.NewValidationError("only a super admin may list hospital admins")
	}
	profiles, err := s.profileRepo.List(ctx, &model.ProfileFilters{Role: model.RoleHospitalAdmin, Status: status})
	if err != nil {
		return nil, model.NewUpstreamError("list hospital admins", err)
	}
	return profiles, nil
}

// ListDoctors returns doctor listings, restricted to the actor's hospitals
// when the actor is a hospital admin.
func (s *Service) ListDoctors(ctx context.Context, actor model.Actor, status model.ApprovalStatus) ([]*model.DoctorListing, error) {
	hospitalIDs, err := s.scopeFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	doctors, err := s.doctorRepo.ListByHospitals(ctx, hospitalIDs, status)
	if err != nil {
		return nil, model.NewUpstreamError("list doctors", err)
	}
	return doctors, nil
}

// ListAssistants returns assistant listings, restricted to the actor's
// hospitals when the actor is a hospital admin.
func (s *Service) ListAssistants(ctx context.Context, actor model.Actor, status model.ApprovalStatus) ([]*model.AssistantListing, error) {
	hospitalIDs, err := s.scopeFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	assistants, err := s.assistantRepo.ListByHospitals(ctx, hospitalIDs, status)
	if err != nil {
		return nil, model.NewUpstreamError("list assistants", err)
	}
	return assistants, nil
}

func (s *Service) scopeFor(ctx context.Context, actor model.Actor) ([]uuid.UUID, error) {
	switch actor.Role {
	case model.RoleSuperAdmin:
		hospitals, err := s.hospitalRepo.List(ctx, nil)
		if err != nil {
			return nil, model.NewUpstreamError("list hospitals", err)
		}
		ids := make([]uuid.UUID, 0, len(hospitals))
		for _, h := range hospitals {
			ids = append(ids, h.ID)
		}
		return ids, nil
	case model.RoleHospitalAdmin:
		return s.adminHospitalIDs(ctx, actor.ProfileID)
	default:
		return nil, model.NewValidationError("caller may not list approval candidates")
	}
}

// adminHospitalIDs resolves the hospitals an admin owns, cached briefly since
// every scoped decision and listing needs the same set.
func (s *Service) adminHospitalIDs(ctx context.Context, adminProfileID uuid.UUID) ([]uuid.UUID, error) {
	key := adminProfileID.String()
	if cached, ok := s.scopeCache.Get(key); ok {
		return cached.([]uuid.UUID), nil
	}

	hospitals, err := s.hospitalRepo.ListByAdmin(ctx, adminProfileID)
	if err != nil {
		return nil, model.NewUpstreamError("resolve admin hospitals", err)
	}

	ids := make([]uuid.UUID, 0, len(hospitals))
	for _, h := range hospitals {
		ids = append(ids, h.ID)
	}
	s.scopeCache.Set(key, ids, gocache.DefaultExpiration)
	return ids, nil
}

func (s *Service) inAdminScope(ctx context.Context, adminProfileID, hospitalID uuid.UUID) (bool, error) {
	ids, err := s.adminHospitalIDs(ctx, adminProfileID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == hospitalID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) notify(ctx context.Context, profileID uuid.UUID, fullName, entity string, status model.ApprovalStatus) {
	account, err := s.accountRepo.Get(ctx, profileID)
	if err != nil {
		s.logger.Warn().Err(err).Str("profile_id", profileID.String()).Msg("failed to resolve account for notification")
		return
	}
	s.emailSvc.SendApprovalDecision(account.Email, fullName, entity, status)
}

// Package patient implements CNIC-based patient identity reconciliation.
//
// The CNIC is the only stable natural key for a person across hospitals, so a
// submission must never duplicate an identity, must tolerate a patient moving
// between hospitals, and must never let a CNIC collision silently overwrite a
// different person's record. Submissions for the same CNIC are serialized
// through a per-key lock because the decide step is check-then-act against
// the store.
package patient

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medpraxis/practice-api/internal/model"
	"github.com/medpraxis/practice-api/internal/repository"
	"github.com/medpraxis/practice-api/pkg/lock"
	"github.com/medpraxis/practice-api/pkg/metrics"
)

type Service struct {
	patientRepo   repository.PatientRepository
	profileRepo   repository.ProfileRepository
	assistantRepo repository.AssistantRepository
	hospitalRepo  repository.HospitalRepository
	locker        lock.Locker
	metrics       *metrics.Metrics
	logger        zerolog.Logger
}

func NewService(
	patientRepo repository.PatientRepository,
	profileRepo repository.ProfileRepository,
	assistantRepo repository.AssistantRepository,
	hospitalRepo repository.HospitalRepository,
	locker lock.Locker,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		patientRepo:   patientRepo,
		profileRepo:   profileRepo,
		assistantRepo: assistantRepo,
		hospitalRepo:  hospitalRepo,
		locker:        locker,
		metrics:       m,
		logger:        logger,
	}
}

// Register reconciles a submitted patient identity on behalf of an assistant.
// Outcomes: created (no identity existed for the CNIC), already_exists (the
// caller's hospital already has a linkage), linked (an existing identity was
// re-homed to the caller's hospital).
func (s *Service) Register(ctx context.Context, actor model.Actor, req *model.CreatePatientRequest) (*model.ReconciliationResult, error) {
	assistant, err := s.assistantRepo.Get(ctx, actor.ProfileID)
	if err != nil || assistant.HospitalID == uuid.Nil {
		return nil, model.NewNotLinkedError("assistant is not linked to a hospital")
	}

	unlock, err := s.locker.Lock(ctx, "cnic:"+req.CNIC)
	if err != nil {
		return nil, model.NewUpstreamError("serialize reconciliation", err)
	}
	defer unlock()

	rows, err := s.patientRepo.ListByCNIC(ctx, req.CNIC)
	if err != nil {
		return nil, model.NewUpstreamError("look up patient by cnic", err)
	}

	if len(rows) == 0 {
		return s.create(ctx, actor, assistant.HospitalID, req)
	}

	// The oldest row's profile is the canonical identity for this CNIC.
	canonical, err := s.profileRepo.Get(ctx, rows[0].ProfileID)
	if err != nil {
		return nil, model.NewUpstreamError("load canonical patient profile", err)
	}

	if canonical.FullName != "" && normalizeName(canonical.FullName) != normalizeName(req.FullName) {
		s.metrics.ReconciliationOutcomes.WithLabelValues("name_mismatch").Inc()
		return nil, model.NewNameMismatchError(req.CNIC)
	}

	s.refreshDemographics(ctx, canonical, req)

	for _, row := range rows {
		if row.HospitalID == assistant.HospitalID {
			s.metrics.ReconciliationOutcomes.WithLabelValues("already_exists").Inc()
			return &model.ReconciliationResult{
				Status:  model.ReconciliationAlreadyExists,
				Patient: s.record(canonical, row),
			}, nil
		}
	}

	if err := s.patientRepo.Relink(ctx, rows[0].ID, assistant.HospitalID, actor.ProfileID); err != nil {
		return nil, model.NewUpstreamError("relink patient to hospital", err)
	}

	relinked := *rows[0]
	relinked.HospitalID = assistant.HospitalID
	relinked.CreatedBy = actor.ProfileID

	s.metrics.ReconciliationOutcomes.WithLabelValues("linked").Inc()
	return &model.ReconciliationResult{
		Status:  model.ReconciliationLinked,
		Patient: s.record(canonical, &relinked),
	}, nil
}

func (s *Service) create(ctx context.Context, actor model.Actor, hospitalID uuid.UUID, req *model.CreatePatientRequest) (*model.ReconciliationResult, error) {
	profile := &model.Profile{
		ID:       uuid.New(),
		FullName: req.FullName,
		Phone:    req.Phone,
		Gender:   req.Gender,
		DOB:      req.DOB,
		Role:     model.RolePatient,
		// assistant-created patients skip the hospital approval gates
		ApprovalStatus: model.ApprovalStatusApproved,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, model.NewUpstreamError("create patient profile", err)
	}

	row := &model.PatientProfile{
		ID:         uuid.New(),
		ProfileID:  profile.ID,
		HospitalID: hospitalID,
		CNIC:       req.CNIC,
		CreatedBy:  actor.ProfileID,
	}
	if err := s.patientRepo.Create(ctx, row); err != nil {
		return nil, model.NewUpstreamError("create patient hospital linkage", err)
	}

	s.metrics.ReconciliationOutcomes.WithLabelValues("created").Inc()
	return &model.ReconciliationResult{
		Status:  model.ReconciliationCreated,
		Patient: s.record(profile, row),
	}, nil
}

// refreshDemographics patches newly supplied demographic fields onto the
// canonical profile. Best effort: a failure is logged and the primary action
// proceeds.
func (s *Service) refreshDemographics(ctx context.Context, canonical *model.Profile, req *model.CreatePatientRequest) {
	var patch model.ProfilePatch

	if req.FullName != "" && req.FullName != canonical.FullName {
		patch.FullName = &req.FullName
	}
	if req.Phone != "" && req.Phone != canonical.Phone {
		patch.Phone = &req.Phone
	}
	if req.Gender != "" && req.Gender != canonical.Gender {
		patch.Gender = &req.Gender
	}
	if req.DOB != nil && (canonical.DOB == nil || !req.DOB.Equal(*canonical.DOB)) {
		patch.DOB = req.DOB
	}

	if patch.Empty() {
		return
	}

	if err := s.profileRepo.UpdateDemographics(ctx, canonical.ID, patch); err != nil {
		s.logger.Warn().Err(err).Str("profile_id", canonical.ID.String()).Msg("failed to refresh patient demographics")
		return
	}

	if patch.FullName != nil {
		canonical.FullName = *patch.FullName
	}
	if patch.Phone != nil {
		canonical.Phone = *patch.Phone
	}
	if patch.Gender != nil {
		canonical.Gender = *patch.Gender
	}
	if patch.DOB != nil {
		canonical.DOB = patch.DOB
	}
}

// Search finds a patient identity by CNIC along with every hospital it is
// linked to.
func (s *Service) Search(ctx context.Context, cnic string) (*model.PatientSearchResult, error) {
	rows, err := s.patientRepo.ListByCNIC(ctx, cnic)
	if err != nil {
		return nil, model.NewUpstreamError("look up patient by cnic", err)
	}
	if len(rows) == 0 {
		return &model.PatientSearchResult{Found: false}, nil
	}

	canonical, err := s.profileRepo.Get(ctx, rows[0].ProfileID)
	if err != nil {
		return nil, model.NewUpstreamError("load canonical patient profile", err)
	}

	hospitalIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		hospitalIDs = append(hospitalIDs, row.HospitalID)
	}
	refs, err := s.hospitalRepo.GetRefs(ctx, hospitalIDs)
	if err != nil {
		return nil, model.NewUpstreamError("resolve linked hospitals", err)
	}

	return &model.PatientSearchResult{
		Found:     true,
		Patient:   s.record(canonical, rows[0]),
		Hospitals: refs,
	}, nil
}

// ListByHospital returns patient records linked to one hospital.
func (s *Service) ListByHospital(ctx context.Context, hospitalID uuid.UUID) ([]*model.PatientRecord, error) {
	rows, err := s.patientRepo.ListByHospital(ctx, hospitalID)
	if err != nil {
		return nil, model.NewUpstreamError("list patients", err)
	}

	records := make([]*model.PatientRecord, 0, len(rows))
	for _, row := range rows {
		profile, err := s.profileRepo.Get(ctx, row.ProfileID)
		if err != nil {
			return nil, model.NewUpstreamError("load patient profile", err)
		}
		records = append(records, s.record(profile, row))
	}
	return records, nil
}

func (s *Service) record(profile *model.Profile, row *model.PatientProfile) *model.PatientRecord {
	return &model.PatientRecord{
		ID:         row.ID,
		ProfileID:  profile.ID,
		FullName:   profile.FullName,
		CNIC:       row.CNIC,
		Phone:      profile.Phone,
		Gender:     profile.Gender,
		DOB:        profile.DOB,
		HospitalID: row.HospitalID,
		CreatedAt:  row.CreatedAt,
	}
}

// normalizeName trims, collapses internal whitespace and lowercases so that
// formatting differences never read as a different person.
func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

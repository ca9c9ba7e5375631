package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/medpraxis/practice-api/internal/model"
	"github.com/medpraxis/practice-api/internal/repository"
	"github.com/medpraxis/practice-api/pkg/auth"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const bcryptCost = 12

type Service struct {
	accountRepo  repository.AccountRepository
	profileRepo  repository.ProfileRepository
	hospitalRepo repository.HospitalRepository
	doctorRepo   repository.DoctorRepository
	adminRepo    repository.HospitalAdminRepository
	jwtSvc       auth.JWTService
}

func NewService(
	accountRepo repository.AccountRepository,
	profileRepo repository.ProfileRepository,
	hospitalRepo repository.HospitalRepository,
	doctorRepo repository.DoctorRepository,
	adminRepo repository.HospitalAdminRepository,
	jwtSvc auth.JWTService,
) *Service {
	return &Service{
		accountRepo:  accountRepo,
		profileRepo:  profileRepo,
		hospitalRepo: hospitalRepo,
		doctorRepo:   doctorRepo,
		adminRepo:    adminRepo,
		jwtSvc:       jwtSvc,
	}
}

// Register creates an account, a pending profile and the role sub-record for
// the requested variant. Hospital admins additionally get a pending hospital
// they own.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisterResponse, error) {
	if err := s.validateVariant(ctx, req); err != nil {
		return nil, err
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
		Role:           req.Role,
		ApprovalStatus: model.ApprovalStatusPending,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, model.NewUpstreamError("create profile", err)
	}

	resp := &model.RegisterResponse{Profile: profile}

	switch req.Role {
	case model.RoleDoctor:
		doctor := &model.DoctorProfile{
			ProfileID:      profile.ID,
			Specialization: req.Specialization,
			HospitalID:     req.HospitalID,
			LicenseNumber:  req.LicenseNumber,
			CNIC:           req.CNIC,
			ApprovalStatus: model.ApprovalStatusPending,
		}
		if err := s.doctorRepo.Create(ctx, doctor); err != nil {
			return nil, model.NewUpstreamError("create doctor profile", err)
		}
	case model.RoleHospitalAdmin:
		hospital := &model.Hospital{
			Base:           model.Base{ID: uuid.New()},
			Name:           req.Hospital.Name,
			Address:        req.Hospital.Address,
			HospitalType:   req.Hospital.HospitalType,
			AdminProfileID: profile.ID,
			Status:         model.ApprovalStatusPending,
		}
		if err := s.hospitalRepo.Create(ctx, hospital); err != nil {
			return nil, model.NewUpstreamError("create hospital", err)
		}
		if err := s.adminRepo.Create(ctx, &model.HospitalAdminProfile{
			ProfileID:  profile.ID,
			HospitalID: hospital.ID,
		}); err != nil {
			return nil, model.NewUpstreamError("link admin to hospital", err)
		}
		resp.Hospital = hospital
	}

	return resp, nil
}

func (s *Service) validateVariant(ctx context.Context, req *model.RegisterRequest) error {
	switch req.Role {
	case model.RoleDoctor:
		if req.Specialization == "" || req.LicenseNumber == "" || req.CNIC == "" || req.HospitalID == uuid.Nil {
			return model.NewValidationError("doctor registration requires specialization, licenseNumber, cnic and hospitalId")
		}
		hospital, err := s.hospitalRepo.Get(ctx, req.HospitalID)
		if err != nil {
			return model.NewNotFoundError("hospital")
		}
		if hospital.Status != model.ApprovalStatusApproved {
			return model.NewValidationError("hospital is not approved")
		}
	case model.RoleHospitalAdmin:
		if req.Hospital == nil {
			return model.NewValidationError("hospital_admin registration requires hospital details")
		}
	default:
		return model.NewValidationError("role must be doctor or hospital_admin")
	}
	return nil
}

// Login verifies credentials and issues tokens. Pending and rejected profiles
// may authenticate; role-gated routes still require approval.
func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	role := model.RolePatient
	if profile, err := s.profileRepo.Get(ctx, account.ID); err == nil {
		role = profile.Role
	}

	return s.generateTokens(account, role)
}

func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	account, err := s.accountRepo.Get(ctx, claims.AccountID)
	if err != nil {
		return nil, fmt.Errorf("account not found: %w", err)
	}

	return s.generateTokens(account, claims.Role)
}

// ValidateToken resolves a bearer token to the caller's actor. The profile
// lookup carries the current role and gate state; a missing profile leaves
// the token-embedded role, which /me uses to auto-provision.
func (s *Service) ValidateToken(ctx context.Context, token string) (model.Actor, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return model.Actor{}, fmt.Errorf("invalid token: %w", err)
	}

	actor := model.Actor{
		ProfileID: claims.AccountID,
		Email:     claims.Email,
		Role:      claims.Role,
	}

	if profile, err := s.profileRepo.Get(ctx, claims.AccountID); err == nil {
		actor.Role = profile.Role
		actor.ApprovalStatus = profile.ApprovalStatus
	}

	return actor, nil
}

func (s *Service) generateTokens(account *model.Account, role model.Role) (*model.TokenResponse, error) {
	access, err := s.jwtSvc.GenerateAccessToken(account.ID, account.Email, role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(account.ID, account.Email, role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &model.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}

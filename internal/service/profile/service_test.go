package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medpraxis/practice-api/internal/model"
)

type fakeProfileRepo struct {
	profiles map[uuid.UUID]*model.Profile
}

func (f *fakeProfileRepo) Create(_ context.Context, p *model.Profile) error {
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeProfileRepo) Get(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (f *fakeProfileRepo) List(_ context.Context, _ *model.ProfileFilters) ([]*model.Profile, error) {
	return nil, nil
}

func (f *fakeProfileRepo) UpdateApprovalStatus(_ context.Context, _ uuid.UUID, _ model.ApprovalStatus) error {
	return nil
}

func (f *fakeProfileRepo) UpdateDemographics(_ context.Context, _ uuid.UUID, _ model.ProfilePatch) error {
	return nil
}

type fakeAccountRepo struct{}

func (fakeAccountRepo) Create(_ context.Context, _ *model.Account) error { return nil }

func (fakeAccountRepo) Get(_ context.Context, _ uuid.UUID) (*model.Account, error) {
	return nil, errors.New("not found")
}

func (fakeAccountRepo) GetByEmail(_ context.Context, _ string) (*model.Account, error) {
	return nil, errors.New("not found")
}

func newService() (*Service, *fakeProfileRepo) {
	profiles := &fakeProfileRepo{profiles: make(map[uuid.UUID]*model.Profile)}
	return NewService(profiles, fakeAccountRepo{}, zerolog.Nop()), profiles
}

func TestEnsureReturnsExistingProfile(t *testing.T) {
	svc, profiles := newService()
	id := uuid.New()
	profiles.profiles[id] = &model.Profile{
		ID: id, FullName: "Doc Smith", Role: model.RoleDoctor, ApprovalStatus: model.ApprovalStatusApproved,
	}

	p, err := svc.Ensure(context.Background(), model.Actor{ProfileID: id, Role: model.RoleDoctor})
	require.NoError(t, err)
	assert.Equal(t, "Doc Smith", p.FullName)
}

func TestEnsureProvisionsPatientOnFirstAccess(t *testing.T) {
	svc, profiles := newService()
	id := uuid.New()

	p, err := svc.Ensure(context.Background(), model.Actor{ProfileID: id})
	require.NoError(t, err)

	assert.Equal(t, model.RolePatient, p.Role)
	assert.Equal(t, model.ApprovalStatusApproved, p.ApprovalStatus)
	assert.Contains(t, profiles.profiles, id)
}

func TestEnsureKeepsTokenRoleWhenValid(t *testing.T) {
	svc, _ := newService()

	p, err := svc.Ensure(context.Background(), model.Actor{ProfileID: uuid.New(), Role: model.RoleDoctor})
	require.NoError(t, err)

	// non-patient provisioned profiles still face the approval gate
	assert.Equal(t, model.RoleDoctor, p.Role)
	assert.Equal(t, model.ApprovalStatusPending, p.ApprovalStatus)
}

package approval

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medpraxis/practice-api/internal/model"
	"github.com/medpraxis/practice-api/pkg/metrics"
)

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*model.Account
}

func (f *fakeAccountRepo) Create(_ context.Context, a *model.Account) error {
	f.accounts[a.ID] = a
	return nil
}

func (f *fakeAccountRepo) Get(_ context.Context, id uuid.UUID) (*model.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return a, nil
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, errors.New("not found")
}

type fakeProfileRepo struct {
	profiles  map[uuid.UUID]*model.Profile
	updateErr error
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

func (f *fakeProfileRepo) List(_ context.Context, filters *model.ProfileFilters) ([]*model.Profile, error) {
	var out []*model.Profile
	for _, p := range f.profiles {
		if filters != nil && filters.Role != "" && p.Role != filters.Role {
			continue
		}
		if filters != nil && filters.Status != "" && p.ApprovalStatus != filters.Status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProfileRepo) UpdateApprovalStatus(_ context.Context, id uuid.UUID, status model.ApprovalStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	p, ok := f.profiles[id]
	if !ok {
		return errors.New("not found")
	}
	p.ApprovalStatus = status
	return nil
}

func (f *fakeProfileRepo) UpdateDemographics(_ context.Context, _ uuid.UUID, _ model.ProfilePatch) error {
	return nil
}

type fakeHospitalRepo struct {
	hospitals  map[uuid.UUID]*model.Hospital
	cascadeErr error
}

func (f *fakeHospitalRepo) Create(_ context.Context, h *model.Hospital) error {
	f.hospitals[h.ID] = h
	return nil
}

func (f *fakeHospitalRepo) Get(_ context.Context, id uuid.UUID) (*model.Hospital, error) {
	h, ok := f.hospitals[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return h, nil
}

func (f *fakeHospitalRepo) GetRefs(_ context.Context, _ []uuid.UUID) ([]model.HospitalRef, error) {
	return nil, nil
}

func (f *fakeHospitalRepo) List(_ context.Context, _ *model.HospitalFilters) ([]*model.Hospital, error) {
	var out []*model.Hospital
	for _, h := range f.hospitals {
		out = append(out, h)
	}
	return out, nil
}

func (f *fakeHospitalRepo) ListByAdmin(_ context.Context, adminProfileID uuid.UUID) ([]*model.Hospital, error) {
	var out []*model.Hospital
	for _, h := range f.hospitals {
		if h.AdminProfileID == adminProfileID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHospitalRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.ApprovalStatus) error {
	h, ok := f.hospitals[id]
	if !ok {
		return errors.New("not found")
	}
	h.Status = status
	return nil
}

func (f *fakeHospitalRepo) UpdateStatusByAdmin(_ context.Context, adminProfileID uuid.UUID, status model.ApprovalStatus) error {
	if f.cascadeErr != nil {
		return f.cascadeErr
	}
	for _, h := range f.hospitals {
		if h.AdminProfileID == adminProfileID {
			h.Status = status
		}
	}
	return nil
}

type fakeDoctorRepo struct {
	doctors map[uuid.UUID]*model.DoctorProfile
}

func (f *fakeDoctorRepo) Create(_ context.Context, d *model.DoctorProfile) error {
	f.doctors[d.ProfileID] = d
	return nil
}

func (f *fakeDoctorRepo) Get(_ context.Context, profileID uuid.UUID) (*model.DoctorProfile, error) {
	d, ok := f.doctors[profileID]
	if !ok {
		return nil, errors.New("not found")
	}
	return d, nil
}

func (f *fakeDoctorRepo) ListByHospitals(_ context.Context, hospitalIDs []uuid.UUID, status model.ApprovalStatus) ([]*model.DoctorListing, error) {
	var out []*model.DoctorListing
	for _, d := range f.doctors {
		for _, id := range hospitalIDs {
			if d.HospitalID == id && (status == "" || d.ApprovalStatus == status) {
				out = append(out, &model.DoctorListing{DoctorProfile: *d})
			}
		}
	}
	return out, nil
}

func (f *fakeDoctorRepo) UpdateApprovalStatus(_ context.Context, profileID uuid.UUID, status model.ApprovalStatus) error {
	d, ok := f.doctors[profileID]
	if !ok {
		return errors.New("not found")
	}
	d.ApprovalStatus = status
	return nil
}

type fakeAssistantRepo struct {
	assistants map[uuid.UUID]*model.DoctorAssistantProfile
}

func (f *fakeAssistantRepo) Create(_ context.Context, a *model.DoctorAssistantProfile) error {
	f.assistants[a.ProfileID] = a
	return nil
}

func (f *fakeAssistantRepo) Get(_ context.Context, profileID uuid.UUID) (*model.DoctorAssistantProfile, error) {
	a, ok := f.assistants[profileID]
	if !ok {
		return nil, errors.New("not found")
	}
	return a, nil
}

func (f *fakeAssistantRepo) ListByDoctor(_ context.Context, _ uuid.UUID) ([]*model.AssistantListing, error) {
	return nil, nil
}

func (f *fakeAssistantRepo) ListByHospitals(_ context.Context, _ []uuid.UUID, _ model.ApprovalStatus) ([]*model.AssistantListing, error) {
	return nil, nil
}

func (f *fakeAssistantRepo) UpdateApprovalStatus(_ context.Context, profileID uuid.UUID, status model.ApprovalStatus) error {
	a, ok := f.assistants[profileID]
	if !ok {
		return errors.New("not found")
	}
	a.ApprovalStatus = status
	return nil
}

type captureEmail struct {
	sent []string
}

func (c *captureEmail) SendApprovalDecision(to, _, entity string, _ model.ApprovalStatus) {
	c.sent = append(c.sent, entity+":"+to)
}

type fixture struct {
	svc        *Service
	accounts   *fakeAccountRepo
	profiles   *fakeProfileRepo
	hospitals  *fakeHospitalRepo
	doctors    *fakeDoctorRepo
	assistants *fakeAssistantRepo
	email      *captureEmail
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		accounts:   &fakeAccountRepo{accounts: make(map[uuid.UUID]*model.Account)},
		profiles:   &fakeProfileRepo{profiles: make(map[uuid.UUID]*model.Profile)},
		hospitals:  &fakeHospitalRepo{hospitals: make(map[uuid.UUID]*model.Hospital)},
		doctors:    &fakeDoctorRepo{doctors: make(map[uuid.UUID]*model.DoctorProfile)},
		assistants: &fakeAssistantRepo{assistants: make(map[uuid.UUID]*model.DoctorAssistantProfile)},
		email:      &captureEmail{},
	}
	f.svc = NewService(f.profiles, f.hospitals, f.doctors, f.assistants, f.accounts, f.email, metrics.NewTestMetrics(), zerolog.Nop())
	return f
}

func (f *fixture) addProfile(role model.Role, status model.ApprovalStatus) uuid.UUID {
	id := uuid.New()
	f.profiles.profiles[id] = &model.Profile{
		ID: id, FullName: "Test User", Role: role, ApprovalStatus: status,
	}
	f.accounts.accounts[id] = &model.Account{ID: id, Email: id.String() + "@example.com"}
	return id
}

func (f *fixture) addHospital(adminProfileID uuid.UUID, status model.ApprovalStatus) uuid.UUID {
	id := uuid.New()
	f.hospitals.hospitals[id] = &model.Hospital{
		Base: model.Base{ID: id}, Name: "Hospital", AdminProfileID: adminProfileID, Status: status,
	}
	return id
}

func (f *fixture) addDoctor(hospitalID uuid.UUID, status model.ApprovalStatus) uuid.UUID {
	id := f.addProfile(model.RoleDoctor, status)
	f.doctors.doctors[id] = &model.DoctorProfile{
		ProfileID: id, HospitalID: hospitalID, ApprovalStatus: status,
	}
	return id
}

func (f *fixture) addAssistant(doctorID, hospitalID uuid.UUID, status model.ApprovalStatus) uuid.UUID {
	id := f.addProfile(model.RoleDoctorAssistant, status)
	f.assistants.assistants[id] = &model.DoctorAssistantProfile{
		ProfileID: id, DoctorProfileID: doctorID, HospitalID: hospitalID, ApprovalStatus: status,
	}
	return id
}

func superAdmin() model.Actor {
	return model.Actor{ProfileID: uuid.New(), Role: model.RoleSuperAdmin, ApprovalStatus: model.ApprovalStatusApproved}
}

func hospitalAdmin(profileID uuid.UUID) model.Actor {
	return model.Actor{ProfileID: profileID, Role: model.RoleHospitalAdmin, ApprovalStatus: model.ApprovalStatusApproved}
}

func TestRejectHospitalAdminCascadesHospitals(t *testing.T) {
	f := newFixture(t)
	adminID := f.addProfile(model.RoleHospitalAdmin, model.ApprovalStatusPending)
	hospitalID := f.addHospital(adminID, model.ApprovalStatusPending)

	err := f.svc.DecideHospitalAdmin(context.Background(), superAdmin(), adminID, model.DecisionReject)
	require.NoError(t, err)

	assert.Equal(t, model.ApprovalStatusRejected, f.profiles.profiles[adminID].ApprovalStatus)
	assert.Equal(t, model.ApprovalStatusRejected, f.hospitals.hospitals[hospitalID].Status)
}

func TestRejectHospitalAdminPartialFailureThenRetry(t *testing.T) {
	f := newFixture(t)
	adminID := f.addProfile(model.RoleHospitalAdmin, model.ApprovalStatusPending)
	hospitalID := f.addHospital(adminID, model.ApprovalStatusApproved)

	f.hospitals.cascadeErr = errors.New("store down")
	err := f.svc.DecideHospitalAdmin(context.Background(), superAdmin(), adminID, model.DecisionReject)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, "partial_failure"))

	// profile write landed, cascade did not
	assert.Equal(t, model.ApprovalStatusRejected, f.profiles.profiles[adminID].ApprovalStatus)
	assert.Equal(t, model.ApprovalStatusApproved, f.hospitals.hospitals[hospitalID].Status)

	// retrying the same reject converges the lagging hospitals
	f.hospitals.cascadeErr = nil
	err = f.svc.DecideHospitalAdmin(context.Background(), superAdmin(), adminID, model.DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalStatusRejected, f.hospitals.hospitals[hospitalID].Status)

	// a further retry is a pure no-op
	require.NoError(t, f.svc.DecideHospitalAdmin(context.Background(), superAdmin(), adminID, model.DecisionReject))
}

func TestApproveHospitalAdminLeavesHospitalPending(t *testing.T) {
	f := newFixture(t)
	adminID := f.addProfile(model.RoleHospitalAdmin, model.ApprovalStatusPending)
	hospitalID := f.addHospital(adminID, model.ApprovalStatusPending)

	err := f.svc.DecideHospitalAdmin(context.Background(), superAdmin(), adminID, model.DecisionApprove)
	require.NoError(t, err)

	assert.Equal(t, model.ApprovalStatusApproved, f.profiles.profiles[adminID].ApprovalStatus)
	assert.Equal(t, model.ApprovalStatusPending, f.hospitals.hospitals[hospitalID].Status)
}

func TestDecideHospitalAdminRequiresSuperAdmin(t *testing.T) {
	f := newFixture(t)
	adminID := f.addProfile(model.RoleHospitalAdmin, model.ApprovalStatusPending)

	err := f.svc.DecideHospitalAdmin(context.Background(), hospitalAdmin(uuid.New()), adminID, model.DecisionApprove)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, "validation"))
	assert.Equal(t, model.ApprovalStatusPending, f.profiles.profiles[adminID].ApprovalStatus)
}

func TestDecideHospitalIndependentOfAdminGate(t *testing.T) {
	f := newFixture(t)
	adminID := f.addProfile(model.RoleHospitalAdmin, model.ApprovalStatusPending)
	hospitalID := f.addHospital(adminID, model.ApprovalStatusPending)

	err := f.svc.DecideHospital(context.Background(), superAdmin(), hospitalID, model.DecisionApprove)
	require.NoError(t, err)

	assert.Equal(t, model.ApprovalStatusApproved, f.hospitals.hospitals[hospitalID].Status)
	assert.Equal(t, model.ApprovalStatusPending, f.profiles.profiles[adminID].ApprovalStatus)
}

func TestDecideDoctorCouplesBothRecords(t *testing.T) {
	f := newFixture(t)
	adminID := f.addProfile(model.RoleHospitalAdmin, model.ApprovalStatusApproved)
	hospitalID := f.addHospital(adminID, model.ApprovalStatusApproved)
	doctorID := f.addDoctor(hospitalID, model.ApprovalStatusPending)

	err := f.svc.DecideDoctor(context.Background(), hospitalAdmin(adminID), doctorID, model.DecisionApprove)
	require.NoError(t, err)

	assert.Equal(t, model.ApprovalStatusApproved, f.doctors.doctors[doctorID].ApprovalStatus)
	assert.Equal(t, model.ApprovalStatusApproved, f.profiles.profiles[doctorID].ApprovalStatus)
	assert.Contains(t, f.email.sent, "doctor:"+doctorID.String()+"@example.com")
}

func TestDecideDoctorOutOfScopeNeverMutates(t *testing.T) {
	f := newFixture(t)
	ownerID := f.addProfile(model.RoleHospitalAdmin, model.ApprovalStatusApproved)
	hospitalID := f.addHospital(ownerID, model.ApprovalStatusApproved)
	doctorID := f.addDoctor(hospitalID, model.ApprovalStatusPending)

	otherAdmin := f.addProfile(model.RoleHospitalAdmin, model.ApprovalStatusApproved)
	f.addHospital(otherAdmin, model.ApprovalStatusApproved)

	err := f.svc.DecideDoctor(context.Background(), hospitalAdmin(otherAdmin), doctorID, model.DecisionApprove)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, "not_found"))
	assert.Equal(t, model.ApprovalStatusPending, f.doctors.doctors[doctorID].ApprovalStatus)
	assert.Equal(t, model.ApprovalStatusPending, f.profiles.profiles[doctorID].ApprovalStatus)
}

func TestDecideDoctorPartialFailureThenRetry(t *testing.T) {
	f := newFixture(t)
	hospitalID := f.addHospital(uuid.New(), model.ApprovalStatusApproved)
	doctorID := f.addDoctor(hospitalID, model.ApprovalStatusPending)

	f.profiles.updateErr = errors.New("store down")
	err := f.svc.DecideDoctor(context.Background(), superAdmin(), doctorID, model.DecisionApprove)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, "partial_failure"))

	// first write landed, second did not
	assert.Equal(t, model.ApprovalStatusApproved, f.doctors.doctors[doctorID].ApprovalStatus)
	assert.Equal(t, model.ApprovalStatusPending, f.profiles.profiles[doctorID].ApprovalStatus)

	// retrying the same decision converges the lagging record
	f.profiles.updateErr = nil
	err = f.svc.DecideDoctor(context.Background(), superAdmin(), doctorID, model.DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalStatusApproved, f.profiles.profiles[doctorID].ApprovalStatus)
}

func TestDecideDoctorIdempotent(t *testing.T) {
	f := newFixture(t)
	hospitalID := f.addHospital(uuid.New(), model.ApprovalStatusApproved)
	doctorID := f.addDoctor(hospitalID, model.ApprovalStatusApproved)

	err := f.svc.DecideDoctor(context.Background(), superAdmin(), doctorID, model.DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalStatusApproved, f.doctors.doctors[doctorID].ApprovalStatus)
}

func TestDecideDoctorTerminalStateBlocksFlip(t *testing.T) {
	f := newFixture(t)
	hospitalID := f.addHospital(uuid.New(), model.ApprovalStatusApproved)
	doctorID := f.addDoctor(hospitalID, model.ApprovalStatusRejected)

	err := f.svc.DecideDoctor(context.Background(), superAdmin(), doctorID, model.DecisionApprove)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, "validation"))
	assert.Equal(t, model.ApprovalStatusRejected, f.doctors.doctors[doctorID].ApprovalStatus)
}

func TestDecideAssistantByLinkedDoctor(t *testing.T) {
	f := newFixture(t)
	hospitalID := f.addHospital(uuid.New(), model.ApprovalStatusApproved)
	doctorID := f.addDoctor(hospitalID, model.ApprovalStatusApproved)
	assistantID := f.addAssistant(doctorID, hospitalID, model.ApprovalStatusPending)

	doctorActor := model.Actor{ProfileID: doctorID, Role: model.RoleDoctor, ApprovalStatus: model.ApprovalStatusApproved}
	err := f.svc.DecideAssistant(context.Background(), doctorActor, assistantID, model.DecisionApprove)
	require.NoError(t, err)

	assert.Equal(t, model.ApprovalStatusApproved, f.assistants.assistants[assistantID].ApprovalStatus)
	assert.Equal(t, model.ApprovalStatusApproved, f.profiles.profiles[assistantID].ApprovalStatus)
}

func TestDecideAssistantByUnlinkedDoctor(t *testing.T) {
	f := newFixture(t)
	hospitalID := f.addHospital(uuid.New(), model.ApprovalStatusApproved)
	doctorID := f.addDoctor(hospitalID, model.ApprovalStatusApproved)
	otherDoctorID := f.addDoctor(hospitalID, model.ApprovalStatusApproved)
	assistantID := f.addAssistant(doctorID, hospitalID, model.ApprovalStatusPending)

	otherActor := model.Actor{ProfileID: otherDoctorID, Role: model.RoleDoctor, ApprovalStatus: model.ApprovalStatusApproved}
	err := f.svc.DecideAssistant(context.Background(), otherActor, assistantID, model.DecisionApprove)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, "not_found"))
	assert.Equal(t, model.ApprovalStatusPending, f.assistants.assistants[assistantID].ApprovalStatus)
}

func TestOverrideProfileStatusEscapesTerminalState(t *testing.T) {
	f := newFixture(t)
	profileID := f.addProfile(model.RoleDoctor, model.ApprovalStatusRejected)

	err := f.svc.OverrideProfileStatus(context.Background(), superAdmin(), profileID, model.ApprovalStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalStatusApproved, f.profiles.profiles[profileID].ApprovalStatus)
}

func TestOverrideProfileStatusRequiresSuperAdmin(t *testing.T) {
	f := newFixture(t)
	profileID := f.addProfile(model.RoleDoctor, model.ApprovalStatusRejected)

	err := f.svc.OverrideProfileStatus(context.Background(), hospitalAdmin(uuid.New()), profileID, model.ApprovalStatusApproved)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, "validation"))
	assert.Equal(t, model.ApprovalStatusRejected, f.profiles.profiles[profileID].ApprovalStatus)
}

func TestListDoctorsScopedToAdminHospitals(t *testing.T) {
	f := newFixture(t)
	adminID := f.addProfile(model.RoleHospitalAdmin, model.ApprovalStatusApproved)
	ownHospital := f.addHospital(adminID, model.ApprovalStatusApproved)
	otherHospital := f.addHospital(uuid.New(), model.ApprovalStatusApproved)

	ownDoctor := f.addDoctor(ownHospital, model.ApprovalStatusPending)
	f.addDoctor(otherHospital, model.ApprovalStatusPending)

	doctors, err := f.svc.ListDoctors(context.Background(), hospitalAdmin(adminID), model.ApprovalStatusPending)
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, ownDoctor, doctors[0].ProfileID)
}

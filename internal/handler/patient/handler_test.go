package patient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medpraxis/practice-api/internal/handler"
	"github.com/medpraxis/practice-api/internal/middleware"
	"github.com/medpraxis/practice-api/internal/model"
	patientService "github.com/medpraxis/practice-api/internal/service/patient"
	"github.com/medpraxis/practice-api/pkg/lock"
	"github.com/medpraxis/practice-api/pkg/metrics"
)

type fakePatientRepo struct {
	rows []*model.PatientProfile
}

func (f *fakePatientRepo) Create(_ context.Context, p *model.PatientProfile) error {
	f.rows = append(f.rows, p)
	return nil
}

func (f *fakePatientRepo) ListByCNIC(_ context.Context, cnic string) ([]*model.PatientProfile, error) {
	var out []*model.PatientProfile
	for _, r := range f.rows {
		if r.CNIC == cnic {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakePatientRepo) ListByHospital(_ context.Context, hospitalID uuid.UUID) ([]*model.PatientProfile, error) {
	var out []*model.PatientProfile
	for _, r := range f.rows {
		if r.HospitalID == hospitalID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakePatientRepo) Relink(_ context.Context, id uuid.UUID, hospitalID, createdBy uuid.UUID) error {
	for _, r := range f.rows {
		if r.ID == id {
			r.HospitalID = hospitalID
			r.CreatedBy = createdBy
			return nil
		}
	}
	return errors.New("not found")
}

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

func (f *fakeAssistantRepo) UpdateApprovalStatus(_ context.Context, _ uuid.UUID, _ model.ApprovalStatus) error {
	return nil
}

type fakeHospitalRepo struct {
	hospitals map[uuid.UUID]*model.Hospital
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

func (f *fakeHospitalRepo) GetRefs(_ context.Context, ids []uuid.UUID) ([]model.HospitalRef, error) {
	var refs []model.HospitalRef
	for _, id := range ids {
		if h, ok := f.hospitals[id]; ok {
			refs = append(refs, model.HospitalRef{ID: h.ID, Name: h.Name})
		}
	}
	return refs, nil
}

func (f *fakeHospitalRepo) List(_ context.Context, _ *model.HospitalFilters) ([]*model.Hospital, error) {
	return nil, nil
}

func (f *fakeHospitalRepo) ListByAdmin(_ context.Context, _ uuid.UUID) ([]*model.Hospital, error) {
	return nil, nil
}

func (f *fakeHospitalRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.ApprovalStatus) error {
	return nil
}

func (f *fakeHospitalRepo) UpdateStatusByAdmin(_ context.Context, _ uuid.UUID, _ model.ApprovalStatus) error {
	return nil
}

// setupRouter wires the handler behind a stub that injects the assistant
// actor, the way Authenticate would after token validation.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler.RegisterValidators()

	patients := &fakePatientRepo{}
	profiles := &fakeProfileRepo{profiles: make(map[uuid.UUID]*model.Profile)}
	assistants := &fakeAssistantRepo{assistants: make(map[uuid.UUID]*model.DoctorAssistantProfile)}
	hospitals := &fakeHospitalRepo{hospitals: make(map[uuid.UUID]*model.Hospital)}

	hospitalID := uuid.New()
	hospitals.hospitals[hospitalID] = &model.Hospital{
		Base: model.Base{ID: hospitalID}, Name: "General Hospital", Status: model.ApprovalStatusApproved,
	}
	assistantID := uuid.New()
	assistants.assistants[assistantID] = &model.DoctorAssistantProfile{
		ProfileID: assistantID, HospitalID: hospitalID, ApprovalStatus: model.ApprovalStatusApproved,
	}
	actor := model.Actor{
		ProfileID: assistantID, Role: model.RoleDoctorAssistant, ApprovalStatus: model.ApprovalStatusApproved,
	}

	svc := patientService.NewService(patients, profiles, assistants, hospitals, lock.NewKeyedMutex(), metrics.NewTestMetrics(), zerolog.Nop())
	h := NewHandler(svc, nil)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextActor, actor)
	})
	r.POST("/patients", h.CreatePatient)
	r.GET("/patients/search", h.SearchPatient)

	return r
}

func postPatient(t *testing.T, r *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/patients", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreatePatientReturns201OnCreate(t *testing.T) {
	r := setupRouter(t)

	w := postPatient(t, r, map[string]interface{}{
		"fullName": "John Doe",
		"cnic":     "12345-1234567-1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var result model.ReconciliationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, model.ReconciliationCreated, result.Status)
	require.NotNil(t, result.Patient)
	assert.Equal(t, "12345-1234567-1", result.Patient.CNIC)
}

func TestCreatePatientReturns200WhenKnown(t *testing.T) {
	r := setupRouter(t)
	body := map[string]interface{}{"fullName": "John Doe", "cnic": "12345-1234567-1"}

	require.Equal(t, http.StatusCreated, postPatient(t, r, body).Code)

	w := postPatient(t, r, body)
	require.Equal(t, http.StatusOK, w.Code)

	var result model.ReconciliationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, model.ReconciliationAlreadyExists, result.Status)
}

func TestCreatePatientRejectsInvalidCNIC(t *testing.T) {
	r := setupRouter(t)

	w := postPatient(t, r, map[string]interface{}{
		"fullName": "John Doe",
		"cnic":     "not a cnic",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePatientNameMismatchIs400(t *testing.T) {
	r := setupRouter(t)

	require.Equal(t, http.StatusCreated, postPatient(t, r, map[string]interface{}{
		"fullName": "Ali Khan", "cnic": "12345-1234567-1",
	}).Code)

	w := postPatient(t, r, map[string]interface{}{
		"fullName": "Sara Ahmed", "cnic": "12345-1234567-1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchPatient(t *testing.T) {
	r := setupRouter(t)

	require.Equal(t, http.StatusCreated, postPatient(t, r, map[string]interface{}{
		"fullName": "John Doe", "cnic": "12345-1234567-1",
	}).Code)

	req := httptest.NewRequest(http.MethodGet, "/patients/search?cnic=12345-1234567-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var result model.PatientSearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Found)
	require.Len(t, result.Hospitals, 1)
	assert.Equal(t, "General Hospital", result.Hospitals[0].Name)
}

func TestSearchPatientRequiresCNIC(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/patients/search", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

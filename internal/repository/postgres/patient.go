package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medpraxis/practice-api/internal/model"
	"github.com/medpraxis/practice-api/internal/repository"
)

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.PatientProfile) error {
	query := `
		INSERT INTO patient_profiles (id, profile_id, hospital_id, cnic, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	patient.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.ProfileID,
		patient.HospitalID,
		patient.CNIC,
		patient.CreatedBy,
		patient.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient profile: %w", err)
	}
	return nil
}

func (r *patientRepository) ListByCNIC(ctx context.Context, cnic string) ([]*model.PatientProfile, error) {
	query := `SELECT * FROM patient_profiles WHERE cnic = $1 ORDER BY created_at`
	var patients []*model.PatientProfile
	err := r.db.SelectContext(ctx, &patients, query, cnic)
	return patients, err
}

func (r *patientRepository) ListByHospital(ctx context.Context, hospitalID uuid.UUID) ([]*model.PatientProfile, error) {
	query := `SELECT * FROM patient_profiles WHERE hospital_id = $1 ORDER BY created_at`
	var patients []*model.PatientProfile
	err := r.db.SelectContext(ctx, &patients, query, hospitalID)
	return patients, err
}

// Relink re-homes an existing linkage to a new hospital. The original
// created_at is deliberately preserved.
func (r *patientRepository) Relink(ctx context.Context, id uuid.UUID, hospitalID, createdBy uuid.UUID) error {
	query := `UPDATE patient_profiles SET hospital_id = $1, created_by = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, hospitalID, createdBy, id)
	if err != nil {
		return fmt.Errorf("failed to relink patient profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("patient profile %s not found", id)
	}
	return nil
}

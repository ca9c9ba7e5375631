package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/medpraxis/practice-api/internal/model"
	"github.com/medpraxis/practice-api/internal/repository"
)

type doctorRepository struct {
	db *sqlx.DB
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.DoctorProfile) error {
	query := `
		INSERT INTO doctor_profiles (profile_id, specialization, hospital_id, license_number, cnic, approval_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	doctor.CreatedAt = time.Now()
	doctor.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		doctor.ProfileID,
		doctor.Specialization,
		doctor.HospitalID,
		doctor.LicenseNumber,
		doctor.CNIC,
		doctor.ApprovalStatus,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor profile: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, profileID uuid.UUID) (*model.DoctorProfile, error) {
	query := `SELECT * FROM doctor_profiles WHERE profile_id = $1`
	var doctor model.DoctorProfile
	err := r.db.GetContext(ctx, &doctor, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor profile: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) ListByHospitals(ctx context.Context, hospitalIDs []uuid.UUID, status model.ApprovalStatus) ([]*model.DoctorListing, error) {
	if len(hospitalIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT d.*, p.full_name, p.approval_status AS profile_status
		FROM doctor_profiles d
		JOIN profiles p ON p.id = d.profile_id
		WHERE d.hospital_id = ANY($1)
	`
	args := []interface{}{pq.Array(hospitalIDs)}

	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND d.approval_status = $%d", len(args))
	}
	query += " ORDER BY d.created_at"

	var doctors []*model.DoctorListing
	err := r.db.SelectContext(ctx, &doctors, query, args...)
	return doctors, err
}

func (r *doctorRepository) UpdateApprovalStatus(ctx context.Context, profileID uuid.UUID, status model.ApprovalStatus) error {
	query := `UPDATE doctor_profiles SET approval_status = $1, updated_at = $2 WHERE profile_id = $3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), profileID)
	if err != nil {
		return fmt.Errorf("failed to update doctor approval status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("doctor profile %s not found", profileID)
	}
	return nil
}

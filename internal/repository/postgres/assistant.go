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

type assistantRepository struct {
	db *sqlx.DB
}

func NewAssistantRepository(db *sqlx.DB) repository.AssistantRepository {
	return &assistantRepository{db: db}
}

func (r *assistantRepository) Create(ctx context.Context, assistant *model.DoctorAssistantProfile) error {
	query := `
		INSERT INTO doctor_assistant_profiles (profile_id, doctor_profile_id, hospital_id, approval_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	assistant.CreatedAt = time.Now()
	assistant.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		assistant.ProfileID,
		assistant.DoctorProfileID,
		assistant.HospitalID,
		assistant.ApprovalStatus,
		assistant.CreatedAt,
		assistant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create assistant profile: %w", err)
	}
	return nil
}

func (r *assistantRepository) Get(ctx context.Context, profileID uuid.UUID) (*model.DoctorAssistantProfile, error) {
	query := `SELECT * FROM doctor_assistant_profiles WHERE profile_id = $1`
	var assistant model.DoctorAssistantProfile
	err := r.db.GetContext(ctx, &assistant, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assistant profile: %w", err)
	}
	return &assistant, nil
}

func (r *assistantRepository) ListByDoctor(ctx context.Context, doctorProfileID uuid.UUID) ([]*model.AssistantListing, error) {
	query := `
		SELECT a.*, p.full_name, p.approval_status AS profile_status
		FROM doctor_assistant_profiles a
		JOIN profiles p ON p.id = a.profile_id
		WHERE a.doctor_profile_id = $1
		ORDER BY a.created_at
	`
	var assistants []*model.AssistantListing
	err := r.db.SelectContext(ctx, &assistants, query, doctorProfileID)
	return assistants, err
}

func (r *assistantRepository) ListByHospitals(ctx context.Context, hospitalIDs []uuid.UUID, status model.ApprovalStatus) ([]*model.AssistantListing, error) {
	if len(hospitalIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT a.*, p.full_name, p.approval_status AS profile_status
		FROM doctor_assistant_profiles a
		JOIN profiles p ON p.id = a.profile_id
		WHERE a.hospital_id = ANY($1)
	`
	args := []interface{}{pq.Array(hospitalIDs)}

	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND a.approval_status = $%d", len(args))
	}
	query += " ORDER BY a.created_at"

	var assistants []*model.AssistantListing
	err := r.db.SelectContext(ctx, &assistants, query, args...)
	return assistants, err
}

func (r *assistantRepository) UpdateApprovalStatus(ctx context.Context, profileID uuid.UUID, status model.ApprovalStatus) error {
	query := `UPDATE doctor_assistant_profiles SET approval_status = $1, updated_at = $2 WHERE profile_id = $3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), profileID)
	if err != nil {
		return fmt.Errorf("failed to update assistant approval status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("assistant profile %s not found", profileID)
	}
	return nil
}

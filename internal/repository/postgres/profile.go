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

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	query := `
		INSERT INTO profiles (id, full_name, phone, gender, dob, role, approval_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.FullName,
		profile.Phone,
		profile.Gender,
		profile.DOB,
		profile.Role,
		profile.ApprovalStatus,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *profileRepository) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	query := `SELECT * FROM profiles WHERE id = $1`
	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func (r *profileRepository) List(ctx context.Context, filters *model.ProfileFilters) ([]*model.Profile, error) {
	query := `SELECT * FROM profiles WHERE 1=1`
	args := []interface{}{}

	if filters != nil && filters.Role != "" {
		args = append(args, filters.Role)
		query += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if filters != nil && filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND approval_status = $%d", len(args))
	}
	query += " ORDER BY created_at"

	var profiles []*model.Profile
	err := r.db.SelectContext(ctx, &profiles, query, args...)
	return profiles, err
}

func (r *profileRepository) UpdateApprovalStatus(ctx context.Context, id uuid.UUID, status model.ApprovalStatus) error {
	query := `UPDATE profiles SET approval_status = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update profile approval status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("profile %s not found", id)
	}
	return nil
}

func (r *profileRepository) UpdateDemographics(ctx context.Context, id uuid.UUID, patch model.ProfilePatch) error {
	query := `UPDATE profiles SET updated_at = $1`
	args := []interface{}{time.Now()}

	if patch.FullName != nil {
		args = append(args, *patch.FullName)
		query += fmt.Sprintf(", full_name = $%d", len(args))
	}
	if patch.Phone != nil {
		args = append(args, *patch.Phone)
		query += fmt.Sprintf(", phone = $%d", len(args))
	}
	if patch.Gender != nil {
		args = append(args, *patch.Gender)
		query += fmt.Sprintf(", gender = $%d", len(args))
	}
	if patch.DOB != nil {
		args = append(args, *patch.DOB)
		query += fmt.Sprintf(", dob = $%d", len(args))
	}

	args = append(args, id)
	query += fmt.Sprintf(" WHERE id = $%d", len(args))

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update profile demographics: %w", err)
	}
	return nil
}

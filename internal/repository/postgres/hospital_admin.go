package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medpraxis/practice-api/internal/model"
	"github.com/medpraxis/practice-api/internal/repository"
)

type hospitalAdminRepository struct {
	db *sqlx.DB
}

func NewHospitalAdminRepository(db *sqlx.DB) repository.HospitalAdminRepository {
	return &hospitalAdminRepository{db: db}
}

func (r *hospitalAdminRepository) Create(ctx context.Context, link *model.HospitalAdminProfile) error {
	query := `
		INSERT INTO hospital_admin_profiles (profile_id, hospital_id)
		VALUES ($1, $2)
	`
	_, err := r.db.ExecContext(ctx, query, link.ProfileID, link.HospitalID)
	if err != nil {
		return fmt.Errorf("failed to create hospital admin link: %w", err)
	}
	return nil
}

func (r *hospitalAdminRepository) Get(ctx context.Context, profileID uuid.UUID) (*model.HospitalAdminProfile, error) {
	query := `SELECT * FROM hospital_admin_profiles WHERE profile_id = $1`
	var link model.HospitalAdminProfile
	err := r.db.GetContext(ctx, &link, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get hospital admin link: %w", err)
	}
	return &link, nil
}

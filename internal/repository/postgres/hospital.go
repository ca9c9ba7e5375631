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

type hospitalRepository struct {
	db *sqlx.DB
}

func NewHospitalRepository(db *sqlx.DB) repository.HospitalRepository {
	return &hospitalRepository{db: db}
}

func (r *hospitalRepository) Create(ctx context.Context, hospital *model.Hospital) error {
	query := `
		INSERT INTO hospitals (id, name, address, hospital_type, admin_profile_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	hospital.CreatedAt = time.Now()
	hospital.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		hospital.ID,
		hospital.Name,
		hospital.Address,
		hospital.HospitalType,
		hospital.AdminProfileID,
		hospital.Status,
		hospital.CreatedAt,
		hospital.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create hospital: %w", err)
	}
	return nil
}

func (r *hospitalRepository) Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	query := `SELECT * FROM hospitals WHERE id = $1`
	var hospital model.Hospital
	err := r.db.GetContext(ctx, &hospital, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}
	return &hospital, nil
}

func (r *hospitalRepository) GetRefs(ctx context.Context, ids []uuid.UUID) ([]model.HospitalRef, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, name FROM hospitals WHERE id = ANY($1)`
	var refs []model.HospitalRef
	err := r.db.SelectContext(ctx, &refs, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get hospital refs: %w", err)
	}
	return refs, nil
}

func (r *hospitalRepository) List(ctx context.Context, filters *model.HospitalFilters) ([]*model.Hospital, error) {
	query := `SELECT * FROM hospitals`
	args := []interface{}{}

	if filters != nil && filters.Status != "" {
		args = append(args, filters.Status)
		query += " WHERE status = $1"
	}
	query += " ORDER BY created_at"

	var hospitals []*model.Hospital
	err := r.db.SelectContext(ctx, &hospitals, query, args...)
	return hospitals, err
}

func (r *hospitalRepository) ListByAdmin(ctx context.Context, adminProfileID uuid.UUID) ([]*model.Hospital, error) {
	query := `SELECT * FROM hospitals WHERE admin_profile_id = $1 ORDER BY created_at`
	var hospitals []*model.Hospital
	err := r.db.SelectContext(ctx, &hospitals, query, adminProfileID)
	return hospitals, err
}

func (r *hospitalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ApprovalStatus) error {
	query := `UPDATE hospitals SET status = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update hospital status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("hospital %s not found", id)
	}
	return nil
}

func (r *hospitalRepository) UpdateStatusByAdmin(ctx context.Context, adminProfileID uuid.UUID, status model.ApprovalStatus) error {
	query := `UPDATE hospitals SET status = $1, updated_at = $2 WHERE admin_profile_id = $3`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), adminProfileID)
	if err != nil {
		return fmt.Errorf("failed to update hospitals for admin: %w", err)
	}
	return nil
}

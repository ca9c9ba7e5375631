package hospital

import (
	"context"

	"github.com/google/uuid"

	"github.com/medpraxis/practice-api/internal/model"
	"github.com/medpraxis/practice-api/internal/repository"
)

type Service struct {
	repo repository.HospitalRepository
}

func NewService(repo repository.HospitalRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	hospital, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, model.NewNotFoundError("hospital")
	}
	return hospital, nil
}

func (s *Service) List(ctx context.Context, status model.ApprovalStatus) ([]*model.Hospital, error) {
	hospitals, err := s.repo.List(ctx, &model.HospitalFilters{Status: status})
	if err != nil {
		return nil, model.NewUpstreamError("list hospitals", err)
	}
	return hospitals, nil
}

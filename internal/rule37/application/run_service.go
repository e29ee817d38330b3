package application

import (
	"context"
	"errors"

	rule37 "rule37-cloud/internal/rule37/domain"
)

const defaultListLimit = 10

// RunService exposes stored calculation runs to the HTTP layer.
type RunService struct {
	repo rule37.RunRepository
}

// NewRunService constructs the service.
func NewRunService(repo rule37.RunRepository) (*RunService, error) {
	if repo == nil {
		return nil, errors.New("run service: nil run repository")
	}
	return &RunService{repo: repo}, nil
}

// List returns a tenant's runs, newest first.
func (s *RunService) List(ctx context.Context, tenantID string, limit, offset int) ([]rule37.CalculationRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByTenant(ctx, tenantID, limit, offset)
}

// Get loads one run by id within a tenant.
func (s *RunService) Get(ctx context.Context, id, tenantID string) (*rule37.CalculationRun, error) {
	run, err := s.repo.FindByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, rule37.ErrRunNotFound
	}
	return run, nil
}

// Delete removes one run by id within a tenant.
func (s *RunService) Delete(ctx context.Context, id, tenantID string) error {
	return s.repo.DeleteByID(ctx, id, tenantID)
}

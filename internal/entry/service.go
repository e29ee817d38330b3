package entry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Service implements entry use cases with a duplicate-key guard.
type Service struct {
	repo  Repository
	clock Clock
}

// NewService constructs the service.
func NewService(repo Repository, clock Clock) (*Service, error) {
	if repo == nil {
		return nil, errors.New("entry service: nil repository")
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &Service{repo: repo, clock: clock}, nil
}

// Create stores a new entry. The key must be unique within the tenant.
func (s *Service) Create(ctx context.Context, tenantID, key, value, actor string) (*Entry, error) {
	if key == "" {
		return nil, errors.New("entry service: key is required")
	}
	exists, err := s.repo.ExistsByKey(ctx, key, tenantID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}

	now := s.clock.Now()
	e := &Entry{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Key:       key,
		Value:     value,
		CreatedAt: now,
		CreatedBy: actor,
		UpdatedAt: now,
		UpdatedBy: actor,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Get loads one entry by id.
func (s *Service) Get(ctx context.Context, id, tenantID string) (*Entry, error) {
	e, err := s.repo.FindByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound
	}
	return e, nil
}

// List returns a tenant's entries ordered by creation time.
func (s *Service) List(ctx context.Context, tenantID string, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, tenantID, limit, offset)
}

// Update changes an entry's key and value, keeping keys unique per tenant.
func (s *Service) Update(ctx context.Context, id, tenantID, key, value, actor string) (*Entry, error) {
	if key == "" {
		return nil, errors.New("entry service: key is required")
	}
	e, err := s.repo.FindByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound
	}
	if e.Key != key {
		exists, err := s.repo.ExistsByKey(ctx, key, tenantID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, key)
		}
	}

	e.Key = key
	e.Value = value
	e.UpdatedAt = s.clock.Now()
	e.UpdatedBy = actor
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes one entry by id.
func (s *Service) Delete(ctx context.Context, id, tenantID string) error {
	return s.repo.Delete(ctx, id, tenantID)
}

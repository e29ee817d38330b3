package rule37

import (
	"context"
	"errors"
	"time"
)

// ErrRunNotFound indicates a run lookup or delete miss for the tenant.
var ErrRunNotFound = errors.New("rule37: calculation run not found")

// RunRepository persists calculation runs. The core only ever queries by
// id and tenant.
type RunRepository interface {
	Save(ctx context.Context, run *CalculationRun) error
	FindByID(ctx context.Context, id, tenantID string) (*CalculationRun, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]CalculationRun, error)
	DeleteByID(ctx context.Context, id, tenantID string) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

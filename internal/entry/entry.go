package entry

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the entry does not exist for the tenant.
	ErrNotFound = errors.New("entry: not found")
	// ErrDuplicateKey indicates another entry already holds the key.
	ErrDuplicateKey = errors.New("entry: duplicate key")
)

// Entry is a tenant-scoped key/value record.
type Entry struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"-"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
}

// Repository persists entries.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	FindByID(ctx context.Context, id, tenantID string) (*Entry, error)
	ExistsByKey(ctx context.Context, key, tenantID string) (bool, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]Entry, error)
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id, tenantID string) error
}

package entry

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepository persists entries in the entries table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository constructs a repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an entry.
func (r *PostgresRepository) Create(ctx context.Context, e *Entry) error {
	if r == nil || r.db == nil {
		return errors.New("entry repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO entries (
	id, tenant_id, entry_key, entry_value, created_at, created_by, updated_at, updated_by
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		e.ID, e.TenantID, e.Key, e.Value, e.CreatedAt, e.CreatedBy, e.UpdatedAt, e.UpdatedBy)
	return err
}

// FindByID fetches one entry. Returns (nil, nil) when absent.
func (r *PostgresRepository) FindByID(ctx context.Context, id, tenantID string) (*Entry, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("entry repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, tenant_id, entry_key, entry_value, created_at, created_by, updated_at, updated_by
FROM entries
WHERE id = $1 AND tenant_id = $2
LIMIT 1`, id, tenantID)
	var e Entry
	err := row.Scan(&e.ID, &e.TenantID, &e.Key, &e.Value, &e.CreatedAt, &e.CreatedBy, &e.UpdatedAt, &e.UpdatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ExistsByKey reports whether a key is taken within a tenant.
func (r *PostgresRepository) ExistsByKey(ctx context.Context, key, tenantID string) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("entry repo: nil db")
	}
	var exists bool
	err := r.db.QueryRowContext(ctx, `
SELECT EXISTS (SELECT 1 FROM entries WHERE entry_key = $1 AND tenant_id = $2)`, key, tenantID).Scan(&exists)
	return exists, err
}

// List returns a tenant's entries, oldest first.
func (r *PostgresRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]Entry, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("entry repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, tenant_id, entry_key, entry_value, created_at, created_by, updated_at, updated_by
FROM entries
WHERE tenant_id = $1
ORDER BY created_at
LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TenantID, &e.Key, &e.Value, &e.CreatedAt, &e.CreatedBy, &e.UpdatedAt, &e.UpdatedBy); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Update rewrites key, value and update metadata.
func (r *PostgresRepository) Update(ctx context.Context, e *Entry) error {
	if r == nil || r.db == nil {
		return errors.New("entry repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE entries
SET entry_key = $1, entry_value = $2, updated_at = $3, updated_by = $4
WHERE id = $5 AND tenant_id = $6`,
		e.Key, e.Value, e.UpdatedAt, e.UpdatedBy, e.ID, e.TenantID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one entry.
func (r *PostgresRepository) Delete(ctx context.Context, id, tenantID string) error {
	if r == nil || r.db == nil {
		return errors.New("entry repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
DELETE FROM entries WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

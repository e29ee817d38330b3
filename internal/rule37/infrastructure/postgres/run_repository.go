package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	rule37 "rule37-cloud/internal/rule37/domain"
)

// RunRepository persists calculation runs in rule37_calculation_runs. The
// per-ledger results are stored as a jsonb document.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository constructs a repository.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Save inserts a calculation run.
func (r *RunRepository) Save(ctx context.Context, run *rule37.CalculationRun) error {
	if r == nil || r.db == nil {
		return errors.New("run repo: nil db")
	}
	if run == nil {
		return errors.New("run repo: nil run")
	}
	data, err := json.Marshal(run.CalculationData)
	if err != nil {
		return fmt.Errorf("run repo: marshal calculation data: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO rule37_calculation_runs (
	id, tenant_id, filename, as_on_date, total_interest, total_itc_reversal,
	calculation_data, created_at, created_by, expires_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		run.ID, run.TenantID, run.Filename, run.AsOnDate, run.TotalInterest, run.TotalItcReversal,
		data, run.CreatedAt, run.CreatedBy, run.ExpiresAt,
	)
	return err
}

// FindByID fetches one run scoped to a tenant. Returns (nil, nil) when the
// run does not exist.
func (r *RunRepository) FindByID(ctx context.Context, id, tenantID string) (*rule37.CalculationRun, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("run repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, tenant_id, filename, as_on_date, total_interest, total_itc_reversal,
	calculation_data, created_at, created_by, expires_at
FROM rule37_calculation_runs
WHERE id = $1 AND tenant_id = $2
LIMIT 1`, id, tenantID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListByTenant returns a tenant's runs, newest first.
func (r *RunRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]rule37.CalculationRun, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("run repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, tenant_id, filename, as_on_date, total_interest, total_itc_reversal,
	calculation_data, created_at, created_by, expires_at
FROM rule37_calculation_runs
WHERE tenant_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []rule37.CalculationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// DeleteByID removes one run scoped to a tenant.
func (r *RunRepository) DeleteByID(ctx context.Context, id, tenantID string) error {
	if r == nil || r.db == nil {
		return errors.New("run repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
DELETE FROM rule37_calculation_runs
WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return rule37.ErrRunNotFound
	}
	return nil
}

// DeleteExpired removes all runs whose expiry is at or before cutoff.
func (r *RunRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("run repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
DELETE FROM rule37_calculation_runs
WHERE expires_at <= $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*rule37.CalculationRun, error) {
	var run rule37.CalculationRun
	var data []byte
	err := row.Scan(
		&run.ID, &run.TenantID, &run.Filename, &run.AsOnDate,
		&run.TotalInterest, &run.TotalItcReversal,
		&data, &run.CreatedAt, &run.CreatedBy, &run.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &run.CalculationData); err != nil {
			return nil, fmt.Errorf("run repo: unmarshal calculation data: %w", err)
		}
	}
	return &run, nil
}

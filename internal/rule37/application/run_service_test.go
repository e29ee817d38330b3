package application

import (
	"context"
	"errors"
	"testing"
	"time"

	rule37 "rule37-cloud/internal/rule37/domain"
)

func seedRun(t *testing.T, repo *fakeRunRepository, id, tenantID string, expiresAt time.Time) {
	t.Helper()
	err := repo.Save(context.Background(), &rule37.CalculationRun{
		ID:        id,
		TenantID:  tenantID,
		Filename:  id + ".xlsx",
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		t.Fatalf("seed run: %v", err)
	}
}

func TestRunService_GetNotFound(t *testing.T) {
	service, err := NewRunService(newFakeRunRepository())
	if err != nil {
		t.Fatalf("new run service: %v", err)
	}

	_, err = service.Get(context.Background(), "missing", "tenant-a")
	if !errors.Is(err, rule37.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestRunService_GetScopedToTenant(t *testing.T) {
	repo := newFakeRunRepository()
	seedRun(t, repo, "run-1", "tenant-a", time.Now().Add(time.Hour))
	service, err := NewRunService(repo)
	if err != nil {
		t.Fatalf("new run service: %v", err)
	}

	if _, err := service.Get(context.Background(), "run-1", "tenant-a"); err != nil {
		t.Fatalf("owner should see the run: %v", err)
	}
	if _, err := service.Get(context.Background(), "run-1", "tenant-b"); !errors.Is(err, rule37.ErrRunNotFound) {
		t.Fatalf("expected not found for foreign tenant, got %v", err)
	}
}

func TestRunService_Delete(t *testing.T) {
	repo := newFakeRunRepository()
	seedRun(t, repo, "run-1", "tenant-a", time.Now().Add(time.Hour))
	service, err := NewRunService(repo)
	if err != nil {
		t.Fatalf("new run service: %v", err)
	}

	if err := service.Delete(context.Background(), "run-1", "tenant-a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := service.Delete(context.Background(), "run-1", "tenant-a"); !errors.Is(err, rule37.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound on second delete, got %v", err)
	}
}

func TestRetentionSweeper_RunOnce(t *testing.T) {
	repo := newFakeRunRepository()
	now := time.Date(2023, 8, 1, 3, 0, 0, 0, time.UTC)
	seedRun(t, repo, "expired-1", "tenant-a", now.Add(-time.Hour))
	seedRun(t, repo, "expired-2", "tenant-b", now.Add(-24*time.Hour))
	seedRun(t, repo, "live-1", "tenant-a", now.Add(time.Hour))

	sweeper, err := NewRetentionSweeper(repo, "0 3 * * *", fixedClock{now: now}, nil)
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	sweeper.RunOnce(context.Background())

	if len(repo.runs) != 1 {
		t.Fatalf("expected only live run to remain, got %d", len(repo.runs))
	}
	if _, ok := repo.runs["live-1"]; !ok {
		t.Fatalf("live run was swept")
	}
}

func TestRetentionSweeper_InvalidSchedule(t *testing.T) {
	sweeper, err := NewRetentionSweeper(newFakeRunRepository(), "not a schedule", fixedClock{now: time.Now()}, nil)
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	if err := sweeper.Start(); err == nil {
		t.Fatalf("expected error for invalid cron expression")
	}
}

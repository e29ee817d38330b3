package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	rule37 "rule37-cloud/internal/rule37/domain"
)

type fakeProcessor struct {
	failFiles map[string]string
	calls     []string
}

func (p *fakeProcessor) Process(data []byte, filename string, asOnDate time.Time) (rule37.LedgerResult, error) {
	p.calls = append(p.calls, filename)
	if message, ok := p.failFiles[filename]; ok {
		return rule37.LedgerResult{}, errors.New(message)
	}
	return rule37.LedgerResult{
		LedgerName: strings.TrimSuffix(filename, ".xlsx"),
		Summary: rule37.CalculationSummary{
			TotalInterest:    decimal.RequireFromString("100.50"),
			TotalItcReversal: decimal.RequireFromString("900.00"),
			Details:          []rule37.InterestRow{},
			CalculationDate:  asOnDate,
		},
	}, nil
}

type fakeRunRepository struct {
	saved   []*rule37.CalculationRun
	saveErr error
	runs    map[string]*rule37.CalculationRun
}

func newFakeRunRepository() *fakeRunRepository {
	return &fakeRunRepository{runs: map[string]*rule37.CalculationRun{}}
}

func (r *fakeRunRepository) Save(ctx context.Context, run *rule37.CalculationRun) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, run)
	r.runs[run.ID] = run
	return nil
}

func (r *fakeRunRepository) FindByID(ctx context.Context, id, tenantID string) (*rule37.CalculationRun, error) {
	run, ok := r.runs[id]
	if !ok || run.TenantID != tenantID {
		return nil, nil
	}
	return run, nil
}

func (r *fakeRunRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]rule37.CalculationRun, error) {
	var list []rule37.CalculationRun
	for _, run := range r.saved {
		if run.TenantID == tenantID {
			list = append(list, *run)
		}
	}
	return list, nil
}

func (r *fakeRunRepository) DeleteByID(ctx context.Context, id, tenantID string) error {
	run, ok := r.runs[id]
	if !ok || run.TenantID != tenantID {
		return rule37.ErrRunNotFound
	}
	delete(r.runs, id)
	return nil
}

func (r *fakeRunRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	for id, run := range r.runs {
		if !run.ExpiresAt.After(cutoff) {
			delete(r.runs, id)
			removed++
		}
	}
	return removed, nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func uploadFile(name string, content []byte) UploadFile {
	return UploadFile{
		Filename: name,
		Size:     int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

func testConfig() UploadConfig {
	return UploadConfig{MaxFiles: 3, MaxFileBytes: 1024, RetentionDays: 7, SweepSchedule: "0 3 * * *"}
}

func newTestOrchestrator(t *testing.T, processor FileProcessor, repo rule37.RunRepository, clock Clock) *UploadOrchestrator {
	t.Helper()
	orchestrator, err := NewUploadOrchestrator(processor, repo, testConfig(), clock, nil)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	return orchestrator
}

func TestProcessUpload_SingleFile(t *testing.T) {
	repo := newFakeRunRepository()
	now := time.Date(2023, 8, 1, 10, 0, 0, 0, time.UTC)
	orchestrator := newTestOrchestrator(t, &fakeProcessor{}, repo, fixedClock{now: now})
	asOn := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)

	result, err := orchestrator.ProcessUpload(context.Background(), "tenant-a", "user-1", []UploadFile{
		uploadFile("acme.xlsx", []byte("data")),
	}, asOn)
	if err != nil {
		t.Fatalf("process upload: %v", err)
	}

	if result.RunID == "" {
		t.Fatalf("expected run id")
	}
	if result.Filename != "acme" {
		t.Fatalf("expected the ledger name as run label, got %q", result.Filename)
	}
	if result.HasErrors() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected 1 saved run, got %d", len(repo.saved))
	}
	run := repo.saved[0]
	if run.TenantID != "tenant-a" || run.CreatedBy != "user-1" {
		t.Fatalf("run attribution wrong: %+v", run)
	}
	if !run.AsOnDate.Equal(asOn) {
		t.Fatalf("expected as-on date persisted")
	}
	if !run.ExpiresAt.Equal(now.AddDate(0, 0, 7)) {
		t.Fatalf("expected expiry 7 days out, got %s", run.ExpiresAt)
	}
	if got := run.TotalInterest.StringFixed(2); got != "100.50" {
		t.Fatalf("expected total interest 100.50, got %s", got)
	}
}

func TestProcessUpload_PartialFailureIsolated(t *testing.T) {
	repo := newFakeRunRepository()
	processor := &fakeProcessor{failFiles: map[string]string{"broken.xlsx": "could not find date column"}}
	orchestrator := newTestOrchestrator(t, processor, repo, fixedClock{now: time.Now()})
	asOn := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)

	result, err := orchestrator.ProcessUpload(context.Background(), "tenant-a", "user-1", []UploadFile{
		uploadFile("acme.xlsx", []byte("a")),
		uploadFile("broken.xlsx", []byte("b")),
		uploadFile("beta.xlsx", []byte("c")),
	}, asOn)
	if err != nil {
		t.Fatalf("process upload: %v", err)
	}

	if len(result.Results) != 2 {
		t.Fatalf("expected 2 successful results, got %d", len(result.Results))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 file error, got %d", len(result.Errors))
	}
	if result.Errors[0].Filename != "broken.xlsx" {
		t.Fatalf("expected broken.xlsx reported, got %q", result.Errors[0].Filename)
	}
	// All three files must have been attempted.
	if len(processor.calls) != 3 {
		t.Fatalf("expected 3 processor calls, got %d", len(processor.calls))
	}
	// The label counts successes, not inputs, and carries the as-on date.
	if result.Filename != "2 files - 2023-08-01" {
		t.Fatalf("expected composite run label, got %q", result.Filename)
	}
	// Totals cover only the files that succeeded.
	if got := repo.saved[0].TotalInterest.StringFixed(2); got != "201.00" {
		t.Fatalf("expected total interest 201.00, got %s", got)
	}
}

func TestProcessUpload_EmptyBatch(t *testing.T) {
	orchestrator := newTestOrchestrator(t, &fakeProcessor{}, newFakeRunRepository(), fixedClock{now: time.Now()})

	_, err := orchestrator.ProcessUpload(context.Background(), "tenant-a", "user-1", nil, time.Now())
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProcessUpload_TooManyFiles(t *testing.T) {
	orchestrator := newTestOrchestrator(t, &fakeProcessor{}, newFakeRunRepository(), fixedClock{now: time.Now()})

	files := []UploadFile{
		uploadFile("a.xlsx", []byte("a")),
		uploadFile("b.xlsx", []byte("b")),
		uploadFile("c.xlsx", []byte("c")),
		uploadFile("d.xlsx", []byte("d")),
	}
	_, err := orchestrator.ProcessUpload(context.Background(), "tenant-a", "user-1", files, time.Now())
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(validation.Message, "too many files") {
		t.Fatalf("unexpected message: %s", validation.Message)
	}
}

func TestProcessUpload_AllFilesFailed(t *testing.T) {
	processor := &fakeProcessor{failFiles: map[string]string{
		"a.xlsx": "could not find date column",
		"b.xlsx": "spreadsheet is empty",
	}}
	orchestrator := newTestOrchestrator(t, processor, newFakeRunRepository(), fixedClock{now: time.Now()})

	_, err := orchestrator.ProcessUpload(context.Background(), "tenant-a", "user-1", []UploadFile{
		uploadFile("a.xlsx", []byte("a")),
		uploadFile("b.xlsx", []byte("b")),
	}, time.Now())
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.HasPrefix(validation.Message, "all files failed: ") {
		t.Fatalf("unexpected message: %s", validation.Message)
	}
}

func TestProcessUpload_EmptyAndOversizedFilesReported(t *testing.T) {
	repo := newFakeRunRepository()
	orchestrator := newTestOrchestrator(t, &fakeProcessor{}, repo, fixedClock{now: time.Now()})

	big := uploadFile("big.xlsx", bytes.Repeat([]byte("x"), 2048))
	empty := uploadFile("empty.xlsx", nil)
	ok := uploadFile("ok.xlsx", []byte("fine"))

	result, err := orchestrator.ProcessUpload(context.Background(), "tenant-a", "user-1", []UploadFile{big, empty, ok}, time.Now())
	if err != nil {
		t.Fatalf("process upload: %v", err)
	}
	if len(result.Results) != 1 {
		t.Fatalf("expected 1 success, got %d", len(result.Results))
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 file errors, got %d", len(result.Errors))
	}
	// A lone success names the run even when other files failed.
	if result.Filename != "ok" {
		t.Fatalf("expected the surviving ledger name, got %q", result.Filename)
	}
}

func TestProcessUpload_SaveFailure(t *testing.T) {
	repo := newFakeRunRepository()
	repo.saveErr = errors.New("db down")
	orchestrator := newTestOrchestrator(t, &fakeProcessor{}, repo, fixedClock{now: time.Now()})

	_, err := orchestrator.ProcessUpload(context.Background(), "tenant-a", "user-1", []UploadFile{
		uploadFile("acme.xlsx", []byte("a")),
	}, time.Now())
	if err == nil || !strings.Contains(err.Error(), "save calculation run") {
		t.Fatalf("expected save error, got %v", err)
	}
}

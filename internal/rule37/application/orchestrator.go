package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rule37-cloud/internal/observability/metrics"
	rule37 "rule37-cloud/internal/rule37/domain"
)

// ValidationError marks a client-side problem with an upload batch.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// FileUploadError records a per-file failure inside a batch. A batch with
// some failed files still succeeds overall.
type FileUploadError struct {
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// UploadFile is one file in an upload batch. Open is deferred so that only
// one file's bytes are held in memory at a time.
type UploadFile struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FileProcessor turns a single file into a per-ledger result.
type FileProcessor interface {
	Process(data []byte, filename string, asOnDate time.Time) (rule37.LedgerResult, error)
}

// UploadOrchestrator runs the upload use case: validate the batch, process
// each file independently, aggregate totals, persist the run.
type UploadOrchestrator struct {
	processor FileProcessor
	repo      rule37.RunRepository
	cfg       UploadConfig
	clock     Clock
	logger    *log.Logger
}

// NewUploadOrchestrator constructs the orchestrator.
func NewUploadOrchestrator(
	processor FileProcessor,
	repo rule37.RunRepository,
	cfg UploadConfig,
	clock Clock,
	logger *log.Logger,
) (*UploadOrchestrator, error) {
	if processor == nil {
		return nil, errors.New("upload orchestrator: nil file processor")
	}
	if repo == nil {
		return nil, errors.New("upload orchestrator: nil run repository")
	}
	if cfg.MaxFiles <= 0 || cfg.MaxFileBytes <= 0 {
		return nil, errors.New("upload orchestrator: invalid upload config")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}

	return &UploadOrchestrator{
		processor: processor,
		repo:      repo,
		cfg:       cfg,
		clock:     clock,
		logger:    logger,
	}, nil
}

// ProcessUpload processes a batch of ledger files sequentially. Files that
// fail to parse are reported in the result; the batch only fails when every
// file does, or when the batch itself is invalid.
func (o *UploadOrchestrator) ProcessUpload(ctx context.Context, tenantID, createdBy string, files []UploadFile, asOnDate time.Time) (*UploadResult, error) {
	started := o.clock.Now()

	if len(files) == 0 {
		metrics.ObserveUpload(metrics.ResultError, o.clock.Now().Sub(started))
		return nil, &ValidationError{Message: "no files uploaded"}
	}
	if len(files) > o.cfg.MaxFiles {
		metrics.ObserveUpload(metrics.ResultError, o.clock.Now().Sub(started))
		return nil, &ValidationError{Message: fmt.Sprintf("too many files: %d exceeds limit of %d", len(files), o.cfg.MaxFiles)}
	}

	var results []rule37.LedgerResult
	var fileErrors []FileUploadError
	for _, file := range files {
		result, err := o.processFile(ctx, file, asOnDate)
		if err != nil {
			o.logger.Printf("upload: file %q failed: %v", file.Filename, err)
			fileErrors = append(fileErrors, FileUploadError{Filename: file.Filename, Message: err.Error()})
			metrics.IncFileProcessed(metrics.ResultError)
			continue
		}
		results = append(results, result)
		metrics.IncFileProcessed(metrics.ResultSuccess)
	}

	if len(results) == 0 {
		metrics.ObserveUpload(metrics.ResultError, o.clock.Now().Sub(started))
		return nil, &ValidationError{Message: "all files failed: " + joinFileErrors(fileErrors)}
	}

	totalInterest := decimal.Zero
	totalItcReversal := decimal.Zero
	for _, result := range results {
		totalInterest = totalInterest.Add(result.Summary.TotalInterest)
		totalItcReversal = totalItcReversal.Add(result.Summary.TotalItcReversal)
	}

	now := o.clock.Now()
	run := &rule37.CalculationRun{
		ID:               uuid.NewString(),
		TenantID:         tenantID,
		Filename:         runLabel(results, asOnDate),
		AsOnDate:         asOnDate,
		TotalInterest:    totalInterest.Round(2),
		TotalItcReversal: totalItcReversal.Round(2),
		CalculationData:  results,
		CreatedAt:        now,
		CreatedBy:        createdBy,
		ExpiresAt:        now.AddDate(0, 0, o.cfg.RetentionDays),
	}
	if err := o.repo.Save(ctx, run); err != nil {
		metrics.ObserveUpload(metrics.ResultError, o.clock.Now().Sub(started))
		return nil, fmt.Errorf("save calculation run: %w", err)
	}

	metrics.ObserveUpload(metrics.ResultSuccess, o.clock.Now().Sub(started))
	return &UploadResult{
		RunID:    run.ID,
		Filename: run.Filename,
		Results:  ToLedgerResultDTOs(results),
		Errors:   fileErrors,
	}, nil
}

func (o *UploadOrchestrator) processFile(ctx context.Context, file UploadFile, asOnDate time.Time) (rule37.LedgerResult, error) {
	if err := ctx.Err(); err != nil {
		return rule37.LedgerResult{}, err
	}
	if file.Size == 0 {
		return rule37.LedgerResult{}, errors.New("file is empty")
	}
	if file.Size > o.cfg.MaxFileBytes {
		return rule37.LedgerResult{}, fmt.Errorf("file size %d exceeds limit of %d bytes", file.Size, o.cfg.MaxFileBytes)
	}

	reader, err := file.Open()
	if err != nil {
		return rule37.LedgerResult{}, fmt.Errorf("open file: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, o.cfg.MaxFileBytes+1))
	if err != nil {
		return rule37.LedgerResult{}, fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > o.cfg.MaxFileBytes {
		return rule37.LedgerResult{}, fmt.Errorf("file size exceeds limit of %d bytes", o.cfg.MaxFileBytes)
	}

	return o.processor.Process(data, file.Filename, asOnDate)
}

// runLabel names the run after what actually succeeded: one ledger keeps
// its name, several are summarized against the as-on date.
func runLabel(results []rule37.LedgerResult, asOnDate time.Time) string {
	if len(results) == 1 {
		return results[0].LedgerName
	}
	return fmt.Sprintf("%d files - %s", len(results), asOnDate.Format(dateLayout))
}

func joinFileErrors(fileErrors []FileUploadError) string {
	parts := make([]string, 0, len(fileErrors))
	for _, fe := range fileErrors {
		parts = append(parts, fe.Filename+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/couponhub/couponhub-backend/internal/domain"
	"github.com/couponhub/couponhub-backend/internal/repository/ports"
	"github.com/couponhub/couponhub-backend/internal/sheet"
)

var (
	ErrImportEmptyFile         = errors.New("import file is empty")
	ErrImportTooLarge          = errors.New("import file exceeds maximum size")
	ErrImportRowLimitExceeded  = errors.New("import exceeds maximum allowed rows")
	ErrImportUnknownEntity     = errors.New("unknown import entity")
	ErrImportUnsupportedFormat = errors.New("only .csv and .xlsx files are supported")
	ErrStoreListUnavailable    = errors.New("could not load stores")
	ErrImportJobNotFound       = errors.New("import job not found")
)

type logoResolver interface {
	Resolve(ctx context.Context, candidates ...string) string
}

type ImportServiceConfig struct {
	Bucket         string
	MaxRows        int
	MaxFileBytes   int64
	ErrorPreview   int
	SuccessPreview int
}

// ImportService reconciles spreadsheet rows against the store and coupon
// catalog. Rows are processed one at a time in file order; a failing row is
// recorded and the batch moves on.
type ImportService struct {
	jobs           ports.ImportJobRepository
	stores         ports.StoreRepository
	coupons        ports.CouponRepository
	logos          logoResolver
	storage        ports.ObjectStorage
	bucket         string
	maxRows        int
	maxFileBytes   int64
	errorPreview   int
	successPreview int
	now            func() time.Time
}

func NewImportService(jobs ports.ImportJobRepository, stores ports.StoreRepository, coupons ports.CouponRepository, logos logoResolver, storage ports.ObjectStorage, cfg ImportServiceConfig) *ImportService {
	maxRows := cfg.MaxRows
	if maxRows <= 0 {
		maxRows = 5000
	}
	maxFile := cfg.MaxFileBytes
	if maxFile <= 0 {
		maxFile = 10 * 1024 * 1024
	}
	errPreview := cfg.ErrorPreview
	if errPreview <= 0 {
		errPreview = 20
	}
	okPreview := cfg.SuccessPreview
	if okPreview <= 0 {
		okPreview = 10
	}

	return &ImportService{
		jobs:           jobs,
		stores:         stores,
		coupons:        coupons,
		logos:          logos,
		storage:        storage,
		bucket:         cfg.Bucket,
		maxRows:        maxRows,
		maxFileBytes:   maxFile,
		errorPreview:   errPreview,
		successPreview: okPreview,
		now:            time.Now,
	}
}

// Import parses an uploaded spreadsheet, archives it, reconciles every row and
// records the run as an import job.
func (s *ImportService) Import(ctx context.Context, entity domain.ImportEntity, filename string, contents []byte, dryRun bool) (_ *domain.ImportJob, _ *domain.ImportOutcome, _ []domain.ImportRowResult, err error) {
	if !entity.Valid() {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrImportUnknownEntity, entity)
	}
	if len(contents) == 0 {
		return nil, nil, nil, ErrImportEmptyFile
	}
	if s.maxFileBytes > 0 && int64(len(contents)) > s.maxFileBytes {
		return nil, nil, nil, ErrImportTooLarge
	}

	table, err := sheet.Parse(filename, contents)
	if err != nil {
		switch {
		case errors.Is(err, sheet.ErrEmptySheet):
			return nil, nil, nil, ErrImportEmptyFile
		case errors.Is(err, sheet.ErrUnsupportedFormat):
			return nil, nil, nil, ErrImportUnsupportedFormat
		default:
			return nil, nil, nil, err
		}
	}
	if s.maxRows > 0 && len(table.Rows) > s.maxRows {
		return nil, nil, nil, ErrImportRowLimitExceeded
	}

	jobID := uuid.New()
	job := &domain.ImportJob{
		ID:          jobID,
		Entity:      entity,
		Status:      domain.ImportStatusProcessing,
		DryRun:      dryRun,
		FileName:    filepath.Base(strings.TrimSpace(filename)),
		FileKey:     s.archive(ctx, entity, jobID, filename, contents),
		TotalRows:   len(table.Rows),
		SubmittedAt: s.now(),
	}

	job, err = s.jobs.CreateJob(ctx, job)
	if err != nil {
		return nil, nil, nil, err
	}

	defer func() {
		if err != nil && job != nil {
			s.failJob(ctx, job)
		}
	}()

	results, err := s.reconcile(ctx, entity, table.Rows, table.Lines, dryRun)
	if err != nil {
		if len(results) == 0 {
			return nil, nil, nil, err
		}
		// Rows handled before the interruption are already written; keep a
		// record of them on the failed job.
		outcome := s.buildOutcome(results)
		job.SuccessCount = outcome.SuccessCount
		job.ErrorCount = outcome.ErrorCount
		persisted, perr := s.persistRows(context.WithoutCancel(ctx), job.ID, results)
		if perr != nil {
			log.Printf("import: record partial rows of job %s: %v", job.ID, perr)
		}
		return job, outcome, persisted, err
	}

	persisted, err := s.persistRows(ctx, job.ID, results)
	if err != nil {
		return nil, nil, nil, err
	}

	outcome := s.buildOutcome(results)
	completed := s.now()
	job.Status = domain.ImportStatusCompleted
	job.CompletedAt = &completed
	job.SuccessCount = outcome.SuccessCount
	job.ErrorCount = outcome.ErrorCount

	updated, err := s.jobs.UpdateJob(ctx, job)
	if err != nil {
		return nil, nil, nil, err
	}
	return updated, outcome, persisted, nil
}

// ImportRows reconciles rows that were parsed elsewhere. Nothing is recorded
// as a job. When the context is cancelled mid-batch the rows handled so far
// are returned with the error.
func (s *ImportService) ImportRows(ctx context.Context, entity domain.ImportEntity, rows []domain.ImportRow, dryRun bool) (*domain.ImportOutcome, []domain.ImportRowResult, error) {
	if !entity.Valid() {
		return nil, nil, fmt.Errorf("%w: %s", ErrImportUnknownEntity, entity)
	}
	if s.maxRows > 0 && len(rows) > s.maxRows {
		return nil, nil, ErrImportRowLimitExceeded
	}
	results, err := s.reconcile(ctx, entity, rows, nil, dryRun)
	if err != nil {
		if len(results) == 0 {
			return nil, nil, err
		}
		return s.buildOutcome(results), results, err
	}
	return s.buildOutcome(results), results, nil
}

func (s *ImportService) ImportStores(ctx context.Context, rows []domain.ImportRow) (*domain.ImportOutcome, error) {
	outcome, _, err := s.ImportRows(ctx, domain.ImportEntityStores, rows, false)
	return outcome, err
}

func (s *ImportService) ImportCoupons(ctx context.Context, rows []domain.ImportRow) (*domain.ImportOutcome, error) {
	outcome, _, err := s.ImportRows(ctx, domain.ImportEntityCoupons, rows, false)
	return outcome, err
}

func (s *ImportService) persistRows(ctx context.Context, jobID uuid.UUID, results []domain.ImportRowResult) ([]domain.ImportRowResult, error) {
	persisted := make([]domain.ImportRowResult, 0, len(results))
	for i := range results {
		results[i].JobID = jobID
		inserted, err := s.jobs.InsertRow(ctx, &results[i])
		if err != nil {
			return persisted, err
		}
		persisted = append(persisted, *inserted)
	}
	return persisted, nil
}

func (s *ImportService) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.ImportJob, []domain.ImportRowResult, error) {
	job, err := s.jobs.FindJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrImportJobNotFound
		}
		return nil, nil, err
	}
	rows, err := s.jobs.ListRowsByJob(ctx, job.ID)
	if err != nil {
		return nil, nil, err
	}
	return job, rows, nil
}

// reconcile builds the store index once and walks the rows sequentially. Only
// a failure to load stores or a cancelled context aborts the batch. lines may
// be nil, in which case rows are numbered as if preceded by a header line.
func (s *ImportService) reconcile(ctx context.Context, entity domain.ImportEntity, rows []domain.ImportRow, lines []int, dryRun bool) ([]domain.ImportRowResult, error) {
	stores, err := s.stores.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreListUnavailable, err)
	}
	index := NewStoreNameIndex(stores)

	results := make([]domain.ImportRowResult, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		rowNumber := i + 2
		if i < len(lines) {
			rowNumber = lines[i]
		}

		result := s.reconcileRow(ctx, entity, row, index, dryRun)
		result.RowNumber = rowNumber
		result.Raw = domain.RowPayload(row)
		results = append(results, result)
	}
	return results, nil
}

func (s *ImportService) reconcileRow(ctx context.Context, entity domain.ImportEntity, row domain.ImportRow, index *StoreNameIndex, dryRun bool) (result domain.ImportRowResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("import: row panicked: %v", r)
			result = failRow(result, fmt.Errorf("unexpected error: %v", r))
		}
	}()

	switch entity {
	case domain.ImportEntityStores:
		return s.reconcileStoreRow(ctx, row, index, dryRun)
	default:
		return s.reconcileCouponRow(ctx, row, index, dryRun)
	}
}

func (s *ImportService) buildOutcome(results []domain.ImportRowResult) *domain.ImportOutcome {
	outcome := &domain.ImportOutcome{
		Errors:   make([]string, 0),
		Imported: make([]string, 0),
	}
	for _, r := range results {
		if r.Failed() {
			outcome.ErrorCount++
			if len(outcome.Errors) < s.errorPreview {
				outcome.Errors = append(outcome.Errors, formatRowError(r))
			}
			continue
		}
		outcome.SuccessCount++
		if len(outcome.Imported) < s.successPreview {
			outcome.Imported = append(outcome.Imported, r.Label)
		}
	}
	return outcome
}

func formatRowError(r domain.ImportRowResult) string {
	label := r.Label
	if label == "" {
		label = "Unknown"
	}
	msg := "import failed"
	if r.Error != nil && *r.Error != "" {
		msg = *r.Error
	}
	return fmt.Sprintf("Row %d (%s): %s", r.RowNumber, label, msg)
}

func failRow(result domain.ImportRowResult, err error) domain.ImportRowResult {
	msg := err.Error()
	result.Status = domain.ImportRowStatusFailed
	result.Error = &msg
	result.RecordID = nil
	return result
}

func succeedRow(result domain.ImportRowResult, recordID *uuid.UUID, dryRun bool) domain.ImportRowResult {
	if dryRun {
		result.Status = domain.ImportRowStatusValidated
		return result
	}
	result.Status = domain.ImportRowStatusSucceeded
	result.RecordID = recordID
	return result
}

func (s *ImportService) archive(ctx context.Context, entity domain.ImportEntity, jobID uuid.UUID, filename string, contents []byte) *string {
	if s.storage == nil || s.bucket == "" {
		return nil
	}
	objectName := buildObjectName(entity, jobID, filename)
	if _, err := s.storage.Upload(ctx, s.bucket, objectName, contentTypeFor(filename), bytes.NewReader(contents), int64(len(contents))); err != nil {
		log.Printf("import: archive %s failed: %v", objectName, err)
		return nil
	}
	return &objectName
}

func buildObjectName(entity domain.ImportEntity, jobID uuid.UUID, filename string) string {
	name := strings.TrimSpace(filename)
	if name == "" {
		name = "upload.csv"
	}
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	return fmt.Sprintf("imports/%s/%s/%s", entity, jobID.String(), name)
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return sheet.ContentTypeXLSX
	default:
		return sheet.ContentTypeCSV
	}
}

func (s *ImportService) failJob(ctx context.Context, job *domain.ImportJob) {
	if job == nil {
		return
	}
	job.Status = domain.ImportStatusFailed
	now := s.now()
	job.CompletedAt = &now
	if _, err := s.jobs.UpdateJob(context.WithoutCancel(ctx), job); err != nil {
		log.Printf("import: mark job %s failed: %v", job.ID, err)
	}
}

package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/couponhub/couponhub-backend/internal/domain"
	"github.com/couponhub/couponhub-backend/internal/repository/ports"
)

type ImportJobRepository struct {
	db *sqlx.DB
}

func NewImportJobRepo(db *sqlx.DB) *ImportJobRepository {
	return &ImportJobRepository{db: db}
}

func (r *ImportJobRepository) CreateJob(ctx context.Context, job *domain.ImportJob) (*domain.ImportJob, error) {
	const query = `
		INSERT INTO import_job (
			id, entity, status, dry_run, file_name, file_key,
			total_rows, success_count, error_count,
			submitted_at, completed_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9,
			$10, $11, NOW(), NOW()
		)
		RETURNING id, entity, status, dry_run, file_name, file_key,
		          total_rows, success_count, error_count,
		          submitted_at, completed_at, created_at, updated_at
	`

	var inserted domain.ImportJob
	if err := r.db.GetContext(ctx, &inserted, query,
		job.ID,
		job.Entity,
		job.Status,
		job.DryRun,
		job.FileName,
		nullString(job.FileKey),
		job.TotalRows,
		job.SuccessCount,
		job.ErrorCount,
		job.SubmittedAt,
		nullTimePtr(job.CompletedAt),
	); err != nil {
		return nil, err
	}
	return &inserted, nil
}

func (r *ImportJobRepository) UpdateJob(ctx context.Context, job *domain.ImportJob) (*domain.ImportJob, error) {
	const query = `
		UPDATE import_job
		SET status = $2,
		    file_key = $3,
		    total_rows = $4,
		    success_count = $5,
		    error_count = $6,
		    completed_at = $7,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, entity, status, dry_run, file_name, file_key,
		          total_rows, success_count, error_count,
		          submitted_at, completed_at, created_at, updated_at
	`

	var updated domain.ImportJob
	if err := r.db.GetContext(ctx, &updated, query,
		job.ID,
		job.Status,
		nullString(job.FileKey),
		job.TotalRows,
		job.SuccessCount,
		job.ErrorCount,
		nullTimePtr(job.CompletedAt),
	); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *ImportJobRepository) FindJobByID(ctx context.Context, id uuid.UUID) (*domain.ImportJob, error) {
	const query = `
		SELECT id, entity, status, dry_run, file_name, file_key,
		       total_rows, success_count, error_count,
		       submitted_at, completed_at, created_at, updated_at
		FROM import_job
		WHERE id = $1
	`

	var job domain.ImportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *ImportJobRepository) InsertRow(ctx context.Context, row *domain.ImportRowResult) (*domain.ImportRowResult, error) {
	const query = `
		INSERT INTO import_job_row (
			job_id, row_number, status, action, record_id, label, error, payload
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		RETURNING id, job_id, row_number, status, action, record_id, label, error, payload, created_at
	`

	var inserted domain.ImportRowResult
	if err := r.db.GetContext(ctx, &inserted, query,
		row.JobID,
		row.RowNumber,
		row.Status,
		row.Action,
		uuidPtrOrNil(row.RecordID),
		row.Label,
		nullString(row.Error),
		row.Raw,
	); err != nil {
		return nil, err
	}
	return &inserted, nil
}

func (r *ImportJobRepository) ListRowsByJob(ctx context.Context, jobID uuid.UUID) ([]domain.ImportRowResult, error) {
	const query = `
		SELECT id, job_id, row_number, status, action, record_id, label, error, payload, created_at
		FROM import_job_row
		WHERE job_id = $1
		ORDER BY row_number ASC
	`
	rows := make([]domain.ImportRowResult, 0)
	if err := r.db.SelectContext(ctx, &rows, query, jobID); err != nil {
		return nil, err
	}
	return rows, nil
}

var _ ports.ImportJobRepository = (*ImportJobRepository)(nil)

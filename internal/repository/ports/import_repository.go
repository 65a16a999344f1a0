package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/couponhub/couponhub-backend/internal/domain"
)

type ImportJobRepository interface {
	CreateJob(ctx context.Context, job *domain.ImportJob) (*domain.ImportJob, error)
	UpdateJob(ctx context.Context, job *domain.ImportJob) (*domain.ImportJob, error)
	FindJobByID(ctx context.Context, id uuid.UUID) (*domain.ImportJob, error)
	InsertRow(ctx context.Context, row *domain.ImportRowResult) (*domain.ImportRowResult, error)
	ListRowsByJob(ctx context.Context, jobID uuid.UUID) ([]domain.ImportRowResult, error)
}

package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/couponhub/couponhub-backend/internal/domain"
)

type StoreRepository interface {
	Create(ctx context.Context, fields domain.StoreFields) (*domain.Store, error)
	Update(ctx context.Context, id uuid.UUID, fields domain.StoreFields) (*domain.Store, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Store, error)
	List(ctx context.Context) ([]domain.Store, error)
}

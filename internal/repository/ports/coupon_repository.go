package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/couponhub/couponhub-backend/internal/domain"
)

type CouponRepository interface {
	Create(ctx context.Context, fields domain.CouponFields, logoURL string) (*domain.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, fields domain.CouponFields) (*domain.Coupon, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Coupon, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, activeOnly bool) ([]domain.Coupon, error)
}

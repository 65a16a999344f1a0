package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/couponhub/couponhub-backend/internal/domain"
	"github.com/couponhub/couponhub-backend/internal/repository/ports"
)

var (
	ErrStoreNotFound  = errors.New("store not found")
	ErrCouponNotFound = errors.New("coupon not found")
)

// CatalogService serves the public store and coupon pages.
type CatalogService struct {
	stores  ports.StoreRepository
	coupons ports.CouponRepository
}

func NewCatalogService(storeRepo ports.StoreRepository, couponRepo ports.CouponRepository) *CatalogService {
	return &CatalogService{stores: storeRepo, coupons: couponRepo}
}

func (s *CatalogService) ListStores(ctx context.Context, query string) ([]domain.Store, error) {
	stores, err := s.stores.List(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return stores, nil
	}
	needle := lowerTrim(q)
	out := make([]domain.Store, 0)
	for _, store := range stores {
		if strings.Contains(lowerTrim(store.Name), needle) {
			out = append(out, store)
		}
	}
	return out, nil
}

func (s *CatalogService) GetStore(ctx context.Context, id uuid.UUID) (*domain.Store, error) {
	store, err := s.stores.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

func (s *CatalogService) ListStoreCoupons(ctx context.Context, storeID uuid.UUID, activeOnly bool) ([]domain.Coupon, error) {
	if _, err := s.GetStore(ctx, storeID); err != nil {
		return nil, err
	}
	return s.coupons.ListByStore(ctx, storeID, activeOnly)
}

func (s *CatalogService) GetCoupon(ctx context.Context, id uuid.UUID) (*domain.Coupon, error) {
	coupon, err := s.coupons.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return coupon, nil
}

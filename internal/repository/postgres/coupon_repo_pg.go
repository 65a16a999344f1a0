package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/couponhub/couponhub-backend/internal/domain"
	"github.com/couponhub/couponhub-backend/internal/repository/ports"
)

const couponColumns = `id, store_name, store_ids, code, title, description, discount,
		          discount_type, coupon_type, url, logo_url, is_active, is_popular,
		          expiry_date, created_at, updated_at`

type CouponRepository struct {
	db *sqlx.DB
}

func NewCouponRepo(db *sqlx.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) Create(ctx context.Context, fields domain.CouponFields, logoURL string) (*domain.Coupon, error) {
	query := `
		INSERT INTO coupon (
			store_name, store_ids, code, title, description, discount, discount_type,
			coupon_type, url, logo_url, is_active, is_popular, expiry_date
		) VALUES (
			:store_name, :store_ids, :code, :title, :description, :discount, :discount_type,
			:coupon_type, :url, :logo_url, :is_active, :is_popular, :expiry_date
		)
		RETURNING ` + couponColumns

	couponType := domain.CouponTypeDeal
	if fields.CouponType != nil {
		couponType = *fields.CouponType
	}
	storeIDs := fields.StoreIDs
	if storeIDs == nil {
		storeIDs = domain.UUIDList{}
	}

	args := map[string]any{
		"store_name":    valueOrDefault(fields.StoreName, ""),
		"store_ids":     storeIDs,
		"code":          nullString(fields.Code),
		"title":         valueOrDefault(fields.Title, ""),
		"description":   nullString(fields.Description),
		"discount":      nullDecimal(fields.Discount),
		"discount_type": nullString(fields.DiscountType),
		"coupon_type":   string(couponType),
		"url":           nullString(fields.URL),
		"logo_url":      nullString(&logoURL),
		"is_active":     boolOrDefault(fields.IsActive, true),
		"is_popular":    boolOrDefault(fields.IsPopular, false),
		"expiry_date":   nullTimePtr(fields.ExpiryDate),
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var coupon domain.Coupon
		if err = rows.StructScan(&coupon); err != nil {
			return nil, err
		}
		return &coupon, nil
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, sql.ErrNoRows
}

func (r *CouponRepository) Update(ctx context.Context, id uuid.UUID, fields domain.CouponFields) (*domain.Coupon, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{}
	idx := 1

	set := func(column string, value any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if fields.StoreName != nil {
		set("store_name", strings.TrimSpace(*fields.StoreName))
	}
	if fields.StoreIDs != nil {
		set("store_ids", fields.StoreIDs)
	}
	if fields.Title != nil {
		set("title", strings.TrimSpace(*fields.Title))
	}
	if fields.Description != nil {
		set("description", nullString(fields.Description))
	}
	if fields.Discount != nil {
		set("discount", nullDecimal(fields.Discount))
	}
	if fields.DiscountType != nil {
		set("discount_type", nullString(fields.DiscountType))
	}
	if fields.CouponType != nil {
		set("coupon_type", string(*fields.CouponType))
		if *fields.CouponType == domain.CouponTypeDeal {
			set("code", sql.NullString{})
		}
	}
	if fields.Code != nil && (fields.CouponType == nil || *fields.CouponType == domain.CouponTypeCode) {
		set("code", nullString(fields.Code))
	}
	if fields.URL != nil {
		set("url", nullString(fields.URL))
	}
	if fields.IsActive != nil {
		set("is_active", *fields.IsActive)
	}
	if fields.IsPopular != nil {
		set("is_popular", *fields.IsPopular)
	}
	if fields.ExpiryDate != nil {
		set("expiry_date", nullTimePtr(fields.ExpiryDate))
	}

	query := fmt.Sprintf(`
		UPDATE coupon
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setParts, ", "), idx, couponColumns)

	args = append(args, id)

	var coupon domain.Coupon
	if err := r.db.GetContext(ctx, &coupon, query, args...); err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *CouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM coupon
		WHERE id = $1
	`
	var coupon domain.Coupon
	if err := r.db.GetContext(ctx, &coupon, query, id); err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *CouponRepository) ListByStore(ctx context.Context, storeID uuid.UUID, activeOnly bool) ([]domain.Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM coupon
		WHERE $1 = ANY(store_ids)
		  AND ($2 = FALSE OR (is_active AND (expiry_date IS NULL OR expiry_date > NOW())))
		ORDER BY is_popular DESC, created_at DESC
	`
	coupons := make([]domain.Coupon, 0)
	if err := r.db.SelectContext(ctx, &coupons, query, storeID, activeOnly); err != nil {
		return nil, err
	}
	return coupons, nil
}

var _ ports.CouponRepository = (*CouponRepository)(nil)

package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponTypeCode CouponType = "code"
	CouponTypeDeal CouponType = "deal"
)

type Coupon struct {
	ID           uuid.UUID           `db:"id" json:"id"`
	StoreName    string              `db:"store_name" json:"store_name"`
	StoreIDs     UUIDList            `db:"store_ids" json:"store_ids"`
	Code         *string             `db:"code" json:"code,omitempty"`
	Title        string              `db:"title" json:"title"`
	Description  *string             `db:"description" json:"description,omitempty"`
	Discount     decimal.NullDecimal `db:"discount" json:"discount"`
	DiscountType *string             `db:"discount_type" json:"discount_type,omitempty"`
	CouponType   CouponType          `db:"coupon_type" json:"coupon_type"`
	URL          *string             `db:"url" json:"url,omitempty"`
	LogoURL      *string             `db:"logo_url" json:"logo_url,omitempty"`
	IsActive     bool                `db:"is_active" json:"is_active"`
	IsPopular    bool                `db:"is_popular" json:"is_popular"`
	ExpiryDate   *time.Time          `db:"expiry_date" json:"expiry_date,omitempty"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updated_at"`
}

// CouponFields is the writable subset of a coupon. Code is only persisted for
// code-type coupons; see HasCode.
type CouponFields struct {
	StoreName    *string          `json:"store_name,omitempty"`
	StoreIDs     UUIDList         `json:"store_ids,omitempty"`
	Code         *string          `json:"code,omitempty"`
	Title        *string          `json:"title,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Discount     *decimal.Decimal `json:"discount,omitempty"`
	DiscountType *string          `json:"discount_type,omitempty"`
	CouponType   *CouponType      `json:"coupon_type,omitempty"`
	URL          *string          `json:"url,omitempty"`
	IsActive     *bool            `json:"is_active,omitempty"`
	IsPopular    *bool            `json:"is_popular,omitempty"`
	ExpiryDate   *time.Time       `json:"expiry_date,omitempty"`
}

func (f CouponFields) HasCode() bool {
	return f.Code != nil && *f.Code != ""
}

// UUIDList maps a postgres uuid[] column.
type UUIDList []uuid.UUID

func (l UUIDList) Value() (driver.Value, error) {
	arr := make(pq.StringArray, 0, len(l))
	for _, id := range l {
		arr = append(arr, id.String())
	}
	return arr.Value()
}

func (l *UUIDList) Scan(src any) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	out := make(UUIDList, 0, len(arr))
	for _, raw := range arr {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("store_ids: %w", err)
		}
		out = append(out, id)
	}
	*l = out
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/couponhub/couponhub-backend/internal/domain"
)

var (
	errCouponTitleRequired = errors.New("title is required")
	errCouponStoreRequired = errors.New("store name or store id is required")
)

// reconcileCouponRow creates a coupon, or updates one when the row carries a
// Coupon ID. Store IDs are trusted as given; a bare store name goes through
// the resolver.
func (s *ImportService) reconcileCouponRow(ctx context.Context, row domain.ImportRow, index *StoreNameIndex, dryRun bool) domain.ImportRowResult {
	title := rowText(row, fieldTitle)
	result := domain.ImportRowResult{
		Action: domain.ImportActionCreate,
		Label:  title,
	}

	id, err := rowID(row, fieldCouponID)
	if err != nil {
		return failRow(result, err)
	}
	isUpdate := id != nil
	if isUpdate {
		result.Action = domain.ImportActionUpdate
	}

	if title == "" {
		return failRow(result, errCouponTitleRequired)
	}

	fields, store, err := buildCouponFields(row, index, isUpdate)
	if err != nil {
		return failRow(result, err)
	}
	if fields.StoreName != nil {
		result.Label = fmt.Sprintf("%s (%s)", title, *fields.StoreName)
	}

	if isUpdate {
		if dryRun {
			return succeedRow(result, id, true)
		}
		coupon, err := s.coupons.Update(ctx, *id, fields)
		if err != nil {
			return failRow(result, persistenceError("coupon", id.String(), err))
		}
		return succeedRow(result, &coupon.ID, false)
	}

	if len(fields.StoreIDs) == 0 {
		return failRow(result, errCouponStoreRequired)
	}

	candidates := make([]string, 0, 3)
	if store != nil && store.LogoURL != nil {
		candidates = append(candidates, *store.LogoURL)
	}
	if fields.URL != nil {
		candidates = append(candidates, *fields.URL)
	}
	if store != nil {
		candidates = append(candidates, store.Website())
	}
	logo := s.logos.Resolve(ctx, candidates...)

	if dryRun {
		return succeedRow(result, nil, true)
	}
	coupon, err := s.coupons.Create(ctx, fields, logo)
	if err != nil {
		return failRow(result, persistenceError("coupon", "", err))
	}
	return succeedRow(result, &coupon.ID, false)
}

// buildCouponFields maps a row onto coupon fields. For updates only the
// columns present in the row are set; creates get defaults (deal, active,
// not popular).
func buildCouponFields(row domain.ImportRow, index *StoreNameIndex, isUpdate bool) (domain.CouponFields, *domain.Store, error) {
	fields := domain.CouponFields{
		Title:       rowString(row, fieldTitle),
		Description: rowString(row, fieldDescription),
		URL:         rowString(row, fieldCouponURL),
		ExpiryDate:  rowDate(row, fieldExpiryDate),
	}

	store, err := resolveCouponStore(row, index, &fields)
	if err != nil {
		return fields, nil, err
	}

	couponType := domain.CouponTypeDeal
	typeRaw := strings.ToLower(rowText(row, fieldCouponType))
	if typeRaw == string(domain.CouponTypeCode) {
		couponType = domain.CouponTypeCode
	}
	code := rowString(row, fieldCode)
	switch {
	case typeRaw != "" || !isUpdate:
		fields.CouponType = &couponType
		// deals never carry a code, even when the row has one
		if couponType == domain.CouponTypeCode {
			fields.Code = code
			if code == nil {
				log.Printf("import: code coupon %q has no code", rowText(row, fieldTitle))
			}
		}
	case code != nil:
		fields.Code = code
	}

	discount, unit, err := rowDiscount(row, fieldDiscount)
	if err != nil {
		return fields, nil, err
	}
	fields.Discount = discount
	discountType := strings.ToLower(rowText(row, fieldDiscountType))
	if discountType == "" {
		switch unit {
		case "%":
			discountType = "percentage"
		case "$":
			discountType = "fixed"
		}
	}
	fields.DiscountType = stringPointer(discountType)

	if _, ok := lookupCell(row, fieldIsActive); ok || !isUpdate {
		active := rowBool(row, fieldIsActive, true)
		fields.IsActive = &active
	}
	if _, ok := lookupCell(row, fieldIsPopular); ok || !isUpdate {
		popular := rowBool(row, fieldIsPopular, false)
		fields.IsPopular = &popular
	}

	return fields, store, nil
}

func resolveCouponStore(row domain.ImportRow, index *StoreNameIndex, fields *domain.CouponFields) (*domain.Store, error) {
	ids, err := rowIDList(row)
	if err != nil {
		return nil, err
	}
	storeName := rowText(row, fieldCouponStore)

	if len(ids) > 0 {
		fields.StoreIDs = ids
		store, known := index.ByID(ids[0])
		if storeName == "" && known {
			storeName = store.Name
		}
		fields.StoreName = stringPointer(storeName)
		if known {
			return &store, nil
		}
		return nil, nil
	}

	if storeName == "" {
		return nil, nil
	}
	store, err := index.Resolve(storeName)
	if err != nil {
		return nil, err
	}
	fields.StoreIDs = domain.UUIDList{store.ID}
	fields.StoreName = &store.Name
	return store, nil
}

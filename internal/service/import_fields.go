package service

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/couponhub/couponhub-backend/internal/domain"
)

type importField string

const (
	fieldStoreID         importField = "store_id"
	fieldStoreIDs        importField = "store_ids"
	fieldStoreName       importField = "store_name"
	fieldCouponStore     importField = "coupon_store"
	fieldDescription     importField = "description"
	fieldLogoURL         importField = "logo_url"
	fieldWebsiteURL      importField = "website_url"
	fieldTrackingLink    importField = "tracking_link"
	fieldCategoryID      importField = "category_id"
	fieldSlug            importField = "slug"
	fieldAbout           importField = "about"
	fieldEstablishedYear importField = "established_year"
	fieldHeadquarters    importField = "headquarters"
	fieldTrustScore      importField = "trust_score"
	fieldCouponID        importField = "coupon_id"
	fieldTitle           importField = "title"
	fieldCode            importField = "code"
	fieldCouponType      importField = "coupon_type"
	fieldDiscount        importField = "discount"
	fieldDiscountType    importField = "discount_type"
	fieldExpiryDate      importField = "expiry_date"
	fieldIsActive        importField = "is_active"
	fieldIsPopular       importField = "is_popular"
	fieldCouponURL       importField = "url"
)

// importColumns lists the accepted header spellings per logical field, in
// lookup order. Headers are matched exactly first and then loosely (case,
// spaces, underscores and hyphens ignored).
var importColumns = map[importField][]string{
	fieldStoreID:         {"Store ID", "Store Id", "StoreID", "storeId", "store_id", "store id"},
	fieldStoreIDs:        {"Store IDs", "Store Ids", "StoreIDs", "storeIds", "store_ids", "store ids"},
	fieldStoreName:       {"Store Name", "Name", "store name", "StoreName", "storeName", "name", "store_name"},
	fieldCouponStore:     {"Store Name", "store name", "StoreName", "storeName", "Store", "store", "store_name"},
	fieldDescription:     {"Description", "description", "Desc"},
	fieldLogoURL:         {"Logo URL", "Logo Url", "logoUrl", "Logo", "logo", "logo_url"},
	fieldWebsiteURL:      {"Website URL", "Website Url", "Website", "websiteUrl", "website", "website_url"},
	fieldTrackingLink:    {"Tracking Link", "Tracking URL", "Affiliate Link", "trackingLink", "tracking_link", "affiliateLink"},
	fieldCategoryID:      {"Category ID", "Category Id", "categoryId", "category_id", "Category", "category"},
	fieldSlug:            {"Slug", "slug", "SEO Slug"},
	fieldAbout:           {"About", "about", "About Text", "aboutText"},
	fieldEstablishedYear: {"Established Year", "Established", "establishedYear", "established_year", "Founded"},
	fieldHeadquarters:    {"Headquarters", "headquarters", "HQ"},
	fieldTrustScore:      {"Trust Score", "trustScore", "trust_score", "Rating"},
	fieldCouponID:        {"Coupon ID", "Coupon Id", "CouponID", "couponId", "coupon_id", "coupon id"},
	fieldTitle:           {"Title", "title", "Coupon Title", "couponTitle", "Offer"},
	fieldCode:            {"Code", "code", "Coupon Code", "couponCode", "coupon_code"},
	fieldCouponType:      {"Type", "type", "Coupon Type", "couponType", "coupon_type"},
	fieldDiscount:        {"Discount", "discount", "Discount Value", "discountValue"},
	fieldDiscountType:    {"Discount Type", "discountType", "discount_type"},
	fieldExpiryDate:      {"Expiry Date", "Expiry", "expiryDate", "expiry_date", "Expires", "Expiration Date"},
	fieldIsActive:        {"Is Active", "isActive", "is_active", "Active", "active"},
	fieldIsPopular:       {"Is Popular", "isPopular", "is_popular", "Popular", "popular"},
	fieldCouponURL:       {"URL", "Url", "url", "Coupon URL", "Deal URL", "Link", "link"},
}

var expiryLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1/2/06",
	"01-02-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 Jan 2006",
	"2 January 2006",
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

func lookupCell(row domain.ImportRow, field importField) (any, bool) {
	names := importColumns[field]
	for _, name := range names {
		if v, ok := row[name]; ok && !isBlankCell(v) {
			return v, true
		}
	}

	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, name := range names {
		want := compactHeader(name)
		for _, k := range keys {
			if compactHeader(k) == want && !isBlankCell(row[k]) {
				return row[k], true
			}
		}
	}
	return nil, false
}

func compactHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

func isBlankCell(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func rowText(row domain.ImportRow, field importField) string {
	v, ok := lookupCell(row, field)
	if !ok {
		return ""
	}
	return cellText(v)
}

func rowString(row domain.ImportRow, field importField) *string {
	return stringPointer(rowText(row, field))
}

// rowBool accepts true, "true" in any case, and 1. Any other present value is
// false; an absent cell yields def.
func rowBool(row domain.ImportRow, field importField, def bool) bool {
	v, ok := lookupCell(row, field)
	if !ok {
		return def
	}
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val == 1
	case int:
		return val == 1
	case string:
		s := strings.TrimSpace(val)
		return strings.EqualFold(s, "true") || s == "1"
	}
	return false
}

// rowDate never fails the row: unparseable values are dropped to nil.
func rowDate(row domain.ImportRow, field importField) *time.Time {
	v, ok := lookupCell(row, field)
	if !ok {
		return nil
	}
	if serial, ok := v.(float64); ok {
		return excelSerialDate(serial, v)
	}
	raw := cellText(v)
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		return excelSerialDate(serial, v)
	}
	log.Printf("import: dropping unparseable date %q", raw)
	return nil
}

func excelSerialDate(serial float64, raw any) *time.Time {
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		log.Printf("import: dropping unparseable date %v: %v", raw, err)
		return nil
	}
	t = t.UTC().Round(time.Second)
	return &t
}

func rowInt(row domain.ImportRow, field importField) (*int, error) {
	raw := rowText(row, field)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return nil, fmt.Errorf("invalid %s: %q", strings.ReplaceAll(string(field), "_", " "), raw)
	}
	n := int(f)
	return &n, nil
}

func rowFloat(row domain.ImportRow, field importField) (*float64, error) {
	raw := rowText(row, field)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", strings.ReplaceAll(string(field), "_", " "), raw)
	}
	return &f, nil
}

// rowDiscount reads values such as "15", "15%", "$10.50" or "1,200". The unit
// symbol, if any, is returned so a missing discount type can be inferred.
func rowDiscount(row domain.ImportRow, field importField) (*decimal.Decimal, string, error) {
	raw := rowText(row, field)
	if raw == "" {
		return nil, "", nil
	}
	unit := ""
	switch {
	case strings.Contains(raw, "%"):
		unit = "%"
	case strings.ContainsAny(raw, "$€£"):
		unit = "$"
	}
	cleaned := strings.NewReplacer("%", "", "$", "", "€", "", "£", "", ",", "", " ", "").Replace(raw)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil, "", fmt.Errorf("invalid discount: %q", raw)
	}
	return &d, unit, nil
}

func rowID(row domain.ImportRow, field importField) (*uuid.UUID, error) {
	raw := rowText(row, field)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", strings.ReplaceAll(string(field), "_", " "), raw)
	}
	return &id, nil
}

func rowIDList(row domain.ImportRow) (domain.UUIDList, error) {
	var out domain.UUIDList
	seen := make(map[uuid.UUID]struct{})
	add := func(raw string) error {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid store id: %q", raw)
		}
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			out = append(out, id)
		}
		return nil
	}
	if err := add(rowText(row, fieldStoreID)); err != nil {
		return nil, err
	}
	for _, part := range strings.Split(rowText(row, fieldStoreIDs), ",") {
		if err := add(part); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

func stringPointer(val string) *string {
	if val == "" {
		return nil
	}
	return &val
}

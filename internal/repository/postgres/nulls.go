package postgres

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func valueOrDefault(ptr *string, fallback string) string {
	if ptr == nil {
		return fallback
	}
	return strings.TrimSpace(*ptr)
}

func nullString(ptr *string) sql.NullString {
	if ptr == nil {
		return sql.NullString{Valid: false}
	}
	v := strings.TrimSpace(*ptr)
	if v == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: v, Valid: true}
}

func nullFloat(ptr *float64) sql.NullFloat64 {
	if ptr == nil {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Float64: *ptr, Valid: true}
}

func nullInt(ptr *int) sql.NullInt64 {
	if ptr == nil {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: int64(*ptr), Valid: true}
}

func nullTimePtr(ptr *time.Time) sql.NullTime {
	if ptr == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *ptr, Valid: true}
}

func nullDecimal(ptr *decimal.Decimal) decimal.NullDecimal {
	if ptr == nil {
		return decimal.NullDecimal{Valid: false}
	}
	return decimal.NullDecimal{Decimal: *ptr, Valid: true}
}

func boolOrDefault(ptr *bool, fallback bool) bool {
	if ptr == nil {
		return fallback
	}
	return *ptr
}

func uuidPtrOrNil(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

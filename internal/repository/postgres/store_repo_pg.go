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

const storeColumns = `id, name, slug, description, logo_url, website_url, tracking_link,
		          category_id, about, established_year, headquarters, trust_score,
		          created_at, updated_at, deleted_at`

type StoreRepository struct {
	db *sqlx.DB
}

func NewStoreRepo(db *sqlx.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

func (r *StoreRepository) Create(ctx context.Context, fields domain.StoreFields) (*domain.Store, error) {
	query := `
		INSERT INTO store (
			name, slug, description, logo_url, website_url, tracking_link,
			category_id, about, established_year, headquarters, trust_score
		) VALUES (
			:name, :slug, :description, :logo_url, :website_url, :tracking_link,
			:category_id, :about, :established_year, :headquarters, :trust_score
		)
		RETURNING ` + storeColumns

	args := map[string]any{
		"name":             valueOrDefault(fields.Name, ""),
		"slug":             nullString(fields.Slug),
		"description":      nullString(fields.Description),
		"logo_url":         nullString(fields.LogoURL),
		"website_url":      nullString(fields.WebsiteURL),
		"tracking_link":    nullString(fields.TrackingLink),
		"category_id":      nullString(fields.CategoryID),
		"about":            nullString(fields.About),
		"established_year": nullInt(fields.EstablishedYear),
		"headquarters":     nullString(fields.Headquarters),
		"trust_score":      nullFloat(fields.TrustScore),
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var store domain.Store
		if err = rows.StructScan(&store); err != nil {
			return nil, err
		}
		return &store, nil
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, sql.ErrNoRows
}

// Update writes only the non-nil fields. A store that is missing or deleted
// yields sql.ErrNoRows.
func (r *StoreRepository) Update(ctx context.Context, id uuid.UUID, fields domain.StoreFields) (*domain.Store, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{}
	idx := 1

	set := func(column string, value any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if fields.Name != nil {
		set("name", strings.TrimSpace(*fields.Name))
	}
	if fields.Slug != nil {
		set("slug", nullString(fields.Slug))
	}
	if fields.Description != nil {
		set("description", nullString(fields.Description))
	}
	if fields.LogoURL != nil {
		set("logo_url", nullString(fields.LogoURL))
	}
	if fields.WebsiteURL != nil {
		set("website_url", nullString(fields.WebsiteURL))
	}
	if fields.TrackingLink != nil {
		set("tracking_link", nullString(fields.TrackingLink))
	}
	if fields.CategoryID != nil {
		set("category_id", nullString(fields.CategoryID))
	}
	if fields.About != nil {
		set("about", nullString(fields.About))
	}
	if fields.EstablishedYear != nil {
		set("established_year", nullInt(fields.EstablishedYear))
	}
	if fields.Headquarters != nil {
		set("headquarters", nullString(fields.Headquarters))
	}
	if fields.TrustScore != nil {
		set("trust_score", nullFloat(fields.TrustScore))
	}

	query := fmt.Sprintf(`
		UPDATE store
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING %s
	`, strings.Join(setParts, ", "), idx, storeColumns)

	args = append(args, id)

	var store domain.Store
	if err := r.db.GetContext(ctx, &store, query, args...); err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *StoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Store, error) {
	query := `
		SELECT ` + storeColumns + `
		FROM store
		WHERE id = $1 AND deleted_at IS NULL
	`
	var store domain.Store
	if err := r.db.GetContext(ctx, &store, query, id); err != nil {
		return nil, err
	}
	return &store, nil
}

// List returns every live store ordered by name, then id, so name matching
// over the result is deterministic.
func (r *StoreRepository) List(ctx context.Context) ([]domain.Store, error) {
	query := `
		SELECT ` + storeColumns + `
		FROM store
		WHERE deleted_at IS NULL
		ORDER BY name ASC, id ASC
	`
	stores := make([]domain.Store, 0)
	if err := r.db.SelectContext(ctx, &stores, query); err != nil {
		return nil, err
	}
	return stores, nil
}

var _ ports.StoreRepository = (*StoreRepository)(nil)

package domain

import (
	"time"

	"github.com/google/uuid"
)

type Store struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Slug            *string    `db:"slug" json:"slug,omitempty"`
	Description     *string    `db:"description" json:"description,omitempty"`
	LogoURL         *string    `db:"logo_url" json:"logo_url,omitempty"`
	WebsiteURL      *string    `db:"website_url" json:"website_url,omitempty"`
	TrackingLink    *string    `db:"tracking_link" json:"tracking_link,omitempty"`
	CategoryID      *string    `db:"category_id" json:"category_id,omitempty"`
	About           *string    `db:"about" json:"about,omitempty"`
	EstablishedYear *int       `db:"established_year" json:"established_year,omitempty"`
	Headquarters    *string    `db:"headquarters" json:"headquarters,omitempty"`
	TrustScore      *float64   `db:"trust_score" json:"trust_score,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// StoreFields is the writable subset of a store. Nil fields are left
// untouched on update.
type StoreFields struct {
	Name            *string  `json:"name,omitempty"`
	Slug            *string  `json:"slug,omitempty"`
	Description     *string  `json:"description,omitempty"`
	LogoURL         *string  `json:"logo_url,omitempty"`
	WebsiteURL      *string  `json:"website_url,omitempty"`
	TrackingLink    *string  `json:"tracking_link,omitempty"`
	CategoryID      *string  `json:"category_id,omitempty"`
	About           *string  `json:"about,omitempty"`
	EstablishedYear *int     `json:"established_year,omitempty"`
	Headquarters    *string  `json:"headquarters,omitempty"`
	TrustScore      *float64 `json:"trust_score,omitempty"`
}

func (s Store) Website() string {
	if s.WebsiteURL != nil && *s.WebsiteURL != "" {
		return *s.WebsiteURL
	}
	if s.TrackingLink != nil {
		return *s.TrackingLink
	}
	return ""
}

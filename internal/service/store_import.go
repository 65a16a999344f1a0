package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/couponhub/couponhub-backend/internal/domain"
)

var errStoreNameRequired = errors.New("store name is required")

// reconcileStoreRow creates a store, or updates one when the row carries a
// Store ID. A same-named store never turns a create into an update.
func (s *ImportService) reconcileStoreRow(ctx context.Context, row domain.ImportRow, index *StoreNameIndex, dryRun bool) domain.ImportRowResult {
	result := domain.ImportRowResult{
		Action: domain.ImportActionCreate,
		Label:  rowText(row, fieldStoreName),
	}

	id, err := rowID(row, fieldStoreID)
	if err != nil {
		return failRow(result, err)
	}
	if id != nil {
		result.Action = domain.ImportActionUpdate
	}

	fields, err := buildStoreFields(row)
	if err != nil {
		return failRow(result, err)
	}

	if id != nil {
		if dryRun {
			return succeedRow(result, id, true)
		}
		store, err := s.stores.Update(ctx, *id, fields)
		if err != nil {
			return failRow(result, persistenceError("store", id.String(), err))
		}
		return succeedRow(result, &store.ID, false)
	}

	if fields.Slug == nil {
		if slug := index.claimSlug(slugify(*fields.Name)); slug != "" {
			fields.Slug = &slug
		}
	} else {
		index.claimSlug(*fields.Slug)
	}

	logo := s.logos.Resolve(ctx, rowText(row, fieldLogoURL), rowText(row, fieldWebsiteURL), rowText(row, fieldTrackingLink))
	fields.LogoURL = &logo

	if dryRun {
		return succeedRow(result, nil, true)
	}
	store, err := s.stores.Create(ctx, fields)
	if err != nil {
		return failRow(result, persistenceError("store", "", err))
	}
	return succeedRow(result, &store.ID, false)
}

// buildStoreFields reads the columns present in the row. Slug is only set when
// the row has a Slug column; creates derive one from the name afterwards.
func buildStoreFields(row domain.ImportRow) (domain.StoreFields, error) {
	var errs []string
	fields := domain.StoreFields{}

	name := rowText(row, fieldStoreName)
	if name == "" {
		return fields, errStoreNameRequired
	}
	fields.Name = &name

	if slug := slugify(rowText(row, fieldSlug)); slug != "" {
		fields.Slug = &slug
	}

	fields.Description = rowString(row, fieldDescription)
	fields.LogoURL = rowString(row, fieldLogoURL)
	fields.WebsiteURL = rowString(row, fieldWebsiteURL)
	fields.TrackingLink = rowString(row, fieldTrackingLink)
	fields.CategoryID = rowString(row, fieldCategoryID)
	fields.About = rowString(row, fieldAbout)
	fields.Headquarters = rowString(row, fieldHeadquarters)

	if year, err := rowInt(row, fieldEstablishedYear); err != nil {
		errs = append(errs, err.Error())
	} else {
		fields.EstablishedYear = year
	}
	if score, err := rowFloat(row, fieldTrustScore); err != nil {
		errs = append(errs, err.Error())
	} else {
		fields.TrustScore = score
	}

	if len(errs) > 0 {
		return fields, errors.New(strings.Join(errs, "; "))
	}
	return fields, nil
}

// persistenceError prefers the backend message and falls back to a generic
// one.
func persistenceError(kind, id string, err error) error {
	switch {
	case isNotFound(err) && id != "":
		return fmt.Errorf("%s %s not found", kind, id)
	case isUniqueViolation(err):
		return fmt.Errorf("%s already exists: %v", kind, err)
	case err.Error() != "":
		return err
	default:
		return fmt.Errorf("failed to save %s", kind)
	}
}

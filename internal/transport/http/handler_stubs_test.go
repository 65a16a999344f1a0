package http

import (
	"context"

	"github.com/google/uuid"

	"github.com/couponhub/couponhub-backend/internal/domain"
)

type stubImportService struct {
	job     *domain.ImportJob
	outcome *domain.ImportOutcome
	rows    []domain.ImportRowResult
	err     error

	gotEntity   domain.ImportEntity
	gotFilename string
	gotContents []byte
	gotRows     []domain.ImportRow
	gotDryRun   bool
	gotJobID    uuid.UUID
}

func (s *stubImportService) Import(_ context.Context, entity domain.ImportEntity, filename string, contents []byte, dryRun bool) (*domain.ImportJob, *domain.ImportOutcome, []domain.ImportRowResult, error) {
	s.gotEntity = entity
	s.gotFilename = filename
	s.gotContents = contents
	s.gotDryRun = dryRun
	if s.err != nil {
		return nil, nil, nil, s.err
	}
	return s.job, s.outcome, s.rows, nil
}

func (s *stubImportService) ImportRows(_ context.Context, entity domain.ImportEntity, rows []domain.ImportRow, dryRun bool) (*domain.ImportOutcome, []domain.ImportRowResult, error) {
	s.gotEntity = entity
	s.gotRows = rows
	s.gotDryRun = dryRun
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.outcome, s.rows, nil
}

func (s *stubImportService) GetJob(_ context.Context, jobID uuid.UUID) (*domain.ImportJob, []domain.ImportRowResult, error) {
	s.gotJobID = jobID
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.job, s.rows, nil
}

type stubCatalog struct {
	stores  []domain.Store
	coupons []domain.Coupon
	err     error

	gotQuery      string
	gotActiveOnly bool
}

func (s *stubCatalog) ListStores(_ context.Context, query string) ([]domain.Store, error) {
	s.gotQuery = query
	return s.stores, s.err
}

func (s *stubCatalog) GetStore(_ context.Context, id uuid.UUID) (*domain.Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.stores {
		if s.stores[i].ID == id {
			return &s.stores[i], nil
		}
	}
	return nil, nil
}

func (s *stubCatalog) ListStoreCoupons(_ context.Context, _ uuid.UUID, activeOnly bool) ([]domain.Coupon, error) {
	s.gotActiveOnly = activeOnly
	return s.coupons, s.err
}

func (s *stubCatalog) GetCoupon(_ context.Context, id uuid.UUID) (*domain.Coupon, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.coupons {
		if s.coupons[i].ID == id {
			return &s.coupons[i], nil
		}
	}
	return nil, nil
}

type stubExtractor struct {
	meta   *domain.SiteMetadata
	err    error
	gotURL string
}

func (s *stubExtractor) Extract(_ context.Context, pageURL string) (*domain.SiteMetadata, error) {
	s.gotURL = pageURL
	return s.meta, s.err
}

func strPtr(s string) *string {
	return &s
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/couponhub/couponhub-backend/internal/domain"
)

type memoryStoreRepo struct {
	stores  []domain.Store
	created []domain.StoreFields
	updated map[uuid.UUID]domain.StoreFields
	listErr error
	failOn  map[string]error
}

func newMemoryStoreRepo(stores ...domain.Store) *memoryStoreRepo {
	return &memoryStoreRepo{
		stores:  stores,
		updated: make(map[uuid.UUID]domain.StoreFields),
		failOn:  make(map[string]error),
	}
}

func (m *memoryStoreRepo) Create(ctx context.Context, fields domain.StoreFields) (*domain.Store, error) {
	if fields.Name != nil {
		if err, ok := m.failOn[*fields.Name]; ok {
			return nil, err
		}
	}
	m.created = append(m.created, fields)
	store := domain.Store{ID: uuid.New(), Name: deref(fields.Name), Slug: fields.Slug, LogoURL: fields.LogoURL}
	m.stores = append(m.stores, store)
	return &store, nil
}

func (m *memoryStoreRepo) Update(ctx context.Context, id uuid.UUID, fields domain.StoreFields) (*domain.Store, error) {
	for _, s := range m.stores {
		if s.ID == id {
			m.updated[id] = fields
			return &s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryStoreRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Store, error) {
	for _, s := range m.stores {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryStoreRepo) List(ctx context.Context) ([]domain.Store, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Store, len(m.stores))
	copy(out, m.stores)
	return out, nil
}

// cancellingStoreRepo cancels the import context after its nth create.
type cancellingStoreRepo struct {
	*memoryStoreRepo
	after  int
	cancel context.CancelFunc
}

func (c *cancellingStoreRepo) Create(ctx context.Context, fields domain.StoreFields) (*domain.Store, error) {
	store, err := c.memoryStoreRepo.Create(ctx, fields)
	if len(c.created) >= c.after {
		c.cancel()
	}
	return store, err
}

type createdCoupon struct {
	fields domain.CouponFields
	logo   string
}

type memoryCouponRepo struct {
	created []createdCoupon
	updated map[uuid.UUID]domain.CouponFields
	coupons []domain.Coupon
}

func newMemoryCouponRepo(coupons ...domain.Coupon) *memoryCouponRepo {
	return &memoryCouponRepo{
		updated: make(map[uuid.UUID]domain.CouponFields),
		coupons: coupons,
	}
}

func (m *memoryCouponRepo) Create(ctx context.Context, fields domain.CouponFields, logoURL string) (*domain.Coupon, error) {
	m.created = append(m.created, createdCoupon{fields: fields, logo: logoURL})
	coupon := domain.Coupon{ID: uuid.New(), Title: deref(fields.Title), StoreIDs: fields.StoreIDs}
	m.coupons = append(m.coupons, coupon)
	return &coupon, nil
}

func (m *memoryCouponRepo) Update(ctx context.Context, id uuid.UUID, fields domain.CouponFields) (*domain.Coupon, error) {
	for _, c := range m.coupons {
		if c.ID == id {
			m.updated[id] = fields
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryCouponRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Coupon, error) {
	for _, c := range m.coupons {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryCouponRepo) ListByStore(ctx context.Context, storeID uuid.UUID, activeOnly bool) ([]domain.Coupon, error) {
	out := make([]domain.Coupon, 0)
	for _, c := range m.coupons {
		if activeOnly && !c.IsActive {
			continue
		}
		for _, id := range c.StoreIDs {
			if id == storeID {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

type memoryImportRepo struct {
	job  *domain.ImportJob
	rows []domain.ImportRowResult
}

func newMemoryImportRepo() *memoryImportRepo {
	return &memoryImportRepo{
		rows: make([]domain.ImportRowResult, 0),
	}
}

func (m *memoryImportRepo) CreateJob(ctx context.Context, job *domain.ImportJob) (*domain.ImportJob, error) {
	clone := *job
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	now := time.Now()
	clone.CreatedAt = now
	clone.UpdatedAt = now
	m.job = &clone
	return m.job, nil
}

func (m *memoryImportRepo) UpdateJob(ctx context.Context, job *domain.ImportJob) (*domain.ImportJob, error) {
	if m.job == nil {
		return nil, sql.ErrNoRows
	}
	copy := *job
	copy.UpdatedAt = time.Now()
	m.job = &copy
	return m.job, nil
}

func (m *memoryImportRepo) FindJobByID(ctx context.Context, id uuid.UUID) (*domain.ImportJob, error) {
	if m.job == nil || m.job.ID != id {
		return nil, sql.ErrNoRows
	}
	copy := *m.job
	return &copy, nil
}

func (m *memoryImportRepo) InsertRow(ctx context.Context, row *domain.ImportRowResult) (*domain.ImportRowResult, error) {
	inserted := *row
	inserted.ID = uuid.New()
	inserted.CreatedAt = time.Now()
	m.rows = append(m.rows, inserted)
	return &inserted, nil
}

func (m *memoryImportRepo) ListRowsByJob(ctx context.Context, jobID uuid.UUID) ([]domain.ImportRowResult, error) {
	out := make([]domain.ImportRowResult, 0, len(m.rows))
	for _, r := range m.rows {
		if r.JobID == jobID {
			out = append(out, r)
		}
	}
	return out, nil
}

type recordingStorage struct {
	objects []string
	err     error
}

func (r *recordingStorage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	r.objects = append(r.objects, bucket+"/"+objectName)
	return objectName, nil
}

type stubLogos struct {
	calls [][]string
}

func (s *stubLogos) Resolve(ctx context.Context, candidates ...string) string {
	s.calls = append(s.calls, candidates)
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return "logo:" + c
		}
	}
	return "logo:default"
}

type stubExtractor struct {
	logos map[string]string
	err   error
	calls []string
}

func (s *stubExtractor) Extract(ctx context.Context, pageURL string) (*domain.SiteMetadata, error) {
	s.calls = append(s.calls, pageURL)
	if s.err != nil {
		return nil, s.err
	}
	logo, ok := s.logos[pageURL]
	if !ok {
		return nil, errors.New("no metadata")
	}
	return &domain.SiteMetadata{LogoURL: logo}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package postgres

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couponhub/couponhub-backend/internal/domain"
)

var importJobColumns = []string{
	"id", "entity", "status", "dry_run", "file_name", "file_key",
	"total_rows", "success_count", "error_count",
	"submitted_at", "completed_at", "created_at", "updated_at",
}

var importRowColumns = []string{
	"id", "job_id", "row_number", "status", "action", "record_id", "label", "error", "payload", "created_at",
}

func TestImportJobRepository_CreateAndUpdateJob(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImportJobRepo(db)

	submitted := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	job := &domain.ImportJob{
		ID:          uuid.New(),
		Entity:      domain.ImportEntityCoupons,
		Status:      domain.ImportStatusProcessing,
		FileName:    "coupons.xlsx",
		TotalRows:   3,
		SubmittedAt: submitted,
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO import_job")).
		WithArgs(job.ID, "coupons", "processing", false, "coupons.xlsx", nil, 3, 0, 0, submitted, nil).
		WillReturnRows(sqlmock.NewRows(importJobColumns).AddRow(
			job.ID.String(), "coupons", "processing", false, "coupons.xlsx", nil,
			int64(3), int64(0), int64(0), submitted, nil, submitted, submitted,
		))

	created, err := repo.CreateJob(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportEntityCoupons, created.Entity)
	assert.Nil(t, created.CompletedAt)

	completed := submitted.Add(time.Minute)
	created.Status = domain.ImportStatusCompleted
	created.SuccessCount = 2
	created.ErrorCount = 1
	created.CompletedAt = &completed

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE import_job")).
		WithArgs(job.ID, "completed", nil, 3, 2, 1, completed).
		WillReturnRows(sqlmock.NewRows(importJobColumns).AddRow(
			job.ID.String(), "coupons", "completed", false, "coupons.xlsx", nil,
			int64(3), int64(2), int64(1), submitted, completed, submitted, completed,
		))

	updated, err := repo.UpdateJob(context.Background(), created)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportStatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, updated.CompletedAt.Equal(completed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportJobRepository_InsertRow(t *testing.T) {
	tests := []struct {
		name     string
		row      domain.ImportRowResult
		recordID driver.Value
		errMsg   driver.Value
	}{
		{
			name: "succeeded row",
			row: domain.ImportRowResult{
				RowNumber: 2,
				Status:    domain.ImportRowStatusSucceeded,
				Action:    domain.ImportActionCreate,
				Label:     "Nike",
				Raw:       domain.RowPayload{"Store Name": "Nike"},
			},
		},
		{
			name: "failed row",
			row: domain.ImportRowResult{
				RowNumber: 3,
				Status:    domain.ImportRowStatusFailed,
				Action:    domain.ImportActionCreate,
				Error:     strPtr("store name is required"),
				Raw:       domain.RowPayload{"Store Name": ""},
			},
			errMsg: "store name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewImportJobRepo(db)

			jobID := uuid.New()
			tt.row.JobID = jobID
			recordID := uuid.New()
			if tt.row.Status == domain.ImportRowStatusSucceeded {
				tt.row.RecordID = &recordID
				tt.recordID = recordID
			}
			payload, err := tt.row.Raw.Value()
			require.NoError(t, err)

			var storedRecord driver.Value
			if tt.row.RecordID != nil {
				storedRecord = recordID.String()
			}
			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO import_job_row")).
				WithArgs(jobID, tt.row.RowNumber, string(tt.row.Status), string(tt.row.Action), tt.recordID, tt.row.Label, tt.errMsg, payload).
				WillReturnRows(sqlmock.NewRows(importRowColumns).AddRow(
					uuid.New().String(), jobID.String(), int64(tt.row.RowNumber), string(tt.row.Status), string(tt.row.Action),
					storedRecord, tt.row.Label, tt.errMsg, payload, time.Now(),
				))

			inserted, err := repo.InsertRow(context.Background(), &tt.row)
			require.NoError(t, err)
			assert.Equal(t, jobID, inserted.JobID)
			assert.Equal(t, tt.row.Status, inserted.Status)
			assert.Equal(t, tt.row.Raw, inserted.Raw)
			if tt.row.RecordID != nil {
				require.NotNil(t, inserted.RecordID)
				assert.Equal(t, recordID, *inserted.RecordID)
			} else {
				assert.Nil(t, inserted.RecordID)
				require.NotNil(t, inserted.Error)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestImportJobRepository_ListRowsByJob(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImportJobRepo(db)

	jobID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY row_number ASC")).
		WithArgs(jobID).
		WillReturnRows(sqlmock.NewRows(importRowColumns).
			AddRow(uuid.New().String(), jobID.String(), int64(2), "validated", "update", nil, "Nike", nil, []byte(`{"Store Name":"Nike"}`), time.Now()))

	rows, err := repo.ListRowsByJob(context.Background(), jobID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.ImportRowStatusValidated, rows[0].Status)
	assert.Equal(t, "Nike", rows[0].Raw["Store Name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

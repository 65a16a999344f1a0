package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ImportRow is one parsed spreadsheet row keyed by the header exactly as it
// appeared in the file. Values are string, float64, bool or nil.
type ImportRow map[string]any

type ImportEntity string

const (
	ImportEntityStores  ImportEntity = "stores"
	ImportEntityCoupons ImportEntity = "coupons"
)

func (e ImportEntity) Valid() bool {
	return e == ImportEntityStores || e == ImportEntityCoupons
}

type ImportStatus string

const (
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

type ImportRowStatus string

const (
	ImportRowStatusSucceeded ImportRowStatus = "succeeded"
	ImportRowStatusValidated ImportRowStatus = "validated"
	ImportRowStatusFailed    ImportRowStatus = "failed"
)

type ImportAction string

const (
	ImportActionCreate ImportAction = "create"
	ImportActionUpdate ImportAction = "update"
)

// ImportOutcome is the report returned once per import run.
type ImportOutcome struct {
	SuccessCount int      `json:"successCount"`
	ErrorCount   int      `json:"errorCount"`
	Errors       []string `json:"errors"`
	Imported     []string `json:"imported"`
}

// ImportRowResult is the per-row decision of the reconciler.
type ImportRowResult struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	JobID     uuid.UUID       `db:"job_id" json:"job_id"`
	RowNumber int             `db:"row_number" json:"row_number"`
	Status    ImportRowStatus `db:"status" json:"status"`
	Action    ImportAction    `db:"action" json:"action"`
	RecordID  *uuid.UUID      `db:"record_id" json:"record_id,omitempty"`
	Label     string          `db:"label" json:"label"`
	Error     *string         `db:"error" json:"error,omitempty"`
	Raw       RowPayload      `db:"payload" json:"payload,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

func (r ImportRowResult) Failed() bool {
	return r.Status == ImportRowStatusFailed
}

type ImportJob struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	Entity       ImportEntity `db:"entity" json:"entity"`
	Status       ImportStatus `db:"status" json:"status"`
	DryRun       bool         `db:"dry_run" json:"dry_run"`
	FileName     string       `db:"file_name" json:"file_name"`
	FileKey      *string      `db:"file_key" json:"file_key,omitempty"`
	TotalRows    int          `db:"total_rows" json:"total_rows"`
	SuccessCount int          `db:"success_count" json:"success_count"`
	ErrorCount   int          `db:"error_count" json:"error_count"`
	SubmittedAt  time.Time    `db:"submitted_at" json:"submitted_at"`
	CompletedAt  *time.Time   `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// RowPayload stores the raw row as JSONB.
type RowPayload ImportRow

func (p RowPayload) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(p))
}

func (p *RowPayload) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("row payload: unsupported type")
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*p = out
	return nil
}

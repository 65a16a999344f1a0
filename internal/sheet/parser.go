package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couponhub/couponhub-backend/internal/domain"
)

var (
	ErrEmptySheet        = errors.New("spreadsheet has no data rows")
	ErrUnsupportedFormat = errors.New("only .csv and .xlsx files are supported")
)

// Table is a parsed spreadsheet. Lines holds the 1-based file line of each
// row so reports can point at the real position even when blank rows were
// skipped.
type Table struct {
	Headers []string
	Rows    []domain.ImportRow
	Lines   []int
}

func Parse(filename string, contents []byte) (*Table, error) {
	if len(bytes.TrimSpace(contents)) == 0 {
		return nil, ErrEmptySheet
	}
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) {
	case ".csv", ".txt":
		return parseCSV(contents)
	case ".xlsx", ".xlsm":
		return parseXLSX(contents)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func parseCSV(contents []byte) (*Table, error) {
	contents = bytes.TrimPrefix(contents, []byte("\xef\xbb\xbf"))
	reader := csv.NewReader(bytes.NewReader(contents))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptySheet
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	table := newTable(header)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		table.add(record, line)
	}
	if len(table.Rows) == 0 {
		return nil, ErrEmptySheet
	}
	return table, nil
}

func parseXLSX(contents []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(contents))
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptySheet
	}

	table := newTable(rows[0])
	for idx, record := range rows[1:] {
		table.add(record, idx+2)
	}
	if len(table.Rows) == 0 {
		return nil, ErrEmptySheet
	}
	return table, nil
}

func newTable(header []string) *Table {
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}
	return &Table{Headers: headers}
}

// add keeps header spellings as-is; column synonyms are resolved by the
// importer.
func (t *Table) add(record []string, line int) {
	if isRecordEmpty(record) {
		return
	}
	row := make(domain.ImportRow, len(t.Headers))
	for idx, key := range t.Headers {
		if key == "" {
			continue
		}
		if _, dup := row[key]; dup {
			continue
		}
		val := ""
		if idx < len(record) {
			val = strings.TrimSpace(record[idx])
		}
		row[key] = val
	}
	t.Rows = append(t.Rows, row)
	t.Lines = append(t.Lines, line)
}

func isRecordEmpty(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/couponhub/couponhub-backend/internal/domain"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var templateHeaders = map[domain.ImportEntity][]string{
	domain.ImportEntityStores: {
		"Store ID", "Store Name", "Slug", "Description", "Logo URL", "Website URL",
		"Tracking Link", "Category ID", "About", "Established Year", "Headquarters", "Trust Score",
	},
	domain.ImportEntityCoupons: {
		"Coupon ID", "Store ID", "Store IDs", "Store Name", "Title", "Description", "Type", "Code",
		"Discount", "Discount Type", "Expiry Date", "URL", "Is Active", "Is Popular",
	},
}

var templateSamples = map[domain.ImportEntity][]string{
	domain.ImportEntityStores: {
		"", "32 Degrees", "", "Performance basics for every season.", "",
		"https://www.32degrees.com", "https://track.example.com/32degrees", "apparel",
		"Temperature-regulating clothing.", "2009", "Seattle, WA", "4.5",
	},
	domain.ImportEntityCoupons: {
		"", "", "", "32 Degrees", "20% Off Sitewide", "Save on heat and cool layers.", "code", "SAVE20",
		"20%", "percentage", "2026-12-31", "https://www.32degrees.com/sale", "true", "false",
	},
}

// Template returns a blank import sheet with the canonical headers and one
// sample row.
func Template(entity domain.ImportEntity, format Format) ([]byte, string, error) {
	headers, ok := templateHeaders[entity]
	if !ok {
		return nil, "", fmt.Errorf("unknown import entity %q", entity)
	}
	sample := templateSamples[entity]

	switch format {
	case FormatCSV, "":
		data, err := writeCSV(headers, [][]string{sample})
		return data, ContentTypeCSV, err
	case FormatXLSX:
		data, err := writeXLSX(string(entity), headers, [][]string{sample})
		return data, ContentTypeXLSX, err
	default:
		return nil, "", ErrUnsupportedFormat
	}
}

// ErrorReport lists failed rows as CSV so the source file can be corrected.
func ErrorReport(rows []domain.ImportRowResult) ([]byte, error) {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		if !row.Failed() {
			continue
		}
		msg := ""
		if row.Error != nil {
			msg = *row.Error
		}
		records = append(records, []string{strconv.Itoa(row.RowNumber), row.Label, msg})
	}
	return writeCSV([]string{"row_number", "label", "error"}, records)
}

func writeCSV(headers []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(headers); err != nil {
		return nil, err
	}
	if err := writer.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeXLSX(sheetName string, headers []string, records [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, err
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, name, name, 20); err != nil {
			return nil, err
		}
	}
	for r, record := range records {
		for col, val := range record {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

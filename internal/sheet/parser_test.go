package sheet

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseCSVKeepsFileLines(t *testing.T) {
	contents := []byte("\xef\xbb\xbf Store Name ,Website URL\nAcme,https://acme.test\n\n,\nBeta, https://beta.test \n")

	table, err := Parse("stores.csv", contents)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(table.Headers) != 2 || table.Headers[0] != "Store Name" {
		t.Fatalf("unexpected headers %q", table.Headers)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[1]["Website URL"] != "https://beta.test" {
		t.Fatalf("expected trimmed value, got %q", table.Rows[1]["Website URL"])
	}
	if table.Lines[0] != 2 || table.Lines[1] != 5 {
		t.Fatalf("expected lines [2 5], got %v", table.Lines)
	}
}

func TestParseCSVShortRecordAndDuplicateHeader(t *testing.T) {
	table, err := Parse("coupons.CSV", []byte("Title,Code,Title\nFirst\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	row := table.Rows[0]
	if row["Title"] != "First" {
		t.Fatalf("first duplicate header should win, got %q", row["Title"])
	}
	if v, ok := row["Code"]; !ok || v != "" {
		t.Fatalf("missing cells should be blank strings, got %v (present=%v)", v, ok)
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	_ = f.SetSheetRow(sheetName, "A1", &[]any{"Store Name", "Trust Score"})
	_ = f.SetSheetRow(sheetName, "A2", &[]any{"Acme", 4.5})
	_ = f.SetSheetRow(sheetName, "A4", &[]any{"Beta", 3})
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	_ = f.Close()

	table, err := Parse("stores.xlsx", buf.Bytes())
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0]["Trust Score"] != "4.5" {
		t.Fatalf("expected cell text 4.5, got %v", table.Rows[0]["Trust Score"])
	}
	if table.Lines[1] != 4 {
		t.Fatalf("expected second row on line 4, got %d", table.Lines[1])
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		contents string
		want     error
	}{
		{"blank file", "a.csv", "  \n", ErrEmptySheet},
		{"header only", "a.csv", "Store Name\n", ErrEmptySheet},
		{"pdf", "a.pdf", "%PDF-1.4", ErrUnsupportedFormat},
		{"no extension", "upload", "Store Name\nA\n", ErrUnsupportedFormat},
	}
	for _, tc := range cases {
		_, err := Parse(tc.filename, []byte(tc.contents))
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

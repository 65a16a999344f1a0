package http

import (
	"bytes"
	"mime/multipart"
	"strings"
	"testing"
)

func TestSummarizeBodyMultipartUpload(t *testing.T) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "stores.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("Store Name\nAcme\n"))
	_ = writer.WriteField("notes", "weekly refresh")
	_ = writer.Close()

	summary, ok := summarizeBody(body.Bytes(), writer.FormDataContentType()).(map[string]any)
	if !ok {
		t.Fatalf("expected map summary, got %T", summary)
	}
	file, ok := summary["file"].(map[string]any)
	if !ok {
		t.Fatalf("expected file summary, got %v", summary["file"])
	}
	if file["filename"] != "stores.csv" || file["bytes"] != int64(16) {
		t.Fatalf("unexpected file summary %v", file)
	}
	if summary["notes"] != "weekly refresh" {
		t.Fatalf("expected notes field, got %v", summary["notes"])
	}
}

func TestSummarizeBodyRedactsSecrets(t *testing.T) {
	body := []byte(`{"url":"https://shop.example.com","api_key":"abc","nested":{"token":"t"}}`)

	summary, ok := summarizeBody(body, "application/json").(map[string]any)
	if !ok {
		t.Fatalf("expected map summary, got %T", summary)
	}
	if summary["url"] != "https://shop.example.com" {
		t.Fatalf("url should be kept, got %v", summary["url"])
	}
	if summary["api_key"] != "redacted" {
		t.Fatalf("api_key should be redacted, got %v", summary["api_key"])
	}
	nested := summary["nested"].(map[string]any)
	if nested["token"] != "redacted" {
		t.Fatalf("nested token should be redacted, got %v", nested["token"])
	}
}

func TestSummarizeBodyLargeJSONBatch(t *testing.T) {
	rows := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		rows = append(rows, `{"Store Name":"Store number with a long name"}`)
	}
	body := []byte(`{"rows":[` + strings.Join(rows, ",") + `]}`)

	summary, ok := summarizeBody(body, "application/json").(map[string]any)
	if !ok {
		t.Fatalf("expected map summary, got %T", summary)
	}
	if summary["_truncated"] != true {
		t.Fatalf("expected truncated marker, got %v", summary)
	}
	shape, ok := summary["rows"].(map[string]any)
	if !ok || shape["_total_items"] != 200 {
		t.Fatalf("expected row count, got %v", summary["rows"])
	}
}

func TestSummarizeBodySpreadsheetIsBinary(t *testing.T) {
	if got := summarizeBody([]byte("a,b\n1,2\n"), "text/csv"); got != "binary" {
		t.Fatalf("expected binary, got %v", got)
	}
	if got := summarizeBody([]byte{0x50, 0x4b, 0x03, 0x04, 0xff}, ""); got != "binary" {
		t.Fatalf("expected binary, got %v", got)
	}
	if got := summarizeBody(nil, "application/json"); got != nil {
		t.Fatalf("expected nil for empty body, got %v", got)
	}
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/couponhub/couponhub-backend/internal/domain"
)

func postMetadata(t *testing.T, extractor *stubExtractor, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	RegisterMetadata(e, extractor)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract-metadata", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, resp
}

func TestExtractMetadataSuccess(t *testing.T) {
	extractor := &stubExtractor{meta: &domain.SiteMetadata{
		LogoURL: "https://shop.example.com/logo.png",
		Name:    "Shop",
	}}

	rec, resp := postMetadata(t, extractor, `{"url":" https://shop.example.com "}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if extractor.gotURL != "https://shop.example.com" {
		t.Fatalf("expected trimmed url, got %q", extractor.gotURL)
	}
	if resp["success"] != true {
		t.Fatalf("expected success true, got %v", resp["success"])
	}
	if resp["logoUrl"] != "https://shop.example.com/logo.png" || resp["name"] != "Shop" {
		t.Fatalf("unexpected response %v", resp)
	}
	if _, ok := resp["description"]; ok {
		t.Fatal("empty description should be omitted")
	}
}

func TestExtractMetadataRequiresURL(t *testing.T) {
	for _, body := range []string{`{}`, `{"url":"   "}`, `{"url":"ftp://files.example.com"}`, `{"url":"/relative"}`} {
		extractor := &stubExtractor{}
		rec, resp := postMetadata(t, extractor, body)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
		if resp["success"] != false {
			t.Fatalf("%s: expected success false, got %v", body, resp["success"])
		}
		if resp["error"] == "" || resp["error"] == nil {
			t.Fatalf("%s: expected error message", body)
		}
		if extractor.gotURL != "" {
			t.Fatalf("%s: extractor should not be called", body)
		}
	}
}

func TestExtractMetadataUpstreamFailure(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("timeout")}

	rec, resp := postMetadata(t, extractor, `{"url":"https://shop.example.com"}`)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if resp["success"] != false {
		t.Fatalf("expected success false, got %v", resp["success"])
	}
}

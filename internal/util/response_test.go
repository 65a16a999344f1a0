package util

import "testing"

func TestEnvelopeWithSkipsEmpty(t *testing.T) {
	env := Envelope{"success": true}.
		With("logoUrl", "https://cdn/logo.png").
		With("name", "").
		With("description", nil).
		With("count", 0)

	if env["logoUrl"] != "https://cdn/logo.png" {
		t.Fatalf("expected logoUrl to be set")
	}
	if _, ok := env["name"]; ok {
		t.Fatalf("empty string should be skipped")
	}
	if _, ok := env["description"]; ok {
		t.Fatalf("nil should be skipped")
	}
	if env["count"] != 0 {
		t.Fatalf("zero numbers are kept")
	}
}

func TestError(t *testing.T) {
	if Error("boom")["error"] != "boom" {
		t.Fatalf("unexpected envelope")
	}
}

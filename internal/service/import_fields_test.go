package service

import (
	"testing"
	"time"

	"github.com/couponhub/couponhub-backend/internal/domain"
)

func TestRowText_HeaderSynonyms(t *testing.T) {
	cases := []struct {
		name string
		row  domain.ImportRow
		want string
	}{
		{"canonical", domain.ImportRow{"Logo URL": "https://cdn/a.png"}, "https://cdn/a.png"},
		{"camel", domain.ImportRow{"logoUrl": "https://cdn/b.png"}, "https://cdn/b.png"},
		{"short", domain.ImportRow{"logo": "https://cdn/c.png"}, "https://cdn/c.png"},
		{"loose spacing", domain.ImportRow{" LOGO_url ": "https://cdn/d.png"}, "https://cdn/d.png"},
		{"blank falls through", domain.ImportRow{"Logo URL": " ", "Logo": "https://cdn/e.png"}, "https://cdn/e.png"},
		{"absent", domain.ImportRow{"Name": "x"}, ""},
	}
	for _, tc := range cases {
		if got := rowText(tc.row, fieldLogoURL); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestRowText_NumbersAreFormattedPlainly(t *testing.T) {
	row := domain.ImportRow{"Established Year": float64(2009)}
	if got := rowText(row, fieldEstablishedYear); got != "2009" {
		t.Fatalf("expected 2009, got %q", got)
	}
}

func TestRowBool_Permissive(t *testing.T) {
	cases := []struct {
		val  any
		want bool
	}{
		{true, true},
		{false, false},
		{"TRUE", true},
		{"true", true},
		{"yes", false},
		{float64(1), true},
		{float64(0), false},
		{"1", true},
	}
	for _, tc := range cases {
		row := domain.ImportRow{"Is Active": tc.val}
		if got := rowBool(row, fieldIsActive, false); got != tc.want {
			t.Fatalf("value %#v: expected %v, got %v", tc.val, tc.want, got)
		}
	}
	if !rowBool(domain.ImportRow{}, fieldIsActive, true) {
		t.Fatalf("absent cell should use default")
	}
}

func TestRowDate(t *testing.T) {
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, raw := range []any{"2024-01-01", "01/01/2024", "Jan 1, 2024", float64(45292), "45292"} {
		got := rowDate(domain.ImportRow{"Expiry Date": raw}, fieldExpiryDate)
		if got == nil || !got.Equal(want) {
			t.Fatalf("value %#v: expected %s, got %v", raw, want, got)
		}
	}

	if got := rowDate(domain.ImportRow{"Expiry Date": "someday"}, fieldExpiryDate); got != nil {
		t.Fatalf("unparseable date should be dropped, got %v", got)
	}
}

func TestRowDiscount(t *testing.T) {
	d, unit, err := rowDiscount(domain.ImportRow{"Discount": "15%"}, fieldDiscount)
	if err != nil || d == nil || d.String() != "15" || unit != "%" {
		t.Fatalf("unexpected percent parse: %v %q %v", d, unit, err)
	}
	d, unit, err = rowDiscount(domain.ImportRow{"Discount": "$1,250.50"}, fieldDiscount)
	if err != nil || d == nil || d.String() != "1250.5" || unit != "$" {
		t.Fatalf("unexpected amount parse: %v %q %v", d, unit, err)
	}
	if _, _, err := rowDiscount(domain.ImportRow{"Discount": "lots"}, fieldDiscount); err == nil {
		t.Fatalf("expected invalid discount error")
	}
}

func TestRowIDList(t *testing.T) {
	row := domain.ImportRow{
		"Store ID":  "6f1c1f4e-6a53-4e4c-9d6b-0a3c2d1e5f70",
		"Store IDs": "6f1c1f4e-6a53-4e4c-9d6b-0a3c2d1e5f70, 0b9f5d3a-2c1e-4f7a-8d6b-5e4c3b2a1f09",
	}
	ids, err := rowIDList(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 deduplicated ids, got %v", ids)
	}
	if _, err := rowIDList(domain.ImportRow{"Store IDs": "abc"}); err == nil {
		t.Fatalf("expected invalid id error")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"32 Degrees":       "32-degrees",
		"  Macy's & Co.  ": "macy-s-co",
		"Ünïcode--Store!!": "n-code-store",
		"already-a-slug":   "already-a-slug",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Fatalf("slugify(%q): expected %q, got %q", in, want, got)
		}
	}
}

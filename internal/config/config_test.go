package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/couponhub")
	t.Setenv("ALLOW_ORIGINS", " https://a.example.com , ,https://b.example.com")
	t.Setenv("IMPORT_MAX_ROWS", "-3")
	t.Setenv("METADATA_TIMEOUT", "soon")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
	if len(cfg.AllowOrigins) != 2 || cfg.AllowOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins %v", cfg.AllowOrigins)
	}
	if cfg.ImportMaxRows != 5000 {
		t.Fatalf("invalid max rows should fall back, got %d", cfg.ImportMaxRows)
	}
	if cfg.ImportMaxFileBytes != 10*1024*1024 || cfg.ImportErrorPreview != 20 || cfg.ImportSuccessPreview != 10 {
		t.Fatalf("unexpected import limits %+v", cfg)
	}
	if cfg.MetadataTimeout != 10*time.Second {
		t.Fatalf("invalid timeout should fall back, got %s", cfg.MetadataTimeout)
	}
	if !cfg.RunMigrations {
		t.Fatalf("migrations should run by default")
	}
	if cfg.MinIOEnabled() {
		t.Fatalf("minio should be disabled without an endpoint")
	}
}

func TestLoadPanicsWithoutDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for missing DATABASE_URL")
		}
	}()
	Load()
}

func TestLoadOptionalDB(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("METADATA_TIMEOUT", "3s")

	cfg := LoadOptionalDB()
	if cfg.DatabaseURL != "" {
		t.Fatalf("expected empty dsn")
	}
	if !cfg.MinIOEnabled() {
		t.Fatalf("minio should be enabled with endpoint and default bucket")
	}
	if cfg.MetadataTimeout != 3*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.MetadataTimeout)
	}
}

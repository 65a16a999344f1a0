package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	DatabaseURL          string
	AllowOrigins         []string
	LogstashTCPAddr      string
	AdminAPIKey          string
	RunMigrations        bool
	MinIOEndpoint        string
	MinIOAccessKey       string
	MinIOSecretKey       string
	MinIOUseSSL          bool
	MinIOBucketImports   string
	ImportMaxRows        int
	ImportMaxFileBytes   int64
	ImportErrorPreview   int
	ImportSuccessPreview int
	MetadataAPIURL       string
	MetadataTimeout      time.Duration
	FaviconServiceURL    string
	DefaultLogoURL       string
}

// MinIOEnabled reports whether import files should be archived.
func (c Config) MinIOEnabled() bool {
	return c.MinIOEndpoint != "" && c.MinIOBucketImports != ""
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	return fromEnv(must("DATABASE_URL"))
}

// LoadOptionalDB is used by tooling that can run without a database, such as
// template generation.
func LoadOptionalDB() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: .env file not loaded: %v", err)
	}
	return fromEnv(getenv("DATABASE_URL", ""))
}

func fromEnv(dsn string) Config {
	return Config{
		Port:                 getenv("PORT", "8080"),
		DatabaseURL:          dsn,
		AllowOrigins:         splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr:      getenv("LOGSTASH_TCP_ADDR", ""),
		AdminAPIKey:          getenv("ADMIN_API_KEY", ""),
		RunMigrations:        getenv("RUN_MIGRATIONS", "true") == "true",
		MinIOEndpoint:        getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:       getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:       getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:          getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketImports:   getenv("MINIO_BUCKET_IMPORTS", "couponhub-imports"),
		ImportMaxRows:        positiveInt("IMPORT_MAX_ROWS", 5000),
		ImportMaxFileBytes:   int64(positiveInt("IMPORT_MAX_FILE_BYTES", 10*1024*1024)),
		ImportErrorPreview:   positiveInt("IMPORT_ERROR_PREVIEW", 20),
		ImportSuccessPreview: positiveInt("IMPORT_SUCCESS_PREVIEW", 10),
		MetadataAPIURL:       getenv("METADATA_API_URL", ""),
		MetadataTimeout:      duration("METADATA_TIMEOUT", 10*time.Second),
		FaviconServiceURL:    getenv("FAVICON_SERVICE_URL", ""),
		DefaultLogoURL:       getenv("DEFAULT_LOGO_URL", ""),
	}
}

func positiveInt(k string, d int) int {
	if v, err := strconv.Atoi(getenv(k, "")); err == nil && v > 0 {
		return v
	}
	return d
}

func duration(k string, d time.Duration) time.Duration {
	raw := getenv(k, "")
	if raw == "" {
		return d
	}
	if v, err := time.ParseDuration(raw); err == nil && v > 0 {
		return v
	}
	log.Printf("Warning: invalid %s %q, using %s", k, raw, d)
	return d
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}

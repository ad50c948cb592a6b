package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Archive and cache backends.
const (
	ArchiveNone  = "none"
	ArchiveLocal = "local"
	ArchiveGCS   = "gcs"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string

	CORSAllowedOrigins []string
	MaxUploadBytes     int64
	UploadRate         string // ulule limiter format, e.g. "30-M"

	// Text extraction tools
	PDFToTextPath  string
	PDFToPPMPath   string
	TesseractPath  string
	OCRLanguage    string
	OCRDPI         int
	OCRTimeout     time.Duration
	OCRConcurrency int
	OCRTempDir     string

	// FX resolution
	FxCacheTTL        time.Duration
	FxCacheBackend    string
	RedisURL          string
	FxFeedURL         string
	FxFeedTimeout     time.Duration
	FxFetchRate       string
	ReportingCurrency string

	CategorizationRulesFile string
	CategorizationRules     []domain.CategorizationRule

	ArchiveBackend string
	ArchiveDir     string
	GCSBucket      string
	GCSEndpoint    string

	PosthogAPIKey   string
	PosthogEndpoint string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("MAX_UPLOAD_BYTES", 20<<20)
	v.SetDefault("UPLOAD_RATE", "30-M")

	v.SetDefault("PDFTOTEXT_PATH", "pdftotext")
	v.SetDefault("PDFTOPPM_PATH", "pdftoppm")
	v.SetDefault("TESSERACT_PATH", "tesseract")
	v.SetDefault("OCR_LANGUAGE", "spa")
	v.SetDefault("OCR_DPI", 200)
	v.SetDefault("OCR_TIMEOUT", "2m")
	v.SetDefault("OCR_CONCURRENCY", 2)
	v.SetDefault("OCR_TEMP_DIR", "")

	v.SetDefault("FX_CACHE_TTL", "1h")
	v.SetDefault("FX_CACHE_BACKEND", CacheMemory)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("FX_FEED_URL", "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-hist-90d.xml")
	v.SetDefault("FX_FEED_TIMEOUT", "10s")
	v.SetDefault("FX_FETCH_RATE", "60-H")
	v.SetDefault("REPORTING_CURRENCY", "")

	v.SetDefault("CATEGORIZATION_RULES_FILE", "")

	v.SetDefault("ARCHIVE_BACKEND", ArchiveNone)
	v.SetDefault("ARCHIVE_DIR", "./data/statements")
	v.SetDefault("GCS_BUCKET", "")
	v.SetDefault("GCS_ENDPOINT", "")

	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "")
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:   v.GetString("PGSQL_URL"),
		Port:          v.GetString("PORT"),
		IsProduction:  v.GetBool("IS_PRODUCTION"),
		EnableDBCheck: v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:     v.GetString("JWT_SECRET"),

		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		MaxUploadBytes:     v.GetInt64("MAX_UPLOAD_BYTES"),
		UploadRate:         v.GetString("UPLOAD_RATE"),

		PDFToTextPath:  v.GetString("PDFTOTEXT_PATH"),
		PDFToPPMPath:   v.GetString("PDFTOPPM_PATH"),
		TesseractPath:  v.GetString("TESSERACT_PATH"),
		OCRLanguage:    v.GetString("OCR_LANGUAGE"),
		OCRDPI:         v.GetInt("OCR_DPI"),
		OCRConcurrency: v.GetInt("OCR_CONCURRENCY"),
		OCRTempDir:     v.GetString("OCR_TEMP_DIR"),

		FxCacheBackend:    strings.ToLower(v.GetString("FX_CACHE_BACKEND")),
		RedisURL:          v.GetString("REDIS_URL"),
		FxFeedURL:         v.GetString("FX_FEED_URL"),
		FxFetchRate:       v.GetString("FX_FETCH_RATE"),
		ReportingCurrency: strings.ToUpper(strings.TrimSpace(v.GetString("REPORTING_CURRENCY"))),

		CategorizationRulesFile: v.GetString("CATEGORIZATION_RULES_FILE"),

		ArchiveBackend: strings.ToLower(v.GetString("ARCHIVE_BACKEND")),
		ArchiveDir:     v.GetString("ARCHIVE_DIR"),
		GCSBucket:      v.GetString("GCS_BUCKET"),
		GCSEndpoint:    v.GetString("GCS_ENDPOINT"),

		PosthogAPIKey:   v.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint: v.GetString("POSTHOG_ENDPOINT"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	var err error
	if cfg.OCRTimeout, err = duration(v, "OCR_TIMEOUT", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.FxCacheTTL, err = duration(v, "FX_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.FxFeedTimeout, err = duration(v, "FX_FEED_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	switch cfg.FxCacheBackend {
	case CacheMemory:
	case CacheRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("FX_CACHE_BACKEND=redis requires REDIS_URL")
		}
	default:
		return nil, fmt.Errorf("invalid FX_CACHE_BACKEND %q", cfg.FxCacheBackend)
	}

	switch cfg.ArchiveBackend {
	case ArchiveNone, ArchiveLocal:
	case ArchiveGCS:
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("ARCHIVE_BACKEND=gcs requires GCS_BUCKET")
		}
	default:
		return nil, fmt.Errorf("invalid ARCHIVE_BACKEND %q", cfg.ArchiveBackend)
	}

	if cfg.ReportingCurrency != "" && len(cfg.ReportingCurrency) != 3 {
		return nil, fmt.Errorf("invalid REPORTING_CURRENCY %q", cfg.ReportingCurrency)
	}

	if cfg.CategorizationRulesFile != "" {
		rules, err := LoadCategorizationRules(cfg.CategorizationRulesFile)
		if err != nil {
			return nil, err
		}
		cfg.CategorizationRules = rules
	}

	return cfg, nil
}

// duration parses key, falling back to def when the key is unset.
func duration(v *viper.Viper, key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

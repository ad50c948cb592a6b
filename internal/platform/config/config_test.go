package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.FxCacheTTL)
	assert.Equal(t, CacheMemory, cfg.FxCacheBackend)
	assert.Equal(t, ArchiveNone, cfg.ArchiveBackend)
	assert.Equal(t, 200, cfg.OCRDPI)
	assert.Equal(t, "spa", cfg.OCRLanguage)
	assert.Equal(t, 2*time.Minute, cfg.OCRTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.CategorizationRules)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FX_CACHE_TTL", "30m")
	t.Setenv("REPORTING_CURRENCY", " eur ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ARCHIVE_BACKEND", "GCS")
	t.Setenv("GCS_BUCKET", "statements")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.FxCacheTTL)
	assert.Equal(t, "EUR", cfg.ReportingCurrency)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, ArchiveGCS, cfg.ArchiveBackend)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad ttl", map[string]string{"FX_CACHE_TTL": "soon"}},
		{"negative timeout", map[string]string{"OCR_TIMEOUT": "-1s"}},
		{"redis without url", map[string]string{"FX_CACHE_BACKEND": "redis"}},
		{"unknown cache", map[string]string{"FX_CACHE_BACKEND": "memcached"}},
		{"gcs without bucket", map[string]string{"ARCHIVE_BACKEND": "gcs"}},
		{"unknown archive", map[string]string{"ARCHIVE_BACKEND": "s3"}},
		{"bad reporting currency", map[string]string{"REPORTING_CURRENCY": "EURO"}},
		{"missing rules file", map[string]string{"CATEGORIZATION_RULES_FILE": "/nonexistent/rules.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadCategorizationRules_YAML(t *testing.T) {
	path := writeFile(t, "rules.yaml", `
rules:
  - pattern: "(?i)mercadona"
    fields: [description, counterparty]
    category_name: Groceries
    counterparty: Mercadona
  - pattern: "NOMINA"
    category_id: cat-salary
  - pattern: "anything"
`)

	rules, err := LoadCategorizationRules(path)

	require.NoError(t, err)
	require.Len(t, rules, 3)

	assert.True(t, rules[0].Pattern.MatchString("COMPRA MERCADONA 123"))
	assert.Equal(t, []domain.RuleField{domain.RuleFieldDescription, domain.RuleFieldCounterparty}, rules[0].Fields)
	require.NotNil(t, rules[0].CategoryName)
	assert.Equal(t, "Groceries", *rules[0].CategoryName)
	require.NotNil(t, rules[0].Counterparty)
	assert.Equal(t, "Mercadona", *rules[0].Counterparty)
	assert.Nil(t, rules[0].CategoryID)

	require.NotNil(t, rules[1].CategoryID)
	assert.Equal(t, "cat-salary", *rules[1].CategoryID)
	assert.Equal(t, []domain.RuleField{domain.RuleFieldDescription}, rules[1].EffectiveFields())

	assert.True(t, rules[2].Inert())
}

func TestLoadCategorizationRules_JSON(t *testing.T) {
	path := writeFile(t, "rules.json", `{"rules": [{"pattern": "^AMZN", "category_name": "Shopping"}]}`)

	rules, err := LoadCategorizationRules(path)

	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.True(t, rules[0].Pattern.MatchString("AMZN Mktp"))
}

func TestLoadCategorizationRules_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing pattern", "rules:\n  - category_name: Groceries\n"},
		{"bad regex", "rules:\n  - pattern: \"(unclosed\"\n    category_name: Groceries\n"},
		{"unknown field", "rules:\n  - pattern: x\n    fields: [amount]\n    category_name: Groceries\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCategorizationRules(writeFile(t, "rules.yaml", tt.content))
			assert.Error(t, err)
		})
	}
}

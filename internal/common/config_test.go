package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"OCR_ENGINE", "TESSERACT_BIN", "OCR_LANG", "PDF_ENGINE", "HISTORY_DSN", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	assert.Equal(t, "cli", cfg.OCR.Engine)
	assert.Equal(t, "kor+eng", cfg.OCR.Lang)
	assert.Equal(t, "native", cfg.OCR.PDFEngine)
	assert.Equal(t, "image2text.db", cfg.History.DSN)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("OCR_ENGINE", "gosseract")
	t.Setenv("OCR_LANG", "kor")
	t.Setenv("PDF_ENGINE", "fitz")
	t.Setenv("EXTRACT_TIMEOUT", "45s")
	t.Setenv("HISTORY_MAX_CONNS", "not-a-number")
	t.Setenv("HISTORY_DISABLED", "true")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := LoadConfig()
	assert.Equal(t, "gosseract", cfg.OCR.Engine)
	assert.Equal(t, "kor", cfg.OCR.Lang)
	assert.Equal(t, "fitz", cfg.OCR.PDFEngine)
	assert.Equal(t, 45*time.Second, cfg.OCR.Timeout)
	assert.Equal(t, int32(4), cfg.History.MaxConns, "unparsable values keep the default")
	assert.True(t, cfg.History.Disabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OCR.Engine = "abbyy"
	cfg.OCR.PDFEngine = "poppler"
	cfg.Watch.Debounce = -time.Second
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	for _, field := range []string{"ocr.engine", "ocr.pdf_engine", "watch.debounce", "log.format"} {
		assert.Contains(t, err.Error(), field)
	}

	cfg = DefaultConfig()
	cfg.History.DSN = ""
	require.Error(t, cfg.Validate())
	cfg.History.Disabled = true
	require.NoError(t, cfg.Validate())
}

func TestParseConfigFile(t *testing.T) {
	raw := []byte(`
ocr:
  engine: cli
  tesseract: /usr/local/bin/tesseract
  lang: kor
  timeout: 90s
history:
  dsn: postgres://localhost/image2text
  max_conns: 8
watch:
  debounce: 1s
log:
  level: warn
  format: json
`)
	cfg, err := parseConfigFile(raw)
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/tesseract", cfg.OCR.Tesseract)
	assert.Equal(t, "kor", cfg.OCR.Lang)
	assert.Equal(t, "native", cfg.OCR.PDFEngine)
	assert.Equal(t, 90*time.Second, cfg.OCR.Timeout)
	assert.Equal(t, "postgres://localhost/image2text", cfg.History.DSN)
	assert.Equal(t, int32(8), cfg.History.MaxConns)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 3*time.Second, cfg.History.DialTimeout)
}

func TestParseConfigFileRejectsSchemaViolations(t *testing.T) {
	tests := map[string]string{
		"unknown engine":  "ocr:\n  engine: abbyy\n",
		"unknown key":     "ocr:\n  langs: kor\n",
		"bad duration":    "watch:\n  debounce: soon\n",
		"numeric timeout": "ocr:\n  timeout: 30\n",
		"bad max conns":   "history:\n  max_conns: 0\n",
		"unknown section": "server:\n  port: 8080\n",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseConfigFile([]byte(raw))
			require.Error(t, err)
			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "CONFIG_ERROR", appErr.Code)
		})
	}
}

func TestLoadConfigFileEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image2text.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ocr:\n  lang: eng\n"), 0o600))

	t.Setenv("OCR_LANG", "")
	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "eng", cfg.OCR.Lang)

	t.Setenv("OCR_LANG", "kor")
	cfg, err = LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "kor", cfg.OCR.Lang)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEmptyConfigFileIsDefaults(t *testing.T) {
	cfg, err := parseConfigFile([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	OCR     OCRConfig
	History HistoryConfig
	Watch   WatchConfig
	Log     LogConfig
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Engine      string // "cli" | "gosseract"
	Tesseract   string // binary name or absolute path for the cli engine
	TessdataDir string
	Lang        string
	PDFEngine   string        // "native" | "fitz"
	Timeout     time.Duration // per extraction; 0 = none
}

// HistoryConfig holds extraction-history database configuration
type HistoryConfig struct {
	DSN         string // file path for sqlite, postgres:// URL for pgx
	Disabled    bool
	MaxConns    int32
	DialTimeout time.Duration
}

// WatchConfig holds drop-folder configuration
type WatchConfig struct {
	Debounce time.Duration
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // text | json
}

// DefaultConfig returns the built-in defaults, before any file or environment overrides.
func DefaultConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Engine:    "cli",
			Tesseract: "tesseract",
			Lang:      "kor+eng",
			PDFEngine: "native",
			Timeout:   2 * time.Minute,
		},
		History: HistoryConfig{
			DSN:         "image2text.db",
			MaxConns:    4,
			DialTimeout: 3 * time.Second,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return applyEnv(DefaultConfig())
}

// applyEnv overrides c with any environment variables that are set.
func applyEnv(c *Config) *Config {
	c.OCR.Engine = getEnv("OCR_ENGINE", c.OCR.Engine)
	c.OCR.Tesseract = getEnv("TESSERACT_BIN", c.OCR.Tesseract)
	c.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", c.OCR.TessdataDir)
	c.OCR.Lang = getEnv("OCR_LANG", c.OCR.Lang)
	c.OCR.PDFEngine = getEnv("PDF_ENGINE", c.OCR.PDFEngine)
	c.OCR.Timeout = getEnvAsDuration("EXTRACT_TIMEOUT", c.OCR.Timeout)

	c.History.DSN = getEnv("HISTORY_DSN", c.History.DSN)
	c.History.Disabled = getEnvAsBool("HISTORY_DISABLED", c.History.Disabled)
	c.History.MaxConns = getEnvAsInt32("HISTORY_MAX_CONNS", c.History.MaxConns)
	c.History.DialTimeout = getEnvAsDuration("HISTORY_DIAL_TIMEOUT", c.History.DialTimeout)

	c.Watch.Debounce = getEnvAsDuration("WATCH_DEBOUNCE", c.Watch.Debounce)

	c.Log.Level = strings.ToLower(getEnv("LOG_LEVEL", c.Log.Level))
	c.Log.Format = strings.ToLower(getEnv("LOG_FORMAT", c.Log.Format))
	return c
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("ocr.engine", c.OCR.Engine, Required, OneOf("cli", "gosseract")).
		Field("ocr.lang", c.OCR.Lang, Required).
		Field("ocr.pdf_engine", c.OCR.PDFEngine, Required, OneOf("native", "fitz")).
		Field("ocr.timeout", c.OCR.Timeout, NonNegativeDuration).
		Field("watch.debounce", c.Watch.Debounce, NonNegativeDuration).
		Field("log.level", c.Log.Level, OneOf("debug", "info", "warn", "error")).
		Field("log.format", c.Log.Format, OneOf("text", "json"))
	if c.OCR.Engine == "cli" {
		v.Field("ocr.tesseract", c.OCR.Tesseract, Required)
	}
	if !c.History.Disabled {
		v.Field("history.dsn", c.History.DSN, Required)
	}
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}

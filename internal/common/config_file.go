package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const durationPattern = `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`

type fileConfig struct {
	OCR struct {
		Engine    string `yaml:"engine"`
		Tesseract string `yaml:"tesseract"`
		Tessdata  string `yaml:"tessdata"`
		Lang      string `yaml:"lang"`
		PDFEngine string `yaml:"pdf_engine"`
		Timeout   string `yaml:"timeout"`
	} `yaml:"ocr"`
	History struct {
		DSN         string `yaml:"dsn"`
		Disabled    *bool  `yaml:"disabled"`
		MaxConns    int32  `yaml:"max_conns"`
		DialTimeout string `yaml:"dial_timeout"`
	} `yaml:"history"`
	Watch struct {
		Debounce string `yaml:"debounce"`
	} `yaml:"watch"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// ConfigFileSchema returns the JSON-Schema a YAML config file must satisfy.
func ConfigFileSchema() map[string]any {
	duration := map[string]any{"type": "string", "pattern": durationPattern}
	section := func(props map[string]any) map[string]any {
		return map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties":           props,
		}
	}
	return section(map[string]any{
		"ocr": section(map[string]any{
			"engine":     map[string]any{"type": "string", "enum": []string{"cli", "gosseract"}},
			"tesseract":  map[string]any{"type": "string", "minLength": 1},
			"tessdata":   map[string]any{"type": "string"},
			"lang":       map[string]any{"type": "string", "minLength": 1},
			"pdf_engine": map[string]any{"type": "string", "enum": []string{"native", "fitz"}},
			"timeout":    duration,
		}),
		"history": section(map[string]any{
			"dsn":          map[string]any{"type": "string", "minLength": 1},
			"disabled":     map[string]any{"type": "boolean"},
			"max_conns":    map[string]any{"type": "integer", "minimum": 1},
			"dial_timeout": duration,
		}),
		"watch": section(map[string]any{
			"debounce": duration,
		}),
		"log": section(map[string]any{
			"level":  map[string]any{"type": "string", "enum": []string{"debug", "info", "warn", "error"}},
			"format": map[string]any{"type": "string", "enum": []string{"text", "json"}},
		}),
	})
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// LoadConfigFile reads a YAML config file, validates it, and layers it between
// the defaults and the environment (environment wins).
func LoadConfigFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, NewAppError("CONFIG_ERROR", "read config file", err)
	}
	cfg, err := parseConfigFile(raw)
	if err != nil {
		return nil, err
	}
	return applyEnv(cfg), nil
}

func parseConfigFile(raw []byte) (*Config, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, NewAppError("CONFIG_ERROR", "parse config file", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, NewAppError("CONFIG_ERROR", "config file is not JSON-compatible", err)
	}
	if err := ValidateJSONAgainstSchema(ConfigFileSchema(), asJSON); err != nil {
		return nil, NewAppError("CONFIG_ERROR", "invalid config file", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, NewAppError("CONFIG_ERROR", "decode config file", err)
	}

	cfg := DefaultConfig()
	setString(&cfg.OCR.Engine, fc.OCR.Engine)
	setString(&cfg.OCR.Tesseract, fc.OCR.Tesseract)
	setString(&cfg.OCR.TessdataDir, fc.OCR.Tessdata)
	setString(&cfg.OCR.Lang, fc.OCR.Lang)
	setString(&cfg.OCR.PDFEngine, fc.OCR.PDFEngine)
	setString(&cfg.History.DSN, fc.History.DSN)
	if fc.History.Disabled != nil {
		cfg.History.Disabled = *fc.History.Disabled
	}
	if fc.History.MaxConns > 0 {
		cfg.History.MaxConns = fc.History.MaxConns
	}
	setString(&cfg.Log.Level, fc.Log.Level)
	setString(&cfg.Log.Format, fc.Log.Format)

	// the schema already checked the duration syntax
	for _, d := range []struct {
		dst *time.Duration
		src string
	}{
		{&cfg.OCR.Timeout, fc.OCR.Timeout},
		{&cfg.History.DialTimeout, fc.History.DialTimeout},
		{&cfg.Watch.Debounce, fc.Watch.Debounce},
	} {
		if d.src == "" {
			continue
		}
		v, err := time.ParseDuration(d.src)
		if err != nil {
			return nil, NewAppError("CONFIG_ERROR", "invalid duration "+d.src, err)
		}
		*d.dst = v
	}
	return cfg, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

package ocr

import (
	"context"
	"image"
	"strings"

	"github.com/joseph-ayodele/image2text/constants"
)

// Tesseract page segmentation and engine modes used by the two profiles.
const (
	PSMAuto        = 3 // fully automatic page segmentation
	PSMSingleBlock = 6 // assume a single uniform block of text

	OEMLSTM    = 1
	OEMDefault = 3
)

// EngineConfig carries the per-call OCR engine settings.
type EngineConfig struct {
	Languages []string // joined with "+" for tesseract, e.g. kor+eng
	PSM       int
	OEM       int
	Whitelist string // empty = every character the language data knows
}

// LanguageArg renders Languages the way tesseract's -l flag expects.
func (c EngineConfig) LanguageArg() string {
	return strings.Join(c.Languages, "+")
}

// Recognizer is the OCR service adapter: binarized bitmap in, raw text out.
type Recognizer interface {
	Recognize(ctx context.Context, img *image.Gray, cfg EngineConfig) (string, error)
}

// EngineConfigFor returns the engine settings for mode. lang is a "+"-joined
// language list; empty falls back to kor+eng.
func EngineConfigFor(mode constants.Mode, lang string) EngineConfig {
	if lang == "" {
		lang = defaultLang
	}
	cfg := EngineConfig{
		Languages: strings.Split(lang, "+"),
		PSM:       PSMAuto,
		OEM:       OEMDefault,
	}
	if mode == constants.ModeHandwriting {
		cfg.PSM = PSMSingleBlock
		cfg.OEM = OEMLSTM
		cfg.Whitelist = HandwritingWhitelist()
	}
	return cfg
}

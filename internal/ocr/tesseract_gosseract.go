//go:build gosseract

package ocr

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/joseph-ayodele/image2text/internal/common"
)

// gosseractRecognizer runs libtesseract in-process. OEM cannot be set through
// gosseract's API and is left to the language data default.
type gosseractRecognizer struct {
	tessdataDir string
}

func newGosseractRecognizer(tessdataDir string) (Recognizer, error) {
	return &gosseractRecognizer{tessdataDir: tessdataDir}, nil
}

func (r *gosseractRecognizer) Recognize(ctx context.Context, img *image.Gray, cfg EngineConfig) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", common.NewExtractionError(common.KindEngineFailure, "encode ocr input", err)
	}

	c := gosseract.NewClient()
	defer c.Close()

	if r.tessdataDir != "" {
		if err := c.SetTessdataPrefix(r.tessdataDir); err != nil {
			return "", common.NewExtractionError(common.KindEngineFailure, "set tessdata prefix", err)
		}
	}
	if err := c.SetLanguage(cfg.Languages...); err != nil {
		return "", common.NewExtractionError(common.KindEngineFailure, "set languages", err)
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(cfg.PSM)); err != nil {
		return "", common.NewExtractionError(common.KindEngineFailure, "set page segmentation mode", err)
	}
	if cfg.Whitelist != "" {
		if err := c.SetWhitelist(cfg.Whitelist); err != nil {
			return "", common.NewExtractionError(common.KindEngineFailure, "set whitelist", err)
		}
	}
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", common.NewExtractionError(common.KindEngineFailure, "set image", err)
	}
	if err := ctx.Err(); err != nil {
		return "", common.NewExtractionError(common.KindEngineFailure, "ocr interrupted", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", common.NewExtractionError(common.KindEngineFailure, "recognize text", err)
	}
	return strings.TrimRight(text, "\n"), nil
}

package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/image2text/constants"
	"github.com/joseph-ayodele/image2text/internal/common"
)

const defaultLang = "kor+eng"

type Config struct {
	Engine      string // "cli" | "gosseract"; if empty -> "cli"
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	TessdataDir string
	Lang        string // default "kor+eng"
	PDFEngine   string // "native" | "fitz"; if empty -> "native"
}

// SourceFile is a path plus the kind derived from its extension.
type SourceFile struct {
	Path string
	Ext  string
	Kind string // constants.PDF | constants.IMAGE | constants.UNSUPPORTED
}

func NewSourceFile(path string) SourceFile {
	ext := constants.NormalizeExt(filepath.Ext(path))
	return SourceFile{Path: path, Ext: ext, Kind: constants.MapExtToFormat(ext)}
}

// Request is everything one extraction depends on.
type Request struct {
	Path string
	Mode constants.Mode // empty means constants.ModePrinted
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE
	Mode       constants.Mode
	Method     string // "pdf-text" | "image-ocr"
	Language   string
	Duration   time.Duration
}

type Extractor struct {
	cfg        Config
	recognizer Recognizer
	pdf        PageTextSource
	runner     Runner
	logger     *slog.Logger
}

type Option func(*Extractor)

// WithRecognizer replaces the OCR backend selected by Config.Engine.
func WithRecognizer(r Recognizer) Option {
	return func(e *Extractor) { e.recognizer = r }
}

// WithPageTextSource replaces the PDF backend selected by Config.PDFEngine.
func WithPageTextSource(src PageTextSource) Option {
	return func(e *Extractor) { e.pdf = src }
}

// WithRunner replaces the command runner used by the cli engine.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Engine == "" {
		cfg.Engine = "cli"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = defaultLang
	}
	if cfg.PDFEngine == "" {
		cfg.PDFEngine = "native"
	}
	e := &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
	for _, o := range opts {
		o(e)
	}

	if e.recognizer == nil {
		switch cfg.Engine {
		case "cli":
			e.recognizer = newCLIRecognizer(cfg.Tesseract, cfg.TessdataDir, e.runner, logger)
		case "gosseract":
			r, err := newGosseractRecognizer(cfg.TessdataDir)
			if err != nil {
				return nil, err
			}
			e.recognizer = r
		default:
			return nil, fmt.Errorf("unknown ocr engine %q", cfg.Engine)
		}
	}
	if e.pdf == nil {
		switch cfg.PDFEngine {
		case "native":
			e.pdf = plainTextSource{}
		case "fitz":
			src, err := newFitzSource()
			if err != nil {
				return nil, err
			}
			e.pdf = src
		default:
			return nil, fmt.Errorf("unknown pdf engine %q", cfg.PDFEngine)
		}
	}
	return e, nil
}

// Extract picks a strategy based on file extension and returns normalized text.
// Failures are *common.ExtractionError; nothing is retried.
func (e *Extractor) Extract(ctx context.Context, req Request) (ExtractionResult, error) {
	start := time.Now()
	if strings.TrimSpace(req.Path) == "" {
		return ExtractionResult{}, common.NewExtractionError(common.KindNoInput, "no file selected", nil)
	}
	mode := req.Mode
	if mode == "" {
		mode = constants.ModePrinted
	}
	src := NewSourceFile(req.Path)
	e.logger.Debug("starting extraction",
		"request_id", common.RequestIDFromContext(ctx),
		"path", src.Path, "ext", src.Ext, "kind", src.Kind, "mode", mode)

	var (
		res ExtractionResult
		raw string
		err error
	)
	switch src.Kind {
	case constants.PDF:
		res = ExtractionResult{SourceType: constants.PDF, Mode: mode, Method: "pdf-text"}
		raw, res.Pages, err = ExtractPages(ctx, e.pdf, src.Path)
	case constants.IMAGE:
		res = ExtractionResult{SourceType: constants.IMAGE, Mode: mode, Method: "image-ocr", Pages: 1, Language: e.cfg.Lang}
		raw, err = e.extractImage(ctx, src.Path, mode)
	default:
		return ExtractionResult{}, common.ExtractionErrorf(common.KindUnsupportedFormat, nil, "unsupported extension: %q", src.Ext)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, asExtractionError(err)
	}

	res.Text = Normalize(norm.NFC.String(raw))
	e.logger.Debug("extraction finished",
		"request_id", common.RequestIDFromContext(ctx),
		"kind", res.SourceType, "method", res.Method,
		"raw_bytes", len(raw), "text_bytes", len(res.Text),
		"duration_ms", res.Duration.Milliseconds())
	return res, nil
}

func (e *Extractor) extractImage(ctx context.Context, path string, mode constants.Mode) (string, error) {
	prepared, err := PrepareFile(path, mode)
	if err != nil {
		return "", err
	}
	return e.recognizer.Recognize(ctx, prepared, EngineConfigFor(mode, e.cfg.Lang))
}

// asExtractionError passes typed failures through unchanged and classifies
// anything else as an engine failure.
func asExtractionError(err error) error {
	var xe *common.ExtractionError
	if errors.As(err, &xe) {
		return err
	}
	return common.NewExtractionError(common.KindEngineFailure, "text engine failed", err)
}

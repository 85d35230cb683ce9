package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/image2text/constants"
	"github.com/joseph-ayodele/image2text/internal/common"
	"github.com/joseph-ayodele/image2text/internal/entity"
	"github.com/joseph-ayodele/image2text/internal/ingest"
	"github.com/joseph-ayodele/image2text/internal/ocr"
	"github.com/joseph-ayodele/image2text/internal/repository"
)

// TextExtractor turns one file into normalized text.
type TextExtractor interface {
	Extract(ctx context.Context, req ocr.Request) (ocr.ExtractionResult, error)
}

// Processor runs one extraction and records its outcome in the history.
type Processor struct {
	logger    *slog.Logger
	extractor TextExtractor
	history   repository.ExtractionRepository // nil disables recording
	timeout   time.Duration
}

func NewProcessor(logger *slog.Logger, extractor TextExtractor, history repository.ExtractionRepository, timeout time.Duration) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, extractor: extractor, history: history, timeout: timeout}
}

// ProcessFile extracts text from path. The returned record describes the
// attempt whether or not it succeeded; the error is the extraction failure,
// untouched, so callers can branch on its kind. History write failures are
// logged and do not fail the extraction.
func (p *Processor) ProcessFile(ctx context.Context, path string, mode constants.Mode) (*entity.Extraction, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if mode == "" {
		mode = constants.ModePrinted
	}

	start := time.Now()
	res, err := p.extractor.Extract(ctx, ocr.Request{Path: path, Mode: mode})

	rec := &entity.Extraction{
		SourcePath: path,
		SourceType: ocr.NewSourceFile(path).Kind,
		Mode:       string(mode),
		Method:     res.Method,
		Text:       res.Text,
		Pages:      res.Pages,
		DurationMs: time.Since(start).Milliseconds(),
		CreatedAt:  start.UTC(),
	}
	if err != nil {
		rec.Status = string(constants.StatusFailed)
		rec.ErrorKind = string(common.KindOf(err))
		rec.ErrorMessage = err.Error()
		p.logger.Warn("extraction failed",
			"request_id", common.RequestIDFromContext(ctx),
			"path", path, "kind", rec.ErrorKind, "error", err)
	} else {
		rec.Status = string(constants.StatusSucceeded)
		p.logger.Info("extraction succeeded",
			"request_id", common.RequestIDFromContext(ctx),
			"path", path, "method", res.Method, "pages", res.Pages,
			"chars", len([]rune(res.Text)), "duration_ms", rec.DurationMs)
	}

	if rec.SourceType != constants.UNSUPPORTED && path != "" {
		if sum, herr := ingest.HashFile(path); herr == nil {
			rec.ContentHash = sum
		}
	}

	if p.history != nil {
		// record even when the caller's deadline is spent
		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if herr := p.history.Create(hctx, rec); herr != nil {
			p.logger.Error("failed to record extraction history", "path", path, "error", herr)
		}
	}
	return rec, err
}

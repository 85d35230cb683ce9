package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/image2text/internal/common"
)

// cliRecognizer shells out to the tesseract binary.
type cliRecognizer struct {
	bin         string
	tessdataDir string
	runner      Runner
	logger      *slog.Logger
}

func newCLIRecognizer(bin, tessdataDir string, runner Runner, logger *slog.Logger) *cliRecognizer {
	return &cliRecognizer{bin: bin, tessdataDir: tessdataDir, runner: runner, logger: logger}
}

func (r *cliRecognizer) Recognize(ctx context.Context, img *image.Gray, cfg EngineConfig) (string, error) {
	tmpDir, err := os.MkdirTemp("", "i2t-ocr-*")
	if err != nil {
		return "", common.NewExtractionError(common.KindEngineFailure, "create temp dir", err)
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			r.logger.Warn("failed to remove temp dir", "dir", path, "error", err)
		}
	}(tmpDir)

	in := filepath.Join(tmpDir, "page.png")
	if err := writePNG(in, img); err != nil {
		return "", common.NewExtractionError(common.KindEngineFailure, "write ocr input", err)
	}

	// tesseract <file> stdout -l <lang> --psm N --oem M [-c tessedit_char_whitelist=...]
	out, errb, err := r.runner.Run(ctx, r.bin, r.logger, tesseractArgs(in, cfg, r.tessdataDir)...)
	if err != nil {
		msg := strings.TrimSpace(string(errb))
		if msg == "" {
			msg = "tesseract failed"
		}
		return "", common.NewExtractionError(common.KindEngineFailure, truncate(msg, 512), err)
	}
	return string(out), nil
}

func tesseractArgs(in string, cfg EngineConfig, tessdataDir string) []string {
	args := []string{in, "stdout", "-l", cfg.LanguageArg()}
	if cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(cfg.PSM))
	}
	if cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(cfg.OEM))
	}
	if tessdataDir != "" {
		args = append(args, "--tessdata-dir", tessdataDir)
	}
	if cfg.Whitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+cfg.Whitelist)
	}
	return args
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

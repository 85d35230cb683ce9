package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/image2text/constants"
	"github.com/joseph-ayodele/image2text/internal/common"
	"github.com/joseph-ayodele/image2text/internal/entity"
	"github.com/joseph-ayodele/image2text/internal/ingest"
	"github.com/joseph-ayodele/image2text/internal/ocr"
)

type extractOptions struct {
	handwriting bool
	mode        string
	jsonOut     bool
	dumpDir     string
	skipHidden  bool
}

func newExtractCmd(a *app) *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract [file or directory ...]",
		Short: "Extract text from PDFs and images",
		Long: "Extract text from each file. PDFs are read from their text layer, images go through\n" +
			"binarization and OCR. Directories are walked for supported files.",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			return runExtract(cmd, a, opts, args)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.handwriting, "handwriting", false, "treat images as handwriting (adaptive threshold, restricted charset)")
	f.StringVar(&opts.mode, "mode", "printed", "printed | handwriting")
	f.BoolVar(&opts.jsonOut, "json", false, "print results as JSON")
	f.StringVar(&opts.dumpDir, "dump-preprocessed", "", "write each binarized image as PNG into this directory")
	f.BoolVar(&opts.skipHidden, "skip-hidden", true, "skip dot-files when walking directories")
	return cmd
}

func runExtract(cmd *cobra.Command, a *app, opts *extractOptions, args []string) error {
	ctx := cmd.Context()
	mode := a.resolveMode(opts.handwriting, opts.mode)

	paths, err := expandPaths(args, opts.skipHidden)
	if err != nil {
		return err
	}
	proc, err := a.newProcessor(ctx)
	if err != nil {
		return err
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	var (
		records []*entity.Extraction
		failed  bool
	)
	for _, p := range paths {
		reqCtx := common.WithRequestID(ctx, uuid.NewString())
		rec, err := proc.ProcessFile(reqCtx, p, mode)
		records = append(records, rec)
		if err != nil {
			failed = true
			if !opts.jsonOut {
				printFailure(errOut, p, len(paths) > 1, err)
			}
			continue
		}
		if opts.dumpDir != "" && rec.SourceType == constants.IMAGE {
			if err := dumpPreprocessed(opts.dumpDir, p, mode); err != nil {
				a.logger.Warn("failed to dump preprocessed image", "path", p, "error", err)
			}
		}
		if !opts.jsonOut {
			printText(out, p, len(paths) > 1, rec.Text)
		}
	}

	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return err
		}
	}
	if failed {
		return errSomeFailed
	}
	return nil
}

// expandPaths replaces directories with the supported files beneath them. No
// arguments yields one empty path, which the extractor reports as no input.
func expandPaths(args []string, skipHidden bool) ([]string, error) {
	if len(args) == 0 {
		return []string{""}, nil
	}
	var out []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil || !st.IsDir() {
			out = append(out, arg)
			continue
		}
		files, _, err := ingest.Collect(arg, skipHidden)
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
		out = append(out, files...)
	}
	return out, nil
}

// resolveMode lets --handwriting win over --mode. Unknown modes fall back to printed.
func (a *app) resolveMode(handwriting bool, raw string) constants.Mode {
	if handwriting {
		return constants.ModeHandwriting
	}
	mode, ok := constants.ParseMode(raw)
	if !ok {
		a.logger.Warn("unknown mode, using printed", "mode", raw)
	}
	return mode
}

func printText(w io.Writer, path string, header bool, text string) {
	if header {
		_, _ = fmt.Fprintf(w, "==> %s <==\n", path)
	}
	_, _ = fmt.Fprintln(w, strings.TrimRight(text, "\n"))
}

// noInputPrompt is shown instead of an error when nothing was selected.
const noInputPrompt = "이미지를 먼저 선택해주세요."

func printFailure(w io.Writer, path string, header bool, err error) {
	if header {
		_, _ = fmt.Fprintf(w, "==> %s <==\n", path)
	}
	if errors.Is(err, common.ErrNoInput) {
		_, _ = fmt.Fprintln(w, noInputPrompt)
		return
	}
	_, _ = fmt.Fprintf(w, "오류 발생: %v\n", err)
}

func dumpPreprocessed(dir, path string, mode constants.Mode) error {
	img, err := ocr.PrepareFile(path, mode)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	f, err := os.Create(filepath.Join(dir, base+".prepared.png"))
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

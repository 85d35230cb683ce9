package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/image2text/internal/common"
	"github.com/joseph-ayodele/image2text/internal/core"
	"github.com/joseph-ayodele/image2text/internal/ocr"
	"github.com/joseph-ayodele/image2text/internal/repository"
)

// errSomeFailed makes the process exit non-zero after per-file errors were printed.
var errSomeFailed = errors.New("one or more files failed")

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	noHistory  bool
	historyDSN string
}

// app is the state shared by every subcommand, built in PersistentPreRunE.
type app struct {
	cfg    *common.Config
	logger *slog.Logger

	db      *repository.DB
	history repository.ExtractionRepository
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	a := &app{}

	cmd := &cobra.Command{
		Use:           "image2text",
		Short:         "Extract Korean and English text from PDFs and images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd, opts)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "YAML config file (environment variables still override it)")
	f.StringVar(&opts.logLevel, "log-level", "", "debug | info | warn | error")
	f.StringVar(&opts.logFormat, "log-format", "", "text | json")
	f.BoolVar(&opts.noHistory, "no-history", false, "do not record extractions")
	f.StringVar(&opts.historyDSN, "history-dsn", "", "history database (sqlite path or postgres:// URL)")

	cmd.AddCommand(
		newExtractCmd(a),
		newInspectCmd(a),
		newWatchCmd(a),
		newHistoryCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command, opts *rootOptions) error {
	// a missing .env is fine
	_ = godotenv.Load()

	var err error
	if opts.configPath != "" {
		a.cfg, err = common.LoadConfigFile(opts.configPath)
		if err != nil {
			return err
		}
	} else {
		a.cfg = common.LoadConfig()
	}
	if opts.logLevel != "" {
		a.cfg.Log.Level = strings.ToLower(opts.logLevel)
	}
	if opts.logFormat != "" {
		a.cfg.Log.Format = strings.ToLower(opts.logFormat)
	}
	if opts.historyDSN != "" {
		a.cfg.History.DSN = opts.historyDSN
	}
	if opts.noHistory {
		a.cfg.History.Disabled = true
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	a.logger = common.NewLogger(a.cfg.Log, cmd.ErrOrStderr())
	slog.SetDefault(a.logger)
	return nil
}

// openHistory connects, pings and migrates the history database once.
func (a *app) openHistory(ctx context.Context) (repository.ExtractionRepository, error) {
	if a.history != nil {
		return a.history, nil
	}
	if a.cfg.History.Disabled {
		return nil, common.NewAppError("CONFIG_ERROR", "history is disabled", common.ErrInvalidInput)
	}
	db, err := repository.Open(ctx, repository.Config{
		DSN:         a.cfg.History.DSN,
		MaxConns:    a.cfg.History.MaxConns,
		DialTimeout: a.cfg.History.DialTimeout,
	}, a.logger)
	if err != nil {
		return nil, err
	}
	if err := db.HealthCheck(ctx, a.cfg.History.DialTimeout); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	a.db = db
	a.history = repository.NewExtractionRepository(db, a.logger)
	return a.history, nil
}

// newProcessor wires the extractor to the history store. An unreachable
// history database only costs the recording, never the extraction.
func (a *app) newProcessor(ctx context.Context) (*core.Processor, error) {
	extractor, err := ocr.NewExtractor(ocr.Config{
		Engine:      a.cfg.OCR.Engine,
		Tesseract:   a.cfg.OCR.Tesseract,
		TessdataDir: a.cfg.OCR.TessdataDir,
		Lang:        a.cfg.OCR.Lang,
		PDFEngine:   a.cfg.OCR.PDFEngine,
	}, a.logger)
	if err != nil {
		return nil, err
	}

	var history repository.ExtractionRepository
	if !a.cfg.History.Disabled {
		if history, err = a.openHistory(ctx); err != nil {
			a.logger.Warn("extraction history unavailable, continuing without it", "error", err)
			history = nil
		}
	}
	return core.NewProcessor(a.logger, extractor, history, a.cfg.OCR.Timeout), nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
		a.history = nil
	}
}

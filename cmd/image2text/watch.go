package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/image2text/internal/async"
	"github.com/joseph-ayodele/image2text/internal/common"
	"github.com/joseph-ayodele/image2text/internal/ingest"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		handwriting bool
		modeFlag    string
		initialScan bool
	)
	cmd := &cobra.Command{
		Use:   "watch <dir> [dir ...]",
		Short: "Extract every supported file dropped into the given directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mode := a.resolveMode(handwriting, modeFlag)
			proc, err := a.newProcessor(ctx)
			if err != nil {
				return err
			}

			events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Roots:       args,
				InitialScan: initialScan,
				SkipHidden:  true,
				Debounce:    a.cfg.Watch.Debounce,
			}, a.logger)
			if err != nil {
				return err
			}

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			var printMu sync.Mutex
			queue := async.NewExtractionQueue(func(jobCtx context.Context, job async.Job) error {
				jobCtx = common.WithRequestID(jobCtx, job.TraceID)
				rec, err := proc.ProcessFile(jobCtx, job.Path, job.Mode)
				printMu.Lock()
				defer printMu.Unlock()
				if err != nil {
					printFailure(errOut, job.Path, true, err)
					return err
				}
				printText(out, job.Path, true, rec.Text)
				return nil
			}, a.logger, async.WithProcessTimeout(a.cfg.OCR.Timeout))

			a.logger.Info("watching for files", "roots", args, "mode", mode)
		loop:
			for {
				select {
				case <-ctx.Done():
					break loop
				case p, ok := <-events:
					if !ok {
						break loop
					}
					job := async.Job{Path: p, Mode: mode, SubmittedAt: time.Now(), TraceID: uuid.NewString()}
					if err := queue.Enqueue(ctx, job); err != nil {
						a.logger.Warn("dropped file", "path", p, "error", err)
					}
				case err, ok := <-errs:
					if !ok {
						errs = nil
						continue
					}
					_, _ = fmt.Fprintf(errOut, "watch error: %v\n", err)
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			// Shutdown returns only after the worker has left ProcessFile, so the
			// deferred close never races a history write.
			if err := queue.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("stopped before the queue drained", "error", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&handwriting, "handwriting", false, "treat images as handwriting")
	cmd.Flags().StringVar(&modeFlag, "mode", "printed", "printed | handwriting")
	cmd.Flags().BoolVar(&initialScan, "initial-scan", false, "also extract files already present in the directories")
	return cmd
}

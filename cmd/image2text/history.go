package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/image2text/constants"
	"github.com/joseph-ayodele/image2text/internal/common"
	"github.com/joseph-ayodele/image2text/internal/entity"
	"github.com/joseph-ayodele/image2text/internal/export"
)

type historyFilterOptions struct {
	status     string
	sourceType string
	limit      int
}

func (o *historyFilterOptions) bind(cmd *cobra.Command, defaultLimit int) {
	f := cmd.Flags()
	f.StringVar(&o.status, "status", "", "SUCCEEDED | FAILED")
	f.StringVar(&o.sourceType, "type", "", "PDF | IMAGE | UNSUPPORTED")
	f.IntVar(&o.limit, "limit", defaultLimit, "maximum number of rows")
}

func (o *historyFilterOptions) filter() (entity.ExtractionFilter, error) {
	status := strings.ToUpper(o.status)
	kind := strings.ToUpper(o.sourceType)
	v := common.NewValidator().
		Field("status", status, common.OneOf(string(constants.StatusSucceeded), string(constants.StatusFailed))).
		Field("type", kind, common.OneOf(constants.PDF, constants.IMAGE, constants.UNSUPPORTED))
	if v.HasErrors() {
		return entity.ExtractionFilter{}, common.NewAppError("INVALID_ARGUMENT", v.ErrorMessage(), common.ErrInvalidInput)
	}
	return entity.ExtractionFilter{Status: status, SourceType: kind, Limit: o.limit}, nil
}

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and export recorded extractions",
	}
	cmd.AddCommand(newHistoryListCmd(a), newHistoryShowCmd(a), newHistoryExportCmd(a))
	return cmd
}

func newHistoryListCmd(a *app) *cobra.Command {
	opts := &historyFilterOptions{}
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent extractions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()
			filter, err := opts.filter()
			if err != nil {
				return err
			}
			repo, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			rows, err := repo.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, rows)
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"ID", "Created", "Status", "Kind", "Mode", "File", "Result"})
			table.SetAutoWrapText(false)
			for _, x := range rows {
				result := x.ErrorKind
				if x.Status == string(constants.StatusSucceeded) {
					result = preview(x.Text, 30)
				}
				table.Append([]string{
					x.ID.String(),
					x.CreatedAt.Local().Format(time.DateTime),
					x.Status,
					x.SourceType,
					x.Mode,
					x.SourcePath,
					result,
				})
			}
			table.Render()
			return nil
		},
	}
	opts.bind(cmd, 20)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print rows as JSON")
	return cmd
}

func newHistoryShowCmd(a *app) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded extraction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			if v := common.NewValidator().Field("id", args[0], common.Required, common.UUID); v.HasErrors() {
				return common.NewAppError("INVALID_ARGUMENT", v.ErrorMessage(), common.ErrInvalidInput)
			}
			repo, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			x, err := repo.Get(cmd.Context(), uuid.MustParse(args[0]))
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, x)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "id:       %s\n", x.ID)
			_, _ = fmt.Fprintf(out, "created:  %s\n", x.CreatedAt.Local().Format(time.RFC3339))
			_, _ = fmt.Fprintf(out, "file:     %s\n", x.SourcePath)
			_, _ = fmt.Fprintf(out, "kind:     %s (%s)\n", x.SourceType, x.Mode)
			_, _ = fmt.Fprintf(out, "status:   %s\n", x.Status)
			_, _ = fmt.Fprintf(out, "duration: %s ms\n", strconv.FormatInt(x.DurationMs, 10))
			if x.Status == string(constants.StatusFailed) {
				_, _ = fmt.Fprintf(out, "오류 발생: [%s] %s\n", x.ErrorKind, x.ErrorMessage)
				return nil
			}
			_, _ = fmt.Fprintf(out, "pages:    %d\n\n%s\n", x.Pages, x.Text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the row as JSON")
	return cmd
}

func newHistoryExportCmd(a *app) *cobra.Command {
	opts := &historyFilterOptions{}
	cmd := &cobra.Command{
		Use:   "export <out.xlsx>",
		Short: "Write recorded extractions to an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			filter, err := opts.filter()
			if err != nil {
				return err
			}
			repo, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			b, err := export.NewService(repo, a.logger).ExportHistoryXLSX(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], b, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", args[0], err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}
	opts.bind(cmd, 1000)
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// preview flattens text to one line of at most n runes.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}

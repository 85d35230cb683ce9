package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/image2text/constants"
	"github.com/joseph-ayodele/image2text/internal/ocr"
)

func newInspectCmd(_ *app) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "inspect <file> [file ...]",
		Short: "Show kind, size and page count or dimensions without extracting",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			var (
				infos  []ocr.FileInfo
				failed bool
			)
			for _, p := range args {
				info, err := ocr.Inspect(p)
				if err != nil {
					failed = true
					_, _ = fmt.Fprintf(errOut, "%s: 오류 발생: %v\n", p, err)
					continue
				}
				infos = append(infos, info)
				if jsonOut {
					continue
				}
				switch info.Kind {
				case constants.PDF:
					_, _ = fmt.Fprintf(out, "%s\tPDF\t%d bytes\t%d pages\n", info.Path, info.Size, info.Pages)
				default:
					_, _ = fmt.Fprintf(out, "%s\tIMAGE (%s)\t%d bytes\t%dx%d\n", info.Path, info.Format, info.Size, info.Width, info.Height)
				}
			}
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(infos); err != nil {
					return err
				}
			}
			if failed {
				return errSomeFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print results as JSON")
	return cmd
}

package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/image2text/internal/entity"
	"github.com/joseph-ayodele/image2text/internal/repository"
)

const (
	sheetName = "Extractions"
	// excel rejects cells longer than this
	maxCellChars = 32767
)

var headers = []string{
	"Created At",
	"Source Path",
	"Source Type",
	"Mode",
	"Status",
	"Error Kind",
	"Error Message",
	"Pages",
	"Duration (ms)",
	"Text",
}

// Service turns the extraction history into XLSX workbooks.
type Service struct {
	repo   repository.ExtractionRepository
	logger *slog.Logger
}

func NewService(repo repository.ExtractionRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportHistoryXLSX returns an XLSX workbook (as bytes) holding the extractions
// that match filter, newest first.
func (s *Service) ExportHistoryXLSX(ctx context.Context, filter entity.ExtractionFilter) ([]byte, error) {
	start := time.Now()

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query extractions: %w", err)
	}

	f, err := BuildWorkbook(rows)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// BuildWorkbook lays rows out on a single sheet below a header row.
func BuildWorkbook(rows []*entity.Extraction) (*excelize.File, error) {
	f := excelize.NewFile()
	if index, _ := f.GetSheetIndex(sheetName); index == -1 {
		if _, err := f.NewSheet(sheetName); err != nil {
			return nil, err
		}
	}
	// drop the default sheet so the export opens on ours
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(activeIndex)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	for i, x := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		write(1, x.CreatedAt.UTC().Format(time.RFC3339))
		write(2, x.SourcePath)
		write(3, x.SourceType)
		write(4, x.Mode)
		write(5, x.Status)
		write(6, x.ErrorKind)
		write(7, x.ErrorMessage)
		write(8, x.Pages)
		write(9, x.DurationMs)
		write(10, truncate(x.Text, maxCellChars))
	}

	_ = f.SetColWidth(sheetName, "A", "A", 22) // created
	_ = f.SetColWidth(sheetName, "B", "B", 48) // path
	_ = f.SetColWidth(sheetName, "C", "F", 14)
	_ = f.SetColWidth(sheetName, "G", "G", 40)
	_ = f.SetColWidth(sheetName, "H", "I", 12)
	_ = f.SetColWidth(sheetName, "J", "J", 80) // text
	return f, nil
}

// truncate cuts s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

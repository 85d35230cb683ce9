package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/image2text/internal/entity"
)

type fakeRepo struct {
	rows   []*entity.Extraction
	err    error
	filter entity.ExtractionFilter
}

func (f *fakeRepo) Create(context.Context, *entity.Extraction) error { return nil }

func (f *fakeRepo) Get(context.Context, uuid.UUID) (*entity.Extraction, error) { return nil, f.err }

func (f *fakeRepo) List(_ context.Context, filter entity.ExtractionFilter) ([]*entity.Extraction, error) {
	f.filter = filter
	return f.rows, f.err
}

func TestExportHistoryXLSX(t *testing.T) {
	repo := &fakeRepo{rows: []*entity.Extraction{
		{
			SourcePath: "/scans/memo.png", SourceType: "IMAGE", Mode: "HANDWRITING", Status: "SUCCEEDED",
			Text: "안녕하세요", Pages: 1, DurationMs: 812,
			CreatedAt: time.Date(2026, 5, 2, 10, 30, 0, 0, time.UTC),
		},
		{
			SourcePath: "/scans/notes.docx", SourceType: "UNSUPPORTED", Mode: "PRINTED", Status: "FAILED",
			ErrorKind: "UNSUPPORTED_FORMAT", ErrorMessage: `unsupported extension: "docx"`,
			CreatedAt: time.Date(2026, 5, 2, 10, 29, 0, 0, time.UTC),
		},
	}}
	svc := NewService(repo, nil)

	b, err := svc.ExportHistoryXLSX(context.Background(), entity.ExtractionFilter{Status: "FAILED", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "FAILED", repo.filter.Status)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])
	assert.Equal(t, "2026-05-02T10:30:00Z", rows[1][0])
	assert.Equal(t, "/scans/memo.png", rows[1][1])
	assert.Equal(t, "안녕하세요", rows[1][9])
	assert.Equal(t, "UNSUPPORTED_FORMAT", rows[2][5])
}

func TestExportHistoryXLSXRepoError(t *testing.T) {
	svc := NewService(&fakeRepo{err: errors.New("db down")}, nil)
	_, err := svc.ExportHistoryXLSX(context.Background(), entity.ExtractionFilter{})
	assert.ErrorContains(t, err, "db down")
}

func TestTruncateIsRuneSafe(t *testing.T) {
	assert.Equal(t, "가나…", truncate("가나다라", 3))
	assert.Equal(t, "가나다라", truncate("가나다라", 4))
	long := strings.Repeat("한", maxCellChars+5)
	assert.Equal(t, maxCellChars, len([]rune(truncate(long, maxCellChars))))
}

package ocr

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/image2text/constants"
	"github.com/joseph-ayodele/image2text/internal/common"
)

type fakeRecognizer struct {
	calls int
	cfg   EngineConfig
	img   *image.Gray
	text  string
	err   error
}

func (f *fakeRecognizer) Recognize(_ context.Context, img *image.Gray, cfg EngineConfig) (string, error) {
	f.calls++
	f.img = img
	f.cfg = cfg
	return f.text, f.err
}

type fakePages struct {
	calls int
	path  string
	pages []string
	err   error
}

func (f *fakePages) PageTexts(_ context.Context, path string) ([]string, error) {
	f.calls++
	f.path = path
	return f.pages, f.err
}

func newTestExtractor(t *testing.T, rec *fakeRecognizer, pdf *fakePages) *Extractor {
	t.Helper()
	e, err := NewExtractor(Config{}, nil, WithRecognizer(rec), WithPageTextSource(pdf))
	require.NoError(t, err)
	return e
}

func TestExtractNoInput(t *testing.T) {
	rec, pdf := &fakeRecognizer{}, &fakePages{}
	e := newTestExtractor(t, rec, pdf)

	for _, p := range []string{"", "   "} {
		_, err := e.Extract(context.Background(), Request{Path: p})
		require.ErrorIs(t, err, common.ErrNoInput)
		assert.Equal(t, common.KindNoInput, common.KindOf(err))
	}
	assert.Zero(t, rec.calls)
	assert.Zero(t, pdf.calls)
}

func TestExtractUnsupportedCallsNoAdapter(t *testing.T) {
	rec, pdf := &fakeRecognizer{}, &fakePages{}
	e := newTestExtractor(t, rec, pdf)

	for _, p := range []string{"report.docx", "archive.tar.gz", "README", "photo.gif"} {
		_, err := e.Extract(context.Background(), Request{Path: p})
		require.ErrorIs(t, err, common.ErrUnsupportedFormat, p)
	}
	assert.Zero(t, rec.calls)
	assert.Zero(t, pdf.calls)
}

func TestExtractPDF(t *testing.T) {
	rec := &fakeRecognizer{}
	pdf := &fakePages{pages: []string{"안 녕 하 세 요", "합 계 :  1 2 3 원"}}
	e := newTestExtractor(t, rec, pdf)

	res, err := e.Extract(context.Background(), Request{Path: "/tmp/scan.PDF"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/scan.PDF", pdf.path)
	assert.Zero(t, rec.calls, "pdf path never reaches the ocr engine")
	assert.Equal(t, constants.PDF, res.SourceType)
	assert.Equal(t, "pdf-text", res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, constants.ModePrinted, res.Mode)
	assert.Equal(t, Normalize("안 녕 하 세 요\n합 계 :  1 2 3 원"), res.Text)
}

func TestExtractPDFWithoutTextLayer(t *testing.T) {
	e := newTestExtractor(t, &fakeRecognizer{}, &fakePages{pages: []string{""}})

	res, err := e.Extract(context.Background(), Request{Path: "scan.pdf"})
	require.NoError(t, err)
	assert.Empty(t, res.Text)
	assert.Equal(t, 1, res.Pages)
}

func TestExtractImageModes(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "NOTE.PNG", strokeImage())

	tests := []struct {
		name      string
		mode      constants.Mode
		psm       int
		whitelist bool
	}{
		{name: "default is printed", mode: "", psm: PSMAuto},
		{name: "printed", mode: constants.ModePrinted, psm: PSMAuto},
		{name: "handwriting", mode: constants.ModeHandwriting, psm: PSMSingleBlock, whitelist: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecognizer{text: "영수증 ."}
			e := newTestExtractor(t, rec, &fakePages{})

			res, err := e.Extract(context.Background(), Request{Path: path, Mode: tt.mode})
			require.NoError(t, err)
			require.Equal(t, 1, rec.calls)
			assert.Equal(t, tt.psm, rec.cfg.PSM)
			assert.Equal(t, tt.whitelist, rec.cfg.Whitelist != "")
			assert.Equal(t, []string{"kor", "eng"}, rec.cfg.Languages)
			assert.Equal(t, image.Rect(0, 0, 40, 40), rec.img.Bounds())
			assert.Equal(t, "영수증.", res.Text)
			assert.Equal(t, constants.IMAGE, res.SourceType)
			assert.Equal(t, "image-ocr", res.Method)
		})
	}
}

func TestExtractImageLoadFailure(t *testing.T) {
	rec := &fakeRecognizer{}
	e := newTestExtractor(t, rec, &fakePages{})

	_, err := e.Extract(context.Background(), Request{Path: "/definitely/not/here.jpg"})
	require.ErrorIs(t, err, common.ErrLoadFailure)
	assert.Zero(t, rec.calls)
}

func TestExtractErrorClassification(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "in.png", strokeImage())

	typed := common.NewExtractionError(common.KindEngineFailure, "tesseract crashed", nil)
	e := newTestExtractor(t, &fakeRecognizer{err: typed}, &fakePages{})
	_, err := e.Extract(context.Background(), Request{Path: path})
	var xe *common.ExtractionError
	require.ErrorAs(t, err, &xe)
	assert.Same(t, typed, xe)

	cause := errors.New("boom")
	e = newTestExtractor(t, &fakeRecognizer{}, &fakePages{err: cause})
	_, err = e.Extract(context.Background(), Request{Path: "doc.pdf"})
	require.ErrorIs(t, err, common.ErrEngineFailure)
	assert.ErrorIs(t, err, cause)

	loadErr := common.NewExtractionError(common.KindLoadFailure, "bad file", nil)
	e = newTestExtractor(t, &fakeRecognizer{}, &fakePages{err: loadErr})
	_, err = e.Extract(context.Background(), Request{Path: "doc.pdf"})
	assert.ErrorIs(t, err, common.ErrLoadFailure)
}

func TestNewExtractorUnknownEngines(t *testing.T) {
	_, err := NewExtractor(Config{Engine: "abbyy"}, nil)
	assert.Error(t, err)

	_, err = NewExtractor(Config{PDFEngine: "poppler"}, nil, WithRecognizer(&fakeRecognizer{}))
	assert.Error(t, err)
}

func TestNewSourceFile(t *testing.T) {
	assert.Equal(t, constants.IMAGE, NewSourceFile("a/b/Scan.JPEG").Kind)
	assert.Equal(t, constants.IMAGE, NewSourceFile("x.tiff").Kind)
	assert.Equal(t, constants.PDF, NewSourceFile("x.pdf").Kind)
	assert.Equal(t, constants.UNSUPPORTED, NewSourceFile("x.tif").Kind)
	assert.Equal(t, "jpeg", NewSourceFile("a/b/Scan.JPEG").Ext)
}

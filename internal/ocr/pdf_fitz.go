//go:build fitz

package ocr

import (
	"context"

	"github.com/gen2brain/go-fitz"

	"github.com/joseph-ayodele/image2text/internal/common"
)

// fitzSource reads the text layer through MuPDF, which copes with more
// font encodings than the pure-Go parser.
type fitzSource struct{}

func newFitzSource() (PageTextSource, error) {
	return fitzSource{}, nil
}

func (fitzSource) PageTexts(ctx context.Context, path string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, common.ExtractionErrorf(common.KindLoadFailure, err, "open pdf %s", path)
	}
	defer func() { _ = doc.Close() }()

	texts := make([]string, 0, doc.NumPage())
	for i := range doc.NumPage() {
		if err := ctx.Err(); err != nil {
			return nil, common.NewExtractionError(common.KindEngineFailure, "pdf extraction interrupted", err)
		}
		txt, err := doc.Text(i)
		if err != nil {
			return nil, common.ExtractionErrorf(common.KindEngineFailure, err, "read pdf page %d", i+1)
		}
		texts = append(texts, txt)
	}
	return texts, nil
}

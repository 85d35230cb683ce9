package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/image2text/internal/common"
)

// PageTextSource is the PDF text service adapter: one string per page, in page order.
// Pages without a text layer yield "".
type PageTextSource interface {
	PageTexts(ctx context.Context, path string) ([]string, error)
}

// ExtractPages joins the page texts of path with "\n" and reports the page count.
func ExtractPages(ctx context.Context, src PageTextSource, path string) (string, int, error) {
	pages, err := src.PageTexts(ctx, path)
	if err != nil {
		return "", 0, err
	}
	return strings.Join(pages, "\n"), len(pages), nil
}

// plainTextSource reads the embedded text layer with github.com/ledongthuc/pdf.
type plainTextSource struct{}

func (plainTextSource) PageTexts(ctx context.Context, path string) (texts []string, err error) {
	opened := false
	// the parser panics on some malformed documents
	defer func() {
		if rec := recover(); rec != nil {
			texts = nil
			kind := common.KindEngineFailure
			if !opened {
				kind = common.KindLoadFailure
			}
			err = common.ExtractionErrorf(kind, fmt.Errorf("%v", rec), "read pdf %s", path)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, common.ExtractionErrorf(common.KindLoadFailure, err, "open pdf %s", path)
	}
	defer func() { _ = f.Close() }()
	opened = true

	numPages := r.NumPage()
	texts = make([]string, 0, numPages)

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, common.NewExtractionError(common.KindEngineFailure, "pdf extraction interrupted", err)
		}
		p := r.Page(i)
		if p.V.IsNull() || p.V.Key("Contents").IsNull() {
			texts = append(texts, "")
			continue
		}

		// font resource names are scoped to the page
		fonts := make(map[string]*pdf.Font)
		for _, name := range p.Fonts() {
			f2 := p.Font(name)
			fonts[name] = &f2
		}

		text, pageErr := p.GetPlainText(fonts)
		if pageErr != nil {
			return nil, common.ExtractionErrorf(common.KindEngineFailure, pageErr, "read pdf page %d", i)
		}
		texts = append(texts, text)
	}
	return texts, nil
}

//go:build !fitz

package ocr

import "errors"

// ErrFitzNotEnabled is returned when the MuPDF text source is requested from a
// binary built without it. Rebuild with -tags fitz.
var ErrFitzNotEnabled = errors.New("fitz pdf engine not enabled; rebuild with -tags fitz")

func newFitzSource() (PageTextSource, error) {
	return nil, ErrFitzNotEnabled
}

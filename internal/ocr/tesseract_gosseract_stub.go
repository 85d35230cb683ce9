//go:build !gosseract

package ocr

import "errors"

// ErrGosseractNotEnabled is returned when the gosseract engine is requested
// from a binary built without it. Rebuild with -tags gosseract.
var ErrGosseractNotEnabled = errors.New("gosseract engine not enabled; rebuild with -tags gosseract")

func newGosseractRecognizer(string) (Recognizer, error) {
	return nil, ErrGosseractNotEnabled
}

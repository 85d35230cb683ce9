package constants

import "strings"

// Mode selects how an image is binarized and which OCR engine settings apply.
// PDFs ignore it.
type Mode string

const (
	ModePrinted     Mode = "PRINTED"
	ModeHandwriting Mode = "HANDWRITING"
)

// ParseMode accepts "printed" or "handwriting" in any case; empty means printed.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(ModePrinted):
		return ModePrinted, true
	case string(ModeHandwriting):
		return ModeHandwriting, true
	default:
		return ModePrinted, false
	}
}

package ocr

import (
	"sync"

	"golang.org/x/text/encoding/korean"
)

const (
	digits       = "0123456789"
	latinUpper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	latinLower   = "abcdefghijklmnopqrstuvwxyz"
	hangulRowMin = 0xB0
	hangulRowMax = 0xC8
	cellMin      = 0xA1
	cellMax      = 0xFE
)

// CommonHangul returns the 2,350 KS X 1001 Hangul syllables (가 ... 힝) in code order.
// They occupy EUC-KR rows 0xB0-0xC8, 94 cells each.
var CommonHangul = sync.OnceValue(func() string {
	buf := make([]byte, 0, (hangulRowMax-hangulRowMin+1)*(cellMax-cellMin+1)*2)
	for hi := hangulRowMin; hi <= hangulRowMax; hi++ {
		for lo := cellMin; lo <= cellMax; lo++ {
			buf = append(buf, byte(hi), byte(lo))
		}
	}
	out, err := korean.EUCKR.NewDecoder().Bytes(buf)
	if err != nil {
		panic("ocr: decode KS X 1001 hangul rows: " + err.Error())
	}
	return string(out)
})

// HandwritingWhitelist is the character set tesseract may emit in handwriting mode.
func HandwritingWhitelist() string {
	return digits + latinUpper + latinLower + CommonHangul()
}

package ocr

import (
	"regexp"
	"strings"
)

// Particles are the Korean postpositions reattached to the preceding word.
// The list is closed; anything else (은, 는, 만, ...) is left alone.
var Particles = []string{
	"이", "가", "을", "를", "의", "에", "로", "와", "과", "나", "도", "께",
	"에서", "부터", "까지", "처럼", "만큼", "보다", "라고", "라는", "라도", "라면",
}

// space matches Unicode whitespace: RE2's \s is ASCII only, and PDF text
// layers carry NBSP and ideographic spaces.
const space = `[\s\p{Z}\x{85}]`

type rule struct {
	name string
	re   *regexp.Regexp
	repl string
}

// rules run in order; each pattern assumes the output of the ones before it.
// Every rule is a single left-to-right pass with non-overlapping matches, so
// "안 녕 하" only loses its first space per pass.
var rules = []rule{
	{"hangul-gap", regexp.MustCompile(`([가-힣ㄱ-ㅎㅏ-ㅣ]) ([가-힣ㄱ-ㅎㅏ-ㅣ])`), "${1}${2}"},
	{"digit-gap", regexp.MustCompile(`(\p{Nd}) (\p{Nd})`), "${1}${2}"},
	// the trailing group stands in for a word boundary: RE2's \b only knows ASCII
	{"particle", regexp.MustCompile(`([가-힣]+) (` + strings.Join(Particles, "|") + `)([^\p{L}\p{N}_]|$)`), "${1}${2}${3}"},
	{"punctuation", regexp.MustCompile(space + `*([.,!?:;])` + space + `*`), "${1} "},
	{"open-paren", regexp.MustCompile(space + `*\(` + space + `*`), "("},
	{"close-paren", regexp.MustCompile(space + `*\)` + space + `*`), ") "},
	{"multi-space", regexp.MustCompile(` {2,}`), " "},
}

// Normalize fixes the spacing and punctuation artifacts tesseract leaves in
// mixed Korean/English output. It never changes letters, only whitespace
// placement around them.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	for _, r := range rules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return strings.TrimSpace(s)
}

// Package textnorm cleans typical OCR noise out of recognized text before
// spelling correction: rejoined hyphenated words, trailing whitespace,
// squeezed blank lines and space runs.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	hyphenBreak    = regexp.MustCompile(`-\n`)
	trailingSpaces = regexp.MustCompile(`[ \t]+\n`)
	manyNewlines   = regexp.MustCompile(`\n{3,}`)
	manySpaces     = regexp.MustCompile(`[ ]{2,}`)
)

// Normalize applies the post-OCR cleanup passes in order. Empty or
// whitespace-only input is returned unchanged.
func Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	text = hyphenBreak.ReplaceAllString(text, "")
	text = trailingSpaces.ReplaceAllString(text, "\n")
	text = manyNewlines.ReplaceAllString(text, "\n\n")
	text = manySpaces.ReplaceAllString(text, " ")
	return text
}

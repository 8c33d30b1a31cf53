package typeset

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// CoreFallbackFamily is the built-in font used when no TrueType candidate
// exists on the host. Core fonts cover cp1252 only, so text is transliterated
// before drawing.
const CoreFallbackFamily = "Helvetica"

// findFont returns the first candidate path that exists, with the family
// name derived from the file name (Arial.ttf -> Arial).
func findFont(candidates []string) (path, family string, ok bool) {
	for _, cand := range candidates {
		if cand == "" {
			continue
		}
		if _, err := os.Stat(cand); err != nil {
			continue
		}
		return cand, familyFromPath(cand), true
	}
	log.Warn().Strs("candidates", candidates).Msg("no TrueType font found, falling back to Helvetica")
	return "", CoreFallbackFamily, false
}

// FindFontIn exposes the candidate search as a closure, for preflight
// reporting.
func FindFontIn(candidates []string) func() (path, family string, ok bool) {
	return func() (string, string, bool) { return findFont(candidates) }
}

func familyFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

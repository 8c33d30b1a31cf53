package pdfprobe

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Info describes an input PDF before processing.
type Info struct {
	Pages        int
	HasTextLayer bool
	SampledPages []int
	SampledChars int
	DurationMs   int64
}

// DefaultThreshold is the sampled-character count above which a PDF is
// considered to already carry a text layer.
const DefaultThreshold = 300

var whitespaceRegex = regexp.MustCompile(`\s+`)

func stripWhitespace(s string) string {
	return whitespaceRegex.ReplaceAllString(s, "")
}

// Doc abstracts a PDF document for text extraction.
type Doc interface {
	NumPage() int
	PageText(i int) (string, error)
	Close() error
}

// Opener abstracts opening a PDF path into a Doc.
type Opener interface {
	Open(path string) (Doc, error)
}

// defaultOpener is provided in doc_open_fitz.go using go-fitz.
var defaultOpener Opener

// setDefaultOpener allows swapping the default opener, useful for tests or
// alternate backends.
func setDefaultOpener(o Opener) { defaultOpener = o }

// Validate checks structural validity and returns the page count, using
// pdfcpu. A scan that fails validation is rejected before any rendering.
func Validate(path string) (int, error) {
	if err := api.ValidateFile(path, nil); err != nil {
		return 0, fmt.Errorf("pdf validation failed: %w", err)
	}
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("pdf page count failed: %w", err)
	}
	return n, nil
}

// Probe samples a few pages for extractable text. A scanned book normally has
// none; when the threshold is crossed the caller can warn that OCR will
// duplicate an existing text layer. If threshold <= 0, DefaultThreshold is
// used.
func Probe(path string, threshold int) (*Info, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if defaultOpener == nil {
		return nil, errors.New("no PDF opener configured")
	}

	start := time.Now()
	d, err := defaultOpener.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer d.Close()

	total := d.NumPage()
	info := &Info{Pages: total}
	if total <= 0 {
		info.DurationMs = time.Since(start).Milliseconds()
		return info, nil
	}

	sampleIdx := sampleIndices(total)
	info.SampledPages = sampleIdx

	for _, idx := range sampleIdx {
		text, terr := d.PageText(idx)
		if terr != nil {
			continue
		}
		info.SampledChars += len([]rune(stripWhitespace(text)))
		if info.SampledChars >= threshold {
			// Early exit for speed
			break
		}
	}

	info.HasTextLayer = info.SampledChars >= threshold
	info.DurationMs = time.Since(start).Milliseconds()
	return info, nil
}

// sampleIndices picks up to 3 representative pages: first, middle, last.
// Small documents are sampled in full.
func sampleIndices(total int) []int {
	if total <= 0 {
		return []int{}
	}
	if total <= 3 {
		idx := make([]int, total)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	set := map[int]struct{}{0: {}, total / 2: {}, total - 1: {}}
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

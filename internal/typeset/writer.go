// Package typeset builds the output PDF: one word-wrapped text page per
// OCR-ed page half, in a single normalized font.
package typeset

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog/log"
)

// Options configures the output document.
type Options struct {
	PageSize     string // "A4", "Letter", ...
	FontSize     float64
	MarginLeft   float64
	MarginRight  float64
	MarginTop    float64
	MarginBottom float64
	FontPaths    []string
}

// Writer typesets text pages into a PDF. Not safe for concurrent use.
type Writer struct {
	pdf       *fpdf.Fpdf
	opts      Options
	family    string
	translate func(string) string
	lineH     float64
	usableW   float64
	pageH     float64
}

// NewWriter creates a portrait document of the configured page size and
// registers the first available TrueType font from opts.FontPaths, falling
// back to the built-in Helvetica.
func NewWriter(opts Options) (*Writer, error) {
	if opts.PageSize == "" {
		opts.PageSize = "A4"
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 11
	}

	pdf := fpdf.New("P", "pt", opts.PageSize, "")

	w := &Writer{
		pdf:       pdf,
		opts:      opts,
		translate: func(s string) string { return s },
	}

	if path, family, ok := findFont(opts.FontPaths); ok {
		pdf.AddUTF8Font(family, "", path)
		w.family = family
		log.Info().Str("family", family).Str("path", path).Msg("registered output font")
	} else {
		w.family = CoreFallbackFamily
		w.translate = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.SetFont(w.family, "", opts.FontSize)
	pdf.SetAutoPageBreak(false, 0)
	if pdf.Err() {
		return nil, fmt.Errorf("output document setup: %w", pdf.Error())
	}

	pageW, pageH := pdf.GetPageSize()
	w.pageH = pageH
	w.usableW = pageW - opts.MarginLeft - opts.MarginRight
	w.lineH = opts.FontSize * 1.27

	return w, nil
}

// AddTextPage starts a new page and draws text word-wrapped inside the
// margins. Blank text still produces the page, so page order stays aligned
// with the input. Overlong pages continue onto extra pages.
func (w *Writer) AddTextPage(text string) {
	w.pdf.AddPage()
	y := w.opts.MarginTop + w.lineH

	if strings.TrimSpace(text) == "" {
		return
	}

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimRight(rawLine, " \t")
		if line == "" {
			y = w.advance(y, 1)
			continue
		}
		for _, seg := range w.pdf.SplitText(w.translate(line), w.usableW) {
			w.pdf.Text(w.opts.MarginLeft, y, seg)
			y = w.advance(y, 1)
		}
	}
}

// advance moves the baseline down n lines, breaking to a fresh page when the
// bottom margin is crossed.
func (w *Writer) advance(y float64, n int) float64 {
	y += float64(n) * w.lineH
	if y > w.pageH-w.opts.MarginBottom {
		w.pdf.AddPage()
		y = w.opts.MarginTop + w.lineH
	}
	return y
}

// PageCount reports the number of pages added so far, including overflow
// continuation pages.
func (w *Writer) PageCount() int { return w.pdf.PageCount() }

// WriteFile finalizes the document at path and releases the writer.
func (w *Writer) WriteFile(path string) error {
	if w.pdf.Err() {
		return fmt.Errorf("output document in error state: %w", w.pdf.Error())
	}
	if err := w.pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write output pdf: %w", err)
	}
	return nil
}

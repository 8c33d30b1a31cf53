package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	fitz "github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"
)

// SplitMode controls how a rendered sheet is cut before OCR.
type SplitMode string

const (
	// SplitVertical cuts the sheet down the middle into left and right
	// halves, the usual layout for a book scanned two pages per sheet.
	SplitVertical SplitMode = "vertical"
	// SplitHorizontal cuts into top and bottom halves.
	SplitHorizontal SplitMode = "horizontal"
	// SplitNone keeps the whole sheet as a single image.
	SplitNone SplitMode = "none"
)

// ParseSplitMode validates a user-supplied split mode string.
func ParseSplitMode(s string) (SplitMode, error) {
	switch SplitMode(s) {
	case SplitVertical, SplitHorizontal, SplitNone:
		return SplitMode(s), nil
	}
	return "", fmt.Errorf("unknown split mode %q (want vertical, horizontal or none)", s)
}

// ColorMode defines the color mode for rendering
type ColorMode string

const (
	ColorRGB  ColorMode = "rgb"
	ColorGray ColorMode = "gray"
)

// Options configures rasterization.
type Options struct {
	DPI       int
	ColorMode string
}

// Renderer rasterizes pages of one PDF document. It holds the document open
// for the lifetime of a run instead of reopening it per page.
type Renderer struct {
	doc  *fitz.Document
	opts Options
}

// Open opens the PDF at path for rendering.
func Open(path string, opts Options) (*Renderer, error) {
	if opts.DPI <= 0 {
		opts.DPI = 300
	}
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &Renderer{doc: doc, opts: opts}, nil
}

// NumPages returns the page count of the open document.
func (r *Renderer) NumPages() int { return r.doc.NumPage() }

// Close releases the underlying document.
func (r *Renderer) Close() error { return r.doc.Close() }

// RenderHalves renders the page with the given 0-based index at the
// configured DPI and returns the PNG-encoded halves in reading order
// (left before right, top before bottom). SplitNone yields one image.
func (r *Renderer) RenderHalves(page int, mode SplitMode) ([][]byte, error) {
	if page < 0 || page >= r.doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", page+1, r.doc.NumPage())
	}

	img, err := r.doc.ImageDPI(page, float64(r.opts.DPI))
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page+1, err)
	}

	rects := SplitRects(img.Bounds(), mode)
	out := make([][]byte, 0, len(rects))
	for _, rect := range rects {
		buf, err := r.encodeRegion(img, rect)
		if err != nil {
			return nil, fmt.Errorf("failed to encode page %d region %v: %w", page+1, rect, err)
		}
		out = append(out, buf)
	}

	log.Debug().
		Int("page", page+1).
		Int("dpi", r.opts.DPI).
		Str("split", string(mode)).
		Int("halves", len(out)).
		Str("color", r.opts.ColorMode).
		Msg("rendered page")

	return out, nil
}

// encodeRegion crops rect out of img, applies the color mode and encodes PNG.
func (r *Renderer) encodeRegion(img image.Image, rect image.Rectangle) ([]byte, error) {
	target := rect.Sub(rect.Min)

	var region draw.Image
	if r.opts.ColorMode == string(ColorGray) {
		region = image.NewGray(target)
	} else {
		region = image.NewRGBA(target)
	}
	draw.Draw(region, target, img, rect.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, region); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SplitRects computes the crop rectangles for mode within bounds, in reading
// order. For odd dimensions the first half gets the smaller share so the two
// halves tile bounds exactly.
func SplitRects(bounds image.Rectangle, mode SplitMode) []image.Rectangle {
	switch mode {
	case SplitVertical:
		midX := bounds.Min.X + bounds.Dx()/2
		return []image.Rectangle{
			image.Rect(bounds.Min.X, bounds.Min.Y, midX, bounds.Max.Y),
			image.Rect(midX, bounds.Min.Y, bounds.Max.X, bounds.Max.Y),
		}
	case SplitHorizontal:
		midY := bounds.Min.Y + bounds.Dy()/2
		return []image.Rectangle{
			image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, midY),
			image.Rect(bounds.Min.X, midY, bounds.Max.X, bounds.Max.Y),
		}
	default:
		return []image.Rectangle{bounds}
	}
}

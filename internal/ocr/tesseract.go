package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog/log"
)

// Engine recognizes text in an encoded page image.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
	Close() error
}

// Tesseract implements Engine on top of the system Tesseract installation
// via gosseract. It is not safe for concurrent use; the pipeline feeds it
// one image at a time.
type Tesseract struct {
	client *gosseract.Client
	lang   string
}

// NewTesseract creates an engine for the given language ("spa", "eng",
// "spa+eng", ...). pageSegMode follows the Tesseract PSM numbering; values
// outside 0..13 keep the engine default.
func NewTesseract(lang string, pageSegMode int) (*Tesseract, error) {
	client := gosseract.NewClient()

	if lang != "" {
		if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
			client.Close()
			return nil, fmt.Errorf("set OCR language %q: %w", lang, err)
		}
	}
	if pageSegMode >= 0 && pageSegMode <= 13 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(pageSegMode)); err != nil {
			client.Close()
			return nil, fmt.Errorf("set page segmentation mode %d: %w", pageSegMode, err)
		}
	}

	log.Debug().Str("lang", lang).Int("psm", pageSegMode).Msg("tesseract engine ready")
	return &Tesseract{client: client, lang: lang}, nil
}

// Recognize runs OCR on a PNG/JPEG/TIFF image and returns the trimmed text.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) (string, error) {
	// gosseract calls are not cancellable; honor ctx between images.
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(image) == 0 {
		return "", fmt.Errorf("empty image")
	}
	if err := t.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close releases the Tesseract handle.
func (t *Tesseract) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

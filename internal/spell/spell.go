// Package spell fixes OCR misspellings. Two backends are provided: a
// LanguageTool HTTP server (better grammar and accent handling) and a local
// word-frequency model. The Chain corrector fails over from one to the next
// and finally passes text through unchanged, so correction never aborts a
// run.
package spell

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/local/bookocr/internal/metrics"
)

// Corrector fixes spelling in a block of recognized text.
type Corrector interface {
	Name() string
	Correct(ctx context.Context, text string) (string, error)
}

// Passthrough returns text unchanged.
type Passthrough struct{}

func (Passthrough) Name() string { return "none" }

func (Passthrough) Correct(_ context.Context, text string) (string, error) {
	return text, nil
}

// Chain tries backends in order and returns the first successful result.
// When every backend fails the input is returned unchanged.
type Chain struct {
	backends []Corrector
}

// NewChain builds a failover chain. Nil backends are skipped.
func NewChain(backends ...Corrector) *Chain {
	c := &Chain{}
	for _, b := range backends {
		if b != nil {
			c.backends = append(c.backends, b)
		}
	}
	return c
}

func (c *Chain) Name() string { return "chain" }

// Backends reports the names of the active backends, in failover order.
func (c *Chain) Backends() []string {
	names := make([]string, len(c.backends))
	for i, b := range c.backends {
		names[i] = b.Name()
	}
	return names
}

func (c *Chain) Correct(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	for _, b := range c.backends {
		out, err := b.Correct(ctx, text)
		if err == nil {
			metrics.IncCorrection(b.Name(), "success")
			return out, nil
		}
		if ctx.Err() != nil {
			return text, ctx.Err()
		}
		metrics.IncCorrection(b.Name(), "error")
		log.Warn().Err(err).Str("backend", b.Name()).Msg("spell backend failed, trying next")
	}

	return text, nil
}

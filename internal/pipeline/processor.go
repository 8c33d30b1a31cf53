// Package pipeline runs the end-to-end book OCR flow: resolve input, render
// each sheet, split, OCR, normalize, spell-correct and typeset the output
// PDF. Processing is strictly sequential, page by page.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/bookocr/internal/metrics"
	"github.com/local/bookocr/internal/ocr"
	"github.com/local/bookocr/internal/pdfprobe"
	"github.com/local/bookocr/internal/render"
	"github.com/local/bookocr/internal/spell"
	"github.com/local/bookocr/internal/textnorm"
)

// Renderer rasterizes pages of the input document.
type Renderer interface {
	NumPages() int
	RenderHalves(page int, mode render.SplitMode) ([][]byte, error)
	Close() error
}

// PageWriter typesets corrected text into the output document.
type PageWriter interface {
	AddTextPage(text string)
	PageCount() int
	WriteFile(path string) error
}

// SourceResolver turns refs into local files and stores the result.
type SourceResolver interface {
	Resolve(ctx context.Context, ref string) (string, func(), error)
	Store(ctx context.Context, localPath, ref string) error
}

// Dependencies wires the pipeline stages together.
type Dependencies struct {
	Resolver     SourceResolver
	RequirePDF   func(path string) error
	Validate     func(path string) (int, error)
	Probe        func(path string, threshold int) (*pdfprobe.Info, error)
	OpenRenderer func(path string) (Renderer, error)
	Engine       ocr.Engine
	Corrector    spell.Corrector
	NewWriter    func() (PageWriter, error)
}

// Options control a single run.
type Options struct {
	Input     string
	Output    string
	KeepFirst bool
	Split     render.SplitMode
}

// Summary reports what a run did.
type Summary struct {
	RunID          string
	InputPages     int
	ProcessedPages int
	OutputPages    int
	SkippedFirst   bool
	Duration       time.Duration
}

// Processor executes runs.
type Processor struct {
	deps Dependencies
}

// New creates a Processor from its dependencies.
func New(deps Dependencies) *Processor {
	return &Processor{deps: deps}
}

// Run processes opts.Input into opts.Output. Any stage failure is fatal for
// the run except spelling correction, which degrades to pass-through inside
// the corrector, and the text-layer probe, which is advisory.
func (p *Processor) Run(ctx context.Context, opts Options) (*Summary, error) {
	runID := uuid.NewString()
	start := time.Now()
	logger := log.With().Str("run_id", runID).Logger()

	localIn, cleanup, err := p.deps.Resolver.Resolve(ctx, opts.Input)
	if err != nil {
		return nil, fmt.Errorf("resolve input %s: %w", opts.Input, err)
	}
	defer cleanup()

	if err := p.deps.RequirePDF(localIn); err != nil {
		return nil, err
	}

	totalPages, err := p.deps.Validate(localIn)
	if err != nil {
		return nil, err
	}

	if info, perr := p.deps.Probe(localIn, 0); perr != nil {
		logger.Warn().Err(perr).Msg("text layer probe failed, continuing")
	} else if info.HasTextLayer {
		logger.Warn().
			Int("sampled_chars", info.SampledChars).
			Msg("input already has a text layer, OCR output will duplicate it")
	}

	renderer, err := p.deps.OpenRenderer(localIn)
	if err != nil {
		return nil, err
	}
	defer renderer.Close()

	if n := renderer.NumPages(); n != totalPages {
		return nil, fmt.Errorf("page count mismatch: validator reports %d, renderer reports %d", totalPages, n)
	}

	writer, err := p.deps.NewWriter()
	if err != nil {
		return nil, err
	}

	startPage := 0
	if !opts.KeepFirst {
		// Scanned books usually open with a cover that is not worth OCR.
		startPage = 1
	}

	logger.Info().
		Int("input_pages", totalPages).
		Bool("skip_first", !opts.KeepFirst).
		Str("split", string(opts.Split)).
		Int("to_process", max(0, totalPages-startPage)).
		Msg("starting run")

	processed := 0
	for i := startPage; i < totalPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		halves, err := renderer.RenderHalves(i, opts.Split)
		if err != nil {
			return nil, err
		}
		metrics.IncRendered()

		for _, img := range halves {
			text, err := p.recognizeAndCorrect(ctx, img)
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", i+1, err)
			}
			writer.AddTextPage(text)
			metrics.IncOutputPage()
		}

		processed++
		logger.Info().
			Int("page", i+1).
			Int("total", totalPages).
			Int("output_pages", len(halves)).
			Msg("page done")
	}

	tmpOut, err := os.CreateTemp("", "bookocr-out-*.pdf")
	if err != nil {
		return nil, err
	}
	tmpOut.Close()
	defer os.Remove(tmpOut.Name())

	if err := writer.WriteFile(tmpOut.Name()); err != nil {
		return nil, err
	}
	if err := p.deps.Resolver.Store(ctx, tmpOut.Name(), opts.Output); err != nil {
		return nil, fmt.Errorf("store output %s: %w", opts.Output, err)
	}

	summary := &Summary{
		RunID:          runID,
		InputPages:     totalPages,
		ProcessedPages: processed,
		OutputPages:    writer.PageCount(),
		SkippedFirst:   !opts.KeepFirst && totalPages > 0,
		Duration:       time.Since(start),
	}

	logger.Info().
		Int("input_pages", summary.InputPages).
		Int("processed_pages", summary.ProcessedPages).
		Int("output_pages", summary.OutputPages).
		Dur("duration", summary.Duration).
		Str("output", opts.Output).
		Msg("run complete")

	return summary, nil
}

func (p *Processor) recognizeAndCorrect(ctx context.Context, img []byte) (string, error) {
	t0 := time.Now()
	text, err := p.deps.Engine.Recognize(ctx, img)
	if err != nil {
		metrics.ObserveOCR("error", 0, time.Since(t0))
		return "", err
	}
	result := "success"
	if text == "" {
		result = "empty"
	}
	metrics.ObserveOCR(result, len(text), time.Since(t0))

	text = textnorm.Normalize(text)

	corrected, err := p.deps.Corrector.Correct(ctx, text)
	if err != nil {
		return "", err
	}
	return corrected, nil
}

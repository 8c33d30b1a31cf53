package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	cfgpkg "github.com/local/bookocr/internal/config"
	"github.com/local/bookocr/internal/filetype"
	logpkg "github.com/local/bookocr/internal/logger"
	"github.com/local/bookocr/internal/metrics"
	"github.com/local/bookocr/internal/ocr"
	"github.com/local/bookocr/internal/pdfprobe"
	"github.com/local/bookocr/internal/pipeline"
	"github.com/local/bookocr/internal/preflight"
	"github.com/local/bookocr/internal/render"
	"github.com/local/bookocr/internal/source"
	"github.com/local/bookocr/internal/spell"
	"github.com/local/bookocr/internal/typeset"
)

func main() {
	_ = godotenv.Load()

	input := flag.String("input", "", "input PDF (path, file://, http(s):// or s3://)")
	output := flag.String("output", "", "output PDF (path or s3://)")
	dpi := flag.Int("dpi", 0, "render resolution for OCR (default RENDER_DPI or 300)")
	keepFirst := flag.Bool("keep-first", false, "process the first page instead of skipping the cover")
	splitFlag := flag.String("split", "vertical", "page split mode: vertical, horizontal or none")
	lang := flag.String("lang", "", "OCR language override (default OCR_LANGUAGE or spa)")
	check := flag.Bool("check", false, "run dependency preflight checks and exit")
	flag.Parse()

	cfg := cfgpkg.FromEnv()
	if *dpi > 0 {
		cfg.Render.DPI = *dpi
	}
	if *lang != "" {
		cfg.OCR.Language = *lang
	}

	_ = logpkg.Init(logpkg.Options{
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	})
	defer logpkg.Close()

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *check {
		runPreflight(ctx, cfg, s3RefsOf(*input, *output))
		return
	}

	if *input == "" || *output == "" {
		flag.Usage()
		os.Exit(2)
	}

	mode, err := render.ParseSplitMode(*splitFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid -split")
	}

	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics listening")
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				log.Warn().Err(err).Msg("metrics listener stopped")
			}
		}()
	}

	engine, err := ocr.NewTesseract(cfg.OCR.Language, cfg.OCR.PageSegMode)
	if err != nil {
		log.Fatal().Err(err).Msg("OCR engine unavailable")
	}
	defer engine.Close()

	resolver := source.NewResolver(cfg.Source.HTTPTimeout, cfg.Source.S3Passphrase)
	detector := filetype.New()
	corrector := buildCorrector(cfg.Spell)

	proc := pipeline.New(pipeline.Dependencies{
		Resolver:   resolver,
		RequirePDF: detector.RequirePDF,
		Validate:   pdfprobe.Validate,
		Probe:      pdfprobe.Probe,
		OpenRenderer: func(path string) (pipeline.Renderer, error) {
			return render.Open(path, render.Options{DPI: cfg.Render.DPI, ColorMode: cfg.Render.ColorMode})
		},
		Engine:    engine,
		Corrector: corrector,
		NewWriter: func() (pipeline.PageWriter, error) {
			return typeset.NewWriter(typeset.Options{
				PageSize:     cfg.Output.PageSize,
				FontSize:     cfg.Output.FontSize,
				MarginLeft:   cfg.Output.MarginLeft,
				MarginRight:  cfg.Output.MarginRight,
				MarginTop:    cfg.Output.MarginTop,
				MarginBottom: cfg.Output.MarginBottom,
				FontPaths:    cfg.Output.FontPaths,
			})
		},
	})

	sum, err := proc.Run(ctx, pipeline.Options{
		Input:     *input,
		Output:    *output,
		KeepFirst: *keepFirst,
		Split:     mode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}

	fmt.Printf("done: %d input pages, %d output pages -> %s\n", sum.InputPages, sum.OutputPages, *output)
}

// buildCorrector assembles the failover chain from configuration:
// LanguageTool first when configured, the local dictionary model next,
// pass-through last.
func buildCorrector(cfg cfgpkg.SpellConfig) spell.Corrector {
	if cfg.Disable {
		log.Info().Msg("spelling correction disabled")
		return spell.Passthrough{}
	}

	var backends []spell.Corrector
	if cfg.LanguageToolURL != "" {
		backends = append(backends, spell.NewLanguageTool(cfg.LanguageToolURL, cfg.LanguageToolLang, cfg.Timeout))
	}
	if cfg.DictionaryPath != "" {
		f, err := spell.NewFuzzy(cfg.DictionaryPath)
		if err != nil {
			log.Warn().Err(err).Str("dictionary", cfg.DictionaryPath).Msg("local spell model unavailable")
		} else {
			backends = append(backends, f)
		}
	}
	if len(backends) == 0 {
		log.Warn().Msg("no spell backend configured, text passes through uncorrected")
		return spell.Passthrough{}
	}

	chain := spell.NewChain(backends...)
	log.Info().Strs("backends", chain.Backends()).Msg("spelling correction ready")
	return chain
}

// s3RefsOf collects the s3:// refs among the given refs.
func s3RefsOf(refs ...string) []string {
	var out []string
	for _, ref := range refs {
		if ref != "" && source.KindOf(ref) == source.KindS3 {
			out = append(out, ref)
		}
	}
	return out
}

// runPreflight reports dependency readiness and exits non-zero when a hard
// requirement is missing.
func runPreflight(ctx context.Context, cfg cfgpkg.Config, s3Refs []string) {
	resolver := source.NewResolver(cfg.Source.HTTPTimeout, cfg.Source.S3Passphrase)
	checker := preflight.New(preflight.Options{
		OCRLanguage:     cfg.OCR.Language,
		LanguageToolURL: cfg.Spell.LanguageToolURL,
		FindFont:        typeset.FindFontIn(cfg.Output.FontPaths),
		S3Refs:          s3Refs,
		CheckS3:         resolver.HeadBucket,
	})
	sum := checker.Run(ctx)

	report := func(name string, s preflight.Status) {
		ev := log.Info()
		if !s.OK {
			ev = log.Error()
		}
		ev.Bool("ok", s.OK).Str("detail", s.Message).Msg(name)
	}
	report("tesseract", sum.Tesseract)
	report("languagetool", sum.LanguageTool)
	report("font", sum.Font)
	report("s3", sum.S3)

	if !sum.Ready() {
		os.Exit(1)
	}
}

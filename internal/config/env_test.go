package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	// Clear the inspected keys so an exported variable in the developer's
	// shell cannot shift the defaults.
	for _, key := range []string{
		"RENDER_DPI", "OCR_LANGUAGE", "LANGUAGETOOL_LANG",
		"OUTPUT_FONT_SIZE", "OUTPUT_FONT_PATHS", "AXIOM_DATASET",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	if cfg.Render.DPI != 300 {
		t.Errorf("default DPI = %d, want 300", cfg.Render.DPI)
	}
	if cfg.OCR.Language != "spa" {
		t.Errorf("default OCR language = %q, want spa", cfg.OCR.Language)
	}
	if cfg.Spell.LanguageToolLang != "es" {
		t.Errorf("default LanguageTool language = %q, want es", cfg.Spell.LanguageToolLang)
	}
	if cfg.Output.FontSize != 11 {
		t.Errorf("default font size = %v, want 11", cfg.Output.FontSize)
	}
	if len(cfg.Output.FontPaths) != 4 {
		t.Errorf("default font candidates = %d, want 4", len(cfg.Output.FontPaths))
	}
	if cfg.Axiom.Dataset != "dev_bookocr" {
		t.Errorf("default axiom dataset = %q", cfg.Axiom.Dataset)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("RENDER_DPI", "150")
	t.Setenv("RENDER_COLOR_MODE", "rgb")
	t.Setenv("OCR_LANGUAGE", "eng")
	t.Setenv("LANGUAGETOOL_URL", "http://localhost:8010/v2/check")
	t.Setenv("LANGUAGETOOL_TIMEOUT", "5s")
	t.Setenv("OUTPUT_FONT_PATHS", " a.ttf , b.ttf ,")
	t.Setenv("SPELL_DISABLE", "yes")

	cfg := FromEnv()

	if cfg.Render.DPI != 150 {
		t.Errorf("DPI = %d, want 150", cfg.Render.DPI)
	}
	if cfg.Render.ColorMode != "rgb" {
		t.Errorf("color mode = %q, want rgb", cfg.Render.ColorMode)
	}
	if cfg.OCR.Language != "eng" {
		t.Errorf("language = %q, want eng", cfg.OCR.Language)
	}
	if cfg.Spell.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.Spell.Timeout)
	}
	if !cfg.Spell.Disable {
		t.Error("spell disable not parsed")
	}
	want := []string{"a.ttf", "b.ttf"}
	if len(cfg.Output.FontPaths) != len(want) {
		t.Fatalf("font paths = %v, want %v", cfg.Output.FontPaths, want)
	}
	for i := range want {
		if cfg.Output.FontPaths[i] != want[i] {
			t.Errorf("font path %d = %q, want %q", i, cfg.Output.FontPaths[i], want[i])
		}
	}
}

func TestParseHelpers(t *testing.T) {
	if parseInt("garbage", 7) != 7 {
		t.Error("parseInt should fall back on bad input")
	}
	if parseDuration("nope", time.Second) != time.Second {
		t.Error("parseDuration should fall back on bad input")
	}
	for _, v := range []string{"1", "true", "YES", "on"} {
		if !parseBool(v) {
			t.Errorf("parseBool(%q) = false, want true", v)
		}
	}
	if parseBool("off") {
		t.Error("parseBool(off) = true, want false")
	}
}

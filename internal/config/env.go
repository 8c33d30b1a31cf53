package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom log forwarding configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// RenderConfig controls page rasterization.
type RenderConfig struct {
	DPI       int
	ColorMode string // "gray"|"rgb"
}

// OCRConfig controls the Tesseract engine.
type OCRConfig struct {
	Language    string
	PageSegMode int
}

// SpellConfig controls post-OCR spelling correction.
type SpellConfig struct {
	Disable          bool
	LanguageToolURL  string
	LanguageToolLang string
	Timeout          time.Duration
	DictionaryPath   string
}

// OutputConfig controls the typeset output PDF.
type OutputConfig struct {
	PageSize     string
	FontSize     float64
	MarginLeft   float64
	MarginRight  float64
	MarginTop    float64
	MarginBottom float64
	FontPaths    []string
}

// SourceConfig controls how input references are resolved.
type SourceConfig struct {
	HTTPTimeout  time.Duration
	S3Passphrase string
}

// MetricsConfig controls the optional metrics listener.
type MetricsConfig struct {
	Addr string
}

// Config is the top-level configuration.
type Config struct {
	Logging LoggingConfig
	Axiom   AxiomConfig
	Render  RenderConfig
	OCR     OCRConfig
	Spell   SpellConfig
	Output  OutputConfig
	Source  SourceConfig
	Metrics MetricsConfig
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", "logs/bookocr.log"),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_bookocr",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Render = RenderConfig{
		DPI:       parseInt(getEnv("RENDER_DPI", "300"), 300),
		ColorMode: getEnv("RENDER_COLOR_MODE", "gray"),
	}

	cfg.OCR = OCRConfig{
		Language:    getEnv("OCR_LANGUAGE", "spa"),
		PageSegMode: parseInt(getEnv("OCR_PAGE_SEG_MODE", "3"), 3),
	}

	cfg.Spell = SpellConfig{
		Disable:          parseBool(getEnv("SPELL_DISABLE", "0")),
		LanguageToolURL:  getEnv("LANGUAGETOOL_URL", ""),
		LanguageToolLang: getEnv("LANGUAGETOOL_LANG", "es"),
		Timeout:          parseDuration(getEnv("LANGUAGETOOL_TIMEOUT", "30s"), 30*time.Second),
		DictionaryPath:   getEnv("SPELL_DICTIONARY", ""),
	}

	cfg.Output = OutputConfig{
		PageSize:     getEnv("OUTPUT_PAGE_SIZE", "A4"),
		FontSize:     parseFloat(getEnv("OUTPUT_FONT_SIZE", "11"), 11),
		MarginLeft:   parseFloat(getEnv("OUTPUT_MARGIN_LEFT", "50"), 50),
		MarginRight:  parseFloat(getEnv("OUTPUT_MARGIN_RIGHT", "50"), 50),
		MarginTop:    parseFloat(getEnv("OUTPUT_MARGIN_TOP", "50"), 50),
		MarginBottom: parseFloat(getEnv("OUTPUT_MARGIN_BOTTOM", "50"), 50),
		FontPaths:    parseList(getEnv("OUTPUT_FONT_PATHS", defaultFontPaths)),
	}

	cfg.Source = SourceConfig{
		HTTPTimeout:  parseDuration(getEnv("SOURCE_HTTP_TIMEOUT", "60s"), 60*time.Second),
		S3Passphrase: getEnv("SOURCE_S3_PASSPHRASE", ""),
	}

	cfg.Metrics = MetricsConfig{
		Addr: getEnv("METRICS_ADDR", ""),
	}

	return cfg
}

// defaultFontPaths mirrors the usual Arial/DejaVu/FreeSans install locations.
const defaultFontPaths = "Arial.ttf," +
	"/usr/share/fonts/truetype/msttcorefonts/Arial.ttf," +
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf," +
	"/usr/share/fonts/truetype/freefont/FreeSans.ttf"

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func devDefaultPretty() string {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "dev" || env == "development" || env == "local" {
		return "true"
	}
	return "false"
}

// Package preflight checks the external pieces a run depends on before any
// page is touched: the Tesseract installation, the LanguageTool endpoint, a
// usable output font and, when the run touches s3:// refs, bucket access.
package preflight

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"time"
)

// Status represents the readiness of a dependency.
type Status struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Summary bundles all dependency statuses.
type Summary struct {
	Tesseract    Status `json:"tesseract"`
	LanguageTool Status `json:"languagetool"`
	Font         Status `json:"font"`
	S3           Status `json:"s3"`
}

// Options configures the Checker.
type Options struct {
	OCRLanguage     string
	LanguageToolURL string
	FindFont        func() (path, family string, ok bool)
	S3Refs          []string
	CheckS3         func(ctx context.Context, ref string) error
	HTTPClient      *http.Client
	LookPath        func(file string) (string, error)
}

// Checker runs the preflight checks.
type Checker struct {
	opts Options
}

// New creates a Checker.
func New(opts Options) *Checker {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	}
	if opts.LookPath == nil {
		opts.LookPath = exec.LookPath
	}
	return &Checker{opts: opts}
}

// Run executes all checks. It never fails; each status carries its own
// verdict.
func (c *Checker) Run(ctx context.Context) Summary {
	return Summary{
		Tesseract:    c.checkTesseract(),
		LanguageTool: c.checkLanguageTool(ctx),
		Font:         c.checkFont(),
		S3:           c.checkS3(ctx),
	}
}

// Ready reports whether the hard requirements are met. LanguageTool is soft:
// correction falls back without it. S3 is hard only when refs are given.
func (s Summary) Ready() bool {
	return s.Tesseract.OK && s.Font.OK && s.S3.OK
}

func (c *Checker) checkTesseract() Status {
	path, err := c.opts.LookPath("tesseract")
	if err != nil {
		return Status{Message: "tesseract binary not found in PATH"}
	}
	return Status{OK: true, Message: fmt.Sprintf("tesseract at %s (lang %s)", path, c.opts.OCRLanguage)}
}

func (c *Checker) checkLanguageTool(ctx context.Context) Status {
	if c.opts.LanguageToolURL == "" {
		return Status{OK: true, Message: "not configured, local correction only"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.LanguageToolURL, nil)
	if err != nil {
		return Status{Message: err.Error()}
	}
	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return Status{Message: fmt.Sprintf("unreachable: %v", err)}
	}
	resp.Body.Close()
	// Any HTTP answer means the server is there; /v2/check rejects GET
	// with 4xx on some versions.
	return Status{OK: true, Message: fmt.Sprintf("reachable (http %d)", resp.StatusCode)}
}

func (c *Checker) checkS3(ctx context.Context) Status {
	if len(c.opts.S3Refs) == 0 {
		return Status{OK: true, Message: "not configured"}
	}
	if c.opts.CheckS3 == nil {
		return Status{Message: "s3 refs given but no access check wired"}
	}
	for _, ref := range c.opts.S3Refs {
		if err := c.opts.CheckS3(ctx, ref); err != nil {
			return Status{Message: fmt.Sprintf("%s: %v", ref, err)}
		}
	}
	return Status{OK: true, Message: fmt.Sprintf("%d ref(s) accessible", len(c.opts.S3Refs))}
}

func (c *Checker) checkFont() Status {
	if c.opts.FindFont == nil {
		return Status{OK: true, Message: "built-in Helvetica"}
	}
	path, family, ok := c.opts.FindFont()
	if !ok {
		return Status{OK: true, Message: "no TrueType candidate found, will fall back to Helvetica"}
	}
	return Status{OK: true, Message: fmt.Sprintf("%s (%s)", family, path)}
}

package spell

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// LanguageTool corrects text through a LanguageTool server's /v2/check
// endpoint. Replacement offsets in the response are applied by rune.
type LanguageTool struct {
	http     *http.Client
	checkURL string
	lang     string
}

// NewLanguageTool builds a corrector for the given check endpoint, e.g.
// http://localhost:8010/v2/check, and language code ("es", "en-US", ...).
func NewLanguageTool(checkURL, lang string, timeout time.Duration) *LanguageTool {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LanguageTool{
		http:     &http.Client{Timeout: timeout},
		checkURL: checkURL,
		lang:     lang,
	}
}

func (lt *LanguageTool) Name() string { return "languagetool" }

type ltMatch struct {
	Offset       int `json:"offset"`
	Length       int `json:"length"`
	Replacements []struct {
		Value string `json:"value"`
	} `json:"replacements"`
}

type ltResponse struct {
	Matches []ltMatch `json:"matches"`
}

func (lt *LanguageTool) Correct(ctx context.Context, text string) (string, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("language", lt.lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, lt.checkURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := lt.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("languagetool request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("languagetool http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed ltResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("languagetool decode: %w", err)
	}

	return applyMatches(text, parsed.Matches), nil
}

// applyMatches replaces each matched span with its first suggestion.
// Matches without suggestions, out-of-range spans and overlaps with an
// already-applied match are skipped.
func applyMatches(text string, matches []ltMatch) string {
	if len(matches) == 0 {
		return text
	}

	runes := []rune(text)
	sorted := make([]ltMatch, len(matches))
	copy(sorted, matches)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	var b strings.Builder
	pos := 0
	for _, m := range sorted {
		if len(m.Replacements) == 0 || m.Length <= 0 {
			continue
		}
		if m.Offset < pos || m.Offset+m.Length > len(runes) {
			continue
		}
		b.WriteString(string(runes[pos:m.Offset]))
		b.WriteString(m.Replacements[0].Value)
		pos = m.Offset + m.Length
	}
	b.WriteString(string(runes[pos:]))
	return b.String()
}

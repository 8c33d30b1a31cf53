package spell

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/sajari/fuzzy"
)

// suggester is the slice of the fuzzy model the corrector needs.
type suggester interface {
	SpellCheck(word string) string
}

// Fuzzy corrects word by word against a frequency model trained from a
// plain-text dictionary (one or more words per line).
type Fuzzy struct {
	model suggester
}

// NewFuzzy loads the dictionary at path and trains the model. Training a
// large dictionary takes a moment, so build one Fuzzy per run.
func NewFuzzy(dictionaryPath string) (*Fuzzy, error) {
	data, err := os.ReadFile(dictionaryPath)
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}

	words := make([]string, 0, 1024)
	for _, w := range strings.Fields(string(data)) {
		if w = strings.ToLower(strings.TrimFunc(w, isNotLetterOrDigit)); w != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("dictionary %s contains no words", dictionaryPath)
	}

	model := fuzzy.NewModel()
	model.SetDepth(2)
	model.SetThreshold(1)
	model.Train(words)

	return &Fuzzy{model: model}, nil
}

func (f *Fuzzy) Name() string { return "fuzzy" }

// Correct fixes each word in place, preserving line breaks, adjacent
// punctuation and letter case.
func (f *Fuzzy) Correct(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		for j, tok := range tokens {
			tokens[j] = f.correctToken(tok)
		}
		lines[i] = strings.Join(tokens, " ")
	}
	return strings.Join(lines, "\n"), nil
}

func (f *Fuzzy) correctToken(tok string) string {
	prefix, core, suffix := peel(tok)
	if core == "" || !hasLetter(core) {
		return tok
	}

	sug := f.model.SpellCheck(strings.ToLower(core))
	if sug == "" || sug == strings.ToLower(core) {
		return tok
	}
	return prefix + matchCase(core, sug) + suffix
}

// peel splits leading and trailing punctuation off a token so the core word
// can be checked while quotes, commas etc. survive.
func peel(tok string) (prefix, core, suffix string) {
	runes := []rune(tok)
	start, end := 0, len(runes)
	for start < end && isNotLetterOrDigit(runes[start]) {
		start++
	}
	for end > start && isNotLetterOrDigit(runes[end-1]) {
		end--
	}
	return string(runes[:start]), string(runes[start:end]), string(runes[end:])
}

// matchCase shapes suggestion to the casing of the original word: all-caps
// stays all-caps, a capitalized word keeps its capital.
func matchCase(original, suggestion string) string {
	if original == strings.ToUpper(original) && len(original) > 1 {
		return strings.ToUpper(suggestion)
	}
	first := []rune(original)[0]
	if unicode.IsUpper(first) {
		sr := []rune(suggestion)
		sr[0] = unicode.ToUpper(sr[0])
		return string(sr)
	}
	return suggestion
}

func isNotLetterOrDigit(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

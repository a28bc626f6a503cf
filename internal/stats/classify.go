// Package stats implements the per-project statistics engine and the
// corpus-wide aggregation: token classification, single-pass project
// analysis, script/direction detection, and record merging.
package stats

import (
	"strings"
	"unicode"

	"github.com/FocuswithJustin/ScriptureStats/internal/usfm"
)

// Category is the closed set of statistical buckets a token element can
// land in.
type Category int

const (
	// CategoryMarker is a markup marker occurrence.
	CategoryMarker Category = iota
	// CategoryVerseBoundary is the start of a new verse.
	CategoryVerseBoundary
	// CategoryBookBoundary is the start of a new book (\id).
	CategoryBookBoundary
	// CategoryChapterBoundary is the start of a new chapter.
	CategoryChapterBoundary
	// CategoryText is free text, scanned into words and punctuation.
	CategoryText
)

// ClassifierConfig makes the edge rules explicit: whether the grave accent
// (U+0060, category Sk but widely used as a quotation mark) counts as
// punctuation, whether currency symbols (Sc) count as punctuation, and
// whether combining marks (M*) count as word characters.
type ClassifierConfig struct {
	GraveAsPunctuation    bool
	CurrencyAsPunctuation bool
	CombiningAsWord       bool
}

// DefaultClassifierConfig matches the historical counting behavior: grave
// accent is punctuation, currency symbols are neither word nor punctuation,
// combining marks belong to words.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		GraveAsPunctuation:    true,
		CurrencyAsPunctuation: false,
		CombiningAsWord:       true,
	}
}

// Classifier assigns token stream elements to statistical buckets. It is
// stateless: every method is pure and total.
type Classifier struct {
	cfg ClassifierConfig
}

// NewClassifier creates a classifier with the given configuration.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify maps a token to its category. Total: every token maps to exactly
// one category, and the same token always maps to the same category.
func (c *Classifier) Classify(tok usfm.Token) Category {
	switch tok.Type {
	case usfm.TokenText:
		return CategoryText
	case usfm.TokenBook:
		return CategoryBookBoundary
	case usfm.TokenChapter:
		return CategoryChapterBoundary
	case usfm.TokenVerse:
		return CategoryVerseBoundary
	default:
		return CategoryMarker
	}
}

// MarkerName renders a marker token as a counting key: the marker exactly
// as written in source text, with a leading backslash. Case is preserved.
func (c *Classifier) MarkerName(tok usfm.Token) string {
	return `\` + tok.Marker
}

// IsWordRune reports whether a rune belongs to a word: letters, connector
// punctuation, and (by default) combining marks. Decimal digits do not form
// words.
func (c *Classifier) IsWordRune(r rune) bool {
	if unicode.Is(unicode.Nd, r) {
		return false
	}
	if unicode.IsLetter(r) {
		return true
	}
	if unicode.Is(unicode.Pc, r) {
		return true
	}
	if c.cfg.CombiningAsWord && unicode.IsMark(r) {
		return true
	}
	return false
}

// IsPunctuationRune reports whether a rune counts as a punctuation symbol:
// general category P (Ps, Pe, Pi, Pf, Po, Pd, Pc), plus the configured
// additional symbols. Word runes take precedence during scanning, so Pc
// never reaches this check in practice.
func (c *Classifier) IsPunctuationRune(r rune) bool {
	if unicode.IsPunct(r) {
		return true
	}
	if c.cfg.GraveAsPunctuation && r == '`' {
		return true
	}
	if c.cfg.CurrencyAsPunctuation && unicode.Is(unicode.Sc, r) {
		return true
	}
	return false
}

// ScanText walks a text segment rune by rune, calling word for each
// completed word and punct for each punctuation symbol, in source order.
// A word ends at the first non-word rune. Words keep the exact form they
// carry in the source text, so "Word" and "word" are distinct.
func (c *Classifier) ScanText(text string, word func(string), punct func(rune)) {
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			word(b.String())
			b.Reset()
		}
	}
	for _, r := range text {
		if c.IsWordRune(r) {
			b.WriteRune(r)
			continue
		}
		flush()
		if c.IsPunctuationRune(r) {
			punct(r)
		}
	}
	flush()
}

package usfm

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Style describes one marker definition from a .sty stylesheet.
type Style struct {
	Marker    string
	Endmarker string
	// TextType is the stylesheet text classification:
	// "VerseText", "NoteText", "Title", "Section", "Other".
	TextType string
	// StyleType is the structural classification:
	// "Paragraph", "Character", "Note", "Milestone".
	StyleType string
	OccursUnder []string
}

// Stylesheet maps marker names to their definitions.
type Stylesheet struct {
	styles map[string]*Style
}

// styEntry is one backslash-tagged line of a .sty file.
//
//nolint:govet // participle grammar tags are not standard struct tags
type styEntry struct {
	Tag   string `parser:"@Tag"`
	Value string `parser:"@Value?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type styFile struct {
	Entries []styEntry `parser:"@@*"`
}

// styLexer tokenizes .sty files: backslash tags, rest-of-line values,
// # comments.
var styLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\r\n]*`},
	{Name: "Tag", Pattern: `\\[A-Za-z0-9\-]+\*?`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "Newline", Pattern: `[\r\n]+`},
	{Name: "Value", Pattern: `[^\\#\r\n][^\r\n]*`},
})

var styParser = participle.MustBuild[styFile](
	participle.Lexer(styLexer),
	participle.Elide("Whitespace", "Newline", "Comment"),
)

// ParseStylesheet parses .sty stylesheet data. Unknown tags are tolerated;
// only the tags the tokenizer needs are retained.
func ParseStylesheet(data []byte) (*Stylesheet, error) {
	parsed, err := styParser.ParseBytes("", data)
	if err != nil {
		return nil, fmt.Errorf("invalid stylesheet: %w", err)
	}

	sheet := &Stylesheet{styles: make(map[string]*Style)}
	var current *Style
	for _, e := range parsed.Entries {
		tag := strings.TrimPrefix(e.Tag, `\`)
		value := strings.TrimSpace(e.Value)
		switch strings.ToLower(tag) {
		case "marker":
			if value == "" {
				return nil, fmt.Errorf("invalid stylesheet: \\Marker without a name")
			}
			current = &Style{Marker: value}
			sheet.styles[value] = current
		case "endmarker":
			if current != nil {
				current.Endmarker = value
			}
		case "texttype":
			if current != nil {
				current.TextType = value
			}
		case "styletype":
			if current != nil {
				current.StyleType = value
			}
		case "occursunder":
			if current != nil {
				current.OccursUnder = strings.Fields(value)
			}
		}
	}
	return sheet, nil
}

// ParseStylesheetFile reads and parses a .sty file.
func ParseStylesheetFile(path string) (*Stylesheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stylesheet %s: %w", path, err)
	}
	return ParseStylesheet(data)
}

// Get returns the definition for a marker name, without its leading backslash.
// Numbered variants fall back to their base marker (\q falls back for \q9).
func (s *Stylesheet) Get(marker string) (*Style, bool) {
	if st, ok := s.styles[marker]; ok {
		return st, true
	}
	// \q1..\q9 style numbered markers share the base definition
	base := strings.TrimRight(marker, "0123456789")
	if base != marker && base != "" {
		if st, ok := s.styles[base]; ok {
			return st, true
		}
	}
	return nil, false
}

// Len returns the number of marker definitions.
func (s *Stylesheet) Len() int {
	return len(s.styles)
}

// Merge overlays other's definitions onto a copy of s. Used to apply a
// project's custom.sty on top of the default stylesheet.
func (s *Stylesheet) Merge(other *Stylesheet) *Stylesheet {
	merged := &Stylesheet{styles: make(map[string]*Style, len(s.styles)+len(other.styles))}
	for k, v := range s.styles {
		merged.styles[k] = v
	}
	for k, v := range other.styles {
		merged.styles[k] = v
	}
	return merged
}

//go:embed usfm.sty
var defaultSty []byte

var (
	defaultSheet     *Stylesheet
	defaultSheetOnce sync.Once
)

// DefaultStylesheet returns the embedded usfm.sty definitions. The embedded
// stylesheet is part of the build, so a parse failure is a programmer error.
func DefaultStylesheet() *Stylesheet {
	defaultSheetOnce.Do(func() {
		sheet, err := ParseStylesheet(defaultSty)
		if err != nil {
			panic(fmt.Sprintf("embedded usfm.sty: %v", err))
		}
		defaultSheet = sheet
	})
	return defaultSheet
}

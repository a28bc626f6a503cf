// Package usfm provides a streaming tokenizer for USFM/SFM scripture text and
// a parser for the .sty stylesheet files that drive marker typing.
package usfm

// TokenType identifies the structural role of a token in the marker stream.
type TokenType int

const (
	// TokenText is free text between markers.
	TokenText TokenType = iota
	// TokenBook is an \id marker; Data carries the book code.
	TokenBook
	// TokenChapter is a \c marker; Data carries the chapter number.
	TokenChapter
	// TokenVerse is a \v marker; Data carries the verse number or range.
	TokenVerse
	// TokenParagraph is a paragraph-level marker (\p, \q1, \s1, ...).
	TokenParagraph
	// TokenCharacter is an inline character-style marker (\nd, \wj, \add, ...).
	TokenCharacter
	// TokenNote is a note marker (\f, \x, ...); note bodies are not scripture text.
	TokenNote
	// TokenEnd is a closing marker (\f*, \nd*, ...).
	TokenEnd
	// TokenMilestone is a standalone milestone marker (\ts-s, \qt-s, ...).
	TokenMilestone
	// TokenUnknown is a marker absent from the stylesheet.
	TokenUnknown
)

// String returns the token type name for diagnostics.
func (t TokenType) String() string {
	switch t {
	case TokenText:
		return "text"
	case TokenBook:
		return "book"
	case TokenChapter:
		return "chapter"
	case TokenVerse:
		return "verse"
	case TokenParagraph:
		return "paragraph"
	case TokenCharacter:
		return "character"
	case TokenNote:
		return "note"
	case TokenEnd:
		return "end"
	case TokenMilestone:
		return "milestone"
	default:
		return "unknown"
	}
}

// Token is one element of the marker stream. Tokens are immutable values
// produced lazily by the Tokenizer and consumed exactly once per occurrence.
type Token struct {
	Type   TokenType
	Marker string // marker name without the leading backslash ("id", "v", "p")
	Data   string // marker payload: book code, chapter/verse number
	Text   string // free text content for TokenText
	Line   int    // 1-based source line
}

// IsMarker reports whether the token is a marker occurrence rather than text.
func (t Token) IsMarker() bool {
	return t.Type != TokenText
}

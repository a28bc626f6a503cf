package usfm

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// markerRegex matches a backslash marker occurrence, including numbered
// variants, milestone names, and closing markers (\nd*).
var markerRegex = regexp.MustCompile(`\\([a-zA-Z0-9\-]+\*?)`)

// Tokenizer streams typed tokens from USFM/SFM text. Tokens are produced
// lazily, one line at a time; a marker's free-text payload follows it as a
// separate TokenText.
type Tokenizer struct {
	sheet   *Stylesheet
	scanner *bufio.Scanner
	line    int
	queue   []Token
	done    bool
}

// NewTokenizer creates a tokenizer over r. A nil sheet selects the embedded
// default stylesheet.
func NewTokenizer(r io.Reader, sheet *Stylesheet) *Tokenizer {
	if sheet == nil {
		sheet = DefaultStylesheet()
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Tokenizer{sheet: sheet, scanner: sc}
}

// Next returns the next token in the stream, or io.EOF when the stream is
// exhausted. Any other error means the underlying reader failed.
func (t *Tokenizer) Next() (Token, error) {
	for len(t.queue) == 0 {
		if t.done {
			return Token{}, io.EOF
		}
		if !t.scanner.Scan() {
			t.done = true
			if err := t.scanner.Err(); err != nil {
				return Token{}, fmt.Errorf("reading line %d: %w", t.line+1, err)
			}
			return Token{}, io.EOF
		}
		t.line++
		line := t.scanner.Text()
		if t.line == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}
		t.tokenizeLine(line)
	}
	tok := t.queue[0]
	t.queue = t.queue[1:]
	return tok, nil
}

// tokenizeLine splits one source line into marker and text tokens and
// appends them to the queue.
func (t *Tokenizer) tokenizeLine(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	locs := markerRegex.FindAllStringSubmatchIndex(line, -1)
	if len(locs) == 0 {
		t.pushText(line)
		return
	}

	if lead := line[:locs[0][0]]; strings.TrimSpace(lead) != "" {
		t.pushText(lead)
	}

	for i, loc := range locs {
		name := line[loc[2]:loc[3]]
		end := len(line)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		remainder := line[loc[1]:end]

		if strings.HasSuffix(name, "*") {
			t.queue = append(t.queue, Token{
				Type:   TokenEnd,
				Marker: strings.TrimSuffix(name, "*"),
				Line:   t.line,
			})
			t.pushText(remainder)
			continue
		}

		tok := Token{Type: t.typeFor(name), Marker: name, Line: t.line}
		switch tok.Type {
		case TokenBook, TokenChapter, TokenVerse:
			// The first field is the payload: book code, chapter number,
			// or verse number/range. The rest is free text.
			payload, rest := splitPayload(remainder)
			tok.Data = payload
			if tok.Type == TokenBook {
				tok.Data = strings.ToUpper(tok.Data)
			}
			t.queue = append(t.queue, tok)
			t.pushText(rest)
		default:
			t.queue = append(t.queue, tok)
			t.pushText(remainder)
		}
	}
}

func (t *Tokenizer) pushText(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	t.queue = append(t.queue, Token{Type: TokenText, Text: s, Line: t.line})
}

// typeFor maps a marker name to its token type using the stylesheet.
// \id, \c and \v are structural regardless of stylesheet content.
func (t *Tokenizer) typeFor(name string) TokenType {
	switch name {
	case "id":
		return TokenBook
	case "c":
		return TokenChapter
	case "v":
		return TokenVerse
	}
	st, ok := t.sheet.Get(name)
	if !ok {
		return TokenUnknown
	}
	switch st.StyleType {
	case "Note":
		return TokenNote
	case "Character":
		return TokenCharacter
	case "Milestone":
		return TokenMilestone
	default:
		return TokenParagraph
	}
}

// splitPayload splits a marker remainder into its first whitespace-delimited
// field and the rest.
func splitPayload(s string) (payload, rest string) {
	s = strings.TrimLeft(s, " \t")
	if s == "" {
		return "", ""
	}
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

// Tokenize reads the full stream from r and returns all tokens. Intended for
// tests and small inputs; the analyzer consumes the stream incrementally.
func Tokenize(r io.Reader, sheet *Stylesheet) ([]Token, error) {
	tk := NewTokenizer(r, sheet)
	var out []Token
	for {
		tok, err := tk.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
}

package stats

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/FocuswithJustin/ScriptureStats/core/errors"
	"github.com/FocuswithJustin/ScriptureStats/internal/canon"
	"github.com/FocuswithJustin/ScriptureStats/internal/logging"
	"github.com/FocuswithJustin/ScriptureStats/internal/paratext"
	"github.com/FocuswithJustin/ScriptureStats/internal/usfm"
)

// Config controls one analyzer's behavior. The same Config is shared by all
// workers of a run.
type Config struct {
	// NWords is how many shortest/longest word forms to report. Must be >= 1;
	// validated at configuration time, defaulted here as a safety net.
	NWords int
	// BookFilter restricts counting to the listed books. Empty means all.
	BookFilter canon.Set
	// Classifier holds the word/punctuation edge rules.
	Classifier ClassifierConfig
}

// Analyzer computes a ProjectRecord from one project's token stream in a
// single pass. Analyzer is stateless across projects and safe for
// concurrent use by multiple workers.
type Analyzer struct {
	cfg        Config
	classifier *Classifier
	log        *slog.Logger
}

// NewAnalyzer creates an analyzer for the given configuration.
func NewAnalyzer(cfg Config) *Analyzer {
	if cfg.NWords < 1 {
		cfg.NWords = 10
	}
	return &Analyzer{
		cfg:        cfg,
		classifier: NewClassifier(cfg.Classifier),
		log:        logging.Component("analyzer"),
	}
}

// passState is the mutable state of one project's counting pass.
type passState struct {
	book    string // current accepted book code, "" when outside one
	inVerse bool   // inside verse text (after \v, before a structural reset)
	inNote  bool   // inside a note body (\f ... \f*)
	wordSeq int    // running first-seen sequence for word forms
	sample  []rune // word-forming runes collected for script detection

	extremes *extremeTracker
}

// Analyze runs the full single-pass analysis of one project and always
// returns a record: failures are converted to StatusFailed, never raised.
func (a *Analyzer) Analyze(p *paratext.Project) (rec *ProjectRecord) {
	rec = NewProjectRecord(p.ID, p.Path)
	defer func() {
		if r := recover(); r != nil {
			rec.Fail(fmt.Sprintf("analysis panic: %v", r))
		}
	}()

	rec.HasCustomSty = p.HasCustomSty()

	settings, err := p.Settings()
	if err != nil {
		rec.Warn(fmt.Sprintf("settings unreadable: %v", err))
		settings = nil
	} else if settings.LanguageCode != "" {
		rec.LanguageCode = settings.LanguageCode
	} else {
		rec.Warn("language code missing from settings")
	}

	sheet := usfm.DefaultStylesheet()
	if rec.HasCustomSty {
		custom, err := usfm.ParseStylesheetFile(p.CustomStyPath())
		if err != nil {
			rec.Warn(fmt.Sprintf("custom.sty ignored: %v", err))
		} else {
			sheet = sheet.Merge(custom)
		}
	}

	files, failReason := a.selectFiles(p, settings, rec)
	if failReason != "" {
		return rec.Fail(failReason)
	}

	if digest, err := paratext.DigestSources(files); err != nil {
		rec.Warn(fmt.Sprintf("source digest unavailable: %v", err))
	} else {
		rec.SourceDigest = digest
	}

	state := &passState{extremes: newExtremeTracker(a.cfg.NWords)}
	books := make(map[string]bool)
	for _, f := range files {
		if err := a.analyzeFile(f, sheet, state, books, rec); err != nil {
			return rec.Fail(errors.NewProject(p.ID, "tokenize", err).Error())
		}
	}

	for code := range books {
		rec.Books = append(rec.Books, code)
	}
	canon.SortCodes(rec.Books)
	if len(rec.Books) == 0 {
		rec.Warn("source files found, but no book identifiers processed")
	}

	rec.Script, rec.Direction = Detect(settings, state.sample)
	rec.Shortest = state.extremes.shortestN()
	rec.Longest = state.extremes.longestN()
	a.log.Debug("project analyzed",
		"project", p.ID,
		"books", len(rec.Books),
		"verses", rec.Verses,
		"word_forms", len(rec.Words))
	return rec
}

// selectFiles chooses which source files to process. With an active book
// filter and a usable naming scheme, only the filtered books' expected
// files are read; otherwise every source file is.
func (a *Analyzer) selectFiles(p *paratext.Project, settings *paratext.Settings, rec *ProjectRecord) ([]string, string) {
	if !a.cfg.BookFilter.Empty() && settings != nil && settings.Naming.BookNameForm != "" {
		var files []string
		for _, code := range a.cfg.BookFilter.Codes() {
			name, err := settings.BookFileName(code)
			if err != nil {
				rec.Warn(fmt.Sprintf("no file name for book %s: %v", code, err))
				continue
			}
			path := filepath.Join(p.Path, name)
			switch {
			case fileExists(path):
				files = append(files, path)
			case fileExists(path + ".xz"):
				files = append(files, path+".xz")
			default:
				rec.Warn(fmt.Sprintf("expected file %s for book %s not found", name, code))
			}
		}
		if len(files) == 0 {
			return nil, "no source files matched the book filter"
		}
		return files, ""
	}

	files, err := p.SourceFiles()
	if err != nil {
		return nil, err.Error()
	}
	if len(files) == 0 {
		return nil, "no source files found in project"
	}
	return files, ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// analyzeFile streams one source file through the tokenizer into the
// counters. Book and verse state do not carry across files.
func (a *Analyzer) analyzeFile(path string, sheet *usfm.Stylesheet, state *passState, books map[string]bool, rec *ProjectRecord) error {
	rc, err := paratext.OpenSource(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	state.book = ""
	state.inVerse = false
	state.inNote = false

	tk := usfm.NewTokenizer(rc, sheet)
	for {
		tok, err := tk.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		a.consume(tok, sheet, state, books, rec)
	}
}

// consume routes one token to its statistical bucket. Within a project the
// stream order is meaning-bearing: verse boundaries gate which later tokens
// count, and a filtered-out book's region contributes to nothing.
func (a *Analyzer) consume(tok usfm.Token, sheet *usfm.Stylesheet, state *passState, books map[string]bool, rec *ProjectRecord) {
	switch a.classifier.Classify(tok) {
	case CategoryBookBoundary:
		state.inVerse = false
		state.inNote = false
		code := tok.Data
		if code == "" || !canon.IsCanonical(code) || !a.cfg.BookFilter.Has(code) {
			// The whole \id block is skipped: no marker, word, punctuation,
			// or verse from it counts.
			state.book = ""
			return
		}
		state.book = code
		books[code] = true
		a.addMarker(rec, tok, state.book)

	case CategoryChapterBoundary:
		state.inVerse = false
		state.inNote = false
		if state.book != "" {
			a.addMarker(rec, tok, state.book)
		}

	case CategoryVerseBoundary:
		if state.book == "" {
			return
		}
		state.inVerse = true
		state.inNote = false
		rec.Verses++
		rec.VersesByBook[state.book]++
		a.addMarker(rec, tok, state.book)

	case CategoryMarker:
		if tok.Type == usfm.TokenEnd {
			// Closing markers are not counted; a note's closer resumes
			// verse text.
			if state.inNote && isNoteMarker(sheet, tok.Marker) {
				state.inNote = false
			}
			return
		}
		if tok.Type == usfm.TokenNote {
			state.inNote = true
		}
		if state.book != "" {
			a.addMarker(rec, tok, state.book)
		}

	case CategoryText:
		if state.book == "" || !state.inVerse || state.inNote {
			return
		}
		a.scanVerseText(tok.Text, state, rec)
	}
}

// scanVerseText feeds a verse text segment into the word and punctuation
// counters and the script detection sample.
func (a *Analyzer) scanVerseText(text string, state *passState, rec *ProjectRecord) {
	for _, r := range text {
		if len(state.sample) >= ScriptSampleSize {
			break
		}
		if a.classifier.IsWordRune(r) {
			state.sample = append(state.sample, r)
		}
	}

	a.classifier.ScanText(text,
		func(w string) {
			state.wordSeq++
			wf, ok := rec.Words[w]
			if !ok {
				length := utf8.RuneCountInString(w)
				wf = WordForm{Length: length, FirstSeen: state.wordSeq}
				state.extremes.add(w, length, state.wordSeq)
			}
			wf.Count++
			rec.Words[w] = wf
		},
		func(r rune) {
			sym := string(r)
			rec.Punctuation[sym]++
			name := PunctuationName(sym)
			byBook := rec.PunctuationByBook[name]
			if byBook == nil {
				byBook = make(map[string]int)
				rec.PunctuationByBook[name] = byBook
			}
			byBook[state.book]++
		})
}

// addMarker counts one marker occurrence project-wide and per book.
func (a *Analyzer) addMarker(rec *ProjectRecord, tok usfm.Token, book string) {
	name := a.classifier.MarkerName(tok)
	rec.Markers[name]++
	byBook := rec.MarkersByBook[name]
	if byBook == nil {
		byBook = make(map[string]int)
		rec.MarkersByBook[name] = byBook
	}
	byBook[book]++
}

// isNoteMarker reports whether a marker closes a note per the stylesheet.
func isNoteMarker(sheet *usfm.Stylesheet, marker string) bool {
	st, ok := sheet.Get(marker)
	return ok && st.StyleType == "Note"
}

// extremeTracker maintains bounded candidate sets for the N shortest and N
// longest distinct word forms. Candidates are capped at 2N during the pass
// and trimmed to N at the end; distinct forms are inserted once, at first
// sight.
type extremeTracker struct {
	n         int
	shortest  []WordExtreme // ascending by (length, first-seen)
	longest   []WordExtreme // descending by length, ascending first-seen
	firstSeen map[string]int
}

func newExtremeTracker(n int) *extremeTracker {
	return &extremeTracker{n: n, firstSeen: make(map[string]int)}
}

func (t *extremeTracker) add(word string, length, firstSeen int) {
	t.firstSeen[word] = firstSeen
	cap2 := 2 * t.n

	i := sort.Search(len(t.shortest), func(i int) bool {
		e := t.shortest[i]
		if e.Length != length {
			return e.Length > length
		}
		return t.firstSeen[e.Word] > firstSeen
	})
	if i < cap2 {
		t.shortest = insertExtreme(t.shortest, i, WordExtreme{Word: word, Length: length}, cap2)
	}

	j := sort.Search(len(t.longest), func(i int) bool {
		e := t.longest[i]
		if e.Length != length {
			return e.Length < length
		}
		return t.firstSeen[e.Word] > firstSeen
	})
	if j < cap2 {
		t.longest = insertExtreme(t.longest, j, WordExtreme{Word: word, Length: length}, cap2)
	}
}

func insertExtreme(s []WordExtreme, i int, e WordExtreme, cap2 int) []WordExtreme {
	s = append(s, WordExtreme{})
	copy(s[i+1:], s[i:])
	s[i] = e
	if len(s) > cap2 {
		s = s[:cap2]
	}
	return s
}

func (t *extremeTracker) shortestN() []WordExtreme {
	return trimExtremes(t.shortest, t.n)
}

func (t *extremeTracker) longestN() []WordExtreme {
	return trimExtremes(t.longest, t.n)
}

func trimExtremes(s []WordExtreme, n int) []WordExtreme {
	if len(s) > n {
		s = s[:n]
	}
	out := make([]WordExtreme, len(s))
	copy(out, s)
	return out
}

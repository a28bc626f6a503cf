package stats

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/FocuswithJustin/ScriptureStats/internal/canon"
	"github.com/FocuswithJustin/ScriptureStats/internal/paratext"
)

const testSettings = `<ScriptureText>
  <Name>Alpha</Name>
  <FullName>Alpha Translation</FullName>
  <LanguageIsoCode>abc:::</LanguageIsoCode>
  <LeftToRight>T</LeftToRight>
  <Naming PrePart="" PostPart=".SFM" BookNameForm="41MAT"/>
</ScriptureText>`

const testMatthew = `\id MAT Gospel of Matthew
\h Matthew
\mt1 Matthew
\c 1
\s1 Heading words here
\p
\v 1 In the beginning was the word, the word was good.
\v 2 Second verse text \f + \fr 1:2 \ft footnote words\f* after note.
\q1 poetry line continues verse two
\c 2
\p
\v 1 Chapter two opens.
`

func writeStatsProject(t *testing.T, files map[string]string) *paratext.Project {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return &paratext.Project{ID: filepath.Base(dir), Path: dir}
}

func TestAnalyze(t *testing.T) {
	p := writeStatsProject(t, map[string]string{
		"Settings.xml": testSettings,
		"41MAT.SFM":    testMatthew,
	})
	rec := NewAnalyzer(Config{NWords: 10, Classifier: DefaultClassifierConfig()}).Analyze(p)

	if rec.Status != StatusOk {
		t.Fatalf("Status = %q (reason %q), want ok", rec.Status, rec.Reason)
	}
	if !reflect.DeepEqual(rec.Books, []string{"MAT"}) {
		t.Errorf("Books = %v, want [MAT]", rec.Books)
	}
	if rec.Verses != 3 || rec.VersesByBook["MAT"] != 3 {
		t.Errorf("Verses = %d (MAT %d), want 3", rec.Verses, rec.VersesByBook["MAT"])
	}

	wantMarkers := map[string]int{
		`\id`: 1, `\h`: 1, `\mt1`: 1, `\c`: 2, `\s1`: 1, `\p`: 2,
		`\v`: 3, `\f`: 1, `\fr`: 1, `\ft`: 1, `\q1`: 1,
	}
	for m, n := range wantMarkers {
		if rec.Markers[m] != n {
			t.Errorf("Markers[%s] = %d, want %d", m, rec.Markers[m], n)
		}
	}
	if rec.MarkersByBook[`\v`]["MAT"] != 3 {
		t.Errorf("MarkersByBook[\\v][MAT] = %d, want 3", rec.MarkersByBook[`\v`]["MAT"])
	}

	// Word forms keep their source casing; heading and footnote text never
	// count.
	if got := rec.Words["the"].Count; got != 3 {
		t.Errorf("Words[the] = %d, want 3", got)
	}
	if got := rec.Words["In"].Count; got != 1 {
		t.Errorf("Words[In] = %d, want 1", got)
	}
	if got := rec.Words["two"].Count; got != 2 {
		t.Errorf("Words[two] = %d, want 2", got)
	}
	for _, absent := range []string{"Heading", "footnote", "Matthew", "in"} {
		if _, ok := rec.Words[absent]; ok {
			t.Errorf("Words contains %q, want absent", absent)
		}
	}
	// Verse text resumes after the footnote closes.
	if got := rec.Words["after"].Count; got != 1 {
		t.Errorf("Words[after] = %d, want 1", got)
	}

	if rec.Punctuation[","] != 1 || rec.Punctuation["."] != 3 {
		t.Errorf("Punctuation = %v, want 1 comma and 3 full stops", rec.Punctuation)
	}
	if rec.PunctuationByBook["FULL STOP"]["MAT"] != 3 {
		t.Errorf("PunctuationByBook[FULL STOP][MAT] = %d, want 3",
			rec.PunctuationByBook["FULL STOP"]["MAT"])
	}

	if rec.LanguageCode != "abc" {
		t.Errorf("LanguageCode = %q, want abc", rec.LanguageCode)
	}
	if rec.Script != "Latin" || rec.Direction != "LTR" {
		t.Errorf("script/direction = %q/%q, want Latin/LTR", rec.Script, rec.Direction)
	}
	if len(rec.SourceDigest) != 64 {
		t.Errorf("SourceDigest = %q, want 64 hex chars", rec.SourceDigest)
	}
}

func TestAnalyzeBookFilterByFileName(t *testing.T) {
	filter, unknown := canon.ParseSet("MAT")
	if len(unknown) != 0 {
		t.Fatalf("unexpected unknown codes %v", unknown)
	}
	p := writeStatsProject(t, map[string]string{
		"Settings.xml": testSettings,
		"41MAT.SFM":    testMatthew,
		"01GEN.SFM":    "\\id GEN\n\\c 1\n\\p\n\\v 1 Genesis opening words.\n",
	})
	rec := NewAnalyzer(Config{NWords: 10, BookFilter: filter, Classifier: DefaultClassifierConfig()}).Analyze(p)

	if rec.Status != StatusOk {
		t.Fatalf("Status = %q (reason %q), want ok", rec.Status, rec.Reason)
	}
	if !reflect.DeepEqual(rec.Books, []string{"MAT"}) {
		t.Errorf("Books = %v, want [MAT]", rec.Books)
	}
	if _, ok := rec.Words["Genesis"]; ok {
		t.Error("filtered-out book contributed words")
	}
	if rec.VersesByBook["GEN"] != 0 || rec.Verses != 3 {
		t.Errorf("verse counts leaked from filtered book: %v", rec.VersesByBook)
	}
}

func TestAnalyzeBookFilterByContent(t *testing.T) {
	// Without a naming scheme every file is read, and the book context
	// inside the stream decides what counts.
	filter, _ := canon.ParseSet("MAT")
	p := writeStatsProject(t, map[string]string{
		"Settings.xml": "<ScriptureText><Name>Alpha</Name><LanguageIsoCode>abc:::</LanguageIsoCode></ScriptureText>",
		"mat.sfm":      testMatthew,
		"gen.sfm":      "\\id GEN\n\\c 1\n\\p\n\\v 1 Genesis opening words.\n",
	})
	rec := NewAnalyzer(Config{NWords: 10, BookFilter: filter, Classifier: DefaultClassifierConfig()}).Analyze(p)

	if rec.Status != StatusOk {
		t.Fatalf("Status = %q (reason %q), want ok", rec.Status, rec.Reason)
	}
	if !reflect.DeepEqual(rec.Books, []string{"MAT"}) {
		t.Errorf("Books = %v, want [MAT]", rec.Books)
	}
	if rec.Markers[`\id`] != 1 {
		t.Errorf("Markers[\\id] = %d, want 1: filtered book's id counted", rec.Markers[`\id`])
	}
	if _, ok := rec.Words["Genesis"]; ok {
		t.Error("filtered-out book contributed words")
	}
	if rec.Verses != 3 {
		t.Errorf("Verses = %d, want 3", rec.Verses)
	}
}

func TestAnalyzeNonCanonicalBookSkipped(t *testing.T) {
	p := writeStatsProject(t, map[string]string{
		"Settings.xml": testSettings,
		"99XXA.SFM":    "\\id XXA Extra material\n\\c 1\n\\p\n\\v 1 Not scripture text.\n",
	})
	rec := NewAnalyzer(Config{NWords: 10, Classifier: DefaultClassifierConfig()}).Analyze(p)

	if rec.Status != StatusOk {
		t.Fatalf("Status = %q, want ok", rec.Status)
	}
	if len(rec.Books) != 0 || rec.Verses != 0 || len(rec.Words) != 0 || len(rec.Markers) != 0 {
		t.Errorf("non-canonical book contributed counts: books=%v verses=%d", rec.Books, rec.Verses)
	}
	if len(rec.Warnings) == 0 {
		t.Error("expected a warning about no processed book identifiers")
	}
}

func TestAnalyzeNoSourceFiles(t *testing.T) {
	p := writeStatsProject(t, map[string]string{"Settings.xml": testSettings})
	rec := NewAnalyzer(Config{NWords: 10, Classifier: DefaultClassifierConfig()}).Analyze(p)

	if rec.Status != StatusFailed {
		t.Fatalf("Status = %q, want failed", rec.Status)
	}
	if rec.Reason == "" {
		t.Error("failed record carries no reason")
	}
}

func TestAnalyzeMissingSettingsIsWarning(t *testing.T) {
	p := writeStatsProject(t, map[string]string{
		"mat.sfm": "\\id MAT\n\\c 1\n\\p\n\\v 1 Short verse text.\n",
	})
	rec := NewAnalyzer(Config{NWords: 10, Classifier: DefaultClassifierConfig()}).Analyze(p)

	if rec.Status != StatusOk {
		t.Fatalf("Status = %q (reason %q), want ok", rec.Status, rec.Reason)
	}
	if len(rec.Warnings) == 0 {
		t.Error("expected a settings warning")
	}
	if rec.LanguageCode != "Unknown" {
		t.Errorf("LanguageCode = %q, want Unknown", rec.LanguageCode)
	}
	if rec.Verses != 1 {
		t.Errorf("Verses = %d, want 1", rec.Verses)
	}
}

func TestAnalyzeExtremes(t *testing.T) {
	p := writeStatsProject(t, map[string]string{
		"Settings.xml": testSettings,
		"41MAT.SFM":    "\\id MAT\n\\c 1\n\\p\n\\v 1 a bb ccc dddd eeeee\n",
	})
	rec := NewAnalyzer(Config{NWords: 2, Classifier: DefaultClassifierConfig()}).Analyze(p)

	wantShort := []WordExtreme{{Word: "a", Length: 1}, {Word: "bb", Length: 2}}
	if !reflect.DeepEqual(rec.Shortest, wantShort) {
		t.Errorf("Shortest = %v, want %v", rec.Shortest, wantShort)
	}
	wantLong := []WordExtreme{{Word: "eeeee", Length: 5}, {Word: "dddd", Length: 4}}
	if !reflect.DeepEqual(rec.Longest, wantLong) {
		t.Errorf("Longest = %v, want %v", rec.Longest, wantLong)
	}
}

func TestAnalyzeExtremesFirstSeenTies(t *testing.T) {
	p := writeStatsProject(t, map[string]string{
		"Settings.xml": testSettings,
		"41MAT.SFM":    "\\id MAT\n\\c 1\n\\p\n\\v 1 bb aa cc\n",
	})
	rec := NewAnalyzer(Config{NWords: 1, Classifier: DefaultClassifierConfig()}).Analyze(p)

	if len(rec.Shortest) != 1 || rec.Shortest[0].Word != "bb" {
		t.Errorf("Shortest = %v, want the first-seen form bb", rec.Shortest)
	}
	if len(rec.Longest) != 1 || rec.Longest[0].Word != "bb" {
		t.Errorf("Longest = %v, want the first-seen form bb", rec.Longest)
	}
}

func TestAnalyzeCustomStylesheet(t *testing.T) {
	custom := `\Marker zfoo
\Endmarker zfoo*
\TextType NoteText
\StyleType Note
`
	p := writeStatsProject(t, map[string]string{
		"Settings.xml": testSettings,
		"custom.sty":   custom,
		"41MAT.SFM":    "\\id MAT\n\\c 1\n\\p\n\\v 1 start \\zfoo hidden gloss\\zfoo* end\n",
	})
	rec := NewAnalyzer(Config{NWords: 10, Classifier: DefaultClassifierConfig()}).Analyze(p)

	if !rec.HasCustomSty {
		t.Fatal("HasCustomSty = false, want true")
	}
	if _, ok := rec.Words["hidden"]; ok {
		t.Error("custom note marker's text counted as verse text")
	}
	if _, ok := rec.Words["end"]; !ok {
		t.Error("verse text after custom note end missing")
	}
	if rec.Markers[`\zfoo`] != 1 {
		t.Errorf("Markers[\\zfoo] = %d, want 1", rec.Markers[`\zfoo`])
	}
}

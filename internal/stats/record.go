package stats

import (
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/runenames"
)

// Status is the processing outcome of one project in a run.
type Status string

const (
	// StatusOk means the project was analyzed successfully.
	StatusOk Status = "ok"
	// StatusSkipped means a prior report exists and force was not set.
	StatusSkipped Status = "skipped"
	// StatusFailed means analysis failed; the reason travels with the record.
	StatusFailed Status = "failed"
)

// WordForm is the per-project information kept for one distinct word form.
// FirstSeen is the sequence number of the word's first occurrence in the
// project, used to break length ties deterministically.
type WordForm struct {
	Count     int
	Length    int // code points
	FirstSeen int
}

// WordExtreme is one entry of a shortest/longest word list.
type WordExtreme struct {
	Word   string
	Length int
}

// Count is a named counter, used for ranked summary views.
type Count struct {
	Name  string
	Count int
}

// ProjectRecord is the self-contained result of analyzing one project.
// It is immutable after the analyzer returns and owned exclusively by the
// dispatcher until handed to the aggregator.
type ProjectRecord struct {
	ProjectID string
	Path      string

	Status   Status
	Reason   string
	Warnings []string

	AnalyzedAt   time.Time
	LanguageCode string
	Script       string
	Direction    string
	HasCustomSty bool
	SourceDigest string

	// Books lists the book codes actually processed, canonical order.
	Books []string

	// Markers counts marker occurrences project-wide; MarkersByBook keeps
	// the per-book breakdown, keyed by marker then book code. Marker keys
	// carry the leading backslash.
	Markers       map[string]int
	MarkersByBook map[string]map[string]int

	// Punctuation counts punctuation symbols project-wide, keyed by the
	// symbol itself. Visually distinct variants are never coalesced.
	// PunctuationByBook is keyed by Unicode character name per book.
	Punctuation       map[string]int
	PunctuationByBook map[string]map[string]int

	Verses       int
	VersesByBook map[string]int

	// Words retains every distinct word form with its count, so the
	// corpus-wide extremes can be recomputed from the union rather than
	// from per-project top-N lists.
	Words map[string]WordForm

	// Shortest and Longest are the per-project N-extreme word lists,
	// ties broken by first-seen order.
	Shortest []WordExtreme
	Longest  []WordExtreme
}

// NewProjectRecord creates an empty record with initialized maps.
func NewProjectRecord(projectID, path string) *ProjectRecord {
	return &ProjectRecord{
		ProjectID:         projectID,
		Path:              path,
		Status:            StatusOk,
		AnalyzedAt:        time.Now(),
		Script:            "Unknown",
		Direction:         "Unknown",
		LanguageCode:      "Unknown",
		Markers:           make(map[string]int),
		MarkersByBook:     make(map[string]map[string]int),
		Punctuation:       make(map[string]int),
		PunctuationByBook: make(map[string]map[string]int),
		VersesByBook:      make(map[string]int),
		Words:             make(map[string]WordForm),
	}
}

// Fail marks the record failed with a reason. Numeric contributions of a
// failed record are ignored by the aggregator.
func (r *ProjectRecord) Fail(reason string) *ProjectRecord {
	r.Status = StatusFailed
	r.Reason = reason
	return r
}

// Warn attaches a non-fatal issue to the record.
func (r *ProjectRecord) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// TopMarkers returns the n most frequent markers, ordered by count
// descending, then name, for deterministic output.
func (r *ProjectRecord) TopMarkers(n int) []Count {
	return topCounts(r.Markers, n)
}

// TopPunctuation returns the n most frequent punctuation symbols.
func (r *ProjectRecord) TopPunctuation(n int) []Count {
	return topCounts(r.Punctuation, n)
}

// RosterEntry is one project's row in the master record's roster. Every
// dispatched project appears here, regardless of outcome.
type RosterEntry struct {
	ProjectID    string
	Path         string
	Status       Status
	Reason       string
	AnalyzedAt   time.Time
	LanguageCode string
	Script       string
	Direction    string
	HasCustomSty bool
	SourceDigest string
	Books        int
	Verses       int
}

// MasterRecord is the single corpus-wide merge of a run's project records.
type MasterRecord struct {
	RunID       string
	GeneratedAt time.Time

	// Roster lists every project, including failures and skips.
	Roster []RosterEntry

	Markers      map[string]int
	Punctuation  map[string]int
	Verses       int
	VersesByBook map[string]int

	// Words is the union of all Ok projects' distinct word forms with
	// summed counts.
	Words map[string]WordForm

	// Shortest and Longest are recomputed from the union of distinct word
	// forms, ties broken by length then lexicographically, so the result
	// does not depend on record arrival order.
	Shortest []WordExtreme
	Longest  []WordExtreme
}

// CountByStatus returns how many roster entries carry the given status.
func (m *MasterRecord) CountByStatus(s Status) int {
	n := 0
	for _, e := range m.Roster {
		if e.Status == s {
			n++
		}
	}
	return n
}

// TopMarkers returns the n most frequent markers corpus-wide.
func (m *MasterRecord) TopMarkers(n int) []Count {
	return topCounts(m.Markers, n)
}

// TopPunctuation returns the n most frequent punctuation symbols corpus-wide.
func (m *MasterRecord) TopPunctuation(n int) []Count {
	return topCounts(m.Punctuation, n)
}

// topCounts ranks a counter map: count descending, name ascending.
func topCounts(counts map[string]int, n int) []Count {
	out := make([]Count, 0, len(counts))
	for name, c := range counts {
		out = append(out, Count{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// PunctuationName returns the Unicode character name for a punctuation
// symbol, or a U+XXXX form for unnamed code points. Multi-rune symbols are
// named by their first rune.
func PunctuationName(symbol string) string {
	r, _ := utf8.DecodeRuneInString(symbol)
	if name := runenames.Name(r); name != "" && name[0] != '<' {
		return name
	}
	return fmt.Sprintf("U+%04X", r)
}

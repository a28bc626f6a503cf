package stats

import (
	"reflect"
	"testing"
	"time"

	"github.com/FocuswithJustin/ScriptureStats/core/errors"
)

func okRecord(id string, words map[string]int) *ProjectRecord {
	rec := NewProjectRecord(id, "/data/"+id)
	for w, n := range words {
		rec.Words[w] = WordForm{Count: n, Length: len([]rune(w))}
	}
	return rec
}

func TestAggregateSums(t *testing.T) {
	a := okRecord("Alpha", map[string]int{"the": 10, "word": 3})
	a.Markers[`\v`] = 100
	a.Markers[`\p`] = 40
	a.Punctuation["."] = 90
	a.Verses = 100
	a.VersesByBook["MAT"] = 100

	b := okRecord("Beta", map[string]int{"the": 5, "light": 2})
	b.Markers[`\v`] = 50
	b.Punctuation["."] = 45
	b.Punctuation[","] = 7
	b.Verses = 50
	b.VersesByBook["MAT"] = 30
	b.VersesByBook["MRK"] = 20

	m, err := Aggregate([]*ProjectRecord{a, b}, AggregateOptions{NWords: 3})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if m.Markers[`\v`] != 150 || m.Markers[`\p`] != 40 {
		t.Errorf("marker sums = %v", m.Markers)
	}
	if m.Punctuation["."] != 135 || m.Punctuation[","] != 7 {
		t.Errorf("punctuation sums = %v", m.Punctuation)
	}
	if m.Verses != 150 || m.VersesByBook["MAT"] != 130 || m.VersesByBook["MRK"] != 20 {
		t.Errorf("verse sums = %d %v", m.Verses, m.VersesByBook)
	}
	if m.Words["the"].Count != 15 || m.Words["word"].Count != 3 {
		t.Errorf("word sums = %v", m.Words)
	}
	if m.RunID == "" {
		t.Error("RunID not generated")
	}
	if len(m.Roster) != 2 {
		t.Errorf("roster has %d entries, want 2", len(m.Roster))
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	make3 := func() []*ProjectRecord {
		a := okRecord("Alpha", map[string]int{"aaa": 1, "bbbbb": 2, "ccccccccc": 3})
		b := okRecord("Beta", map[string]int{"x": 4, "zzzzzzz": 5})
		c := okRecord("Gamma", map[string]int{"dddd": 1, "eeee": 1, "ffff": 1})
		a.Verses, b.Verses, c.Verses = 10, 20, 30
		return []*ProjectRecord{a, b, c}
	}

	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 2, 0}}
	var first *MasterRecord
	for _, ord := range orders {
		recs := make3()
		shuffled := []*ProjectRecord{recs[ord[0]], recs[ord[1]], recs[ord[2]]}
		m, err := Aggregate(shuffled, AggregateOptions{NWords: 2, RunID: "fixed"})
		if err != nil {
			t.Fatalf("Aggregate: %v", err)
		}
		m.GeneratedAt = time.Time{}
		for i := range m.Roster {
			m.Roster[i].AnalyzedAt = time.Time{}
		}
		if first == nil {
			first = m
			continue
		}
		if !reflect.DeepEqual(m.Words, first.Words) ||
			!reflect.DeepEqual(m.Shortest, first.Shortest) ||
			!reflect.DeepEqual(m.Longest, first.Longest) ||
			!reflect.DeepEqual(m.Roster, first.Roster) ||
			m.Verses != first.Verses {
			t.Errorf("order %v produced a different master record", ord)
		}
	}
}

func TestAggregateExtremesFromUnion(t *testing.T) {
	// Per-project extremes alone would miss the global answer: the overall
	// shortest and longest come from different projects.
	a := okRecord("Alpha", map[string]int{"aaa": 1, "bbbbb": 1, "ccccccccc": 1}) // lengths 3 5 9
	b := okRecord("Beta", map[string]int{"z": 1, "wwwwwww": 1})                  // lengths 1 7
	c := okRecord("Gamma", map[string]int{"dddd": 1, "eeee": 1, "ffff": 1})      // lengths 4 4 4

	m, err := Aggregate([]*ProjectRecord{a, b, c}, AggregateOptions{NWords: 2})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	wantShort := []WordExtreme{{Word: "z", Length: 1}, {Word: "aaa", Length: 3}}
	if !reflect.DeepEqual(m.Shortest, wantShort) {
		t.Errorf("Shortest = %v, want %v", m.Shortest, wantShort)
	}
	wantLong := []WordExtreme{{Word: "ccccccccc", Length: 9}, {Word: "wwwwwww", Length: 7}}
	if !reflect.DeepEqual(m.Longest, wantLong) {
		t.Errorf("Longest = %v, want %v", m.Longest, wantLong)
	}
}

func TestAggregateExtremesTieBreak(t *testing.T) {
	a := okRecord("Alpha", map[string]int{"bb": 1, "dd": 1})
	b := okRecord("Beta", map[string]int{"aa": 1, "cc": 1})

	m, err := Aggregate([]*ProjectRecord{a, b}, AggregateOptions{NWords: 2})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	// Equal lengths break lexicographically, regardless of which project
	// contributed the form.
	wantShort := []WordExtreme{{Word: "aa", Length: 2}, {Word: "bb", Length: 2}}
	if !reflect.DeepEqual(m.Shortest, wantShort) {
		t.Errorf("Shortest = %v, want %v", m.Shortest, wantShort)
	}
}

func TestAggregateExcludeMarkers(t *testing.T) {
	a := okRecord("Alpha", nil)
	a.Markers[`\v`] = 100
	a.Markers[`\id`] = 1
	a.Markers[`\nd`] = 12

	m, err := Aggregate([]*ProjectRecord{a}, AggregateOptions{
		NWords:         2,
		ExcludeMarkers: SummaryExcludedMarkers,
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if _, ok := m.Markers[`\v`]; ok {
		t.Error("excluded marker \\v present in master")
	}
	if _, ok := m.Markers[`\id`]; ok {
		t.Error("excluded marker \\id present in master")
	}
	if m.Markers[`\nd`] != 12 {
		t.Errorf("Markers[\\nd] = %d, want 12", m.Markers[`\nd`])
	}
	// Exclusion is a merge-time view: the source record is untouched.
	if a.Markers[`\v`] != 100 {
		t.Error("exclusion mutated the project record")
	}
}

func TestParseMarkerList(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{` \id,\usfm `, []string{`\id`, `\usfm`}},
		{"id, usfm", []string{`\id`, `\usfm`}},
		{`\id,,\c`, []string{`\id`, `\c`}},
		{"summary", SummaryExcludedMarkers},
		{`summary,\usfm`, append(append([]string{}, SummaryExcludedMarkers...), `\usfm`)},
	}
	for _, tc := range cases {
		if got := ParseMarkerList(tc.raw); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ParseMarkerList(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestAggregateSkipsNonOkRecords(t *testing.T) {
	good := okRecord("Alpha", map[string]int{"word": 2})
	good.Verses = 5
	failed := okRecord("Beta", map[string]int{"noise": 99})
	failed.Verses = 99
	failed.Fail("tokenizer error")
	skipped := okRecord("Gamma", nil)
	skipped.Status = StatusSkipped

	m, err := Aggregate([]*ProjectRecord{good, failed, skipped}, AggregateOptions{NWords: 2})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if m.Verses != 5 {
		t.Errorf("Verses = %d, want 5: non-ok records contributed", m.Verses)
	}
	if _, ok := m.Words["noise"]; ok {
		t.Error("failed record's words merged")
	}
	if len(m.Roster) != 3 {
		t.Fatalf("roster has %d entries, want all 3", len(m.Roster))
	}
	if m.CountByStatus(StatusFailed) != 1 || m.CountByStatus(StatusSkipped) != 1 {
		t.Error("roster statuses not preserved")
	}
}

func TestAggregateNegativeCount(t *testing.T) {
	bad := okRecord("Alpha", nil)
	bad.Markers[`\v`] = -1

	_, err := Aggregate([]*ProjectRecord{bad}, AggregateOptions{NWords: 2})
	if !errors.Is(err, errors.ErrInternal) {
		t.Fatalf("err = %v, want ErrInternal", err)
	}
}

func TestAggregateEmpty(t *testing.T) {
	m, err := Aggregate(nil, AggregateOptions{NWords: 2})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(m.Roster) != 0 || len(m.Shortest) != 0 || len(m.Longest) != 0 {
		t.Errorf("empty aggregate not empty: %+v", m)
	}
}

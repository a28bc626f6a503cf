package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/ScriptureStats/core/errors"
)

// AggregateOptions tunes the merge of project records into a master record.
type AggregateOptions struct {
	// NWords is how many shortest/longest words the master record reports.
	NWords int
	// ExcludeMarkers lists markers (with leading backslash, as written in
	// source text) whose counts are dropped from the master totals.
	// Exclusion happens at merge time only: the per-project records keep
	// their full counts.
	ExcludeMarkers []string
	// RunID identifies the run. A fresh UUID is generated when empty.
	RunID string
}

// SummaryExcludedMarkers are the bookkeeping markers the "summary"
// shorthand of ParseMarkerList expands to.
var SummaryExcludedMarkers = []string{`\id`, `\c`, `\v`, `\h`, `\toc1`, `\toc2`, `\toc3`, `\mt1`, `\mt2`, `\mt3`}

// ParseMarkerList parses a comma-separated marker list as given on the
// command line. Entries are trimmed, empty entries dropped, and a missing
// leading backslash added; the entry "summary" expands to
// SummaryExcludedMarkers. An empty input yields nil.
func ParseMarkerList(raw string) []string {
	var markers []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case part == "summary":
			markers = append(markers, SummaryExcludedMarkers...)
		case !strings.HasPrefix(part, `\`):
			markers = append(markers, `\`+part)
		default:
			markers = append(markers, part)
		}
	}
	return markers
}

// Aggregate merges project records into one master record. The merge is
// commutative and associative: any ordering of the same records yields an
// identical master. Only StatusOk records contribute counts; every record,
// whatever its status, appears in the roster.
func Aggregate(records []*ProjectRecord, opts AggregateOptions) (*MasterRecord, error) {
	if opts.NWords < 1 {
		opts.NWords = 10
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	excluded := make(map[string]bool, len(opts.ExcludeMarkers))
	for _, m := range opts.ExcludeMarkers {
		excluded[m] = true
	}

	master := &MasterRecord{
		RunID:        opts.RunID,
		GeneratedAt:  time.Now().UTC(),
		Markers:      make(map[string]int),
		Punctuation:  make(map[string]int),
		VersesByBook: make(map[string]int),
		Words:        make(map[string]WordForm),
	}

	for _, rec := range records {
		master.Roster = append(master.Roster, RosterEntry{
			ProjectID:    rec.ProjectID,
			Path:         rec.Path,
			Status:       rec.Status,
			Reason:       rec.Reason,
			AnalyzedAt:   rec.AnalyzedAt,
			LanguageCode: rec.LanguageCode,
			Script:       rec.Script,
			Direction:    rec.Direction,
			HasCustomSty: rec.HasCustomSty,
			SourceDigest: rec.SourceDigest,
			Books:        len(rec.Books),
			Verses:       rec.Verses,
		})
		if rec.Status != StatusOk {
			continue
		}
		for name, n := range rec.Markers {
			if n < 0 {
				return nil, errors.Wrapf(errors.ErrInternal, "negative count for marker %s in %s", name, rec.ProjectID)
			}
			if excluded[name] {
				continue
			}
			master.Markers[name] += n
		}
		for sym, n := range rec.Punctuation {
			if n < 0 {
				return nil, errors.Wrapf(errors.ErrInternal, "negative count for punctuation %q in %s", sym, rec.ProjectID)
			}
			master.Punctuation[sym] += n
		}
		master.Verses += rec.Verses
		for book, n := range rec.VersesByBook {
			master.VersesByBook[book] += n
		}
		for w, wf := range rec.Words {
			if wf.Count < 0 {
				return nil, errors.Wrapf(errors.ErrInternal, "negative count for word %q in %s", w, rec.ProjectID)
			}
			merged := master.Words[w]
			merged.Count += wf.Count
			merged.Length = wf.Length
			master.Words[w] = merged
		}
	}

	sort.Slice(master.Roster, func(i, j int) bool {
		return master.Roster[i].ProjectID < master.Roster[j].ProjectID
	})
	master.Shortest, master.Longest = wordExtremes(master.Words, opts.NWords)
	return master, nil
}

// wordExtremes recomputes the global N shortest and N longest word forms
// from the union of all distinct forms. Ties break on (length, word)
// lexicographically, so the result does not depend on record order.
func wordExtremes(words map[string]WordForm, n int) (shortest, longest []WordExtreme) {
	all := make([]WordExtreme, 0, len(words))
	for w, wf := range words {
		all = append(all, WordExtreme{Word: w, Length: wf.Length})
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Length != all[j].Length {
			return all[i].Length < all[j].Length
		}
		return all[i].Word < all[j].Word
	})
	shortest = copyExtremes(all, n)

	sort.Slice(all, func(i, j int) bool {
		if all[i].Length != all[j].Length {
			return all[i].Length > all[j].Length
		}
		return all[i].Word < all[j].Word
	})
	longest = copyExtremes(all, n)
	return shortest, longest
}

func copyExtremes(all []WordExtreme, n int) []WordExtreme {
	if len(all) > n {
		all = all[:n]
	}
	out := make([]WordExtreme, len(all))
	copy(out, all)
	return out
}

// Package canon provides the canonical scripture book inventory: ordered
// three-letter book codes, USFM book numbers, and validity checks shared by
// the analyzer, the project loader, and the report emitters.
package canon

import (
	"sort"
	"strings"
)

// bookOrder lists canonical book codes in canonical order: the 66 protocanonical
// books followed by the deuterocanonical books recognized by USFM.
var bookOrder = []string{
	"GEN", "EXO", "LEV", "NUM", "DEU", "JOS", "JDG", "RUT",
	"1SA", "2SA", "1KI", "2KI", "1CH", "2CH", "EZR", "NEH",
	"EST", "JOB", "PSA", "PRO", "ECC", "SNG", "ISA", "JER",
	"LAM", "EZK", "DAN", "HOS", "JOL", "AMO", "OBA", "JON",
	"MIC", "NAM", "HAB", "ZEP", "HAG", "ZEC", "MAL",
	"MAT", "MRK", "LUK", "JHN", "ACT", "ROM", "1CO", "2CO",
	"GAL", "EPH", "PHP", "COL", "1TH", "2TH", "1TI", "2TI",
	"TIT", "PHM", "HEB", "JAS", "1PE", "2PE", "1JN", "2JN",
	"3JN", "JUD", "REV",
	"TOB", "JDT", "ESG", "WIS", "SIR", "BAR", "LJE", "S3Y",
	"SUS", "BEL", "1MA", "2MA", "3MA", "4MA", "1ES", "2ES",
	"MAN", "PS2",
}

// bookIndex maps a book code to its position in bookOrder.
var bookIndex = make(map[string]int, len(bookOrder))

func init() {
	for i, code := range bookOrder {
		bookIndex[code] = i
	}
}

// IsCanonical reports whether code is a recognized canonical book code.
// Matching is exact: codes are upper-case three-character identifiers.
func IsCanonical(code string) bool {
	_, ok := bookIndex[code]
	return ok
}

// Normalize upper-cases and trims a candidate book code. It does not
// validate; combine with IsCanonical.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// BookNumber returns the USFM book number for a code (GEN=1 .. MAL=39,
// MAT=41 .. REV=67, then the deuterocanon from 68). Number 40 is unassigned
// in the USFM numbering scheme. The second result is false for unknown codes.
func BookNumber(code string) (int, bool) {
	i, ok := bookIndex[code]
	if !ok {
		return 0, false
	}
	if i < 39 {
		return i + 1, true
	}
	return i + 2, true
}

// Ordinal returns the canonical sort position of a book code. Unknown codes
// sort after all canonical ones.
func Ordinal(code string) int {
	if i, ok := bookIndex[code]; ok {
		return i
	}
	return len(bookOrder)
}

// Books returns the canonical book codes in canonical order.
func Books() []string {
	out := make([]string, len(bookOrder))
	copy(out, bookOrder)
	return out
}

// SortCodes sorts book codes in place into canonical order. Codes outside the
// canon sort last, alphabetically, so report columns stay deterministic.
func SortCodes(codes []string) {
	sort.Slice(codes, func(i, j int) bool {
		oi, oj := Ordinal(codes[i]), Ordinal(codes[j])
		if oi != oj {
			return oi < oj
		}
		return codes[i] < codes[j]
	})
}

// Set is a set of book codes, used for book filters. The empty (or nil) set
// means "all books".
type Set map[string]struct{}

// NewSet builds a Set from codes, normalizing each.
func NewSet(codes ...string) Set {
	s := make(Set, len(codes))
	for _, c := range codes {
		s[Normalize(c)] = struct{}{}
	}
	return s
}

// ParseSet parses a comma-separated book code list ("GEN,PSA,MAT") into a
// Set. Empty input yields an empty set. Unknown codes are returned so the
// caller can reject the configuration.
func ParseSet(csv string) (Set, []string) {
	s := make(Set)
	var unknown []string
	for _, part := range strings.Split(csv, ",") {
		code := Normalize(part)
		if code == "" {
			continue
		}
		if !IsCanonical(code) {
			unknown = append(unknown, code)
			continue
		}
		s[code] = struct{}{}
	}
	return s, unknown
}

// Has reports set membership. An empty set matches every code.
func (s Set) Has(code string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[code]
	return ok
}

// Empty reports whether the set imposes no filter.
func (s Set) Empty() bool {
	return len(s) == 0
}

// Codes returns the member codes in canonical order.
func (s Set) Codes() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	SortCodes(out)
	return out
}

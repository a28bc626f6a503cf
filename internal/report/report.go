// Package report writes the CSV artifacts of a run: one details directory
// per project and the master summary for the whole corpus. Column layouts
// follow the historical summary format so downstream consumers keep working.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/FocuswithJustin/ScriptureStats/core/errors"
	"github.com/FocuswithJustin/ScriptureStats/internal/canon"
	"github.com/FocuswithJustin/ScriptureStats/internal/stats"
)

const (
	// TopMarkers and TopPunctuation size the "most common" summary columns.
	TopMarkers     = 10
	TopPunctuation = 10

	// MasterSummaryName is the master summary file written to the output
	// folder.
	MasterSummaryName = "project_analysis_summary.csv"

	// CorpusTotalsName is the corpus-wide totals file.
	CorpusTotalsName = "corpus_totals.csv"
)

// DetailsDirName returns the details directory name for a project.
func DetailsDirName(projectID string) string {
	return projectID + "_details"
}

// HasReport reports whether a completed details report exists for the
// project. The summary file is written last, so its presence marks a
// finished report.
func HasReport(detailsFolder, projectID string) bool {
	info, err := os.Stat(filepath.Join(detailsFolder, DetailsDirName(projectID), "summary.csv"))
	return err == nil && !info.IsDir()
}

// WriteProjectReport writes one project's details directory and returns its
// path. The directory holds metadata.csv, markers_by_book.csv,
// punctuation_by_book.csv, book_stats.csv, word_extremes.csv and, last,
// summary.csv.
func WriteProjectReport(detailsFolder string, rec *stats.ProjectRecord, nWords int) (string, error) {
	dir := filepath.Join(detailsFolder, DetailsDirName(rec.ProjectID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.NewIO("create report directory", dir, err)
	}

	if err := writeCSV(filepath.Join(dir, "metadata.csv"), metadataRows(rec)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(dir, "markers_by_book.csv"), pivotRows("SFMMarker", rec.MarkersByBook)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(dir, "punctuation_by_book.csv"), pivotRows("UnicodeName", rec.PunctuationByBook)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(dir, "book_stats.csv"), bookStatsRows(rec)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(dir, "word_extremes.csv"), extremeRows(rec)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(dir, "summary.csv"), summaryRows(rec, nWords)); err != nil {
		return "", err
	}
	return dir, nil
}

// SummaryRow is one project's row in the master summary: the flattened
// aggregates that survive outside the full record. The sqlite store keeps
// these per run, so the summary can be rebuilt without re-analysis.
type SummaryRow struct {
	ProjectID            string
	Status               string
	ErrorMessage         string
	AnalyzedAt           time.Time
	Books                int
	Verses               int
	LanguageCode         string
	Script               string
	Direction            string
	HasCustomSty         bool
	SourceDigest         string
	UniqueMarkers        int
	MarkerInstances      int
	TopMarkers           string
	UniquePunctuation    int
	PunctuationInstances int
	TopPunctuation       string
	ShortestWords        string
	LongestWords         string
	DetailPath           string
	ProjectPath          string
}

// NewSummaryRow flattens a record into its master summary row.
func NewSummaryRow(rec *stats.ProjectRecord, detailsFolder string) SummaryRow {
	return SummaryRow{
		ProjectID:            rec.ProjectID,
		Status:               string(rec.Status),
		ErrorMessage:         errorMessage(rec),
		AnalyzedAt:           rec.AnalyzedAt,
		Books:                len(rec.Books),
		Verses:               rec.Verses,
		LanguageCode:         rec.LanguageCode,
		Script:               rec.Script,
		Direction:            rec.Direction,
		HasCustomSty:         rec.HasCustomSty,
		SourceDigest:         rec.SourceDigest,
		UniqueMarkers:        len(rec.Markers),
		MarkerInstances:      sumCounts(rec.Markers),
		TopMarkers:           formatTop(rec.TopMarkers(TopMarkers)),
		UniquePunctuation:    len(rec.Punctuation),
		PunctuationInstances: sumCounts(rec.Punctuation),
		TopPunctuation:       formatTop(rec.TopPunctuation(TopPunctuation)),
		ShortestWords:        formatExtremes(rec.Shortest),
		LongestWords:         formatExtremes(rec.Longest),
		DetailPath:           filepath.Join(detailsFolder, DetailsDirName(rec.ProjectID)),
		ProjectPath:          rec.Path,
	}
}

// WriteMasterSummary writes the per-project summary table for the whole
// run, one row per project, and returns the file path.
func WriteMasterSummary(outputFolder, detailsFolder string, records []*stats.ProjectRecord, nWords int) (string, error) {
	rows := make([]SummaryRow, len(records))
	for i, rec := range records {
		rows[i] = NewSummaryRow(rec, detailsFolder)
	}
	return WriteCollatedSummary(outputFolder, rows, nWords)
}

// WriteCollatedSummary writes a master summary from already flattened rows,
// sorted by project name. The collate command feeds it from the store.
func WriteCollatedSummary(outputFolder string, rows []SummaryRow, nWords int) (string, error) {
	if err := os.MkdirAll(outputFolder, 0o755); err != nil {
		return "", errors.NewIO("create output folder", outputFolder, err)
	}

	header := []string{
		"ProjectName", "ProcessingStatus", "ErrorMessage", "DateAnalyzed",
		"TotalBooksProcessed", "LanguageCode",
		"DetectedScript", "ScriptDirection", "HasCustomSty",
		"TotalUniqueSFMMarkers_Summary", "TotalSFMMarkerInstances_Summary", "TopNCommonSFMMarkers_Summary",
		"TotalUniquePunctuationChars_Summary", "TotalPunctuationInstances_Summary", "TopNCommonPunctuation_Summary",
		fmt.Sprintf("%d_ShortestWords_Summary", nWords), fmt.Sprintf("%d_LongestWords_Summary", nWords),
		"PathToDetailedReport", "ProjectFolderPath",
	}
	out := [][]string{header}

	sorted := make([]SummaryRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProjectID < sorted[j].ProjectID })

	for _, row := range sorted {
		out = append(out, []string{
			row.ProjectID,
			row.Status,
			row.ErrorMessage,
			row.AnalyzedAt.Format(time.RFC3339),
			strconv.Itoa(row.Books),
			row.LanguageCode,
			row.Script,
			row.Direction,
			strconv.FormatBool(row.HasCustomSty),
			strconv.Itoa(row.UniqueMarkers),
			strconv.Itoa(row.MarkerInstances),
			row.TopMarkers,
			strconv.Itoa(row.UniquePunctuation),
			strconv.Itoa(row.PunctuationInstances),
			row.TopPunctuation,
			row.ShortestWords,
			row.LongestWords,
			row.DetailPath,
			row.ProjectPath,
		})
	}

	path := filepath.Join(outputFolder, MasterSummaryName)
	if err := writeCSV(path, out); err != nil {
		return "", err
	}
	return path, nil
}

// WriteCorpusTotals writes the corpus-wide merged totals as a metric/value
// table and returns the file path.
func WriteCorpusTotals(outputFolder string, master *stats.MasterRecord, nWords int) (string, error) {
	if err := os.MkdirAll(outputFolder, 0o755); err != nil {
		return "", errors.NewIO("create output folder", outputFolder, err)
	}

	rows := [][]string{
		{"Metric", "Value"},
		{"RunID", master.RunID},
		{"GeneratedAt", master.GeneratedAt.Format(time.RFC3339)},
		{"ProjectsOk", strconv.Itoa(master.CountByStatus(stats.StatusOk))},
		{"ProjectsSkipped", strconv.Itoa(master.CountByStatus(stats.StatusSkipped))},
		{"ProjectsFailed", strconv.Itoa(master.CountByStatus(stats.StatusFailed))},
		{"TotalVerses", strconv.Itoa(master.Verses)},
		{"TotalUniqueSFMMarkers", strconv.Itoa(len(master.Markers))},
		{"TotalSFMMarkerInstances", strconv.Itoa(sumCounts(master.Markers))},
		{"TopNCommonSFMMarkers", formatTop(master.TopMarkers(TopMarkers))},
		{"TotalUniquePunctuationChars", strconv.Itoa(len(master.Punctuation))},
		{"TotalPunctuationInstances", strconv.Itoa(sumCounts(master.Punctuation))},
		{"TopNCommonPunctuation", formatTop(master.TopPunctuation(TopPunctuation))},
		{fmt.Sprintf("%d_ShortestWords", nWords), formatExtremes(master.Shortest)},
		{fmt.Sprintf("%d_LongestWords", nWords), formatExtremes(master.Longest)},
	}
	for _, book := range sortedBooks(master.VersesByBook) {
		rows = append(rows, []string{"Verses_" + book, strconv.Itoa(master.VersesByBook[book])})
	}

	path := filepath.Join(outputFolder, CorpusTotalsName)
	if err := writeCSV(path, rows); err != nil {
		return "", err
	}
	return path, nil
}

func metadataRows(rec *stats.ProjectRecord) [][]string {
	return [][]string{
		{
			"ProjectName", "ProjectFolderPath", "ProcessingStatus", "ErrorMessage",
			"DateAnalyzed", "TotalBooksProcessed", "LanguageCode",
			"DetectedScript", "ScriptDirection", "HasCustomSty", "SourceDigest",
		},
		{
			rec.ProjectID, rec.Path, string(rec.Status), errorMessage(rec),
			rec.AnalyzedAt.Format(time.RFC3339), strconv.Itoa(len(rec.Books)), rec.LanguageCode,
			rec.Script, rec.Direction, strconv.FormatBool(rec.HasCustomSty), rec.SourceDigest,
		},
	}
}

// pivotRows builds a name-by-book table: one row per name, one column per
// book in canonical order, zero-filled.
func pivotRows(label string, byBook map[string]map[string]int) [][]string {
	bookSet := make(map[string]int)
	names := make([]string, 0, len(byBook))
	for name, books := range byBook {
		names = append(names, name)
		for book := range books {
			bookSet[book] = 0
		}
	}
	sort.Strings(names)
	books := sortedBooks(bookSet)

	header := append([]string{label}, books...)
	rows := [][]string{header}
	for _, name := range names {
		row := []string{name}
		for _, book := range books {
			row = append(row, strconv.Itoa(byBook[name][book]))
		}
		rows = append(rows, row)
	}
	return rows
}

func bookStatsRows(rec *stats.ProjectRecord) [][]string {
	rows := [][]string{{"Book", "Verses"}}
	for _, book := range sortedBooks(rec.VersesByBook) {
		rows = append(rows, []string{book, strconv.Itoa(rec.VersesByBook[book])})
	}
	return rows
}

func extremeRows(rec *stats.ProjectRecord) [][]string {
	rows := [][]string{{"Type", "Word", "Length"}}
	for _, e := range rec.Shortest {
		rows = append(rows, []string{"Shortest", e.Word, strconv.Itoa(e.Length)})
	}
	for _, e := range rec.Longest {
		rows = append(rows, []string{"Longest", e.Word, strconv.Itoa(e.Length)})
	}
	return rows
}

func summaryRows(rec *stats.ProjectRecord, nWords int) [][]string {
	header := []string{
		"ProjectName", "ProjectFolderPath", "ProcessingStatus", "ErrorMessage",
		"DateAnalyzed", "TotalBooksProcessed", "LanguageCode",
		"DetectedScript", "ScriptDirection", "HasCustomSty",
		"TotalUniqueSFMMarkers_Project", "TotalSFMMarkerInstances_Project", "TopNCommonSFMMarkers_Project",
		"TotalUniquePunctuationChars_Project", "TotalPunctuationInstances_Project", "TopNCommonPunctuation_Project",
		fmt.Sprintf("%d_ShortestWords_Project", nWords), fmt.Sprintf("%d_LongestWords_Project", nWords),
	}
	row := []string{
		rec.ProjectID, rec.Path, string(rec.Status), errorMessage(rec),
		rec.AnalyzedAt.Format(time.RFC3339), strconv.Itoa(len(rec.Books)), rec.LanguageCode,
		rec.Script, rec.Direction, strconv.FormatBool(rec.HasCustomSty),
		strconv.Itoa(len(rec.Markers)), strconv.Itoa(sumCounts(rec.Markers)), formatTop(rec.TopMarkers(TopMarkers)),
		strconv.Itoa(len(rec.Punctuation)), strconv.Itoa(sumCounts(rec.Punctuation)), formatTop(rec.TopPunctuation(TopPunctuation)),
		formatExtremes(rec.Shortest), formatExtremes(rec.Longest),
	}
	return [][]string{header, row}
}

func errorMessage(rec *stats.ProjectRecord) string {
	parts := make([]string, 0, len(rec.Warnings)+1)
	if rec.Reason != "" {
		parts = append(parts, rec.Reason)
	}
	parts = append(parts, rec.Warnings...)
	return strings.Join(parts, "; ")
}

func sumCounts(m map[string]int) int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

// formatTop renders a top-N list as "name (count), name (count)".
func formatTop(counts []stats.Count) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s (%d)", c.Name, c.Count)
	}
	return strings.Join(parts, ", ")
}

func formatExtremes(extremes []stats.WordExtreme) string {
	parts := make([]string, len(extremes))
	for i, e := range extremes {
		parts[i] = e.Word
	}
	return strings.Join(parts, ", ")
}

func sortedBooks(m map[string]int) []string {
	books := make([]string, 0, len(m))
	for book := range m {
		books = append(books, book)
	}
	canon.SortCodes(books)
	return books
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIO("create report file", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return errors.NewIO("write report file", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return errors.NewIO("write report file", path, err)
	}
	return f.Close()
}

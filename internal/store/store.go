// Package store persists run results in a SQLite database: one row per run
// and one summary row per project per run. It backs the query and collate
// commands and supplies the already-reported side-input for the skip
// policy.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/FocuswithJustin/ScriptureStats/core/sqlite"
	"github.com/FocuswithJustin/ScriptureStats/internal/report"
	"github.com/FocuswithJustin/ScriptureStats/internal/stats"
)

// DefaultName is the database file name inside the output folder.
const DefaultName = "scripture_stats.db"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id               TEXT PRIMARY KEY,
	generated_at     TEXT NOT NULL,
	projects_ok      INTEGER NOT NULL,
	projects_skipped INTEGER NOT NULL,
	projects_failed  INTEGER NOT NULL,
	total_verses     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS project_records (
	run_id            TEXT NOT NULL REFERENCES runs(id),
	project_id        TEXT NOT NULL,
	project_path      TEXT NOT NULL,
	status            TEXT NOT NULL,
	error_message     TEXT NOT NULL,
	analyzed_at       TEXT NOT NULL,
	language_code     TEXT NOT NULL,
	script            TEXT NOT NULL,
	direction         TEXT NOT NULL,
	has_custom_sty    INTEGER NOT NULL,
	source_digest     TEXT NOT NULL,
	books             INTEGER NOT NULL,
	verses            INTEGER NOT NULL,
	unique_markers    INTEGER NOT NULL,
	marker_instances  INTEGER NOT NULL,
	top_markers       TEXT NOT NULL,
	unique_punct      INTEGER NOT NULL,
	punct_instances   INTEGER NOT NULL,
	top_punct         TEXT NOT NULL,
	shortest_words    TEXT NOT NULL,
	longest_words     TEXT NOT NULL,
	detail_path       TEXT NOT NULL,
	PRIMARY KEY (run_id, project_id)
);
CREATE INDEX IF NOT EXISTS idx_records_project ON project_records(project_id, analyzed_at);
`

// Store wraps the results database.
type Store struct {
	db   *sql.DB
	path string
}

// RunSummary is one run's header row.
type RunSummary struct {
	ID          string
	GeneratedAt time.Time
	Ok          int
	Skipped     int
	Failed      int
	Verses      int
}

// Open opens (or creates) the results database and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening results database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RecordRun stores one run: its header and one summary row per record. The
// whole run commits atomically.
func (s *Store) RecordRun(master *stats.MasterRecord, records []*stats.ProjectRecord, detailsFolder string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, generated_at, projects_ok, projects_skipped, projects_failed, total_verses)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		master.RunID,
		master.GeneratedAt.Format(time.RFC3339),
		master.CountByStatus(stats.StatusOk),
		master.CountByStatus(stats.StatusSkipped),
		master.CountByStatus(stats.StatusFailed),
		master.Verses,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", master.RunID, err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO project_records (
			run_id, project_id, project_path, status, error_message, analyzed_at,
			language_code, script, direction, has_custom_sty, source_digest,
			books, verses,
			unique_markers, marker_instances, top_markers,
			unique_punct, punct_instances, top_punct,
			shortest_words, longest_words, detail_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing record insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		row := report.NewSummaryRow(rec, detailsFolder)
		_, err := stmt.Exec(
			master.RunID, row.ProjectID, row.ProjectPath, row.Status, row.ErrorMessage,
			row.AnalyzedAt.Format(time.RFC3339),
			row.LanguageCode, row.Script, row.Direction, row.HasCustomSty, row.SourceDigest,
			row.Books, row.Verses,
			row.UniqueMarkers, row.MarkerInstances, row.TopMarkers,
			row.UniquePunctuation, row.PunctuationInstances, row.TopPunctuation,
			row.ShortestWords, row.LongestWords, row.DetailPath,
		)
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", row.ProjectID, err)
		}
	}
	return tx.Commit()
}

// ReportedProjects returns the set of project IDs with a stored successful
// analysis. The dispatcher skips these unless force is set.
func (s *Store) ReportedProjects() (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT DISTINCT project_id FROM project_records WHERE status = ?`, string(stats.StatusOk))
	if err != nil {
		return nil, fmt.Errorf("querying reported projects: %w", err)
	}
	defer rows.Close()

	reported := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning project id: %w", err)
		}
		reported[id] = true
	}
	return reported, rows.Err()
}

// Runs lists all stored runs, newest first.
func (s *Store) Runs() ([]RunSummary, error) {
	rows, err := s.db.Query(
		`SELECT id, generated_at, projects_ok, projects_skipped, projects_failed, total_verses
		 FROM runs ORDER BY generated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var generated string
		if err := rows.Scan(&r.ID, &generated, &r.Ok, &r.Skipped, &r.Failed, &r.Verses); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.GeneratedAt, _ = time.Parse(time.RFC3339, generated)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestSummaries returns the newest stored summary row for every project,
// for rebuilding the master summary without re-analysis. Rows sharing an
// analyzed_at timestamp are tie-broken on run_id, so the result is
// deterministic.
func (s *Store) LatestSummaries() ([]report.SummaryRow, error) {
	rows, err := s.db.Query(
		`SELECT project_id, project_path, status, error_message, analyzed_at,
		        language_code, script, direction, has_custom_sty, source_digest,
		        books, verses,
		        unique_markers, marker_instances, top_markers,
		        unique_punct, punct_instances, top_punct,
		        shortest_words, longest_words, detail_path
		 FROM (
			SELECT *, ROW_NUMBER() OVER (
				PARTITION BY project_id
				ORDER BY analyzed_at DESC, run_id DESC) AS rn
			FROM project_records
		 )
		 WHERE rn = 1
		 ORDER BY project_id`)
	if err != nil {
		return nil, fmt.Errorf("querying latest summaries: %w", err)
	}
	defer rows.Close()

	var out []report.SummaryRow
	for rows.Next() {
		row, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ProjectHistory returns every stored summary row for one project, newest
// first.
func (s *Store) ProjectHistory(projectID string) ([]report.SummaryRow, error) {
	rows, err := s.db.Query(
		`SELECT project_id, project_path, status, error_message, analyzed_at,
		        language_code, script, direction, has_custom_sty, source_digest,
		        books, verses,
		        unique_markers, marker_instances, top_markers,
		        unique_punct, punct_instances, top_punct,
		        shortest_words, longest_words, detail_path
		 FROM project_records
		 WHERE project_id = ?
		 ORDER BY analyzed_at DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying history for %s: %w", projectID, err)
	}
	defer rows.Close()

	var out []report.SummaryRow
	for rows.Next() {
		row, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func scanSummary(rows *sql.Rows) (report.SummaryRow, error) {
	var row report.SummaryRow
	var analyzed string
	err := rows.Scan(
		&row.ProjectID, &row.ProjectPath, &row.Status, &row.ErrorMessage, &analyzed,
		&row.LanguageCode, &row.Script, &row.Direction, &row.HasCustomSty, &row.SourceDigest,
		&row.Books, &row.Verses,
		&row.UniqueMarkers, &row.MarkerInstances, &row.TopMarkers,
		&row.UniquePunctuation, &row.PunctuationInstances, &row.TopPunctuation,
		&row.ShortestWords, &row.LongestWords, &row.DetailPath,
	)
	if err != nil {
		return row, fmt.Errorf("scanning summary row: %w", err)
	}
	row.AnalyzedAt, _ = time.Parse(time.RFC3339, analyzed)
	return row, nil
}

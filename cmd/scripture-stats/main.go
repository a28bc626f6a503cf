// Command scripture-stats analyzes folders of Paratext-style scripture
// projects: it counts markers, punctuation, words and verses per project,
// detects script and direction, writes per-project CSV reports plus a
// master summary, and records every run in a SQLite database.
package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/ScriptureStats/core/errors"
	"github.com/FocuswithJustin/ScriptureStats/internal/canon"
	"github.com/FocuswithJustin/ScriptureStats/internal/dispatch"
	"github.com/FocuswithJustin/ScriptureStats/internal/logging"
	"github.com/FocuswithJustin/ScriptureStats/internal/paratext"
	"github.com/FocuswithJustin/ScriptureStats/internal/report"
	"github.com/FocuswithJustin/ScriptureStats/internal/stats"
	"github.com/FocuswithJustin/ScriptureStats/internal/store"
)

const version = "0.2.0"

// CLI defines the command-line interface for scripture-stats.
var CLI struct {
	LogLevel  string `name:"log-level" default:"info" env:"LOG_LEVEL" help:"Log level (debug|info|warn|error)"`
	LogFormat string `name:"log-format" default:"text" env:"LOG_FORMAT" help:"Log format (text|json)"`

	Analyze  AnalyzeCmd    `cmd:"" help:"Scan a folder of projects, analyze them in parallel, write reports"`
	Collate  CollateCmd    `cmd:"" help:"Rebuild the master summary from stored results"`
	Projects ProjectsGroup `cmd:"" help:"Project discovery operations"`
	Query    QueryGroup    `cmd:"" help:"Interrogate the results database"`
	Version  VersionCmd    `cmd:"" help:"Print version information"`
}

// ProjectsGroup contains discovery operations.
type ProjectsGroup struct {
	List ProjectsListCmd `cmd:"" help:"List the projects a scan would analyze"`
}

// QueryGroup contains results database queries.
type QueryGroup struct {
	Runs    QueryRunsCmd    `cmd:"" help:"List stored runs"`
	Project QueryProjectCmd `cmd:"" help:"Show one project's stored history"`
}

// AnalyzeCmd is the main operation: discovery, dispatch, reports, store.
type AnalyzeCmd struct {
	ProjectsFolder string `arg:"" env:"PROJECTS_FOLDER" type:"existingdir" help:"Folder containing Paratext project directories"`

	OutputFolder        string `name:"output-folder" default:"output" env:"OUTPUT_FOLDER" help:"Folder for the master summary and results database"`
	DetailsOutputFolder string `name:"details-output-folder" env:"DETAILS_OUTPUT_FOLDER" help:"Folder for per-project details (default: <output-folder>/details)"`
	NWords              int    `name:"n-words" default:"10" help:"How many shortest/longest words to report"`
	ExcludeSfmSummary   string `name:"exclude-sfm-summary" help:"Comma-separated markers to drop from master marker stats (e.g. \\id,\\usfm); 'summary' expands to the bookkeeping set"`
	ProcessNProjects    int    `name:"process-n-projects" env:"PROCESS_N_PROJECTS" help:"Cap how many projects are processed (0 = all)"`
	BookFilter          string `name:"book-filter" env:"BOOK_FILTER" help:"Comma-separated canonical book codes; restricts all counting"`
	Force               bool   `help:"Reprocess projects that already have a report"`
	Workers             int    `help:"Worker pool size (0 = one per CPU)"`
}

// Run executes a full analysis run. Configuration errors abort before any
// project is dispatched; per-project failures never do.
func (c *AnalyzeCmd) Run() error {
	log := logging.Component("analyze")

	if c.NWords < 1 {
		return errors.NewConfig("n-words", fmt.Sprint(c.NWords), "must be at least 1")
	}
	if c.ProcessNProjects < 0 {
		return errors.NewConfig("process-n-projects", fmt.Sprint(c.ProcessNProjects), "must not be negative")
	}
	filter, unknown := canon.ParseSet(c.BookFilter)
	if len(unknown) > 0 {
		return errors.NewConfig("book-filter", strings.Join(unknown, ","), "unknown book codes")
	}

	detailsFolder := c.DetailsOutputFolder
	if detailsFolder == "" {
		detailsFolder = filepath.Join(c.OutputFolder, "details")
	}

	st, err := store.Open(filepath.Join(c.OutputFolder, store.DefaultName))
	if err != nil {
		return err
	}
	defer st.Close()

	projects, err := paratext.FindProjects(c.ProjectsFolder, paratext.FindOptions{
		Limit:  c.ProcessNProjects,
		Filter: filter,
	})
	if err != nil {
		return err
	}
	log.Info("projects discovered", "count", len(projects), "folder", c.ProjectsFolder)

	reported, err := st.ReportedProjects()
	if err != nil {
		return err
	}
	for _, p := range projects {
		if report.HasReport(detailsFolder, p.ID) {
			reported[p.ID] = true
		}
	}

	analyzer := stats.NewAnalyzer(stats.Config{
		NWords:     c.NWords,
		BookFilter: filter,
		Classifier: stats.DefaultClassifierConfig(),
	})
	records := dispatch.New(analyzer, dispatch.Options{
		Workers:         c.Workers,
		Force:           c.Force,
		AlreadyReported: reported,
	}).Run(projects)

	for _, rec := range records {
		if rec.Status == stats.StatusSkipped {
			continue
		}
		if _, err := report.WriteProjectReport(detailsFolder, rec, c.NWords); err != nil {
			log.Error("details report failed", "project", rec.ProjectID, "error", err)
		}
	}

	master, err := stats.Aggregate(records, stats.AggregateOptions{
		NWords:         c.NWords,
		ExcludeMarkers: stats.ParseMarkerList(c.ExcludeSfmSummary),
	})
	if err != nil {
		return err
	}

	summaryPath, err := report.WriteMasterSummary(c.OutputFolder, detailsFolder, records, c.NWords)
	if err != nil {
		return err
	}
	if _, err := report.WriteCorpusTotals(c.OutputFolder, master, c.NWords); err != nil {
		return err
	}
	if err := st.RecordRun(master, records, detailsFolder); err != nil {
		return err
	}

	log.Info("run complete",
		"run_id", master.RunID,
		"ok", master.CountByStatus(stats.StatusOk),
		"skipped", master.CountByStatus(stats.StatusSkipped),
		"failed", master.CountByStatus(stats.StatusFailed),
		"summary", summaryPath)
	return nil
}

// CollateCmd rebuilds the master summary from the results database, using
// the newest stored row per project. No project is re-analyzed.
type CollateCmd struct {
	OutputFolder string `name:"output-folder" default:"output" env:"OUTPUT_FOLDER" help:"Folder holding the results database; the summary is written there"`
	NWords       int    `name:"n-words" default:"10" help:"Word-extreme column headers to emit"`
}

func (c *CollateCmd) Run() error {
	if c.NWords < 1 {
		return errors.NewConfig("n-words", fmt.Sprint(c.NWords), "must be at least 1")
	}
	st, err := store.Open(filepath.Join(c.OutputFolder, store.DefaultName))
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.LatestSummaries()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errors.NewNotFound("stored project records", c.OutputFolder)
	}
	path, err := report.WriteCollatedSummary(c.OutputFolder, rows, c.NWords)
	if err != nil {
		return err
	}
	logging.Info("master summary collated", "projects", len(rows), "path", path)
	return nil
}

// ProjectsListCmd is a discovery dry run: it prints what analyze would
// process, after versioned-name dedup and optional filtering.
type ProjectsListCmd struct {
	ProjectsFolder   string `arg:"" env:"PROJECTS_FOLDER" type:"existingdir" help:"Folder containing Paratext project directories"`
	ProcessNProjects int    `name:"process-n-projects" env:"PROCESS_N_PROJECTS" help:"Cap how many projects are listed (0 = all)"`
	BookFilter       string `name:"book-filter" env:"BOOK_FILTER" help:"Comma-separated canonical book codes"`
}

func (c *ProjectsListCmd) Run() error {
	filter, unknown := canon.ParseSet(c.BookFilter)
	if len(unknown) > 0 {
		return errors.NewConfig("book-filter", strings.Join(unknown, ","), "unknown book codes")
	}
	projects, err := paratext.FindProjects(c.ProjectsFolder, paratext.FindOptions{
		Limit:  c.ProcessNProjects,
		Filter: filter,
	})
	if err != nil {
		return err
	}
	for _, p := range projects {
		sources, err := p.SourceFiles()
		if err != nil {
			fmt.Printf("%s\t%s\t(unreadable: %v)\n", p.ID, p.Path, err)
			continue
		}
		fmt.Printf("%s\t%s\t%d source files\n", p.ID, p.Path, len(sources))
	}
	fmt.Printf("%d projects\n", len(projects))
	return nil
}

// QueryRunsCmd lists stored runs, newest first.
type QueryRunsCmd struct {
	OutputFolder string `name:"output-folder" default:"output" env:"OUTPUT_FOLDER" help:"Folder holding the results database"`
}

func (c *QueryRunsCmd) Run() error {
	st, err := store.Open(filepath.Join(c.OutputFolder, store.DefaultName))
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.Runs()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	fmt.Printf("%-36s  %-25s  %5s  %7s  %6s  %8s\n", "RUN", "GENERATED", "OK", "SKIPPED", "FAILED", "VERSES")
	for _, r := range runs {
		fmt.Printf("%-36s  %-25s  %5d  %7d  %6d  %8d\n",
			r.ID, r.GeneratedAt.Format("2006-01-02 15:04:05"), r.Ok, r.Skipped, r.Failed, r.Verses)
	}
	return nil
}

// QueryProjectCmd shows one project's stored history, newest first.
type QueryProjectCmd struct {
	ProjectID    string `arg:"" help:"Project folder name"`
	OutputFolder string `name:"output-folder" default:"output" env:"OUTPUT_FOLDER" help:"Folder holding the results database"`
}

func (c *QueryProjectCmd) Run() error {
	st, err := store.Open(filepath.Join(c.OutputFolder, store.DefaultName))
	if err != nil {
		return err
	}
	defer st.Close()

	history, err := st.ProjectHistory(c.ProjectID)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return errors.NewNotFound("project", c.ProjectID)
	}
	for _, row := range history {
		fmt.Printf("%s  %-8s  books=%d verses=%d lang=%s script=%s/%s markers=%d words: %s\n",
			row.AnalyzedAt.Format("2006-01-02 15:04:05"), row.Status,
			row.Books, row.Verses, row.LanguageCode, row.Script, row.Direction,
			row.MarkerInstances, row.ShortestWords)
		if row.ErrorMessage != "" {
			fmt.Printf("    %s\n", row.ErrorMessage)
		}
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("scripture-stats %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("scripture-stats"),
		kong.Description("Scripture project statistics - markers, punctuation, words and verses across Paratext-style projects"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))

	ctx.FatalIfErrorf(ctx.Run())
}

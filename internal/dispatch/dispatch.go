// Package dispatch fans project analysis out over a worker pool. It owns
// the skip policy and failure isolation: one bad project never stops the
// run, one skipped project still shows up in the results.
package dispatch

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/FocuswithJustin/ScriptureStats/internal/logging"
	"github.com/FocuswithJustin/ScriptureStats/internal/paratext"
	"github.com/FocuswithJustin/ScriptureStats/internal/stats"
)

// Options controls one dispatch run.
type Options struct {
	// Workers is the pool size; 0 or negative means one per CPU.
	Workers int
	// Force reprocesses projects that already have a report.
	Force bool
	// AlreadyReported holds the project IDs a previous run reported on.
	// Without Force, those projects are skipped, not re-analyzed.
	AlreadyReported map[string]bool
}

// Dispatcher runs the analyzer over a set of projects in parallel.
type Dispatcher struct {
	analyzer *stats.Analyzer
	opts     Options
	log      *slog.Logger
}

// New creates a dispatcher around one shared analyzer.
func New(analyzer *stats.Analyzer, opts Options) *Dispatcher {
	return &Dispatcher{
		analyzer: analyzer,
		opts:     opts,
		log:      logging.Component("dispatch"),
	}
}

// Run analyzes every project and returns one record per project, sorted by
// project ID. Analysis failures become StatusFailed records; nothing a
// single project does can abort the run.
func (d *Dispatcher) Run(projects []*paratext.Project) []*stats.ProjectRecord {
	records := make([]*stats.ProjectRecord, 0, len(projects))

	var jobs []*paratext.Project
	for _, p := range projects {
		if !d.opts.Force && d.opts.AlreadyReported[p.ID] {
			rec := stats.NewProjectRecord(p.ID, p.Path)
			rec.Status = stats.StatusSkipped
			rec.Reason = "report already exists"
			records = append(records, rec)
			d.log.Info("project skipped", "project", p.ID)
			continue
		}
		jobs = append(jobs, p)
	}

	pool := NewWorkerPool[*paratext.Project, *stats.ProjectRecord](d.opts.Workers, len(jobs))
	pool.Start(d.analyzeOne)
	for _, p := range jobs {
		pool.Submit(p)
	}
	pool.Close()
	for rec := range pool.Results() {
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].ProjectID < records[j].ProjectID
	})
	return records
}

// analyzeOne wraps one analysis with timing and a last-resort panic guard.
// The analyzer has its own guard; this one protects the pool if anything
// outside it misbehaves.
func (d *Dispatcher) analyzeOne(p *paratext.Project) (rec *stats.ProjectRecord) {
	defer func() {
		if r := recover(); r != nil {
			rec = stats.NewProjectRecord(p.ID, p.Path).Fail(fmt.Sprintf("worker panic: %v", r))
		}
	}()

	start := time.Now()
	rec = d.analyzer.Analyze(p)
	logging.ProjectEvent("project analyzed", p.ID, string(rec.Status), time.Since(start))
	return rec
}

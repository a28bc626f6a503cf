package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/FocuswithJustin/ScriptureStats/internal/paratext"
	"github.com/FocuswithJustin/ScriptureStats/internal/stats"
)

func writeProject(t *testing.T, root, id string, files map[string]string) *paratext.Project {
	t.Helper()
	dir := filepath.Join(root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return &paratext.Project{ID: id, Path: dir}
}

func goodFiles(verseText string) map[string]string {
	return map[string]string{
		"Settings.xml": "<ScriptureText><Name>X</Name><LanguageIsoCode>abc:::</LanguageIsoCode></ScriptureText>",
		"mat.sfm":      "\\id MAT\n\\c 1\n\\p\n\\v 1 " + verseText + "\n",
	}
}

func TestRunFailureIsolation(t *testing.T) {
	root := t.TempDir()
	var projects []*paratext.Project
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("Proj%d", i)
		files := goodFiles("some verse words here")
		if i == 2 {
			// No source files at all: analysis fails for this one.
			files = map[string]string{"Settings.xml": files["Settings.xml"]}
		}
		projects = append(projects, writeProject(t, root, id, files))
	}

	d := New(stats.NewAnalyzer(stats.Config{NWords: 5, Classifier: stats.DefaultClassifierConfig()}), Options{Workers: 3})
	records := d.Run(projects)

	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}
	if !sort.SliceIsSorted(records, func(i, j int) bool {
		return records[i].ProjectID < records[j].ProjectID
	}) {
		t.Error("records not sorted by project ID")
	}
	for _, rec := range records {
		want := stats.StatusOk
		if rec.ProjectID == "Proj2" {
			want = stats.StatusFailed
		}
		if rec.Status != want {
			t.Errorf("%s: status = %q, want %q", rec.ProjectID, rec.Status, want)
		}
	}
}

func TestRunSkipsReported(t *testing.T) {
	root := t.TempDir()
	a := writeProject(t, root, "Alpha", goodFiles("first project text"))
	b := writeProject(t, root, "Beta", goodFiles("second project text"))

	analyzer := stats.NewAnalyzer(stats.Config{NWords: 5, Classifier: stats.DefaultClassifierConfig()})
	d := New(analyzer, Options{AlreadyReported: map[string]bool{"Alpha": true}})
	records := d.Run([]*paratext.Project{a, b})

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	byID := map[string]*stats.ProjectRecord{}
	for _, rec := range records {
		byID[rec.ProjectID] = rec
	}
	if byID["Alpha"].Status != stats.StatusSkipped {
		t.Errorf("Alpha status = %q, want skipped", byID["Alpha"].Status)
	}
	if byID["Alpha"].Verses != 0 {
		t.Error("skipped project was analyzed")
	}
	if byID["Beta"].Status != stats.StatusOk {
		t.Errorf("Beta status = %q, want ok", byID["Beta"].Status)
	}
}

func TestRunForceReprocesses(t *testing.T) {
	root := t.TempDir()
	a := writeProject(t, root, "Alpha", goodFiles("forced reprocess text"))

	analyzer := stats.NewAnalyzer(stats.Config{NWords: 5, Classifier: stats.DefaultClassifierConfig()})
	d := New(analyzer, Options{Force: true, AlreadyReported: map[string]bool{"Alpha": true}})
	records := d.Run([]*paratext.Project{a})

	if len(records) != 1 || records[0].Status != stats.StatusOk {
		t.Fatalf("records = %+v, want one ok record", records)
	}
	if records[0].Verses != 1 {
		t.Errorf("Verses = %d, want 1", records[0].Verses)
	}
}

func TestRunEmpty(t *testing.T) {
	analyzer := stats.NewAnalyzer(stats.Config{NWords: 5, Classifier: stats.DefaultClassifierConfig()})
	records := New(analyzer, Options{}).Run(nil)
	if len(records) != 0 {
		t.Fatalf("got %d records, want 0", len(records))
	}
}

func TestWorkerPool(t *testing.T) {
	pool := NewWorkerPool[int, int](4, 20)
	pool.Start(func(n int) int { return n * n })
	for i := 0; i < 20; i++ {
		pool.Submit(i)
	}
	pool.Close()

	var got []int
	for r := range pool.Results() {
		got = append(got, r)
	}
	if len(got) != 20 {
		t.Fatalf("got %d results, want 20", len(got))
	}
	sort.Ints(got)
	for i, v := range got {
		if v != i*i {
			t.Errorf("result[%d] = %d, want %d", i, v, i*i)
		}
	}
}

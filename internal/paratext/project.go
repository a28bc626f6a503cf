package paratext

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/FocuswithJustin/ScriptureStats/core/errors"
	"github.com/FocuswithJustin/ScriptureStats/internal/canon"
)

// Project is one discovered Paratext project folder.
type Project struct {
	ID   string // folder name
	Path string
}

// SettingsPath returns the path to the project's Settings.xml.
func (p *Project) SettingsPath() string {
	return filepath.Join(p.Path, "Settings.xml")
}

// CustomStyPath returns the path to the project's custom stylesheet, which
// may not exist.
func (p *Project) CustomStyPath() string {
	return filepath.Join(p.Path, "custom.sty")
}

// HasCustomSty reports whether the project carries a custom.sty overlay.
func (p *Project) HasCustomSty() bool {
	info, err := os.Stat(p.CustomStyPath())
	return err == nil && !info.IsDir()
}

// Settings loads the project's Settings.xml.
func (p *Project) Settings() (*Settings, error) {
	return LoadSettings(p.SettingsPath())
}

// SourceFiles returns the project's scripture source files: .sfm/.usfm in
// any case, optionally .xz compressed, sorted by name.
func (p *Project) SourceFiles() ([]string, error) {
	entries, err := os.ReadDir(p.Path)
	if err != nil {
		return nil, errors.NewIO("list", p.Path, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if isSourceName(e.Name()) {
			files = append(files, filepath.Join(p.Path, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// isSourceName reports whether a file name looks like scripture source.
func isSourceName(name string) bool {
	lower := strings.ToLower(name)
	lower = strings.TrimSuffix(lower, ".xz")
	return strings.HasSuffix(lower, ".sfm") || strings.HasSuffix(lower, ".usfm")
}

// IsProjectDir reports whether a directory looks like a Paratext project:
// a Settings.xml plus at least one source file.
func IsProjectDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	if _, err := os.Stat(filepath.Join(path, "Settings.xml")); err != nil {
		return false
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && isSourceName(e.Name()) {
			return true
		}
	}
	return false
}

// dateSuffixPattern matches folder names carrying a _yyyy_mm_dd or _yyyymmdd
// version suffix.
var dateSuffixPattern = regexp.MustCompile(`^(.+?)(?:_(\d{4})_(\d{2})_(\d{2})|_(\d{8}))$`)

// splitVersion splits a project folder name into its base name and version
// date. ok is false for undated names.
func splitVersion(name string) (base string, date time.Time, ok bool) {
	m := dateSuffixPattern.FindStringSubmatch(name)
	if m == nil {
		return name, time.Time{}, false
	}
	var t time.Time
	var err error
	if m[2] != "" {
		t, err = time.Parse("2006_01_02", m[2]+"_"+m[3]+"_"+m[4])
	} else {
		t, err = time.Parse("20060102", m[5])
	}
	if err != nil {
		return name, time.Time{}, false
	}
	return m[1], t, true
}

// FindOptions controls project discovery.
type FindOptions struct {
	// Limit caps how many qualifying projects are collected during the scan.
	// Zero means no limit.
	Limit int
	// Filter, when non-empty and Limit is set, restricts qualification to
	// projects that contain every filtered book per their naming scheme.
	Filter canon.Set
}

// FindProjects scans baseDir for Paratext project folders. When several
// versions of a project carry date suffixes, only the latest dated version
// (or an undated one) is kept. Results are sorted by project ID.
func FindProjects(baseDir string, opts FindOptions) ([]*Project, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, errors.NewIO("scan", baseDir, err)
	}

	var candidates []*Project
	found := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(baseDir, e.Name())
		if !IsProjectDir(path) {
			continue
		}
		proj := &Project{ID: e.Name(), Path: path}
		if opts.Limit > 0 {
			if !opts.Filter.Empty() && !ContainsBooks(proj, opts.Filter) {
				continue
			}
			candidates = append(candidates, proj)
			found++
			if found >= opts.Limit {
				break
			}
		} else {
			candidates = append(candidates, proj)
		}
	}

	return dedupVersions(candidates), nil
}

// dedupVersions keeps one project per base name: the latest dated version if
// any version is dated, otherwise an undated one.
func dedupVersions(candidates []*Project) []*Project {
	type version struct {
		proj  *Project
		date  time.Time
		dated bool
	}
	byBase := make(map[string][]version)
	var order []string
	for _, p := range candidates {
		base, date, dated := splitVersion(p.ID)
		if _, seen := byBase[base]; !seen {
			order = append(order, base)
		}
		byBase[base] = append(byBase[base], version{proj: p, date: date, dated: dated})
	}

	var out []*Project
	for _, base := range order {
		versions := byBase[base]
		var best *version
		for i := range versions {
			v := &versions[i]
			switch {
			case best == nil:
				best = v
			case v.dated && !best.dated:
				best = v
			case v.dated && best.dated && v.date.After(best.date):
				best = v
			}
		}
		out = append(out, best.proj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ContainsBooks reports whether the project has a source file for every book
// in filter, per its settings naming scheme. Unparsable settings disqualify
// the project.
func ContainsBooks(p *Project, filter canon.Set) bool {
	if filter.Empty() {
		return true
	}
	settings, err := p.Settings()
	if err != nil {
		return false
	}
	for _, code := range filter.Codes() {
		name, err := settings.BookFileName(code)
		if err != nil {
			return false
		}
		if !sourceExists(filepath.Join(p.Path, name)) {
			return false
		}
	}
	return true
}

// sourceExists checks for a source file, allowing an .xz compressed variant.
func sourceExists(path string) bool {
	if _, err := os.Stat(path); err == nil {
		return true
	}
	_, err := os.Stat(path + ".xz")
	return err == nil
}

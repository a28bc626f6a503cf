// Package paratext loads Paratext-style scripture projects: folder
// discovery, Settings.xml metadata, and source file access.
package paratext

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/ScriptureStats/core/errors"
	"github.com/FocuswithJustin/ScriptureStats/core/xml"
	"github.com/FocuswithJustin/ScriptureStats/internal/canon"
)

// Naming describes how a project names its book files, from the <Naming>
// element (or the older FileName* elements) of Settings.xml.
type Naming struct {
	PrePart      string
	PostPart     string
	BookNameForm string // e.g. "41MAT", "MAT", "41"
}

// Settings holds the project metadata read from Settings.xml.
type Settings struct {
	Name            string
	FullName        string
	LanguageIsoCode string // raw value, e.g. "haw:::" or "hbo:Hebr::"
	LanguageCode    string // first segment of LanguageIsoCode
	Script          string // second segment of LanguageIsoCode, if present
	LeftToRight     bool
	LeftToRightSet  bool // whether <LeftToRight> was present
	Naming          Naming
}

// ParseSettings extracts project settings from a parsed Settings.xml.
func ParseSettings(doc *xml.Document) (*Settings, error) {
	s := &Settings{}

	var err error
	if s.Name, err = doc.ElementText("//ScriptureText/Name"); err != nil {
		return nil, err
	}
	if s.FullName, err = doc.ElementText("//ScriptureText/FullName"); err != nil {
		return nil, err
	}

	if s.LanguageIsoCode, err = doc.ElementText("//ScriptureText/LanguageIsoCode"); err != nil {
		return nil, err
	}
	if s.LanguageIsoCode != "" {
		parts := strings.Split(s.LanguageIsoCode, ":")
		s.LanguageCode = strings.TrimSpace(parts[0])
		if len(parts) > 1 {
			s.Script = strings.TrimSpace(parts[1])
		}
	}

	ltr, err := doc.ElementText("//ScriptureText/LeftToRight")
	if err != nil {
		return nil, err
	}
	if ltr != "" {
		s.LeftToRightSet = true
		s.LeftToRight = strings.EqualFold(ltr, "T") || strings.EqualFold(ltr, "true")
	}

	if err := parseNaming(doc, &s.Naming); err != nil {
		return nil, err
	}
	return s, nil
}

// parseNaming reads the <Naming> element, falling back to the older
// FileNamePrePart / FileNameBookNameForm / FileNamePostPart elements.
func parseNaming(doc *xml.Document, n *Naming) error {
	node, err := doc.XPathFirst("//ScriptureText/Naming")
	if err != nil {
		return err
	}
	if node != nil {
		n.PrePart = node.Attr("PrePart")
		n.PostPart = node.Attr("PostPart")
		n.BookNameForm = node.Attr("BookNameForm")
		return nil
	}

	if n.PrePart, err = doc.ElementText("//ScriptureText/FileNamePrePart"); err != nil {
		return err
	}
	if n.PostPart, err = doc.ElementText("//ScriptureText/FileNamePostPart"); err != nil {
		return err
	}
	n.BookNameForm, err = doc.ElementText("//ScriptureText/FileNameBookNameForm")
	return err
}

// LoadSettings reads and parses a project's Settings.xml.
func LoadSettings(path string) (*Settings, error) {
	doc, err := xml.ParseFile(path)
	if err != nil {
		return nil, errors.NewParse("Settings.xml", path, err.Error())
	}
	return ParseSettings(doc)
}

// BookFileName returns the file name this project uses for a book, derived
// from the naming scheme: the "MAT" portion of the form is replaced with the
// book code and the "41" portion with the zero-padded USFM book number.
func (s *Settings) BookFileName(code string) (string, error) {
	code = canon.Normalize(code)
	num, ok := canon.BookNumber(code)
	if !ok {
		return "", errors.NewNotFound("book code", code)
	}
	form := s.Naming.BookNameForm
	if form == "" {
		return "", fmt.Errorf("project %s: no book naming scheme", s.Name)
	}
	name := strings.ReplaceAll(form, "MAT", code)
	name = strings.ReplaceAll(name, "41", fmt.Sprintf("%02d", num))
	return s.Naming.PrePart + name + s.Naming.PostPart, nil
}

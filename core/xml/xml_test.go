package xml

import (
	"os"
	"path/filepath"
	"testing"
)

const settingsDoc = `<?xml version="1.0" encoding="utf-8"?>
<ScriptureText>
  <Name>MyProj</Name>
  <LanguageIsoCode>haw:::</LanguageIsoCode>
  <LeftToRight>T</LeftToRight>
  <Naming PrePart="" PostPart=".SFM" BookNameForm="41MAT"/>
</ScriptureText>`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(settingsDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc == nil {
		t.Fatal("Parse returned nil document")
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse([]byte("<a><b></a>")); err == nil {
		t.Error("expected error for mismatched tags")
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Settings.xml")
	if err := os.WriteFile(path, []byte(settingsDoc), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := ParseFile(path); err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.xml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestXPath(t *testing.T) {
	doc, err := Parse([]byte(settingsDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	nodes, err := doc.XPath("//ScriptureText/*")
	if err != nil {
		t.Fatalf("XPath failed: %v", err)
	}
	if len(nodes) != 4 {
		t.Errorf("got %d nodes, want 4", len(nodes))
	}

	if _, err := doc.XPath("///"); err == nil {
		t.Error("expected error for invalid expression")
	}
}

func TestXPathFirst(t *testing.T) {
	doc, err := Parse([]byte(settingsDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	n, err := doc.XPathFirst("//Naming")
	if err != nil {
		t.Fatalf("XPathFirst failed: %v", err)
	}
	if n == nil {
		t.Fatal("Naming element not found")
	}
	if got := n.Attr("BookNameForm"); got != "41MAT" {
		t.Errorf("Attr(BookNameForm) = %q", got)
	}
	if got := n.Attr("Nope"); got != "" {
		t.Errorf("Attr(Nope) = %q, want empty", got)
	}

	missing, err := doc.XPathFirst("//DoesNotExist")
	if err != nil {
		t.Fatalf("XPathFirst failed: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for absent element")
	}
}

func TestElementText(t *testing.T) {
	doc, err := Parse([]byte(settingsDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	got, err := doc.ElementText("//LanguageIsoCode")
	if err != nil {
		t.Fatalf("ElementText failed: %v", err)
	}
	if got != "haw:::" {
		t.Errorf("ElementText = %q", got)
	}

	absent, err := doc.ElementText("//Missing")
	if err != nil {
		t.Fatalf("ElementText failed: %v", err)
	}
	if absent != "" {
		t.Errorf("ElementText for absent element = %q, want empty", absent)
	}
}

package stats

import (
	"testing"

	"github.com/FocuswithJustin/ScriptureStats/internal/paratext"
)

func TestDetectScript(t *testing.T) {
	cases := []struct {
		name   string
		sample string
		want   string
	}{
		{"latin", "in principio creavit deus", "Latin"},
		{"arabic", "في البدء خلق الله", "Arabic"},
		{"hebrew", "בראשית ברא אלהים", "Hebrew"},
		{"cyrillic", "в начале сотворил бог", "Cyrillic"},
		{"devanagari", "आदि में परमेश्वर ने", "Devanagari"},
		{"empty", "", "Unknown"},
		{"mixed dominant", "abcdefghij שלום", "Latin"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectScript([]rune(tc.sample))
			if got != tc.want {
				t.Errorf("DetectScript(%q) = %q, want %q", tc.sample, got, tc.want)
			}
		})
	}
}

func TestDetectScriptIgnoresCommon(t *testing.T) {
	// Spaces and digits are Common; combining marks are Inherited. Neither
	// should decide the outcome.
	got := DetectScript([]rune("  123  ́́́ ab"))
	if got != "Latin" {
		t.Errorf("DetectScript = %q, want Latin", got)
	}
}

func TestDirectionForScript(t *testing.T) {
	cases := map[string]string{
		"Latin":   "LTR",
		"Arabic":  "RTL",
		"Arab":    "RTL",
		"Hebrew":  "RTL",
		"Hebr":    "RTL",
		"Thaana":  "RTL",
		"Cyrl":    "LTR",
		"Unknown": "Unknown",
		"":        "Unknown",
	}
	for script, want := range cases {
		if got := DirectionForScript(script); got != want {
			t.Errorf("DirectionForScript(%q) = %q, want %q", script, got, want)
		}
	}
}

func TestDetectSettingsAuthoritative(t *testing.T) {
	s := &paratext.Settings{Script: "Arab"}
	script, dir := Detect(s, []rune("plain latin text"))
	if script != "Arab" || dir != "RTL" {
		t.Errorf("Detect = (%q, %q), want (Arab, RTL)", script, dir)
	}
}

func TestDetectExplicitDirectionWins(t *testing.T) {
	// A project can declare LTR even for a script that defaults to RTL.
	s := &paratext.Settings{Script: "Hebr", LeftToRight: true, LeftToRightSet: true}
	script, dir := Detect(s, nil)
	if script != "Hebr" || dir != "LTR" {
		t.Errorf("Detect = (%q, %q), want (Hebr, LTR)", script, dir)
	}

	s = &paratext.Settings{LeftToRight: false, LeftToRightSet: true}
	script, dir = Detect(s, []rune("latin sample"))
	if script != "Latin" || dir != "RTL" {
		t.Errorf("Detect = (%q, %q), want (Latin, RTL)", script, dir)
	}
}

func TestDetectFallback(t *testing.T) {
	script, dir := Detect(nil, []rune("שלום עולם"))
	if script != "Hebrew" || dir != "RTL" {
		t.Errorf("Detect = (%q, %q), want (Hebrew, RTL)", script, dir)
	}

	script, dir = Detect(nil, nil)
	if script != "Unknown" || dir != "Unknown" {
		t.Errorf("Detect = (%q, %q), want (Unknown, Unknown)", script, dir)
	}
}

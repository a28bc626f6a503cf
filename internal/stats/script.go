package stats

import (
	"sort"
	"unicode"

	"github.com/FocuswithJustin/ScriptureStats/internal/paratext"
)

// ScriptSampleSize caps how many word-forming runes are sampled for script
// detection.
const ScriptSampleSize = 5000

// ScriptUnknown is the explicit result for an empty or unclassifiable sample.
const ScriptUnknown = "Unknown"

// rtlScripts lists writing systems that flow right-to-left, by Unicode
// script name and by ISO 15924 code (settings carry the latter).
var rtlScripts = map[string]struct{}{
	"Arabic": {}, "Arab": {},
	"Hebrew": {}, "Hebr": {},
	"Syriac": {}, "Syrc": {},
	"Thaana": {}, "Thaa": {},
	"Nko": {}, "Nkoo": {},
	"Samaritan": {}, "Samr": {},
	"Mandaic": {}, "Mand": {},
	"Adlam": {}, "Adlm": {},
	"Hanifi_Rohingya": {}, "Rohg": {},
	"Yezidi": {}, "Yezi": {},
}

// scriptOf returns the Unicode script name of a rune. Script tables
// partition the code space, so at most one matches.
func scriptOf(r rune) string {
	for name, table := range unicode.Scripts {
		if unicode.Is(table, r) {
			return name
		}
	}
	return ""
}

// DetectScript classifies a sample of word-forming runes by dominant Unicode
// script. Common and Inherited runes carry no script signal and are ignored.
// An empty or unclassifiable sample yields ScriptUnknown, never an error.
func DetectScript(sample []rune) string {
	counts := make(map[string]int)
	for _, r := range sample {
		name := scriptOf(r)
		if name == "" || name == "Common" || name == "Inherited" {
			continue
		}
		counts[name]++
	}
	if len(counts) == 0 {
		return ScriptUnknown
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	// Dominant script; ties resolve by name so the result is deterministic.
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return names[0]
}

// DirectionForScript maps a script (name or ISO 15924 code) to a text
// direction: "RTL", "LTR", or "Unknown".
func DirectionForScript(script string) string {
	if script == "" || script == ScriptUnknown {
		return "Unknown"
	}
	if _, ok := rtlScripts[script]; ok {
		return "RTL"
	}
	return "LTR"
}

// Detect resolves a project's script and direction. Explicit settings
// values are authoritative; the sampled text is the fallback. Detect never
// fails: the zero outcome is ("Unknown", "Unknown").
func Detect(settings *paratext.Settings, sample []rune) (script, direction string) {
	if settings != nil && settings.Script != "" {
		script = settings.Script
	} else {
		script = DetectScript(sample)
	}

	switch {
	case settings != nil && settings.LeftToRightSet && settings.LeftToRight:
		direction = "LTR"
	case settings != nil && settings.LeftToRightSet:
		direction = "RTL"
	default:
		direction = DirectionForScript(script)
	}
	return script, direction
}

package formats

import (
	"strings"

	"github.com/desertthunder/chordx/internal/theory"
)

// detectOpenLP is kept for the legacy openlp tag; plain text never identifies as OpenLP.
func detectOpenLP(string) bool { return false }

// DetectTextFormat classifies raw chart text as Ultimate Guitar or FreeShow inline text.
//
// Every line is scanned for a section header, a chord row, and an inline bracketed chord. The decision
// order is fixed: header plus inline chord is FreeShow, header plus chord row is Ultimate Guitar,
// a header alone is FreeShow, and anything else is Ultimate Guitar.
func DetectTextFormat(text string) Format {
	var hasSection, hasChordLine, hasInlineChord bool

	for _, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if sectionLinePattern.MatchString(trimmed) {
			hasSection = true
			continue
		}
		if theory.ChordLeadPattern.MatchString(line) {
			hasChordLine = true
		}
		if theory.InlineChordPattern.MatchString(trimmed) {
			hasInlineChord = true
		}
	}

	switch {
	case detectOpenLP(text):
		return FormatOpenLP
	case hasSection && hasInlineChord:
		return FormatFreeShow
	case hasSection && hasChordLine:
		return FormatUltimateGuitar
	case hasSection:
		return FormatFreeShow
	default:
		return FormatUltimateGuitar
	}
}

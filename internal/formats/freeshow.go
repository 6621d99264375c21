package formats

import (
	"strings"

	"github.com/desertthunder/chordx/internal/models"
)

// ParseFreeShowText parses FreeShow inline text: "[Section]" headers and lyric lines carrying "[Chord]"
// markers at exact character positions.
func ParseFreeShowText(text string) []models.Section {
	var (
		sections []models.Section
		current  *sectionBuilder
		state    HeaderState
	)

	for _, line := range splitLines(text) {
		if label, ok := parseHeader(line); ok {
			if current != nil {
				sections = append(sections, current.finish())
			}
			var s models.Section
			s, state = OpenSection(label, state)
			current = newSectionBuilder(s)
			continue
		}
		if current == nil {
			continue
		}
		clean, chords := StripInlineMarkers(line)
		current.addLine(clean, chords)
	}

	if current != nil {
		sections = append(sections, current.finish())
	}
	return sections
}

// ParseSectionBody parses header-less FreeShow inline text as the body of a single section.
func ParseSectionBody(section models.Section, body string) models.Section {
	b := newSectionBuilder(models.Section{Type: section.Type, Number: section.Number})
	for _, line := range splitLines(body) {
		clean, chords := StripInlineMarkers(line)
		b.addLine(clean, chords)
	}
	return b.finish()
}

// ExportSectionBody renders one section's lines with inline chord markers and no header.
func ExportSectionBody(s models.Section) string {
	lines := s.Lines()
	out := make([]string, len(lines))
	for n, line := range lines {
		out[n] = InsertInlineMarkers(line, s.ChordsOnLine(n))
	}
	return strings.Join(out, "\n")
}

// ExportFreeShowText renders sections as FreeShow inline text separated by blank lines.
func ExportFreeShowText(sections []models.Section) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(formatHeader(s) + "\n")
		b.WriteString(ExportSectionBody(s) + "\n")
	}
	return b.String()
}

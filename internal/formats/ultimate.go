package formats

import (
	"strings"

	"github.com/desertthunder/chordx/internal/models"
	"github.com/desertthunder/chordx/internal/theory"
)

// UGIndentBias is the fixed column offset added to chord positions read from Ultimate Guitar chord rows.
const UGIndentBias = 2

// ParseUltimateGuitar parses Ultimate Guitar style text: "[Section N]" headers, and chord rows sitting
// directly above the lyric line they belong to.
//
// A line made of chord tokens whose next line is not a header is a chord row; the following line is consumed
// as its lyric. Lines before the first header are ignored. Input with no headers yields no sections.
func ParseUltimateGuitar(text string) []models.Section {
	lines := splitLines(text)

	var (
		sections []models.Section
		current  *sectionBuilder
		state    HeaderState
	)

	for i := 0; i < len(lines); {
		line := lines[i]

		if label, ok := parseHeader(line); ok {
			if current != nil {
				sections = append(sections, current.finish())
			}
			var s models.Section
			s, state = OpenSection(label, state)
			current = newSectionBuilder(s)
			i++
			continue
		}

		if current == nil {
			i++
			continue
		}

		if theory.IsChordLine(line) && (i+1 >= len(lines) || !isHeader(lines[i+1])) {
			lyric := ""
			step := 1
			if i+1 < len(lines) {
				lyric = lines[i+1]
				step = 2
			}
			lyric, chords := chordRow(line, lyric)
			current.addLine(lyric, chords)
			i += step
			continue
		}

		current.addLine(line, nil)
		i++
	}

	if current != nil {
		sections = append(sections, current.finish())
	}
	return sections
}

// chordRow extracts the chords of a chord row, positioned against lyric with the indent bias applied and
// clamped to the lyric's length. A blank lyric is padded with spaces out to the last chord instead, so an
// instrumental row keeps its spacing.
func chordRow(row, lyric string) (string, []InlineChord) {
	var chords []InlineChord
	for _, m := range theory.ChordTokenPattern.FindAllStringIndex(row, -1) {
		chords = append(chords, InlineChord{Text: row[m[0]:m[1]], Position: runeLen(row[:m[0]]) + UGIndentBias})
	}
	if len(chords) == 0 {
		return lyric, nil
	}

	if strings.TrimSpace(lyric) == "" {
		return strings.Repeat(" ", chords[len(chords)-1].Position), chords
	}
	limit := runeLen(lyric)
	for i := range chords {
		chords[i].Position = min(chords[i].Position, limit)
	}
	return lyric, chords
}

// ExportUltimateGuitar renders sections as Ultimate Guitar text, writing a chord row above every line that
// carries chords. Sections are separated by a blank line.
func ExportUltimateGuitar(sections []models.Section) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(formatHeader(s) + "\n")
		for n, line := range s.Lines() {
			if chords := s.ChordsOnLine(n); len(chords) > 0 {
				placements := make([]ChordPlacement, len(chords))
				for j, c := range chords {
					placements[j] = ChordPlacement{Column: max(c.Position-UGIndentBias, 0), Text: c.Text}
				}
				b.WriteString(BuildChordRow(placements) + "\n")
			}
			if strings.TrimSpace(line) == "" {
				line = ""
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

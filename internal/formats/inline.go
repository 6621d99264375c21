package formats

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/chordx/internal/models"
)

var inlineMarker = regexp.MustCompile(`\[(.*?)\]`)

// InlineChord is a chord lifted out of a lyric line, positioned in the coordinates of the clean line.
type InlineChord struct {
	Text     string
	Position int
}

// StripInlineMarkers removes every "[Chord]" marker from line and returns the clean line with the chords.
//
// Each chord's position is its marker's offset minus the length of all markers removed before it, so positions
// address the marker-free string. Offsets are counted in characters.
func StripInlineMarkers(line string) (string, []InlineChord) {
	matches := inlineMarker.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return line, nil
	}

	var (
		clean   strings.Builder
		chords  []InlineChord
		removed int
		last    int
	)
	for _, m := range matches {
		start := utf8.RuneCountInString(line[:m[0]])
		if text := strings.TrimSpace(line[m[2]:m[3]]); text != "" {
			chords = append(chords, InlineChord{Text: text, Position: start - removed})
		}
		removed += utf8.RuneCountInString(line[m[0]:m[1]])

		clean.WriteString(line[last:m[0]])
		last = m[1]
	}
	clean.WriteString(line[last:])

	return clean.String(), chords
}

// InsertInlineMarkers is the inverse of [StripInlineMarkers]: it writes "[Chord]" markers into line at each
// chord's position. Positions past the end of the line are appended at the end.
func InsertInlineMarkers(line string, chords []models.Chord) string {
	if len(chords) == 0 {
		return line
	}
	sorted := slices.Clone(chords)
	slices.SortStableFunc(sorted, func(a, b models.Chord) int { return a.Position - b.Position })

	runes := []rune(line)
	var b strings.Builder
	next := 0
	for i, r := range runes {
		for next < len(sorted) && sorted[next].Position <= i {
			b.WriteString("[" + sorted[next].Text + "]")
			next++
		}
		b.WriteRune(r)
	}
	for ; next < len(sorted); next++ {
		b.WriteString("[" + sorted[next].Text + "]")
	}
	return b.String()
}

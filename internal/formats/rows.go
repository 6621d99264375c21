package formats

import (
	"slices"
	"strings"
)

// ChordPlacement is a chord to draw at a column of a chord row.
type ChordPlacement struct {
	Column int
	Text   string
}

// BuildChordRow lays chords out on a single line, padding with spaces up to each chord's column.
// Padding is the next chord's column minus the previous chord's end column; it never goes negative and
// consecutive chords keep at least one space between them.
func BuildChordRow(chords []ChordPlacement) string {
	sorted := slices.Clone(chords)
	slices.SortStableFunc(sorted, func(a, b ChordPlacement) int { return a.Column - b.Column })

	var b strings.Builder
	end := 0
	for i, c := range sorted {
		pad := max(c.Column-end, 0)
		if i > 0 && pad < 1 {
			pad = 1
		}
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(c.Text)
		end += pad + runeLen(c.Text)
	}
	return b.String()
}

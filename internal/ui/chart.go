package ui

import (
	"strings"

	"github.com/desertthunder/chordx/internal/formatter"
	"github.com/desertthunder/chordx/internal/models"
)

// ChartRenderer draws laid out chord charts for a terminal.
type ChartRenderer struct {
	palette *Palette
	themes  map[models.SectionType]SectionTheme
}

// NewChartRenderer creates a renderer using the default palette and the given section color overrides.
func NewChartRenderer(overrides map[models.SectionType]string) *ChartRenderer {
	return &ChartRenderer{palette: styles, themes: SectionThemes(overrides)}
}

// Render styles each chart line by kind: section headers as colored badges, chord rows in a lighter shade of
// the section color and lyrics unstyled so their columns stay aligned with the chord rows.
func (r *ChartRenderer) Render(lines []formatter.ChartLine) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(r.line(l))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *ChartRenderer) line(l formatter.ChartLine) string {
	theme, ok := r.themes[l.Section]
	switch l.Kind {
	case formatter.LineTitle:
		return r.palette.title.UnsetMarginBottom().Render(l.Text)
	case formatter.LineMeta:
		return r.palette.help.Render(l.Text)
	case formatter.LineHeader:
		if ok {
			return theme.Header.Render(l.Text)
		}
	case formatter.LineChords:
		if ok {
			return theme.Chords.Render(l.Text)
		}
	}
	return l.Text
}

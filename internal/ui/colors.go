package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/desertthunder/chordx/internal/formats"
	"github.com/desertthunder/chordx/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields for viewer chrome
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// SectionTheme holds the derived styles for one section type.
type SectionTheme struct {
	Header lipgloss.Style // label badge: section color background with a readable foreground
	Chords lipgloss.Style // chord rows: section color lightened towards white
}

var white = colorful.Color{R: 1, G: 1, B: 1}

// NewSectionTheme derives a [SectionTheme] from a hex color. Invalid colors fall back to the help gray.
func NewSectionTheme(hex string) SectionTheme {
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex("#626262")
	}

	fg := "#000000"
	if l, _, _ := c.Lab(); l < 0.6 {
		fg = "#ffffff"
	}

	return SectionTheme{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fg)).
			Background(lipgloss.Color(c.Hex())).
			Padding(0, 1),
		Chords: NewBold(c.BlendLab(white, 0.3).Clamped().Hex()),
	}
}

// SectionThemes builds a theme per section type from the .show palette with overrides applied.
func SectionThemes(overrides map[models.SectionType]string) map[models.SectionType]SectionTheme {
	themes := make(map[models.SectionType]SectionTheme, len(models.SectionTypes))
	for _, t := range models.SectionTypes {
		hex := formats.SectionColors[t]
		if o, ok := overrides[t]; ok {
			hex = o
		}
		themes[t] = NewSectionTheme(hex)
	}
	return themes
}

package formats

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/chordx/internal/models"
	"github.com/desertthunder/chordx/internal/theory"
)

var (
	sectionLinePattern = regexp.MustCompile(`^\[([^\[\]]+)\]$`)
	headerNumber       = regexp.MustCompile(`\d+`)
)

// HeaderState is the running per-type section count threaded through a parse.
// It is a plain value: every advance returns the next state instead of mutating shared counters.
type HeaderState struct {
	counts [8]int
}

// Advance bumps the counter for t and returns its new value with the updated state.
func (h HeaderState) Advance(t models.SectionType) (int, HeaderState) {
	i := slices.Index(models.SectionTypes, t)
	if i < 0 {
		i = 0
	}
	h.counts[i]++
	return h.counts[i], h
}

// Count returns how many sections of type t have been seen.
func (h HeaderState) Count(t models.SectionType) int {
	if i := slices.Index(models.SectionTypes, t); i >= 0 {
		return h.counts[i]
	}
	return 0
}

// ClassifySection maps a header label to a section type by substring, checked in the order
// chorus, bridge, tag, with verse as the fallback.
func ClassifySection(label string) models.SectionType {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "chorus"):
		return models.Chorus
	case strings.Contains(lower, "bridge"):
		return models.Bridge
	case strings.Contains(lower, "tag"):
		return models.Tag
	default:
		return models.Verse
	}
}

// OpenSection classifies label and numbers it, preferring a number written in the label over the counter.
func OpenSection(label string, state HeaderState) (models.Section, HeaderState) {
	return openTypedSection(ClassifySection(label), label, state)
}

// openTypedSection numbers a section whose type is already known.
func openTypedSection(t models.SectionType, label string, state HeaderState) (models.Section, HeaderState) {
	n, state := state.Advance(t)
	if m := headerNumber.FindString(label); m != "" {
		if v, err := strconv.Atoi(m); err == nil && v > 0 {
			n = v
		}
	}
	return models.Section{Type: t, Number: n}, state
}

// parseHeader reports whether line is a "[Label]" section header. A bracketed bare chord is not a header.
func parseHeader(line string) (string, bool) {
	m := sectionLinePattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	label := strings.TrimSpace(m[1])
	if label == "" || theory.IsChord(label) {
		return "", false
	}
	return label, true
}

func isHeader(line string) bool {
	_, ok := parseHeader(line)
	return ok
}

// formatHeader renders the "[Label N]" header used by both text formats.
func formatHeader(s models.Section) string {
	return "[" + s.Heading() + "]"
}

// sectionBuilder accumulates lines and chords for the section currently being parsed.
type sectionBuilder struct {
	section models.Section
	lines   []string
	chords  []models.Chord
}

func newSectionBuilder(s models.Section) *sectionBuilder {
	return &sectionBuilder{section: s}
}

// line is the index the next added line will get.
func (b *sectionBuilder) line() int { return len(b.lines) }

func (b *sectionBuilder) addLine(text string, chords []InlineChord) {
	n := b.line()
	for _, c := range chords {
		b.chords = append(b.chords, models.NewChord(c.Text, n, c.Position))
	}
	b.lines = append(b.lines, text)
}

// finish drops trailing blank lines that carry no chords and returns the section.
func (b *sectionBuilder) finish() models.Section {
	lines := b.lines
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" && !b.hasChordOn(len(lines)-1) {
		lines = lines[:len(lines)-1]
	}
	s := b.section
	s.Content = strings.Join(lines, "\n")
	s.Chords = b.chords
	if s.Chords == nil {
		s.Chords = []models.Chord{}
	}
	return s
}

func (b *sectionBuilder) hasChordOn(line int) bool {
	for _, c := range b.chords {
		if c.Line == line {
			return true
		}
	}
	return false
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

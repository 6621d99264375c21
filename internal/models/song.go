package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// SectionType names the kind of block a [Section] represents.
type SectionType string

const (
	Verse     SectionType = "verse"
	Chorus    SectionType = "chorus"
	Bridge    SectionType = "bridge"
	Tag       SectionType = "tag"
	Break     SectionType = "break"
	Intro     SectionType = "intro"
	Outro     SectionType = "outro"
	PreChorus SectionType = "pre-chorus"
)

// SectionTypes lists every section type in display order.
var SectionTypes = []SectionType{Verse, Chorus, Bridge, Tag, Break, Intro, Outro, PreChorus}

// Valid reports whether t is one of the known section types.
func (t SectionType) Valid() bool {
	return slices.Contains(SectionTypes, t)
}

// Label returns the header keyword for t, e.g. "Verse" or "Pre-Chorus".
func (t SectionType) Label() string {
	parts := strings.Split(string(t), "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "-")
}

// Chord is a harmonic marker anchored to a character offset on one lyric line of a [Section].
type Chord struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Position int    `json:"position"` // offset into the marker-free line, in characters
	Line     int    `json:"line"`     // index into the section's content lines
}

// NewChord creates a chord with a fresh id.
func NewChord(text string, line, position int) Chord {
	return Chord{ID: NewChordID(), Text: text, Position: position, Line: line}
}

// NewChordID generates an id for a chord.
func NewChordID() string {
	return uuid.New().String()
}

// Section is a named block of a song: newline-joined lyric lines without chord markup plus the chords placed on them.
type Section struct {
	Type    SectionType `json:"type"`
	Content string      `json:"content"`
	Number  int         `json:"number,omitempty"` // per-type running count, 0 when unset
	Chords  []Chord     `json:"chords"`
}

// Lines splits the section content into lyric lines.
func (s Section) Lines() []string {
	return strings.Split(s.Content, "\n")
}

// LineCount returns the number of lyric lines; empty content still counts as one line.
func (s Section) LineCount() int {
	return strings.Count(s.Content, "\n") + 1
}

// ChordsOnLine returns the chords placed on line, ordered by position.
func (s Section) ChordsOnLine(line int) []Chord {
	var out []Chord
	for _, c := range s.Chords {
		if c.Line == line {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b Chord) int { return a.Position - b.Position })
	return out
}

// SortedChords returns the chords in reading order (line, then position).
func (s Section) SortedChords() []Chord {
	out := slices.Clone(s.Chords)
	slices.SortStableFunc(out, func(a, b Chord) int {
		if a.Line != b.Line {
			return a.Line - b.Line
		}
		return a.Position - b.Position
	})
	return out
}

// Heading returns the "Label N" form used by the text formats, omitting an unset number.
func (s Section) Heading() string {
	if s.Number > 0 {
		return fmt.Sprintf("%s %d", s.Type.Label(), s.Number)
	}
	return s.Type.Label()
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	s.Chords = slices.Clone(s.Chords)
	return s
}

// Validate checks the chord placement invariant: every chord sits on an existing line within its bounds.
func (s Section) Validate() error {
	if !s.Type.Valid() {
		return fmt.Errorf("unknown section type %q", s.Type)
	}
	lines := s.Lines()
	for _, c := range s.Chords {
		if c.Line < 0 || c.Line >= len(lines) {
			return fmt.Errorf("chord %q on line %d outside %d lines", c.Text, c.Line, len(lines))
		}
		if n := utf8.RuneCountInString(lines[c.Line]); c.Position < 0 || c.Position > n {
			return fmt.Errorf("chord %q at position %d outside line %d of length %d", c.Text, c.Position, c.Line, n)
		}
	}
	return nil
}

// CloneSections deep-copies a slice of sections.
func CloneSections(sections []Section) []Section {
	if sections == nil {
		return nil
	}
	out := make([]Section, len(sections))
	for i, s := range sections {
		out[i] = s.Clone()
	}
	return out
}

// Song is an ordered list of sections plus metadata.
type Song struct {
	ID               string    `json:"id,omitempty"`
	Title            string    `json:"title"`
	Artist           string    `json:"artist,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	OriginalKey      string    `json:"originalKey,omitempty"`
	Sections         []Section `json:"sections"`
	OriginalSections []Section `json:"originalSections,omitempty"` // snapshot taken once, used to reset transposition
	CurrentTranspose string    `json:"currentTranspose,omitempty"`
	CreatedAt        time.Time `json:"createdAt,omitzero"`
	UpdatedAt        time.Time `json:"updatedAt,omitzero"`
}

// ChordTexts returns every chord text in reading order: section, then line, then position.
func (s *Song) ChordTexts() []string {
	var out []string
	for _, sec := range s.Sections {
		for _, c := range sec.SortedChords() {
			out = append(out, c.Text)
		}
	}
	return out
}

// Clone returns a deep copy of the song.
func (s *Song) Clone() *Song {
	c := *s
	c.Tags = slices.Clone(s.Tags)
	c.Sections = CloneSections(s.Sections)
	c.OriginalSections = CloneSections(s.OriginalSections)
	return &c
}

// Validate checks that every section holds its chord placement invariants.
func (s *Song) Validate() error {
	for i, sec := range s.Sections {
		if err := sec.Validate(); err != nil {
			return fmt.Errorf("section %d (%s): %w", i, sec.Heading(), err)
		}
	}
	return nil
}

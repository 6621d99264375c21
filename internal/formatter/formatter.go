// package formatter lays songs out as chord charts (chord row above each lyric line) and renders them as plain
// text or Markdown.
//
// The layout is the same positional contract a PDF renderer draws: chord rows are padded with spaces up to each
// chord's column, so alignment is only approximate once a proportional font is used.
package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/desertthunder/chordx/internal/editing"
	"github.com/desertthunder/chordx/internal/formats"
	"github.com/desertthunder/chordx/internal/models"
)

// DefaultChartWidth is the wrap width used when [ChartOptions.Width] is unset.
const DefaultChartWidth = 80

// ChartLineKind tells a renderer how to draw a [ChartLine].
type ChartLineKind int

const (
	LineTitle ChartLineKind = iota
	LineMeta
	LineHeader
	LineChords
	LineLyrics
	LineBlank
)

func (k ChartLineKind) String() string {
	switch k {
	case LineTitle:
		return "title"
	case LineMeta:
		return "meta"
	case LineHeader:
		return "header"
	case LineChords:
		return "chords"
	case LineLyrics:
		return "lyrics"
	case LineBlank:
		return "blank"
	default:
		return "unknown"
	}
}

// ChartLine is one drawn line of a chart. Section is set for lines that belong to a section.
type ChartLine struct {
	Kind    ChartLineKind
	Text    string
	Section models.SectionType
}

// ChartOptions controls chart layout.
type ChartOptions struct {
	Width    int  // wrap width in characters
	NoHeader bool // omit title and metadata lines
}

func (o ChartOptions) width() int {
	if o.Width <= 0 {
		return DefaultChartWidth
	}
	return o.Width
}

// LayoutChart returns the lines of a chord chart for song in drawing order.
func LayoutChart(song *models.Song, opts ChartOptions) []ChartLine {
	var out []ChartLine

	if !opts.NoHeader {
		if song.Title != "" {
			out = append(out, ChartLine{Kind: LineTitle, Text: song.Title})
		}
		for _, m := range metaLines(song) {
			out = append(out, ChartLine{Kind: LineMeta, Text: m})
		}
		if len(out) > 0 {
			out = append(out, ChartLine{Kind: LineBlank})
		}
	}

	for i, s := range song.Sections {
		if i > 0 {
			out = append(out, ChartLine{Kind: LineBlank})
		}
		out = append(out, layoutSection(s, opts.width())...)
	}
	return out
}

func metaLines(song *models.Song) []string {
	var lines []string
	if song.Artist != "" {
		lines = append(lines, "Artist: "+song.Artist)
	}
	if song.OriginalKey != "" {
		key := editing.SongKey(song)
		if song.CurrentTranspose != "" {
			key = fmt.Sprintf("%s (transposed %s from %s)", key, song.CurrentTranspose, song.OriginalKey)
		}
		lines = append(lines, "Key: "+key)
	}
	if len(song.Tags) > 0 {
		lines = append(lines, "Tags: "+strings.Join(song.Tags, ", "))
	}
	return lines
}

func layoutSection(s models.Section, width int) []ChartLine {
	out := []ChartLine{{Kind: LineHeader, Text: s.Heading(), Section: s.Type}}
	for n, line := range s.Lines() {
		chords := s.ChordsOnLine(n)
		for _, seg := range wrapLine(line, width) {
			var placements []formats.ChordPlacement
			for _, c := range chords {
				if seg.holds(c.Position) {
					placements = append(placements, formats.ChordPlacement{
						Column: min(c.Position-seg.start, seg.length()),
						Text:   c.Text,
					})
				}
			}
			if len(placements) > 0 {
				out = append(out, ChartLine{Kind: LineChords, Text: formats.BuildChordRow(placements), Section: s.Type})
			}
			out = append(out, ChartLine{Kind: LineLyrics, Text: seg.text, Section: s.Type})
		}
	}
	return out
}

// segment is a wrapped piece of a lyric line. Chords at offsets in [start, next) belong to it.
type segment struct {
	text  string
	start int
	next  int
	last  bool
}

func (s segment) length() int { return len([]rune(s.text)) }

func (s segment) holds(pos int) bool {
	return pos >= s.start && (pos < s.next || s.last)
}

// wrapLine breaks line at spaces so no segment is longer than width, splitting words that do not fit.
func wrapLine(line string, width int) []segment {
	runes := []rune(line)
	var segs []segment
	start := 0
	for len(runes)-start > width {
		end := -1
		for i := start + width; i > start; i-- {
			if runes[i] == ' ' {
				end = i
				break
			}
		}
		if end < 0 {
			segs = append(segs, segment{text: string(runes[start : start+width]), start: start, next: start + width})
			start += width
			continue
		}
		segs = append(segs, segment{text: string(runes[start:end]), start: start, next: end + 1})
		start = end + 1
	}
	return append(segs, segment{text: string(runes[start:]), start: start, next: len(runes), last: true})
}

// RenderChart joins chart lines into plain text.
func RenderChart(lines []ChartLine) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// ExportToText renders song as a plain text chord chart.
func ExportToText(song *models.Song, opts ChartOptions) ([]byte, error) {
	return []byte(RenderChart(LayoutChart(song, opts))), nil
}

// ExportToMarkdown renders song as Markdown: metadata as bold fields and each section as a heading followed by
// a fenced block that keeps chord rows aligned.
func ExportToMarkdown(song *models.Song, opts ChartOptions) ([]byte, error) {
	var buf bytes.Buffer

	title := song.Title
	if title == "" {
		title = "Untitled"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))

	if song.Artist != "" {
		buf.WriteString(fmt.Sprintf("**Artist**: %s\n", song.Artist))
	}
	if song.OriginalKey != "" {
		buf.WriteString(fmt.Sprintf("**Key**: %s\n", editing.SongKey(song)))
	}
	if len(song.Tags) > 0 {
		buf.WriteString(fmt.Sprintf("**Tags**: %s\n", strings.Join(song.Tags, ", ")))
	}
	if song.Notes != "" {
		buf.WriteString(fmt.Sprintf("\n> %s\n", strings.ReplaceAll(song.Notes, "\n", "\n> ")))
	}

	for _, s := range song.Sections {
		buf.WriteString(fmt.Sprintf("\n## %s\n\n```\n", s.Heading()))
		for _, l := range layoutSection(s, opts.width())[1:] {
			buf.WriteString(l.Text + "\n")
		}
		buf.WriteString("```\n")
	}

	return buf.Bytes(), nil
}

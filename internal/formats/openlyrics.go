package formats

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/desertthunder/chordx/internal/models"
	"github.com/desertthunder/chordx/internal/theory"
)

// OpenLyricsNamespace identifies an OpenLyrics document.
const OpenLyricsNamespace = "http://openlyrics.info/namespace/2009/song"

const openLyricsVersion = "0.8"

var (
	titleExpr    = xpath.MustCompile(`//*[local-name()='titles']/*[local-name()='title']`)
	anyTitleExpr = xpath.MustCompile(`//*[local-name()='title']`)
	authorExpr   = xpath.MustCompile(`//*[local-name()='authors']/*[local-name()='author'] | /*[local-name()='song']/*[local-name()='author']`)
	themeExpr    = xpath.MustCompile(`//*[local-name()='themes']/*[local-name()='theme'] | /*[local-name()='song']/*[local-name()='theme']`)
	keyExpr      = xpath.MustCompile(`//*[local-name()='properties']/*[local-name()='key'] | /*[local-name()='song']/*[local-name()='key']`)
	verseExpr    = xpath.MustCompile(`//*[local-name()='lyrics']/*[local-name()='verse']`)
	linesExpr    = xpath.MustCompile(`*[local-name()='lines']`)
	openSongExpr = xpath.MustCompile(`/*[local-name()='song']/*[local-name()='lyrics']`)
	breakExpr    = xpath.MustCompile(`.//*[local-name()='br']`)
	genericExpr  = xpath.MustCompile(`//*[local-name()='verse' or local-name()='chorus' or local-name()='bridge' or local-name()='section' or local-name()='stanza']`)
)

var (
	themesBlock   = regexp.MustCompile(`(?s)<themes\b[^>]*>(.*?)</themes>`)
	themeElement  = regexp.MustCompile(`(?s)<theme\b[^>]*>(.*?)</theme>`)
	anyTag        = regexp.MustCompile(`<[^>]*>`)
	authorDivider = regexp.MustCompile(`(?i)\s*&\s*|\s+and\s+`)
	verseName     = regexp.MustCompile(`^([a-z-]*)`)
)

// ParseOpenLyrics parses OpenLyrics XML, OpenSong XML, or generic verse-tagged XML.
//
// OpenLyrics is recognised by its namespace. Otherwise an OpenSong <lyrics> text block is read, and failing
// that any verse, chorus, bridge, section or stanza elements. Chord positions inside <lines> are estimated from
// the text that precedes each <chord> element.
func ParseOpenLyrics(data []byte) (*models.Song, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}

	song := &models.Song{
		Title:       firstText(doc, titleExpr, anyTitleExpr),
		Artist:      strings.Join(splitAuthors(xmlquery.QuerySelectorAll(doc, authorExpr)), ", "),
		Tags:        mergeThemes(xmlquery.QuerySelectorAll(doc, themeExpr), string(data)),
		OriginalKey: firstText(doc, keyExpr),
	}

	switch {
	case bytes.Contains(data, []byte(OpenLyricsNamespace)):
		song.Sections = parseOpenLyricsVerses(doc)
	case isOpenSong(doc):
		song.Sections = ParseOpenSongLyrics(xmlquery.QuerySelector(doc, openSongExpr).InnerText())
	default:
		song.Sections = parseGenericVerses(doc)
	}
	return song, nil
}

func firstText(doc *xmlquery.Node, exprs ...*xpath.Expr) string {
	for _, expr := range exprs {
		if n := xmlquery.QuerySelector(doc, expr); n != nil {
			if text := strings.TrimSpace(n.InnerText()); text != "" {
				return text
			}
		}
	}
	return ""
}

// splitAuthors splits "A & B" and "A and B" into separate names and drops duplicates, keeping first-seen order.
func splitAuthors(nodes []*xmlquery.Node) []string {
	var names []string
	for _, n := range nodes {
		for _, name := range authorDivider.Split(n.InnerText(), -1) {
			if name = strings.TrimSpace(name); name != "" && !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}
	return names
}

// mergeThemes unions the themes found by query with those matched in the raw document text.
func mergeThemes(nodes []*xmlquery.Node, raw string) []string {
	var themes []string
	add := func(theme string) {
		if theme = strings.TrimSpace(theme); theme != "" && !slices.Contains(themes, theme) {
			themes = append(themes, theme)
		}
	}
	for _, n := range nodes {
		add(n.InnerText())
	}
	for _, block := range themesBlock.FindAllStringSubmatch(raw, -1) {
		for _, m := range themeElement.FindAllStringSubmatch(block[1], -1) {
			add(html.UnescapeString(anyTag.ReplaceAllString(m[1], "")))
		}
	}
	return themes
}

// VerseType maps an OpenLyrics or OpenSong verse name such as "v1", "c" or "pre-chorus2" to a section type.
func VerseType(name string) models.SectionType {
	word := verseName.FindString(strings.ToLower(strings.TrimSpace(name)))
	if t := models.SectionType(word); word != "" && t.Valid() {
		return t
	}
	switch word {
	case "ending":
		return models.Outro
	case "prechorus":
		return models.PreChorus
	case "":
		return models.Verse
	}
	switch word[0] {
	case 'c':
		return models.Chorus
	case 'b':
		return models.Bridge
	case 'p':
		return models.PreChorus
	case 'i':
		return models.Intro
	case 'o', 'e':
		return models.Outro
	case 't':
		return models.Tag
	default:
		return models.Verse
	}
}

// verseCode is the inverse of [VerseType].
func verseCode(s models.Section) string {
	code := map[models.SectionType]string{
		models.Verse:     "v",
		models.Chorus:    "c",
		models.Bridge:    "b",
		models.Tag:       "t",
		models.Break:     "break",
		models.Intro:     "i",
		models.Outro:     "e",
		models.PreChorus: "p",
	}[s.Type]
	if code == "" {
		code = "v"
	}
	if s.Number > 0 {
		return fmt.Sprintf("%s%d", code, s.Number)
	}
	return code
}

func parseOpenLyricsVerses(doc *xmlquery.Node) []models.Section {
	var (
		sections []models.Section
		state    HeaderState
	)
	for _, verse := range xmlquery.QuerySelectorAll(doc, verseExpr) {
		name := verse.SelectAttr("name")
		var s models.Section
		s, state = openTypedSection(VerseType(name), name, state)

		b := newSectionBuilder(s)
		containers := xmlquery.QuerySelectorAll(verse, linesExpr)
		if len(containers) == 0 {
			containers = []*xmlquery.Node{verse}
		}
		for _, c := range containers {
			w := markupWalker{}
			w.walk(c)
			for _, l := range w.finish() {
				b.addLine(l.text, l.chords)
			}
		}
		sections = append(sections, b.finish())
	}
	return sections
}

func isOpenSong(doc *xmlquery.Node) bool {
	n := xmlquery.QuerySelector(doc, openSongExpr)
	if n == nil {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return false
		}
	}
	return strings.TrimSpace(n.InnerText()) != ""
}

// ParseOpenSongLyrics parses the text of an OpenSong <lyrics> element: "[V1]" headers, chord rows prefixed
// with ".", lyric lines prefixed with a space, and ";" comments. Content before any header opens an
// implicit first verse. Headers use verse codes, so "[C]" is a chorus rather than a chord.
func ParseOpenSongLyrics(text string) []models.Section {
	var (
		sections []models.Section
		current  *sectionBuilder
		state    HeaderState
		pending  string
		hasRow   bool
	)

	open := func(label string, t models.SectionType) {
		var s models.Section
		s, state = openTypedSection(t, label, state)
		current = newSectionBuilder(s)
	}
	flushRow := func() {
		if hasRow {
			current.addLine("", alignedChordRow(pending, ""))
			hasRow = false
		}
	}

	for _, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if m := sectionLinePattern.FindStringSubmatch(trimmed); m != nil {
			label := strings.TrimSpace(m[1])
			if current != nil {
				flushRow()
				sections = append(sections, current.finish())
			}
			open(label, VerseType(label))
			continue
		}
		if strings.HasPrefix(line, ";") {
			continue
		}
		if current == nil {
			if trimmed == "" {
				continue
			}
			open("", models.Verse)
		}
		if strings.HasPrefix(line, ".") {
			flushRow()
			pending, hasRow = line[1:], true
			continue
		}

		lyric := strings.TrimPrefix(line, " ")
		if hasRow {
			current.addLine(lyric, alignedChordRow(pending, lyric))
			hasRow = false
			continue
		}
		current.addLine(lyric, nil)
	}

	if current != nil {
		flushRow()
		sections = append(sections, current.finish())
	}
	return sections
}

// alignedChordRow reads the chords of a chord row whose columns line up exactly with lyric.
func alignedChordRow(row, lyric string) []InlineChord {
	limit := runeLen(lyric)
	var chords []InlineChord
	for _, m := range theory.ChordTokenPattern.FindAllStringIndex(row, -1) {
		chords = append(chords, InlineChord{Text: row[m[0]:m[1]], Position: min(runeLen(row[:m[0]]), limit)})
	}
	return chords
}

var genericTypes = map[string]models.SectionType{
	"verse":  models.Verse,
	"chorus": models.Chorus,
	"bridge": models.Bridge,
}

// parseGenericVerses reads outermost verse-like elements. Their text keeps its line breaks and column
// alignment so chord rows above lyric rows can be paired as in Ultimate Guitar text.
func parseGenericVerses(doc *xmlquery.Node) []models.Section {
	nodes := xmlquery.QuerySelectorAll(doc, genericExpr)

	var (
		sections []models.Section
		state    HeaderState
	)
	for _, n := range nodes {
		if hasAncestorIn(n, nodes) {
			continue
		}
		label := firstAttr(n, "name", "type", "label")
		t, ok := genericTypes[n.Data]
		if !ok {
			t = ClassifySection(label)
		}
		var s models.Section
		s, state = openTypedSection(t, label, state)

		w := markupWalker{generic: true, brOnly: xmlquery.QuerySelector(n, breakExpr) != nil}
		w.walk(n)
		sections = append(sections, pairChordRows(s, dedent(w.finish())))
	}
	return sections
}

func hasAncestorIn(n *xmlquery.Node, set []*xmlquery.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if slices.Contains(set, p) {
			return true
		}
	}
	return false
}

func firstAttr(n *xmlquery.Node, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(n.SelectAttr(name)); v != "" {
			return v
		}
	}
	return ""
}

// pairChordRows turns a chord-only line followed by a lyric line into one lyric line carrying those chords.
func pairChordRows(s models.Section, lines []markupLine) models.Section {
	b := newSectionBuilder(s)
	for i := 0; i < len(lines); i++ {
		l := lines[i]
		if len(l.chords) == 0 && theory.IsChordLine(l.text) && i+1 < len(lines) {
			next := lines[i+1]
			b.addLine(next.text, append(alignedChordRow(l.text, next.text), next.chords...))
			i++
			continue
		}
		b.addLine(l.text, l.chords)
	}
	return b.finish()
}

type markupLine struct {
	text   string
	chords []InlineChord
}

// markupWalker flattens mixed lyric markup into lines. <br/> and <line> always end a line; in generic mode
// newlines in text do too, otherwise whitespace collapses as it does in OpenLyrics. A generic body that uses
// <br/> anywhere is split on <br/> alone, and its raw newlines are formatting.
type markupWalker struct {
	generic   bool
	brOnly    bool
	afterLine bool // whitespace between <line> elements is formatting
	lines     []markupLine
	cur       strings.Builder
	chords    []InlineChord
}

func (w *markupWalker) walk(n *xmlquery.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			w.text(c.Data)
		case xmlquery.ElementNode:
			switch strings.ToLower(c.Data) {
			case "br":
				w.breakLine()
			case "comment":
			case "line":
				if strings.TrimSpace(w.cur.String()) == "" && len(w.chords) == 0 {
					w.cur.Reset()
				} else {
					w.breakLine()
				}
				w.walk(c)
				w.breakLine()
				w.afterLine = true
			case "chord":
				name := firstAttr(c, "name", "root")
				if name != "" {
					w.chords = append(w.chords, InlineChord{Text: name, Position: runeLen(w.current())})
				}
				w.walk(c)
			default:
				w.walk(c)
			}
		}
	}
}

func (w *markupWalker) text(s string) {
	if w.afterLine && strings.TrimSpace(s) == "" {
		return
	}
	w.afterLine = false
	if !w.generic {
		w.cur.WriteString(s)
		return
	}
	parts := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if w.brOnly {
		w.cur.WriteString(joinFormatted(parts))
		return
	}
	for i, p := range parts {
		if i > 0 {
			w.breakLine()
		}
		w.cur.WriteString(p)
	}
}

// joinFormatted rejoins text split on newlines, dropping each newline with the indentation around it.
func joinFormatted(parts []string) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			p = strings.TrimLeft(p, " \t")
		}
		if i < len(parts)-1 {
			p = strings.TrimRight(p, " \t")
		}
		b.WriteString(p)
	}
	return b.String()
}

// current is the line text so far as it will appear once finished.
func (w *markupWalker) current() string {
	if w.generic {
		return w.cur.String()
	}
	return collapseSpace(w.cur.String())
}

func (w *markupWalker) breakLine() {
	text := w.current()
	if !w.generic {
		text = strings.TrimRight(text, " ")
	}
	limit := runeLen(text)
	for i := range w.chords {
		w.chords[i].Position = min(w.chords[i].Position, limit)
	}
	w.lines = append(w.lines, markupLine{text: text, chords: w.chords})
	w.cur.Reset()
	w.chords = nil
}

// finish closes the last line and drops blank lines at both ends.
func (w *markupWalker) finish() []markupLine {
	w.breakLine()
	lines := w.lines
	for len(lines) > 0 && isBlankLine(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && isBlankLine(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func isBlankLine(l markupLine) bool {
	return strings.TrimSpace(l.text) == "" && len(l.chords) == 0
}

// collapseSpace folds whitespace runs into single spaces and drops leading whitespace.
func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	if space && b.Len() > 0 {
		b.WriteByte(' ')
	}
	return b.String()
}

// dedent removes the indentation shared by all non-blank lines, shifting chord positions with the text.
func dedent(lines []markupLine) []markupLine {
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l.text) == "" {
			continue
		}
		n := runeLen(l.text) - runeLen(strings.TrimLeftFunc(l.text, unicode.IsSpace))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return lines
	}

	out := make([]markupLine, len(lines))
	for i, l := range lines {
		runes := []rune(l.text)
		cut := 0
		for cut < indent && cut < len(runes) && unicode.IsSpace(runes[cut]) {
			cut++
		}
		chords := make([]InlineChord, len(l.chords))
		for j, c := range l.chords {
			chords[j] = InlineChord{Text: c.Text, Position: max(c.Position-cut, 0)}
		}
		out[i] = markupLine{text: string(runes[cut:]), chords: chords}
	}
	return out
}

// ExportOpenLyrics renders song as an OpenLyrics document, placing <chord name="X"/> elements at chord positions.
func ExportOpenLyrics(song *models.Song) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, "<song xmlns=%q version=%q createdIn=\"chordx\" modifiedIn=\"chordx\">\n", OpenLyricsNamespace, openLyricsVersion)

	b.WriteString("  <properties>\n")
	b.WriteString("    <titles>\n")
	writeElement(&b, "      ", "title", song.Title)
	b.WriteString("    </titles>\n")
	if song.Artist != "" {
		b.WriteString("    <authors>\n")
		for _, author := range strings.Split(song.Artist, ", ") {
			writeElement(&b, "      ", "author", author)
		}
		b.WriteString("    </authors>\n")
	}
	if song.OriginalKey != "" {
		writeElement(&b, "    ", "key", song.OriginalKey)
	}
	if len(song.Tags) > 0 {
		b.WriteString("    <themes>\n")
		for _, tag := range song.Tags {
			writeElement(&b, "      ", "theme", tag)
		}
		b.WriteString("    </themes>\n")
	}
	b.WriteString("  </properties>\n")

	b.WriteString("  <lyrics>\n")
	for _, s := range song.Sections {
		fmt.Fprintf(&b, "    <verse name=%q>\n", verseCode(s))
		b.WriteString("      <lines>")
		for n, line := range s.Lines() {
			if n > 0 {
				b.WriteString("<br/>")
			}
			if err := writeChordLine(&b, line, s.ChordsOnLine(n)); err != nil {
				return nil, err
			}
		}
		b.WriteString("</lines>\n")
		b.WriteString("    </verse>\n")
	}
	b.WriteString("  </lyrics>\n")
	b.WriteString("</song>\n")
	return b.Bytes(), nil
}

func writeElement(b *bytes.Buffer, indent, name, text string) {
	b.WriteString(indent + "<" + name + ">")
	_ = xml.EscapeText(b, []byte(text))
	b.WriteString("</" + name + ">\n")
}

func writeChordLine(b *bytes.Buffer, line string, chords []models.Chord) error {
	runes := []rune(line)
	last := 0
	for _, c := range chords {
		pos := min(max(c.Position, last), len(runes))
		if err := xml.EscapeText(b, []byte(string(runes[last:pos]))); err != nil {
			return fmt.Errorf("failed to write lyric line: %w", err)
		}
		b.WriteString(`<chord name="`)
		if err := xml.EscapeText(b, []byte(c.Text)); err != nil {
			return fmt.Errorf("failed to write chord: %w", err)
		}
		b.WriteString(`"/>`)
		last = pos
	}
	return xml.EscapeText(b, []byte(string(runes[last:])))
}

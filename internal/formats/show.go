package formats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/desertthunder/chordx/internal/models"
)

// SectionColors is the fixed group color for each section type written to .show files.
var SectionColors = map[models.SectionType]string{
	models.Verse:     "#8b5cf6",
	models.Chorus:    "#3b82f6",
	models.Bridge:    "#14b8a6",
	models.Tag:       "#f97316",
	models.Break:     "#ef4444",
	models.Intro:     "#6366f1",
	models.Outro:     "#a855f7",
	models.PreChorus: "#22c55e",
}

const (
	showTextStyle  = "top:120px;left:50px;height:840px;width:1820px;"
	showLayoutName = "Default"
)

// Wire shape of the second element of a FreeShow .show array.
type (
	showSong struct {
		Name       string                `json:"name"`
		Category   string                `json:"category,omitempty"`
		Settings   showSettings          `json:"settings"`
		Timestamps *showTimestamps       `json:"timestamps,omitempty"`
		Meta       showMeta              `json:"meta"`
		Slides     map[string]showSlide  `json:"slides"`
		Layouts    map[string]showLayout `json:"layouts"`
		Media      map[string]any        `json:"media"`
	}

	// showDocument is the import view of showSong: slides stay raw so their key order survives.
	showDocument struct {
		Name     string                `json:"name"`
		Settings showSettings          `json:"settings"`
		Meta     showMeta              `json:"meta"`
		Slides   json.RawMessage       `json:"slides"`
		Layouts  map[string]showLayout `json:"layouts"`
	}

	showSettings struct {
		ActiveLayout string `json:"activeLayout"`
		Template     string `json:"template,omitempty"`
	}

	showTimestamps struct {
		Created  int64 `json:"created"`
		Modified int64 `json:"modified"`
	}

	showMeta struct {
		Title  string `json:"title,omitempty"`
		Artist string `json:"artist,omitempty"`
		Key    string `json:"key,omitempty"`
	}

	showSlide struct {
		Group       string     `json:"group"`
		GlobalGroup string     `json:"globalGroup,omitempty"`
		Color       string     `json:"color,omitempty"`
		Settings    struct{}   `json:"settings"`
		Notes       string     `json:"notes"`
		Items       []showItem `json:"items"`
	}

	showItem struct {
		Type  string     `json:"type,omitempty"`
		Style string     `json:"style,omitempty"`
		Lines []showLine `json:"lines"`
	}

	showLine struct {
		Align  string      `json:"align"`
		Text   []showText  `json:"text"`
		Chords []showChord `json:"chords,omitempty"`
	}

	showText struct {
		Style string `json:"style"`
		Value string `json:"value"`
	}

	showChord struct {
		ID  string `json:"id"`
		Pos int    `json:"pos"`
		Key string `json:"key"`
	}

	showLayout struct {
		Name   string         `json:"name"`
		Notes  string         `json:"notes"`
		Slides []showSlideRef `json:"slides"`
	}

	showSlideRef struct {
		ID string `json:"id"`
	}
)

// ParseShow parses a FreeShow .show document.
//
// Slides are read in the order of the active layout. Without an active layout the slides object's own key
// order is used. Chord positions are stored exactly and are only clamped to their line.
func ParseShow(data []byte) (*models.Song, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedShow, err)
	}
	if len(top) < 2 {
		return nil, fmt.Errorf("%w: expected [id, song], got %d elements", ErrMalformedShow, len(top))
	}

	var doc showDocument
	if err := json.Unmarshal(top[1], &doc); err != nil {
		return nil, fmt.Errorf("%w: song object: %v", ErrMalformedShow, err)
	}
	if len(doc.Slides) == 0 || bytes.Equal(bytes.TrimSpace(doc.Slides), []byte("null")) {
		return nil, fmt.Errorf("%w: missing slides", ErrMalformedShow)
	}

	var slides map[string]showSlide
	if err := json.Unmarshal(doc.Slides, &slides); err != nil {
		return nil, fmt.Errorf("%w: slides: %v", ErrMalformedShow, err)
	}

	order, notes, err := slideOrder(doc)
	if err != nil {
		return nil, err
	}

	song := &models.Song{
		Title:       doc.Name,
		Artist:      doc.Meta.Artist,
		OriginalKey: doc.Meta.Key,
		Notes:       notes,
	}
	if doc.Meta.Title != "" {
		song.Title = doc.Meta.Title
	}

	var state HeaderState
	for _, id := range order {
		slide, ok := slides[id]
		if !ok {
			continue
		}
		var s models.Section
		s, state = openTypedSection(showSectionType(slide), slide.Group, state)
		song.Sections = append(song.Sections, showSection(s, slide))
	}
	return song, nil
}

// slideOrder returns slide ids in presentation order along with the active layout's notes.
func slideOrder(doc showDocument) ([]string, string, error) {
	if layout, ok := doc.Layouts[doc.Settings.ActiveLayout]; ok && doc.Settings.ActiveLayout != "" {
		ids := make([]string, 0, len(layout.Slides))
		for _, ref := range layout.Slides {
			ids = append(ids, ref.ID)
		}
		return ids, layout.Notes, nil
	}

	ids, err := objectKeys(doc.Slides)
	if err != nil {
		return nil, "", fmt.Errorf("%w: slides: %v", ErrMalformedShow, err)
	}
	return ids, "", nil
}

// objectKeys returns the keys of a JSON object in the order they appear in the document.
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected key, got %v", tok)
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// showSectionType prefers the slide's global group, then classifies its group label.
func showSectionType(slide showSlide) models.SectionType {
	if t := models.SectionType(strings.ReplaceAll(strings.ToLower(slide.GlobalGroup), "_", "-")); t.Valid() {
		return t
	}
	return ClassifySection(slide.Group)
}

func showSection(s models.Section, slide showSlide) models.Section {
	var lines []string
	s.Chords = []models.Chord{}
	for _, item := range slide.Items {
		if item.Type != "" && item.Type != "text" {
			continue
		}
		for _, l := range item.Lines {
			var text strings.Builder
			for _, t := range l.Text {
				text.WriteString(t.Value)
			}
			n := len(lines)
			lines = append(lines, text.String())

			limit := runeLen(text.String())
			for _, c := range l.Chords {
				if c.Key == "" {
					continue
				}
				id := c.ID
				if id == "" {
					id = models.NewChordID()
				}
				pos := min(max(c.Pos, 0), limit)
				s.Chords = append(s.Chords, models.Chord{ID: id, Text: c.Key, Line: n, Position: pos})
			}
		}
	}
	s.Content = strings.Join(lines, "\n")
	return s
}

// ExportOption configures [ExportShow].
type ExportOption func(*exportOptions)

type exportOptions struct {
	newID  func() string
	colors map[models.SectionType]string
}

// WithIDGenerator replaces the random id source used for the song, its slides and its layout.
func WithIDGenerator(fn func() string) ExportOption {
	return func(o *exportOptions) { o.newID = fn }
}

// WithSectionColors overrides entries of [SectionColors].
func WithSectionColors(colors map[models.SectionType]string) ExportOption {
	return func(o *exportOptions) {
		for t, c := range colors {
			o.colors[t] = c
		}
	}
}

// newShowID returns an 11 character id in the style FreeShow generates.
func newShowID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:11]
}

// ExportShow renders song as a FreeShow .show document with one default layout listing every section in order.
func ExportShow(song *models.Song, opts ...ExportOption) ([]byte, error) {
	o := exportOptions{newID: newShowID, colors: make(map[models.SectionType]string, len(SectionColors))}
	for t, c := range SectionColors {
		o.colors[t] = c
	}
	for _, opt := range opts {
		opt(&o)
	}

	songID := o.newID()
	layoutID := o.newID()

	doc := showSong{
		Name:     song.Title,
		Category: "song",
		Settings: showSettings{ActiveLayout: layoutID, Template: "default"},
		Meta:     showMeta{Title: song.Title, Artist: song.Artist, Key: song.OriginalKey},
		Slides:   make(map[string]showSlide, len(song.Sections)),
		Layouts:  map[string]showLayout{},
		Media:    map[string]any{},
	}
	if !song.CreatedAt.IsZero() {
		doc.Timestamps = &showTimestamps{Created: song.CreatedAt.UnixMilli(), Modified: modified(song).UnixMilli()}
	}

	layout := showLayout{Name: showLayoutName, Notes: song.Notes, Slides: make([]showSlideRef, 0, len(song.Sections))}
	for _, s := range song.Sections {
		id := o.newID()
		doc.Slides[id] = exportSlide(s, o.colors[s.Type])
		layout.Slides = append(layout.Slides, showSlideRef{ID: id})
	}
	doc.Layouts[layoutID] = layout

	data, err := json.MarshalIndent([]any{songID, doc}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode .show document: %w", err)
	}
	return data, nil
}

func modified(song *models.Song) time.Time {
	if song.UpdatedAt.IsZero() {
		return song.CreatedAt
	}
	return song.UpdatedAt
}

func exportSlide(s models.Section, color string) showSlide {
	lines := s.Lines()
	item := showItem{Type: "text", Style: showTextStyle, Lines: make([]showLine, len(lines))}
	for n, text := range lines {
		line := showLine{Text: []showText{{Value: text}}}
		for _, c := range s.ChordsOnLine(n) {
			line.Chords = append(line.Chords, showChord{ID: c.ID, Pos: c.Position, Key: c.Text})
		}
		item.Lines[n] = line
	}
	return showSlide{
		Group:       s.Heading(),
		GlobalGroup: strings.ReplaceAll(string(s.Type), "-", "_"),
		Color:       color,
		Items:       []showItem{item},
	}
}

// package editing mutates songs and sections in place while keeping chord placements valid.
//
// Dragging a chord changes only its line and position, transposition changes only chord text, and a bulk text
// re-edit replaces a section's content and chords together.
package editing

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/desertthunder/chordx/internal/formats"
	"github.com/desertthunder/chordx/internal/models"
	"github.com/desertthunder/chordx/internal/theory"
)

var ErrChordNotFound = errors.New("chord not found")

// MoveChord repositions the chord with chordID, clamping the target into the section's lines.
func MoveChord(section *models.Section, chordID string, line, position int) error {
	lines := section.Lines()
	for i := range section.Chords {
		c := &section.Chords[i]
		if c.ID != chordID {
			continue
		}
		c.Line = min(max(line, 0), len(lines)-1)
		c.Position = min(max(position, 0), utf8.RuneCountInString(lines[c.Line]))
		return nil
	}
	return fmt.Errorf("%w: %s", ErrChordNotFound, chordID)
}

// ReplaceSectionText re-parses a section from FreeShow inline text, replacing its content and chords at once.
// The section keeps its type and number.
func ReplaceSectionText(section *models.Section, text string) {
	*section = formats.ParseSectionBody(*section, text)
}

// SectionText renders a section as the inline text [ReplaceSectionText] accepts.
func SectionText(section models.Section) string {
	return formats.ExportSectionBody(section)
}

// RemapChords replaces a section's plain lyric content and moves each chord along with the text around it.
// A chord inside deleted text lands where the deletion was.
func RemapChords(section *models.Section, content string) {
	old := section.Content
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(old, content, false)

	oldStarts := lineStarts(old)
	newStarts := lineStarts(content)
	newLines := strings.Split(content, "\n")

	for i := range section.Chords {
		c := &section.Chords[i]
		line := min(max(c.Line, 0), len(oldStarts)-1)
		offset := mapPosition(oldStarts[line]+c.Position, diffs)

		n := lineAt(newStarts, offset)
		c.Line = n
		c.Position = min(offset-newStarts[n], utf8.RuneCountInString(newLines[n]))
	}
	section.Content = content
}

// mapPosition translates a character offset in the old text to the new text through diffs.
func mapPosition(oldPos int, diffs []diffmatchpatch.Diff) int {
	currentOld, currentNew := 0, 0
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			if oldPos >= currentOld && oldPos < currentOld+n {
				return currentNew
			}
			currentOld += n
		case diffmatchpatch.DiffInsert:
			currentNew += n
		case diffmatchpatch.DiffEqual:
			if oldPos >= currentOld && oldPos < currentOld+n {
				return currentNew + (oldPos - currentOld)
			}
			currentOld += n
			currentNew += n
		}
	}
	return currentNew
}

// lineStarts returns the character offset at which each line of text begins.
func lineStarts(text string) []int {
	starts := []int{0}
	offset := 0
	for _, r := range text {
		offset++
		if r == '\n' {
			starts = append(starts, offset)
		}
	}
	return starts
}

func lineAt(starts []int, offset int) int {
	line := 0
	for i, s := range starts {
		if offset >= s {
			line = i
		}
	}
	return line
}

// Renumber reassigns per-type running numbers in section order.
func Renumber(sections []models.Section) {
	var state formats.HeaderState
	for i := range sections {
		sections[i].Number, state = state.Advance(sections[i].Type)
	}
}

// ApplyTranspose transposes song to the descriptor input ("+2", "-1" or a key name) and returns the
// semitone change applied to the current chords.
//
// The first transposition snapshots the untransposed sections. Only chord text changes, so applying the same
// descriptor twice is a no-op.
func ApplyTranspose(song *models.Song, input string) int {
	if song.OriginalSections == nil {
		song.OriginalSections = models.CloneSections(song.Sections)
	}

	key := originalKey(song)
	delta := theory.ParseTransposeInput(input, key) - theory.ParseTransposeInput(song.CurrentTranspose, key)
	if delta != 0 {
		for i := range song.Sections {
			for j := range song.Sections[i].Chords {
				c := &song.Sections[i].Chords[j]
				c.Text = theory.Transpose(c.Text, delta)
			}
		}
	}
	song.CurrentTranspose = strings.TrimSpace(input)
	return delta
}

// ResetTranspose restores the sections captured before the first transposition.
func ResetTranspose(song *models.Song) {
	if song.OriginalSections != nil {
		song.Sections = models.CloneSections(song.OriginalSections)
	}
	song.CurrentTranspose = ""
}

// SongKey returns the key the song currently sounds in: its original key moved by the current transposition.
func SongKey(song *models.Song) string {
	key := originalKey(song)
	return theory.Transpose(key, theory.ParseTransposeInput(song.CurrentTranspose, key))
}

// TransposeOffset returns the semitones between the song's original chords and its current chords.
func TransposeOffset(song *models.Song) int {
	return theory.ParseTransposeInput(song.CurrentTranspose, originalKey(song))
}

// Shift moves the current transposition by semitones, choosing the smallest offset in -5..+6 that reaches the
// same pitch. Landing back on the original resets the song.
func Shift(song *models.Song, semitones int) int {
	next := ((TransposeOffset(song)+semitones)%12 + 12) % 12
	if next > 6 {
		next -= 12
	}
	if next == 0 {
		ResetTranspose(song)
		return 0
	}
	ApplyTranspose(song, fmt.Sprintf("%+d", next))
	return next
}

func originalKey(song *models.Song) string {
	if song.OriginalKey != "" {
		return song.OriginalKey
	}
	if song.OriginalSections != nil {
		return theory.DetectKey((&models.Song{Sections: song.OriginalSections}).ChordTexts())
	}
	return theory.DetectKey(song.ChordTexts())
}

// package theory implements chord algebra on the 12-tone equal-tempered scale: sharp normalization,
// transposition, key detection and transpose-input parsing.
//
// All output is sharp-spelled; flats are normalized before any processing.
package theory

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Notes is the chromatic scale used for every index computation.
var Notes = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// flatToSharp is applied to the start of a chord only.
var flatToSharp = [5][2]string{
	{"Db", "C#"},
	{"Eb", "D#"},
	{"Gb", "F#"},
	{"Ab", "G#"},
	{"Bb", "A#"},
}

var transposeOffset = regexp.MustCompile(`^[+-]\d+$`)

// Normalize rewrites a leading flat root to its sharp equivalent ("Bbm7" -> "A#m7").
func Normalize(chord string) string {
	for _, pair := range flatToSharp {
		if strings.HasPrefix(chord, pair[0]) {
			return pair[1] + chord[len(pair[0]):]
		}
	}
	return chord
}

// Decompose splits a normalized chord into its root (one letter plus an optional '#') and the remaining suffix.
func Decompose(chord string) (root, suffix string) {
	if chord == "" {
		return "", ""
	}
	if len(chord) > 1 && chord[1] == '#' {
		return chord[:2], chord[2:]
	}
	return chord[:1], chord[1:]
}

// NoteIndex returns the chromatic index of a note name after normalization, or -1 when unrecognized.
func NoteIndex(note string) int {
	return slices.Index(Notes[:], Normalize(note))
}

// mod12 wraps any integer into 0..11.
func mod12(n int) int {
	return ((n % 12) + 12) % 12
}

// Transpose moves chord by semitones. Slash chords transpose both halves independently.
// A chord whose root is not recognized is returned unchanged.
func Transpose(chord string, semitones int) string {
	chord = Normalize(chord)
	if main, bass, ok := strings.Cut(chord, "/"); ok {
		return Transpose(main, semitones) + "/" + Transpose(bass, semitones)
	}

	root, suffix := Decompose(chord)
	idx := slices.Index(Notes[:], root)
	if idx < 0 {
		return chord
	}
	return Notes[mod12(idx+semitones)] + suffix
}

// SemitonesBetween returns the upward distance from one key to another, always in 0..11.
// C to B is +11, never -1. Unrecognized keys yield 0.
func SemitonesBetween(fromKey, toKey string) int {
	from, to := NoteIndex(fromKey), NoteIndex(toKey)
	if from < 0 || to < 0 {
		return 0
	}
	return mod12(to - from)
}

// ValidTransposeInput reports whether input is a signed offset or a note name.
func ValidTransposeInput(input string) bool {
	input = strings.TrimSpace(input)
	return transposeOffset.MatchString(input) || slices.Contains(Notes[:], Normalize(input))
}

// ParseTransposeInput interprets user transpose input: "+N"/"-N" is a literal offset,
// a bare note name is the distance from originalKey to that note, anything else is 0.
func ParseTransposeInput(input, originalKey string) int {
	input = strings.TrimSpace(input)
	if transposeOffset.MatchString(input) {
		n, err := strconv.Atoi(input)
		if err != nil {
			return 0
		}
		return n
	}
	if note := Normalize(input); slices.Contains(Notes[:], note) {
		return SemitonesBetween(originalKey, note)
	}
	return 0
}

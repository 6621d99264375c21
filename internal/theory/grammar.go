package theory

import "regexp"

// chordToken is the permissive chord grammar shared by the detector, the text importers and the XML fallback:
// root, optional accidental, optional quality, extensions, optional slash bass.
const chordToken = `[A-G][#b]?(?:maj|min|m|dim|aug|sus|add)?[0-9]*(?:(?:sus|add|maj|b|#)[0-9]+)*(?:/[A-G][#b]?)?`

// strictChordToken is the narrower grammar used for bracketed inline chords.
const strictChordToken = `[A-G][#b]?(?:maj|min|m|dim|aug|sus|add)?[0-9]*(?:/[A-G][#b]?)?`

var (
	// ChordLeadPattern matches a line that starts with a chord token followed by whitespace or end of line.
	ChordLeadPattern = regexp.MustCompile(`^\s*` + chordToken + `(?:\s|$)`)

	// ChordLinePattern matches a line made only of whitespace separated chord tokens.
	ChordLinePattern = regexp.MustCompile(`^\s*` + chordToken + `(?:\s+` + chordToken + `)*\s*$`)

	// ChordTokenPattern finds individual chord tokens inside a chord line.
	ChordTokenPattern = regexp.MustCompile(chordToken)

	// InlineChordPattern finds a bracketed chord such as "[G#m]" inside a lyric line.
	InlineChordPattern = regexp.MustCompile(`\[` + strictChordToken + `\]`)

	// chordPattern matches a whole string that is exactly one strict chord.
	chordPattern = regexp.MustCompile(`^` + strictChordToken + `$`)
)

// IsChordLine reports whether line is a chord row: nothing but chord tokens.
func IsChordLine(line string) bool {
	return ChordLinePattern.MatchString(line)
}

// IsChord reports whether s is a single chord under the strict grammar.
func IsChord(s string) bool {
	return chordPattern.MatchString(s)
}

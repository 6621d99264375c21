package theory

import (
	"slices"
	"strings"
)

// Scale degree offsets (in semitones from the tonic) and qualities of the seven diatonic chords of a major key.
var diatonic = [7]struct {
	offset  int
	quality string
}{
	{0, ""},     // I
	{2, "m"},    // ii
	{4, "m"},    // iii
	{5, ""},     // IV
	{7, ""},     // V
	{9, "m"},    // vi
	{11, "dim"}, // vii°
}

const (
	subdominantOffset = 5
	dominantOffset    = 7
)

type keyChord struct {
	root   string
	suffix string
}

func (c keyChord) name() string { return c.root + c.suffix }

// flipped toggles the major/minor reading of the chord ("Am7" <-> "A7").
func (c keyChord) flipped() string {
	if strings.HasPrefix(c.suffix, "m") && !strings.HasPrefix(c.suffix, "maj") {
		return c.root + c.suffix[1:]
	}
	return c.root + "m" + c.suffix
}

// DiatonicChords returns the seven chords of the major key with the given tonic (I, ii, iii, IV, V, vi, vii°).
func DiatonicChords(tonic string) []string {
	idx := NoteIndex(tonic)
	if idx < 0 {
		return nil
	}
	out := make([]string, 0, len(diatonic))
	for _, d := range diatonic {
		out = append(out, Notes[mod12(idx+d.offset)]+d.quality)
	}
	return out
}

// DetectKey scores all 12 major keys against a chord sequence and returns the best tonic.
//
// Per chord: +1 for a diatonic match (exact or major/minor flipped), +2 when the root is the tonic and +3 more
// when that chord opens or closes the sequence, +1 when the root is the dominant and +2 more for a seventh,
// +1 when the root is the subdominant. Keys whose I, IV and V roots all appear get +3.
//
// Ties go to the key evaluated first in C, C#, ..., B order. That rule is arbitrary, kept for output
// compatibility. If no key scores, the most frequent root wins; empty input yields "C".
func DetectKey(chords []string) string {
	if len(chords) == 0 {
		return "C"
	}

	parsed := make([]keyChord, len(chords))
	roots := map[string]bool{}
	for i, c := range chords {
		main, _, _ := strings.Cut(Normalize(c), "/")
		root, suffix := Decompose(main)
		parsed[i] = keyChord{root: root, suffix: suffix}
		roots[root] = true
	}

	bestKey, bestScore := "", -1
	for tonicIdx, tonic := range Notes {
		table := DiatonicChords(tonic)
		subdominant := Notes[mod12(tonicIdx+subdominantOffset)]
		dominant := Notes[mod12(tonicIdx+dominantOffset)]

		score := 0
		for i, c := range parsed {
			if slices.Contains(table, c.name()) || slices.Contains(table, c.flipped()) {
				score++
			}
			if c.root == tonic {
				score += 2
				if i == 0 || i == len(parsed)-1 {
					score += 3
				}
			}
			if c.root == dominant {
				score++
				if strings.Contains(c.suffix, "7") {
					score += 2
				}
			}
			if c.root == subdominant {
				score++
			}
		}
		if roots[tonic] && roots[subdominant] && roots[dominant] {
			score += 3
		}

		if score > bestScore {
			bestKey, bestScore = tonic, score
		}
	}

	if bestScore > 0 {
		return bestKey
	}
	return mostFrequentRoot(parsed)
}

// mostFrequentRoot returns the recognized root seen most often (the first to reach that count), or "C".
func mostFrequentRoot(chords []keyChord) string {
	counts := map[string]int{}
	best, bestCount := "C", 0
	for _, c := range chords {
		if !slices.Contains(Notes[:], c.root) {
			continue
		}
		counts[c.root]++
		if counts[c.root] > bestCount {
			best, bestCount = c.root, counts[c.root]
		}
	}
	return best
}

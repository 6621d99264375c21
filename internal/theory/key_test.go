package theory

import (
	"slices"
	"testing"
)

func TestDetectKey(t *testing.T) {
	tc := []struct {
		name   string
		chords []string
		want   string
	}{
		{name: "empty input", chords: nil, want: "C"},
		{name: "tonic bookends with I-IV-V", chords: []string{"G", "C", "D", "G"}, want: "G"},
		{name: "C major cadence", chords: []string{"C", "Am", "F", "G7", "C"}, want: "C"},
		{name: "flats normalized", chords: []string{"Bb", "Eb", "F7", "Bb"}, want: "A#"},
		{name: "slash bass ignored", chords: []string{"D", "G/B", "A", "D"}, want: "D"},
		{name: "unrecognized only", chords: []string{"N.C.", "x"}, want: "C"},
		{name: "single chord", chords: []string{"E"}, want: "E"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectKey(tt.chords); got != tt.want {
				t.Errorf("DetectKey(%v) = %q, want %q", tt.chords, got, tt.want)
			}
		})
	}
}

func TestDetectKeyDeterministic(t *testing.T) {
	chords := []string{"Em", "C", "G", "D", "Em", "C", "G", "D"}
	first := DetectKey(chords)
	for range 20 {
		if got := DetectKey(slices.Clone(chords)); got != first {
			t.Fatalf("DetectKey not deterministic: %q then %q", first, got)
		}
	}
}

func TestDiatonicChords(t *testing.T) {
	want := []string{"G", "Am", "Bm", "C", "D", "Em", "F#dim"}
	if got := DiatonicChords("G"); !slices.Equal(got, want) {
		t.Errorf("DiatonicChords(G) = %v, want %v", got, want)
	}
	if got := DiatonicChords("H"); got != nil {
		t.Errorf("expected nil for unknown tonic, got %v", got)
	}
}

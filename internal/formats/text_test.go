package formats

import (
	"strings"
	"testing"

	"github.com/desertthunder/chordx/internal/models"
	th "github.com/desertthunder/chordx/internal/testing"
)

type chordWant struct {
	text     string
	line     int
	position int
}

func assertChords(t *testing.T, s models.Section, want []chordWant) {
	t.Helper()
	got := s.SortedChords()
	if len(got) != len(want) {
		t.Fatalf("got %d chords %+v, want %d", len(got), got, len(want))
	}
	for i, c := range got {
		if c.Text != want[i].text || c.Line != want[i].line || c.Position != want[i].position {
			t.Errorf("chord %d = {%s line %d pos %d}, want %+v", i, c.Text, c.Line, c.Position, want[i])
		}
		if c.ID == "" {
			t.Errorf("chord %d has no id", i)
		}
	}
}

func TestParseFreeShowText(t *testing.T) {
	t.Run("single verse", func(t *testing.T) {
		sections := ParseFreeShowText("[Verse]\nA[G]mazing\n")
		if len(sections) != 1 {
			t.Fatalf("got %d sections, want 1", len(sections))
		}
		s := sections[0]
		if s.Type != models.Verse {
			t.Errorf("Type = %v, want verse", s.Type)
		}
		if s.Content != "Amazing" {
			t.Errorf("Content = %q, want %q", s.Content, "Amazing")
		}
		assertChords(t, s, []chordWant{{"G", 0, 1}})
	})

	t.Run("fixture", func(t *testing.T) {
		sections := ParseFreeShowText(th.FreeShowChart)
		if len(sections) != 2 {
			t.Fatalf("got %d sections, want 2", len(sections))
		}

		verse := sections[0]
		if verse.Type != models.Verse || verse.Number != 1 {
			t.Errorf("first section = %v %d, want verse 1", verse.Type, verse.Number)
		}
		if verse.Content != "Amazing grace how sweet the sound\nThat saved a wretch like me" {
			t.Errorf("Content = %q", verse.Content)
		}
		assertChords(t, verse, []chordWant{{"G", 0, 1}, {"C", 0, 18}, {"G", 0, 28}, {"D", 1, 25}})

		chorus := sections[1]
		if chorus.Type != models.Chorus || chorus.Number != 1 {
			t.Errorf("second section = %v %d, want chorus 1", chorus.Type, chorus.Number)
		}
		assertChords(t, chorus, []chordWant{{"C", 0, 0}, {"G", 0, 11}})
	})

	t.Run("header numbering", func(t *testing.T) {
		sections := ParseFreeShowText("[Verse]\na\n[Chorus]\nb\n[Verse]\nc\n[Bridge 4]\nd\n[Tag]\ne\n[Instrumental]\nf\n")
		want := []struct {
			typ models.SectionType
			n   int
		}{
			{models.Verse, 1}, {models.Chorus, 1}, {models.Verse, 2}, {models.Bridge, 4}, {models.Tag, 1}, {models.Verse, 3},
		}
		if len(sections) != len(want) {
			t.Fatalf("got %d sections, want %d", len(sections), len(want))
		}
		for i, w := range want {
			if sections[i].Type != w.typ || sections[i].Number != w.n {
				t.Errorf("section %d = %v %d, want %v %d", i, sections[i].Type, sections[i].Number, w.typ, w.n)
			}
		}
	})

	t.Run("pre-chorus classifies as chorus", func(t *testing.T) {
		sections := ParseFreeShowText("[Pre-Chorus]\nx\n")
		if len(sections) != 1 || sections[0].Type != models.Chorus {
			t.Errorf("got %+v", sections)
		}
	})

	t.Run("bracketed chord line is content", func(t *testing.T) {
		sections := ParseFreeShowText("[Verse]\n[G]\nAmazing\n")
		if len(sections) != 1 {
			t.Fatalf("got %d sections, want 1", len(sections))
		}
		if sections[0].Content != "\nAmazing" {
			t.Errorf("Content = %q", sections[0].Content)
		}
		assertChords(t, sections[0], []chordWant{{"G", 0, 0}})
	})

	t.Run("blank lines inside a section are kept", func(t *testing.T) {
		sections := ParseFreeShowText("[Verse]\na\n\nb\n\n")
		if sections[0].Content != "a\n\nb" {
			t.Errorf("Content = %q", sections[0].Content)
		}
	})

	t.Run("no headers yields no sections", func(t *testing.T) {
		if sections := ParseFreeShowText("A[G]mazing grace\n"); len(sections) != 0 {
			t.Errorf("got %d sections, want 0", len(sections))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if sections := ParseFreeShowText(""); len(sections) != 0 {
			t.Errorf("got %d sections, want 0", len(sections))
		}
	})
}

func TestFreeShowRoundTrip(t *testing.T) {
	song := th.NewSong()
	for _, s := range song.Sections {
		t.Run(s.Heading(), func(t *testing.T) {
			sections := ParseFreeShowText(ExportFreeShowText([]models.Section{s}))
			if len(sections) != 1 {
				t.Fatalf("got %d sections, want 1", len(sections))
			}
			got := sections[0]
			if got.Content != s.Content || got.Type != s.Type || got.Number != s.Number {
				t.Errorf("got %v %d %q, want %v %d %q", got.Type, got.Number, got.Content, s.Type, s.Number, s.Content)
			}
			want := make([]chordWant, 0, len(s.Chords))
			for _, c := range s.SortedChords() {
				want = append(want, chordWant{c.Text, c.Line, c.Position})
			}
			assertChords(t, got, want)
		})
	}
}

func TestExportFreeShowText(t *testing.T) {
	got := ExportFreeShowText(th.NewSong().Sections)
	want := "[Verse 1]\n[G]Amazing [C]grace how sweet\nthe [D]sound\n\n[Chorus 1]\n[C]I once was [G]lost\n"
	if got != want {
		t.Errorf("ExportFreeShowText() =\n%q\nwant\n%q", got, want)
	}
}

func TestParseUltimateGuitar(t *testing.T) {
	t.Run("fixture", func(t *testing.T) {
		sections := ParseUltimateGuitar(th.UltimateGuitarChart)
		if len(sections) != 2 {
			t.Fatalf("got %d sections, want 2", len(sections))
		}

		verse := sections[0]
		if verse.Type != models.Verse || verse.Number != 1 {
			t.Errorf("first section = %v %d, want verse 1", verse.Type, verse.Number)
		}
		if verse.Content != "Amazing grace how sweet\nthe sound" {
			t.Errorf("Content = %q", verse.Content)
		}
		assertChords(t, verse, []chordWant{{"G", 0, 2}, {"C", 0, 10}, {"G", 0, 20}, {"D", 1, 9}})

		chorus := sections[1]
		if chorus.Type != models.Chorus || chorus.Number != 1 {
			t.Errorf("second section = %v %d, want chorus 1", chorus.Type, chorus.Number)
		}
		assertChords(t, chorus, []chordWant{{"C", 0, 2}, {"G", 0, 12}})
	})

	t.Run("chord row before a header is a lyric", func(t *testing.T) {
		sections := ParseUltimateGuitar("[Verse]\nG C\n[Chorus]\nx\n")
		if len(sections) != 2 {
			t.Fatalf("got %d sections, want 2", len(sections))
		}
		if sections[0].Content != "G C" || len(sections[0].Chords) != 0 {
			t.Errorf("got %q with %d chords", sections[0].Content, len(sections[0].Chords))
		}
	})

	t.Run("chord row on the last line", func(t *testing.T) {
		sections := ParseUltimateGuitar("[Verse]\nlyric\nG")
		s := sections[0]
		if s.Content != "lyric\n  " {
			t.Errorf("Content = %q", s.Content)
		}
		assertChords(t, s, []chordWant{{"G", 1, 2}})
	})

	t.Run("instrumental row keeps its spacing", func(t *testing.T) {
		sections := ParseUltimateGuitar("[Intro]\nG   C   D   G\n\n")
		s := sections[0]
		if s.Content != "              " {
			t.Errorf("Content = %q", s.Content)
		}
		assertChords(t, s, []chordWant{{"G", 0, 2}, {"C", 0, 6}, {"D", 0, 10}, {"G", 0, 14}})

		if got := ExportUltimateGuitar(sections); !strings.HasSuffix(got, "]\nG   C   D   G\n\n") {
			t.Errorf("ExportUltimateGuitar() = %q", got)
		}
	})

	t.Run("chords past a lyric are clamped", func(t *testing.T) {
		s := ParseUltimateGuitar("[Verse]\nG        D\nhi\n")[0]
		assertChords(t, s, []chordWant{{"G", 0, 2}, {"D", 0, 2}})
	})

	t.Run("blank lines advance the line counter", func(t *testing.T) {
		sections := ParseUltimateGuitar("[Verse]\none\n\nG\ntwo three\n")
		s := sections[0]
		if s.Content != "one\n\ntwo three" {
			t.Errorf("Content = %q", s.Content)
		}
		assertChords(t, s, []chordWant{{"G", 2, 2}})
	})

	t.Run("content before the first header is ignored", func(t *testing.T) {
		sections := ParseUltimateGuitar("Intro riff\n[Verse]\nx\n")
		if len(sections) != 1 || sections[0].Content != "x" {
			t.Errorf("got %+v", sections)
		}
	})

	t.Run("detected as ultimate guitar", func(t *testing.T) {
		text := "[Chorus]\nG    D\nAmazing grace\n"
		if got := DetectTextFormat(text); got != FormatUltimateGuitar {
			t.Errorf("DetectTextFormat() = %v", got)
		}
	})
}

func TestUltimateGuitarRoundTrip(t *testing.T) {
	first := ParseUltimateGuitar(th.UltimateGuitarChart)
	exported := ExportUltimateGuitar(first)
	second := ParseUltimateGuitar(exported)

	if len(second) != len(first) {
		t.Fatalf("got %d sections, want %d", len(second), len(first))
	}
	for i := range first {
		if first[i].Content != second[i].Content || first[i].Type != second[i].Type || first[i].Number != second[i].Number {
			t.Errorf("section %d changed: %+v -> %+v", i, first[i], second[i])
		}
		want := make([]chordWant, 0, len(first[i].Chords))
		for _, c := range first[i].SortedChords() {
			want = append(want, chordWant{c.Text, c.Line, c.Position})
		}
		assertChords(t, second[i], want)
	}
	if got := ExportUltimateGuitar(second); got != exported {
		t.Errorf("second export differs:\n%s\nvs\n%s", got, exported)
	}
}

func TestExportUltimateGuitar(t *testing.T) {
	sections := []models.Section{{
		Type:    models.Verse,
		Number:  2,
		Content: "Amazing grace\nno chords",
		Chords: []models.Chord{
			{Text: "G", Line: 0, Position: 2},
			{Text: "C", Line: 0, Position: 10},
		},
	}}
	want := "[Verse 2]\nG       C\nAmazing grace\nno chords\n"
	if got := ExportUltimateGuitar(sections); got != want {
		t.Errorf("ExportUltimateGuitar() =\n%q\nwant\n%q", got, want)
	}
}

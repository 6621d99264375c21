// package testing contains shared testing utilities and chart fixtures
package testing

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/chordx/internal/models"
)

// UltimateGuitarChart is a two-section Ultimate Guitar style chart.
const UltimateGuitarChart = `[Verse 1]
G       C         G
Amazing grace how sweet
        D
the sound

[Chorus]
C         G
I once was lost
`

// FreeShowChart is a two-section FreeShow inline chart.
const FreeShowChart = `[Verse 1]
A[G]mazing grace how [C]sweet the [G]sound
That saved a wretch like [D]me

[Chorus]
[C]I once was [G]lost
`

// OpenLyricsChart is a minimal OpenLyrics 0.8 document.
const OpenLyricsChart = `<?xml version="1.0" encoding="UTF-8"?>
<song xmlns="http://openlyrics.info/namespace/2009/song" version="0.8">
  <properties>
    <titles><title>Amazing Grace</title></titles>
    <authors><author>John Newton &amp; William Walker</author><author>John Newton</author></authors>
    <key>G</key>
    <themes><theme>Grace</theme><theme>Hymn</theme></themes>
  </properties>
  <lyrics>
    <verse name="v1">
      <lines><chord name="G"/>Amazing grace how <chord name="C"/>sweet the sound<br/>That saved a wretch like <chord name="D"/>me</lines>
    </verse>
    <verse name="c">
      <lines><chord name="C"/>I once was lost</lines>
    </verse>
  </lyrics>
</song>
`

// OpenSongChart is an OpenSong document with chord rows in its lyrics block.
const OpenSongChart = `<?xml version="1.0" encoding="UTF-8"?>
<song>
  <title>Amazing Grace</title>
  <author>John Newton</author>
  <theme>Grace</theme>
  <key>G</key>
  <lyrics>[V1]
.G       C
 Amazing grace how sweet
;comment
[C]
.C        G
 I once was lost</lyrics>
</song>
`

// ShowChart is a FreeShow .show document whose slides map is out of presentation order.
const ShowChart = `["song1", {
  "name": "Amazing Grace",
  "settings": {"activeLayout": "layout1"},
  "meta": {"artist": "John Newton", "key": "G"},
  "slides": {
    "s2": {"group": "Chorus", "items": [{"type": "text", "lines": [{"text": [{"value": "I once was lost"}], "chords": [{"id": "c3", "pos": 0, "key": "C"}]}]}]},
    "s1": {"group": "Verse 1", "items": [{"type": "text", "lines": [{"text": [{"value": "Amazing grace"}], "chords": [{"id": "c1", "pos": 1, "key": "G"}, {"id": "c2", "pos": 8, "key": "C"}]}]}]}
  },
  "layouts": {"layout1": {"name": "Default", "notes": "", "slides": [{"id": "s1"}, {"id": "s2"}]}}
}]`

// NewSong builds a small song with one verse and one chorus.
func NewSong() *models.Song {
	return &models.Song{
		Title:       "Amazing Grace",
		Artist:      "John Newton",
		Tags:        []string{"hymn"},
		OriginalKey: "G",
		Sections: []models.Section{
			{
				Type:    models.Verse,
				Number:  1,
				Content: "Amazing grace how sweet\nthe sound",
				Chords: []models.Chord{
					{ID: "c1", Text: "G", Line: 0, Position: 0},
					{ID: "c2", Text: "C", Line: 0, Position: 8},
					{ID: "c3", Text: "D", Line: 1, Position: 4},
				},
			},
			{
				Type:    models.Chorus,
				Number:  1,
				Content: "I once was lost",
				Chords: []models.Chord{
					{ID: "c4", Text: "C", Line: 0, Position: 0},
					{ID: "c5", Text: "G", Line: 0, Position: 11},
				},
			},
		},
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MustWriteFile writes content to name inside dir and returns the full path.
func MustWriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

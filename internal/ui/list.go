package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/chordx/internal/editing"
	"github.com/desertthunder/chordx/internal/models"
)

var (
	_ list.Item = songItem{}
)

// songItem wraps [models.PersistedSong] to implement [list.Item].
type songItem struct {
	song *models.PersistedSong
}

func (i songItem) FilterValue() string { return i.song.Title() + " " + i.song.Artist() }
func (i songItem) Title() string       { return fmt.Sprintf("%d. %s", i.song.Sequence(), i.song.Title()) }
func (i songItem) Description() string {
	parts := []string{}
	if i.song.Artist() != "" {
		parts = append(parts, i.song.Artist())
	}
	if key := editing.SongKey(i.song.Song()); key != "" {
		parts = append(parts, "Key "+key)
	}
	parts = append(parts, fmt.Sprintf("%d sections", len(i.song.Song().Sections)))
	return strings.Join(parts, " • ")
}

func songItems(songs []*models.PersistedSong) []list.Item {
	items := make([]list.Item, len(songs))
	for i, s := range songs {
		items[i] = songItem{song: s}
	}
	return items
}

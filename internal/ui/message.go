package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/chordx/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSongsLoaded MsgKind = iota
	MsgSongSaved
)

type songsLoaded struct {
	songs []*models.PersistedSong
	err   error
}

type songSaved struct {
	song *models.PersistedSong
	err  error
}

// songsLoadedMsg is the constructor for [MsgSongsLoaded]
func songsLoadedMsg(songs []*models.PersistedSong, err error) Msg {
	return Msg{kind: MsgSongsLoaded, data: songsLoaded{songs, err}}
}

// songSavedMsg is the constructor for [MsgSongSaved]
func songSavedMsg(song *models.PersistedSong, err error) Msg {
	return Msg{kind: MsgSongSaved, data: songSaved{song, err}}
}

package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/chordx/internal/editing"
	"github.com/desertthunder/chordx/internal/formatter"
	"github.com/desertthunder/chordx/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SongListView ViewState = iota
	ChartView
)

// SongStore is the library access the TUI needs. [repositories.SongRepository] satisfies it.
type SongStore interface {
	List(criteria map[string]any) ([]*models.PersistedSong, error)
	Update(song *models.PersistedSong) error
}

// Model represents the TUI application state.
type Model struct {
	view     ViewState
	store    SongStore
	renderer *ChartRenderer
	opts     formatter.ChartOptions
	width    int
	height   int
	songList list.Model
	current  *models.PersistedSong
	song     *models.Song
	chart    viewport.Model
	dirty    bool
	status   string
	err      error
	help     help.Model
	keys     keyMap
}

// NewLibraryModel creates a model that starts on the library song list.
func NewLibraryModel(store SongStore, renderer *ChartRenderer, opts formatter.ChartOptions) *Model {
	m := newModel(renderer, opts)
	m.store = store
	m.view = SongListView
	return m
}

// NewChartModel creates a model that shows a single chart, typically one read from a file.
func NewChartModel(song *models.Song, renderer *ChartRenderer, opts formatter.ChartOptions) *Model {
	m := newModel(renderer, opts)
	m.view = ChartView
	m.song = song
	m.refreshChart()
	return m
}

func newModel(renderer *ChartRenderer, opts formatter.ChartOptions) *Model {
	if renderer == nil {
		renderer = NewChartRenderer(nil)
	}
	songList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	songList.Title = "Song Library"
	songList.Styles.Title = styles.title
	songList.SetShowHelp(false)
	return &Model{
		renderer: renderer,
		opts:     opts,
		songList: songList,
		chart:    viewport.New(0, 0),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Song returns the chart being shown, including any transposition applied in the viewer.
func (m *Model) Song() *models.Song { return m.song }

// Err returns the error that ended the session, if any.
func (m *Model) Err() error { return m.err }

// Init loads the library when the model starts on the song list.
func (m *Model) Init() tea.Cmd {
	if m.view == SongListView {
		return m.loadSongs()
	}
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.songList.SetSize(msg.Width-4, msg.Height-4)
		m.chart.Width = msg.Width
		m.chart.Height = max(msg.Height-3, 1)
		m.refreshChart()
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SongListView:
			return m.handleSongListKeys(msg)
		case ChartView:
			return m.handleChartKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateComponents(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSongsLoaded:
		data := msg.data.(songsLoaded)
		if data.err != nil {
			m.err = data.err
			return m, tea.Quit
		}
		return m, m.songList.SetItems(songItems(data.songs))

	case MsgSongSaved:
		data := msg.data.(songSaved)
		if data.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("save failed: %v", data.err))
			return m, nil
		}
		m.dirty = false
		m.status = styles.ok.Render(fmt.Sprintf("saved %s", data.song.Title()))
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SongListView:
		return m.renderSongList()
	case ChartView:
		return m.renderChart()
	default:
		return ""
	}
}

func (m *Model) handleSongListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.songList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.songList, cmd = m.songList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.songList.SelectedItem().(songItem); ok {
			m.open(item.song)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleChartKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		if m.current != nil {
			m.view = SongListView
			m.status = ""
		}
		return m, nil
	case key.Matches(msg, m.keys.transposeUp):
		m.shift(1)
		return m, nil
	case key.Matches(msg, m.keys.transposeDown):
		m.shift(-1)
		return m, nil
	case key.Matches(msg, m.keys.reset):
		editing.ResetTranspose(m.song)
		m.touch()
		return m, nil
	case key.Matches(msg, m.keys.save):
		if m.current != nil && m.store != nil {
			return m, m.saveSong()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.chart, cmd = m.chart.Update(msg)
	return m, cmd
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SongListView:
		m.songList, cmd = m.songList.Update(msg)
	case ChartView:
		m.chart, cmd = m.chart.Update(msg)
	}
	return m, cmd
}

func (m *Model) open(song *models.PersistedSong) {
	m.current = song
	m.song = song.Song()
	m.dirty = false
	m.status = ""
	m.view = ChartView
	m.refreshChart()
	m.chart.GotoTop()
}

func (m *Model) shift(semitones int) {
	editing.Shift(m.song, semitones)
	m.touch()
}

func (m *Model) touch() {
	m.dirty = m.current != nil
	m.status = ""
	m.refreshChart()
}

// refreshChart lays the song out again, wrapping to the window when it is narrower than the configured width.
func (m *Model) refreshChart() {
	if m.song == nil {
		return
	}
	opts := m.opts
	if m.width > 0 && (opts.Width <= 0 || m.width < opts.Width) {
		opts.Width = m.width
	}
	m.chart.SetContent(m.renderer.Render(formatter.LayoutChart(m.song, opts)))
}

func (m *Model) loadSongs() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		songs, err := store.List(nil)
		return songsLoadedMsg(songs, err)
	}
}

// saveSong persists a snapshot so the command does not race with further edits.
func (m *Model) saveSong() tea.Cmd {
	store := m.store
	snapshot := models.NewPersistedSong(m.current.Sequence(), m.current.Hash(), m.song.Clone())
	snapshot.SetID(m.current.ID())
	snapshot.SetCreatedAt(m.current.CreatedAt())
	return func() tea.Msg {
		return songSavedMsg(snapshot, store.Update(snapshot))
	}
}

func (m *Model) renderSongList() string {
	helpView := m.help.ShortHelpView(m.keys.listHelp())
	return fmt.Sprintf("%s\n\n%s", m.songList.View(), helpView)
}

func (m *Model) renderChart() string {
	status := m.status
	if status == "" {
		status = m.transposeStatus()
	}
	helpView := m.help.ShortHelpView(m.keys.chartHelp(m.current != nil))
	return fmt.Sprintf("%s\n%s\n%s", m.chart.View(), status, helpView)
}

func (m *Model) transposeStatus() string {
	status := fmt.Sprintf("Key %s", editing.SongKey(m.song))
	if offset := editing.TransposeOffset(m.song); offset != 0 {
		status += fmt.Sprintf(" (%+d)", offset)
	}
	status = styles.help.Render(status)
	if m.dirty {
		status += styles.warn.Render(" • unsaved")
	}
	return status
}

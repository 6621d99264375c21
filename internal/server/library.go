package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chordx/internal/editing"
	"github.com/desertthunder/chordx/internal/formats"
	"github.com/desertthunder/chordx/internal/formatter"
	"github.com/desertthunder/chordx/internal/models"
	"github.com/desertthunder/chordx/internal/shared"
)

// Library is the song store behind the /songs endpoints.
type Library interface {
	Create(song *models.PersistedSong) error
	Update(song *models.PersistedSong) error
	Resolve(ref string) (*models.PersistedSong, error)
	List(criteria map[string]any) ([]*models.PersistedSong, error)
	Search(query string, limit int) ([]*models.PersistedSong, error)
}

// LibraryHandler serves the song library. A {ref} is a list number or a song id.
type LibraryHandler struct {
	songs      Library
	logger     *log.Logger
	width      int
	exportOpts []formats.ExportOption
}

// NewLibraryHandler creates a [LibraryHandler] over songs.
func NewLibraryHandler(songs Library, opts Options) *LibraryHandler {
	return &LibraryHandler{songs: songs, logger: opts.Logger, width: opts.ChartWidth, exportOpts: opts.ExportOptions}
}

func (h *LibraryHandler) Routes() []string {
	return []string{
		"GET /songs",
		"POST /songs",
		"GET /songs/{ref}",
		"GET /songs/{ref}/chart",
		"GET /songs/{ref}/export",
		"POST /songs/{ref}/transpose",
		"POST /songs/{ref}/reset",
	}
}

func (h *LibraryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case "GET /songs":
		h.list(w, r)
		return
	case "POST /songs":
		h.create(w, r)
		return
	}

	song, err := h.songs.Resolve(r.PathValue("ref"))
	if err != nil {
		writeError(w, err)
		return
	}

	switch r.Pattern {
	case "GET /songs/{ref}":
		writeJSON(w, http.StatusOK, song.Song())
	case "GET /songs/{ref}/chart":
		opts, err := chartOptions(r.URL.Query().Get("width"), h.width)
		if err != nil {
			writeError(w, err)
			return
		}
		data, err := formatter.ExportToText(song.Song(), opts)
		if err != nil {
			writeError(w, err)
			return
		}
		writeBytes(w, "text/plain; charset=utf-8", data)
	case "GET /songs/{ref}/export":
		h.export(w, r, song)
	case "POST /songs/{ref}/transpose":
		by := r.URL.Query().Get("by")
		if by == "" {
			writeError(w, fmt.Errorf("%w: by is required", shared.ErrInvalidArgument))
			return
		}
		if err := transposeFromQuery(song.Song(), by); err != nil {
			writeError(w, err)
			return
		}
		h.save(w, song)
	case "POST /songs/{ref}/reset":
		editing.ResetTranspose(song.Song())
		h.save(w, song)
	default:
		http.NotFound(w, r)
	}
}

// list searches when "q" is set, otherwise filters by "artist" and "key".
func (h *LibraryHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, fmt.Errorf("%w: limit %q", shared.ErrInvalidArgument, raw))
			return
		}
		limit = n
	}

	var (
		songs []*models.PersistedSong
		err   error
	)
	if query := strings.TrimSpace(q.Get("q")); query != "" {
		songs, err = h.songs.Search(query, limit)
	} else {
		songs, err = h.songs.List(map[string]any{"artist": q.Get("artist"), "key": q.Get("key"), "limit": limit})
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, formatter.Summaries(songs))
}

// create imports the uploaded chart. Text charts carry no title, so "name" or "title" must supply one.
func (h *LibraryHandler) create(w http.ResponseWriter, r *http.Request) {
	data, err := readChart(r)
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	song, _, err := formats.Import(q.Get("name"), data)
	if err != nil {
		writeError(w, err)
		return
	}
	if title := q.Get("title"); title != "" {
		song.Title = title
	}
	if artist := q.Get("artist"); artist != "" {
		song.Artist = artist
	}
	if strings.TrimSpace(song.Title) == "" {
		writeError(w, fmt.Errorf("%w: a title or name parameter is required", shared.ErrInvalidInput))
		return
	}
	if len(song.Sections) == 0 {
		writeError(w, shared.ErrEmptySong)
		return
	}

	persisted := models.NewPersistedSong(0, "", song)
	if err := h.songs.Create(persisted); err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("imported song", "id", persisted.ID(), "title", persisted.Title())
	writeJSON(w, http.StatusCreated, formatter.Summarize(persisted))
}

func (h *LibraryHandler) export(w http.ResponseWriter, r *http.Request, song *models.PersistedSong) {
	to, err := formats.ParseFormat(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := formats.Export(song.Song(), to, h.exportOpts...)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", formatter.FileName(song.Song(), to.Extension())))
	writeBytes(w, contentType(to), data)
}

func (h *LibraryHandler) save(w http.ResponseWriter, song *models.PersistedSong) {
	if err := h.songs.Update(song); err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("updated song", "id", song.ID(), "key", editing.SongKey(song.Song()), "transpose", song.Song().CurrentTranspose)
	writeJSON(w, http.StatusOK, formatter.Summarize(song))
}

package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chordx/internal/editing"
	"github.com/desertthunder/chordx/internal/formats"
	"github.com/desertthunder/chordx/internal/formatter"
	"github.com/desertthunder/chordx/internal/models"
	"github.com/desertthunder/chordx/internal/shared"
	"github.com/desertthunder/chordx/internal/theory"
)

// KeyResponse is the body of POST /key.
type KeyResponse struct {
	Key      string `json:"key"`
	Declared string `json:"declared,omitempty"`
	Chords   int    `json:"chords"`
}

// ChartHandler serves stateless operations on an uploaded chart. The optional "name" query parameter is
// the upload's file name, used as a format hint and title fallback.
type ChartHandler struct {
	logger        *log.Logger
	defaultFormat formats.Format
	width         int
	exportOpts    []formats.ExportOption
}

// NewChartHandler creates a [ChartHandler] from router options.
func NewChartHandler(opts Options) *ChartHandler {
	return &ChartHandler{
		logger:        opts.Logger,
		defaultFormat: opts.DefaultFormat,
		width:         opts.ChartWidth,
		exportOpts:    opts.ExportOptions,
	}
}

func (h *ChartHandler) Routes() []string {
	return []string{"POST /detect", "POST /convert", "POST /transpose", "POST /key", "POST /chart"}
}

func (h *ChartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, err := readChart(r)
	if err != nil {
		writeError(w, err)
		return
	}
	name := r.URL.Query().Get("name")

	if r.Pattern == "POST /detect" {
		writeJSON(w, http.StatusOK, map[string]string{"format": formats.Sniff(name, data).String()})
		return
	}

	song, from, err := formats.Import(name, data)
	if err != nil {
		writeError(w, err)
		return
	}

	switch r.Pattern {
	case "POST /convert":
		h.convert(w, r, song, h.defaultFormat, r.URL.Query().Get("transpose"))
	case "POST /transpose":
		by := r.URL.Query().Get("by")
		if by == "" {
			writeError(w, fmt.Errorf("%w: by is required", shared.ErrInvalidArgument))
			return
		}
		h.convert(w, r, song, from, by)
	case "POST /key":
		chords := song.ChordTexts()
		resp := KeyResponse{Key: theory.DetectKey(chords), Chords: len(chords)}
		if song.OriginalKey != resp.Key {
			resp.Declared = song.OriginalKey
		}
		writeJSON(w, http.StatusOK, resp)
	case "POST /chart":
		h.chart(w, r, song)
	default:
		http.NotFound(w, r)
	}
}

// convert transposes song by input and writes it in the "to" format, or fallback.
func (h *ChartHandler) convert(w http.ResponseWriter, r *http.Request, song *models.Song, fallback formats.Format, input string) {
	to := fallback
	if name := r.URL.Query().Get("to"); name != "" {
		f, err := formats.ParseFormat(name)
		if err != nil {
			writeError(w, err)
			return
		}
		to = f
	}

	if err := transposeFromQuery(song, input); err != nil {
		writeError(w, err)
		return
	}

	data, err := formats.Export(song, to, h.exportOpts...)
	if err != nil {
		writeError(w, err)
		return
	}
	h.logger.Debug("converted chart", "title", song.Title, "to", to, "key", editing.SongKey(song))
	w.Header().Set("X-Chart-Format", to.String())
	writeBytes(w, contentType(to), data)
}

func (h *ChartHandler) chart(w http.ResponseWriter, r *http.Request, song *models.Song) {
	q := r.URL.Query()
	if err := transposeFromQuery(song, q.Get("transpose")); err != nil {
		writeError(w, err)
		return
	}

	opts, err := chartOptions(q.Get("width"), h.width)
	if err != nil {
		writeError(w, err)
		return
	}
	opts.NoHeader = q.Get("header") == "false"

	if markdown, _ := strconv.ParseBool(q.Get("markdown")); markdown {
		data, err := formatter.ExportToMarkdown(song, opts)
		if err != nil {
			writeError(w, err)
			return
		}
		writeBytes(w, "text/markdown; charset=utf-8", data)
		return
	}

	data, err := formatter.ExportToText(song, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBytes(w, "text/plain; charset=utf-8", data)
}

// transposeFromQuery applies input to song when set.
func transposeFromQuery(song *models.Song, input string) error {
	if input == "" {
		return nil
	}
	if !theory.ValidTransposeInput(input) {
		return fmt.Errorf("%w: transpose %q: want +N, -N or a key name", shared.ErrInvalidArgument, input)
	}
	editing.ApplyTranspose(song, input)
	return nil
}

func chartOptions(width string, fallback int) (formatter.ChartOptions, error) {
	opts := formatter.ChartOptions{Width: fallback}
	if width == "" {
		return opts, nil
	}
	n, err := strconv.Atoi(width)
	if err != nil || n <= 0 {
		return opts, fmt.Errorf("%w: width %q", shared.ErrInvalidArgument, width)
	}
	opts.Width = n
	return opts, nil
}

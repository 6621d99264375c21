package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/chordx/internal/formats"
	"github.com/desertthunder/chordx/internal/shared"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, shared.ErrSongNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrDuplicateSong):
		return http.StatusConflict
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrEmptySong),
		errors.Is(err, formats.ErrUnknownFormat),
		errors.Is(err, formats.ErrUnsupportedFormat),
		errors.Is(err, formats.ErrMalformedShow),
		errors.Is(err, formats.ErrMalformedXML):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
}

// readChart reads the request body, rejecting empty uploads.
func readChart(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty request body", shared.ErrInvalidInput)
	}
	return data, nil
}

// contentType returns the media type for a chart exported as f.
func contentType(f formats.Format) string {
	switch f {
	case formats.FormatOpenLyrics:
		return "application/xml; charset=utf-8"
	case formats.FormatShow:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

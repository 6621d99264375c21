// package formats converts chord charts between the supported interchange formats and the canonical model.
//
// Text formats (Ultimate Guitar, FreeShow inline) are told apart by [DetectTextFormat]; XML and FreeShow .show
// JSON identify themselves. Every importer returns canonical sections and every exporter is the structural
// inverse of its importer.
package formats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/desertthunder/chordx/internal/models"
	"github.com/desertthunder/chordx/internal/theory"
)

// Format names an interchange format.
type Format string

const (
	FormatUltimateGuitar Format = "ultimate-guitar"
	FormatFreeShow       Format = "freeshow"
	FormatOpenLP         Format = "openlp" // legacy tag, detection always falls through
	FormatOpenLyrics     Format = "openlyrics"
	FormatShow           Format = "show"
)

var (
	ErrUnknownFormat     = errors.New("unknown format")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMalformedShow     = errors.New("malformed .show file")
	ErrMalformedXML      = errors.New("malformed XML")
)

var formatAliases = map[string]Format{
	"ultimate-guitar": FormatUltimateGuitar,
	"ultimateguitar":  FormatUltimateGuitar,
	"ug":              FormatUltimateGuitar,
	"freeshow":        FormatFreeShow,
	"fs":              FormatFreeShow,
	"openlp":          FormatOpenLP,
	"openlyrics":      FormatOpenLyrics,
	"opensong":        FormatOpenLyrics,
	"xml":             FormatOpenLyrics,
	"show":            FormatShow,
}

// ParseFormat resolves a user supplied format name or alias.
func ParseFormat(name string) (Format, error) {
	if f, ok := formatAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

func (f Format) String() string { return string(f) }

// Extension returns the file extension conventionally used for f.
func (f Format) Extension() string {
	switch f {
	case FormatOpenLyrics:
		return ".xml"
	case FormatShow:
		return ".show"
	default:
		return ".txt"
	}
}

// Sniff identifies the format of data, using the file name only as a hint for self-describing formats.
func Sniff(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".show":
		return FormatShow
	case ".xml", ".sng":
		return FormatOpenLyrics
	}

	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("<")) {
		return FormatOpenLyrics
	}
	if bytes.HasPrefix(trimmed, []byte("[")) && json.Valid(trimmed) {
		return FormatShow
	}
	return DetectTextFormat(string(data))
}

// Import sniffs and parses data into a song. Text formats carry no metadata, so the title falls back to the
// file name. A song without a stored key gets one from [theory.DetectKey].
func Import(name string, data []byte) (*models.Song, Format, error) {
	format := Sniff(name, data)
	song, err := ImportAs(format, data)
	if err != nil {
		return nil, format, err
	}
	if song.Title == "" && name != "" {
		song.Title = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return song, format, nil
}

// ImportAs parses data as the given format.
func ImportAs(format Format, data []byte) (*models.Song, error) {
	var song *models.Song
	switch format {
	case FormatUltimateGuitar:
		song = &models.Song{Sections: ParseUltimateGuitar(string(data))}
	case FormatFreeShow:
		song = &models.Song{Sections: ParseFreeShowText(string(data))}
	case FormatOpenLyrics:
		s, err := ParseOpenLyrics(data)
		if err != nil {
			return nil, err
		}
		song = s
	case FormatShow:
		s, err := ParseShow(data)
		if err != nil {
			return nil, err
		}
		song = s
	case FormatOpenLP:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if song.OriginalKey == "" {
		if chords := song.ChordTexts(); len(chords) > 0 {
			song.OriginalKey = theory.DetectKey(chords)
		}
	}
	return song, nil
}

// Export renders song in the given format.
func Export(song *models.Song, format Format, opts ...ExportOption) ([]byte, error) {
	switch format {
	case FormatUltimateGuitar:
		return []byte(ExportUltimateGuitar(song.Sections)), nil
	case FormatFreeShow:
		return []byte(ExportFreeShowText(song.Sections)), nil
	case FormatOpenLyrics:
		return ExportOpenLyrics(song)
	case FormatShow:
		return ExportShow(song, opts...)
	case FormatOpenLP:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// splitLines splits text into lines, accepting CRLF line endings.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

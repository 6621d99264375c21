// package tasks implements chord chart conversion and library import operations over files.
//
// The core abstraction is ChartEngine, which reads charts, converts or transposes them and writes the results.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/chordx/internal/editing"
	"github.com/desertthunder/chordx/internal/formats"
	"github.com/desertthunder/chordx/internal/formatter"
	"github.com/desertthunder/chordx/internal/models"
	"github.com/desertthunder/chordx/internal/shared"
)

// SongStore persists imported songs. Implemented by repositories.SongRepository.
type SongStore interface {
	Create(song *models.PersistedSong) error
}

// JobRecorder persists batch conversion history. Implemented by repositories.ConversionRepository.
type JobRecorder interface {
	Create(job *models.ConversionJob) error
	Update(job *models.ConversionJob) error
}

// ChartEngine converts chord chart files and imports them into the library.
//
// Both stores are optional: without a [SongStore] ImportToLibrary fails, without a [JobRecorder] batch runs
// are simply not recorded.
type ChartEngine struct {
	songs      SongStore
	jobs       JobRecorder
	exportOpts []formats.ExportOption
	logger     *log.Logger
}

// NewChartEngine creates a ChartEngine. exportOpts are passed to every export.
func NewChartEngine(songs SongStore, jobs JobRecorder, logger *log.Logger, exportOpts ...formats.ExportOption) *ChartEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
		logger.SetLevel(log.WarnLevel)
	}
	return &ChartEngine{songs: songs, jobs: jobs, exportOpts: exportOpts, logger: logger}
}

// ConvertOpts configures a single file conversion.
type ConvertOpts struct {
	To        formats.Format // target format
	Output    string         // output path; defaults to the song's file name in the working directory
	Transpose string         // optional "+N", "-N" or key name applied before export
}

// ConvertResult describes one converted file.
type ConvertResult struct {
	Source   string         `json:"source"`
	Output   string         `json:"output,omitempty"`
	From     formats.Format `json:"from"`
	To       formats.Format `json:"to"`
	Title    string         `json:"title,omitempty"`
	Sections int            `json:"sections"`
	Success  bool           `json:"success"`
	Error    string         `json:"error,omitempty"`
}

// ReadSong reads and imports the chart at path.
func ReadSong(path string) (*models.Song, formats.Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	song, format, err := formats.Import(filepath.Base(path), data)
	if err != nil {
		return nil, format, fmt.Errorf("failed to import %s: %w", path, err)
	}
	return song, format, nil
}

// Convert imports the chart at path and writes it in another format.
func (e *ChartEngine) Convert(ctx context.Context, progress chan<- ProgressUpdate, path string, opts ConvertOpts) (*ConvertResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.sendProgress(progress, readingUpdate(1, 3, path))
	song, from, err := ReadSong(path)
	if err != nil {
		return nil, err
	}
	if len(song.Sections) == 0 {
		e.logger.Warn("chart has no sections", "path", path)
	}

	if opts.Transpose != "" {
		delta := editing.ApplyTranspose(song, opts.Transpose)
		e.logger.Debug("transposed", "path", path, "input", opts.Transpose, "semitones", delta)
	}

	e.sendProgress(progress, convertingUpdate(2, 3, song.Title, opts.To))
	out, err := formatter.WriteSongExport(song, opts.To, opts.Output, e.exportOpts...)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, convertCompletedUpdate(3, 3, song.Title, out))
	return &ConvertResult{
		Source:   path,
		Output:   out,
		From:     from,
		To:       opts.To,
		Title:    song.Title,
		Sections: len(song.Sections),
		Success:  true,
	}, nil
}

// ImportResult summarizes a library import.
type ImportResult struct {
	Imported   []*models.PersistedSong
	Duplicates []string // paths whose content is already in the library
	Failed     map[string]error
}

// ImportToLibrary imports every file in paths into the song library. Files already in the library are skipped;
// other per-file failures are collected and do not stop the run.
func (e *ChartEngine) ImportToLibrary(ctx context.Context, progress chan<- ProgressUpdate, paths []string) (*ImportResult, error) {
	if e.songs == nil {
		return nil, fmt.Errorf("%w: no song library configured", shared.ErrMissingConfig)
	}

	result := &ImportResult{Failed: make(map[string]error)}
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		song, _, err := ReadSong(path)
		if err == nil && len(song.Sections) == 0 {
			err = shared.ErrEmptySong
		}
		if err != nil {
			result.Failed[path] = err
			e.sendProgress(progress, importFailedUpdate(i+1, len(paths), path, err))
			continue
		}

		persisted := models.NewPersistedSong(0, "", song)
		switch err := e.songs.Create(persisted); {
		case errors.Is(err, shared.ErrDuplicateSong):
			result.Duplicates = append(result.Duplicates, path)
			e.sendProgress(progress, duplicateUpdate(i+1, len(paths), song.Title))
		case err != nil:
			result.Failed[path] = err
			e.sendProgress(progress, importFailedUpdate(i+1, len(paths), path, err))
		default:
			result.Imported = append(result.Imported, persisted)
			e.sendProgress(progress, importedUpdate(i+1, len(paths), persisted))
		}
	}
	return result, nil
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ChartEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

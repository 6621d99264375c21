package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/chordx/internal/editing"
	"github.com/desertthunder/chordx/internal/formatter"
	"github.com/desertthunder/chordx/internal/models"
	"github.com/desertthunder/chordx/internal/shared"
	"github.com/desertthunder/chordx/internal/tasks"
	"github.com/urfave/cli/v3"
)

func (r *Runner) writeSongs(songs []*models.PersistedSong, asJSON, pretty bool) error {
	summaries := formatter.Summaries(songs)
	if asJSON {
		return r.writeJSON(summaries, pretty)
	}

	if len(summaries) == 0 {
		return r.writePlain("No songs found.\n")
	}
	for _, s := range summaries {
		line := fmt.Sprintf("%3d. %s", s.Sequence, s.Title)
		if s.Artist != "" {
			line += " - " + s.Artist
		}
		if s.Key != "" {
			line += fmt.Sprintf(" [%s]", s.Key)
		}
		if s.Transpose != "" {
			line += fmt.Sprintf(" (transposed %s)", s.Transpose)
		}
		r.writePlain("%s\n", line)
	}
	return nil
}

// resolveSong opens the library and finds the song named by the "ref" argument (a list number or an id).
func (r *Runner) resolveSong(cmd *cli.Command) (*models.PersistedSong, error) {
	ref := cmd.StringArg("ref")
	if err := requireArg(ref, "song id or number"); err != nil {
		return nil, err
	}
	if err := r.openLibrary(); err != nil {
		return nil, err
	}
	return r.songs.Resolve(ref)
}

// LibraryImport imports chart files into the library.
func (r *Runner) LibraryImport(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one chart file", shared.ErrMissingArgument)
	}
	if err := r.openLibrary(); err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	var progressCh chan tasks.ProgressUpdate
	done := make(chan struct{})
	if asJSON {
		close(done)
	} else {
		progressCh = make(chan tasks.ProgressUpdate, len(paths))
		go func() {
			defer close(done)
			for update := range progressCh {
				r.writePlain("   [%d/%d] %s\n", update.Step, update.Total, update.Message)
			}
		}()
	}

	result, err := r.engine.ImportToLibrary(ctx, progressCh, paths)
	if progressCh != nil {
		close(progressCh)
	}
	<-done
	if err != nil {
		return err
	}

	if asJSON {
		failed := make(map[string]string, len(result.Failed))
		for path, err := range result.Failed {
			failed[path] = err.Error()
		}
		return r.writeJSON(map[string]any{
			"imported":   formatter.Summaries(result.Imported),
			"duplicates": result.Duplicates,
			"failed":     failed,
		}, true)
	}

	r.writePlain("\n")
	r.writePlainHeader("Import Complete!")
	r.writePlain("Imported: %d\n", len(result.Imported))
	r.writePlain("Already in library: %d\n", len(result.Duplicates))
	if len(result.Failed) > 0 {
		r.writePlain("\nFailed to import %d files:\n", len(result.Failed))
		for path, err := range result.Failed {
			r.writePlain("  - %s: %v\n", path, err)
		}
	}
	return nil
}

// LibraryList lists songs, optionally filtered by artist and key.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	if err := r.openLibrary(); err != nil {
		return err
	}

	songs, err := r.songs.List(map[string]any{
		"artist": cmd.String("artist"),
		"key":    cmd.String("key"),
		"limit":  cmd.Int("limit"),
	})
	if err != nil {
		return err
	}
	return r.writeSongs(songs, cmd.Bool("json"), cmd.Bool("pretty"))
}

// LibrarySearch fuzzy-matches titles and artists.
func (r *Runner) LibrarySearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if err := requireArg(query, "search query"); err != nil {
		return err
	}
	if err := r.openLibrary(); err != nil {
		return err
	}

	songs, err := r.songs.Search(query, cmd.Int("limit"))
	if err != nil {
		return err
	}
	return r.writeSongs(songs, cmd.Bool("json"), cmd.Bool("pretty"))
}

// LibraryShow prints a stored song as a chart, or its canonical JSON with --json.
func (r *Runner) LibraryShow(ctx context.Context, cmd *cli.Command) error {
	song, err := r.resolveSong(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(song.Song(), cmd.Bool("pretty"))
	}

	data, err := r.renderChart(song.Song(), r.chartOptions(cmd), false, cmd.Bool("color"))
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// LibraryTranspose transposes a stored song relative to its original chords.
func (r *Runner) LibraryTranspose(ctx context.Context, cmd *cli.Command) error {
	by := cmd.String("by")
	if err := parseTranspose(by); err != nil {
		return err
	}
	song, err := r.resolveSong(cmd)
	if err != nil {
		return err
	}

	delta := editing.ApplyTranspose(song.Song(), by)
	if err := r.songs.Update(song); err != nil {
		return err
	}

	r.logger.Info("transposed song", "id", song.ID(), "by", by, "semitones", delta)
	return r.writePlain("✓ %s is now in %s\n", song.Title(), editing.SongKey(song.Song()))
}

// LibraryReset restores a stored song's original chords.
func (r *Runner) LibraryReset(ctx context.Context, cmd *cli.Command) error {
	song, err := r.resolveSong(cmd)
	if err != nil {
		return err
	}

	editing.ResetTranspose(song.Song())
	if err := r.songs.Update(song); err != nil {
		return err
	}
	return r.writePlain("✓ %s is back in %s\n", song.Title(), editing.SongKey(song.Song()))
}

// LibraryExport writes a stored song as a chart format, a text or Markdown chart, or canonical JSON.
func (r *Runner) LibraryExport(ctx context.Context, cmd *cli.Command) error {
	song, err := r.resolveSong(cmd)
	if err != nil {
		return err
	}

	out := cmd.String("output")
	opts := formatter.ChartOptions{Width: r.config.Export.ChartWidth}

	var path string
	switch to := strings.ToLower(cmd.String("to")); to {
	case "text", "txt", "chart":
		path, err = formatter.WriteTextExport(song.Song(), out, opts)
	case "markdown", "md":
		var result *formatter.MarkdownExportResult
		if result, err = formatter.WriteMarkdownExport(song.Song(), out, opts); err == nil {
			path = result.Files[0]
		}
	case "json":
		path, err = formatter.WriteJSONExport(song.Song(), out)
	default:
		format, ferr := r.targetFormat(to)
		if ferr != nil {
			return ferr
		}
		path, err = formatter.WriteSongExport(song.Song(), format, out, r.exportOptions()...)
	}
	if err != nil {
		return err
	}

	return r.writePlain("✓ Exported %s to %s\n", song.Title(), path)
}

// LibraryDelete removes a song from the library.
func (r *Runner) LibraryDelete(ctx context.Context, cmd *cli.Command) error {
	song, err := r.resolveSong(cmd)
	if err != nil {
		return err
	}
	if err := r.songs.Delete(song.ID()); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s\n", song.Title())
}

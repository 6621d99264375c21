package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/chordx/internal/editing"
	"github.com/desertthunder/chordx/internal/formats"
	"github.com/desertthunder/chordx/internal/formatter"
	"github.com/desertthunder/chordx/internal/models"
	"github.com/desertthunder/chordx/internal/shared"
	"github.com/desertthunder/chordx/internal/tasks"
	"github.com/desertthunder/chordx/internal/theory"
	"github.com/desertthunder/chordx/internal/ui"
	"github.com/urfave/cli/v3"
)

// KeyResult is the JSON shape of the key command.
type KeyResult struct {
	Path     string `json:"path"`
	Key      string `json:"key"`
	Declared string `json:"declared,omitempty"`
	Chords   int    `json:"chords"`
}

func parseTranspose(input string) error {
	if !theory.ValidTransposeInput(input) {
		return fmt.Errorf("%w: transpose %q: want +N, -N or a key name", shared.ErrInvalidFlag, input)
	}
	return nil
}

func (r *Runner) readSong(path string) (*models.Song, formats.Format, error) {
	if err := requireArg(path, "chart file path"); err != nil {
		return nil, "", err
	}
	song, format, err := tasks.ReadSong(path)
	if err != nil {
		return nil, "", err
	}
	if len(song.Sections) == 0 {
		r.logger.Warn("no sections found in chart", "path", path)
	}
	return song, format, nil
}

// Transpose rewrites a chart file in another key, printing the result unless --output is set.
func (r *Runner) Transpose(ctx context.Context, cmd *cli.Command) error {
	by := cmd.String("by")
	if err := parseTranspose(by); err != nil {
		return err
	}

	song, from, err := r.readSong(cmd.StringArg("path"))
	if err != nil {
		return err
	}

	to := from
	if name := cmd.String("to"); name != "" {
		if to, err = r.targetFormat(name); err != nil {
			return err
		}
	}

	delta := editing.ApplyTranspose(song, by)
	r.logger.Debug("transposed", "by", by, "semitones", delta, "key", editing.SongKey(song))

	if out := cmd.String("output"); out != "" {
		path, err := formatter.WriteSongExport(song, to, out, r.exportOptions()...)
		if err != nil {
			return err
		}
		return r.writePlain("✓ %s in %s → %s\n", song.Title, editing.SongKey(song), path)
	}

	data, err := formats.Export(song, to, r.exportOptions()...)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Key prints the key detected from a chart's chords, and the key it declares when that differs.
func (r *Runner) Key(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	song, _, err := r.readSong(path)
	if err != nil {
		return err
	}

	chords := song.ChordTexts()
	result := KeyResult{Path: path, Key: theory.DetectKey(chords), Chords: len(chords)}
	if song.OriginalKey != result.Key {
		result.Declared = song.OriginalKey
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}
	if result.Key == "" {
		return r.writePlain("No chords found.\n")
	}
	r.writePlain("%s\n", result.Key)
	if result.Declared != "" {
		r.writePlain("(chart declares %s)\n", result.Declared)
	}
	return nil
}

func (r *Runner) chartOptions(cmd *cli.Command) formatter.ChartOptions {
	width := cmd.Int("width")
	if width <= 0 {
		width = r.config.Export.ChartWidth
	}
	return formatter.ChartOptions{Width: width, NoHeader: cmd.Bool("no-header")}
}

// renderChart lays song out as Markdown, colored terminal text or plain text.
func (r *Runner) renderChart(song *models.Song, opts formatter.ChartOptions, markdown, color bool) ([]byte, error) {
	switch {
	case markdown:
		return formatter.ExportToMarkdown(song, opts)
	case color:
		return []byte(ui.NewChartRenderer(r.sectionColors()).Render(formatter.LayoutChart(song, opts))), nil
	default:
		return formatter.ExportToText(song, opts)
	}
}

// Chart renders a chart file as chords over lyrics.
func (r *Runner) Chart(ctx context.Context, cmd *cli.Command) error {
	song, _, err := r.readSong(cmd.StringArg("path"))
	if err != nil {
		return err
	}

	if by := cmd.String("transpose"); by != "" {
		if err := parseTranspose(by); err != nil {
			return err
		}
		editing.ApplyTranspose(song, by)
	}

	opts := r.chartOptions(cmd)
	out := cmd.String("output")
	if out != "" && !cmd.Bool("markdown") {
		path, err := formatter.WriteTextExport(song, out, opts)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Chart written to %s\n", path)
	}

	data, err := r.renderChart(song, opts, cmd.Bool("markdown"), cmd.Bool("color") && out == "")
	if err != nil {
		return err
	}
	if out != "" {
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
		return r.writePlain("✓ Chart written to %s\n", out)
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

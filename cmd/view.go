package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/chordx/internal/formatter"
	"github.com/desertthunder/chordx/internal/shared"
	"github.com/desertthunder/chordx/internal/ui"
	"github.com/urfave/cli/v3"
)

// View launches the interactive chart viewer on one file, or on the library when no file is given.
func (r *Runner) View(ctx context.Context, cmd *cli.Command) error {
	renderer := ui.NewChartRenderer(r.sectionColors())
	opts := formatter.ChartOptions{Width: cmd.Int("width")}
	if opts.Width <= 0 {
		opts.Width = r.config.Export.ChartWidth
	}

	var model *ui.Model
	if path := cmd.StringArg("path"); path != "" {
		song, _, err := r.readSong(path)
		if err != nil {
			return err
		}
		model = ui.NewChartModel(song, renderer, opts)
	} else {
		if err := r.openLibrary(); err != nil {
			return err
		}
		model = ui.NewLibraryModel(r.songs, renderer, opts)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, f, err := shared.NewFileLogger("./tmp/chordx-view.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer f.Close()
	fileLogger.SetLevel(r.logger.GetLevel())
	r.logger = fileLogger

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running viewer: %w", err)
	}
	return model.Err()
}

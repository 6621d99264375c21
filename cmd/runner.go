package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chordx/internal/formats"
	"github.com/desertthunder/chordx/internal/models"
	"github.com/desertthunder/chordx/internal/repositories"
	"github.com/desertthunder/chordx/internal/shared"
	"github.com/desertthunder/chordx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
	db     *sql.DB
	songs  *repositories.SongRepository
	jobs   *repositories.ConversionRepository
	engine *tasks.ChartEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
	DB     *sql.DB // migrated library database; opened from config on first use when nil
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
	if opts.DB != nil {
		r.attach(opts.DB)
	} else {
		r.engine = tasks.NewChartEngine(nil, nil, r.logger, r.exportOptions()...)
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, detectCommand, convertCommand, transposeCommand, keyCommand, chartCommand, viewCommand, serveCommand, libraryCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openLibrary opens and migrates the configured library database unless one is already attached.
func (r *Runner) openLibrary() error {
	if r.db != nil {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Debug("opened library", "path", r.config.Database.Path)
	r.attach(db)
	return nil
}

func (r *Runner) attach(db *sql.DB) {
	r.db = db
	r.songs = repositories.NewSongRepository(db)
	r.jobs = repositories.NewConversionRepository(db)
	r.engine = tasks.NewChartEngine(r.songs, r.jobs, r.logger, r.exportOptions()...)
}

// Close releases the library database if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// sectionColors converts the [colors] table to section types, skipping unknown names.
func (r *Runner) sectionColors() map[models.SectionType]string {
	colors := make(map[models.SectionType]string, len(r.config.Colors))
	for name, hex := range r.config.Colors {
		t := models.SectionType(name)
		if !t.Valid() {
			r.logger.Warn("ignoring color for unknown section type", "type", name)
			continue
		}
		colors[t] = hex
	}
	return colors
}

func (r *Runner) exportOptions() []formats.ExportOption {
	if len(r.config.Colors) == 0 {
		return nil
	}
	return []formats.ExportOption{formats.WithSectionColors(r.sectionColors())}
}

// targetFormat parses name, falling back to the configured default format.
func (r *Runner) targetFormat(name string) (formats.Format, error) {
	if name == "" {
		name = r.config.Export.DefaultFormat
	}
	f, err := formats.ParseFormat(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrInvalidFlag, err)
	}
	return f, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

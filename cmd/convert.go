package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/chordx/internal/formats"
	"github.com/desertthunder/chordx/internal/models"
	"github.com/desertthunder/chordx/internal/shared"
	"github.com/desertthunder/chordx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// DetectResult is the JSON shape of the detect command.
type DetectResult struct {
	Path   string         `json:"path"`
	Format formats.Format `json:"format"`
}

func requireArg(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return nil
}

// Detect prints the format a chart file would be imported as.
func (r *Runner) Detect(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if err := requireArg(path, "chart file path"); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	result := DetectResult{Path: path, Format: formats.Sniff(path, data)}
	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}
	return r.writePlain("%s\n", result.Format)
}

// ConvertFile converts one chart file to another format.
func (r *Runner) ConvertFile(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if err := requireArg(path, "chart file path"); err != nil {
		return err
	}
	to, err := r.targetFormat(cmd.String("to"))
	if err != nil {
		return err
	}

	r.logger.Info("converting", "path", path, "to", to)
	result, err := r.engine.Convert(ctx, nil, path, tasks.ConvertOpts{
		To:        to,
		Output:    cmd.String("output"),
		Transpose: cmd.String("transpose"),
	})
	if err != nil {
		return err
	}
	if result.Sections == 0 {
		r.logger.Warn("no sections found in chart", "path", path)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}
	r.writePlain("✓ %s (%s) → %s (%s)\n", result.Source, result.From, result.Output, result.To)
	r.writePlain("  %s, %d sections\n", result.Title, result.Sections)
	return nil
}

// ConvertBatch converts a directory of charts concurrently, recording the run in the library when possible.
func (r *Runner) ConvertBatch(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.StringArg("dir")
	if err := requireArg(dir, "source directory"); err != nil {
		return err
	}
	to, err := r.targetFormat(cmd.String("to"))
	if err != nil {
		return err
	}

	if !cmd.Bool("no-history") {
		if err := r.openLibrary(); err != nil {
			r.logger.Warn("library unavailable, run will not be recorded", "error", err)
		}
	}

	opts := tasks.BulkConvertOpts{
		To:         to,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		Transpose:  cmd.String("transpose"),
	}
	if opts.OutputDir == "" {
		opts.OutputDir = r.config.Export.OutputDir
	}
	if opts.NumWorkers == 0 {
		opts.NumWorkers = r.config.Export.Workers
	}

	asJSON := cmd.Bool("json")
	var progressCh chan tasks.ProgressUpdate
	done := make(chan struct{})
	if asJSON {
		close(done)
	} else {
		r.writePlain("Converting %s to %s...\n\n", dir, to)
		progressCh = make(chan tasks.ProgressUpdate, 50)
		go func() {
			defer close(done)
			for update := range progressCh {
				switch update.Phase {
				case tasks.ScanFiles:
					r.writePlain("📂 %s\n", update.Message)
				case tasks.ConvertChart:
					r.writePlain("   [%d/%d] %s\n", update.Step, update.Total, update.Message)
				case tasks.WriteManifest:
					r.writePlain("\n📝 %s\n", update.Message)
				}
			}
		}()
	}

	result, err := r.engine.BulkConvert(ctx, progressCh, dir, opts)
	if progressCh != nil {
		close(progressCh)
	}
	<-done

	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(result, true)
	}

	r.writePlain("\n")
	r.writePlainHeader("Conversion Complete!")
	r.writePlain("Source: %s\n", result.Source)
	r.writePlain("Output: %s (%s)\n", result.OutputDir, result.Format)
	r.writePlain("Converted: %d/%d\n", result.Converted, result.TotalFiles)
	if result.JobID != "" {
		r.writePlain("Recorded as run %s\n", result.JobID)
	}

	if result.Failed > 0 {
		r.writePlain("\nFailed to convert %d files:\n", result.Failed)
		for _, res := range result.Results {
			if res.Error != "" {
				r.writePlain("  - %s: %s\n", res.Source, res.Error)
			}
		}
	}
	return nil
}

// JobSummary is the JSON shape of one conversion history entry.
type JobSummary struct {
	ID           string           `json:"id"`
	Sequence     int              `json:"sequence"`
	Source       string           `json:"source"`
	TargetFormat string           `json:"target_format"`
	OutputDir    string           `json:"output_dir"`
	Status       models.JobStatus `json:"status"`
	FilesTotal   int              `json:"files_total"`
	Converted    int              `json:"converted"`
	Failed       int              `json:"failed"`
	Error        string           `json:"error,omitempty"`
	CreatedAt    string           `json:"created_at"`
}

func summarizeJob(job *models.ConversionJob) JobSummary {
	return JobSummary{
		ID:           job.ID(),
		Sequence:     job.Sequence(),
		Source:       job.Source(),
		TargetFormat: job.TargetFormat(),
		OutputDir:    job.OutputDir(),
		Status:       job.Status(),
		FilesTotal:   job.FilesTotal(),
		Converted:    job.Converted(),
		Failed:       job.Failed(),
		Error:        job.ErrorMessage(),
		CreatedAt:    job.CreatedAt().Format("2006-01-02 15:04:05"),
	}
}

// ConvertHistory lists recorded batch conversions, newest first.
func (r *Runner) ConvertHistory(ctx context.Context, cmd *cli.Command) error {
	if err := r.openLibrary(); err != nil {
		return err
	}

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if status := cmd.String("status"); status != "" {
		criteria["status"] = status
	}
	if name := cmd.String("format"); name != "" {
		to, err := r.targetFormat(name)
		if err != nil {
			return err
		}
		criteria["target_format"] = to.String()
	}

	jobs, err := r.jobs.List(criteria)
	if err != nil {
		return err
	}

	summaries := make([]JobSummary, len(jobs))
	for i, job := range jobs {
		summaries[i] = summarizeJob(job)
	}
	if cmd.Bool("json") {
		return r.writeJSON(summaries, true)
	}

	if len(summaries) == 0 {
		return r.writePlain("No conversions recorded.\n")
	}
	for _, s := range summaries {
		r.writePlain("#%d  %-9s  %s → %s (%s)  %d/%d converted  %s\n",
			s.Sequence, s.Status, s.Source, s.OutputDir, s.TargetFormat, s.Converted, s.FilesTotal, s.CreatedAt)
		if s.Error != "" {
			r.writePlain("     %s\n", s.Error)
		}
	}
	return nil
}

package tasks

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/chordx/internal/formats"
	"github.com/desertthunder/chordx/internal/formatter"
	"github.com/desertthunder/chordx/internal/models"
)

// ManifestName is the file BulkConvert writes its summary to, inside the output directory.
const ManifestName = "conversion_manifest.json"

// BulkConvertOpts contains configuration for converting a directory of charts.
type BulkConvertOpts struct {
	To         formats.Format // target format
	OutputDir  string         // output directory (default: chordx_{format}_{epoch})
	NumWorkers int            // concurrent conversions (default: 4, max: 16)
	Transpose  string         // optional transposition applied to every song
}

// BulkConvertResult contains the outcome of a BulkConvert run.
type BulkConvertResult struct {
	JobID        string          `json:"job_id,omitempty"`
	Source       string          `json:"source"`
	OutputDir    string          `json:"output_dir"`
	Format       formats.Format  `json:"format"`
	TotalFiles   int             `json:"total_files"`
	Converted    int             `json:"converted"`
	Failed       int             `json:"failed"`
	Results      []ConvertResult `json:"results"`
	ManifestPath string          `json:"-"`
}

// BulkConvert converts every chart file under dir concurrently, writing one output per input plus a manifest.
//
// Per-file failures are recorded in the result and do not stop other conversions. Output names keep each input's
// relative path with the target extension, suffixed with a counter when two inputs map to the same name.
func (e *ChartEngine) BulkConvert(ctx context.Context, prog chan<- ProgressUpdate, dir string, opts BulkConvertOpts) (*BulkConvertResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("chordx_%s_%d", opts.To, time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 16 {
		opts.NumWorkers = 16
	}

	e.sendProgress(prog, scanningUpdate(dir))
	files, err := collectCharts(dir, opts.OutputDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkConvertResult{
		Source:     dir,
		OutputDir:  opts.OutputDir,
		Format:     opts.To,
		TotalFiles: len(files),
		Results:    make([]ConvertResult, len(files)),
	}

	job := e.startJob(dir, opts)
	if job != nil {
		result.JobID = job.ID()
		job.Start(len(files))
		e.recordJob(job)
	}

	outputs := outputPaths(dir, files, opts)

	var completed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.NumWorkers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := e.Convert(gctx, nil, path, ConvertOpts{To: opts.To, Output: outputs[i], Transpose: opts.Transpose})
			step := int(completed.Add(1))
			if err != nil {
				result.Results[i] = ConvertResult{Source: path, To: opts.To, Error: err.Error()}
				e.logger.Warn("conversion failed", "path", path, "err", err)
				e.sendProgress(prog, convertFailedUpdate(step, len(files), path, err))
				return nil
			}
			result.Results[i] = *res
			e.sendProgress(prog, convertCompletedUpdate(step, len(files), res.Title, res.Output))
			return nil
		})
	}
	runErr := g.Wait()

	for _, r := range result.Results {
		switch {
		case r.Success:
			result.Converted++
		case r.Error != "":
			result.Failed++
		}
	}

	if job != nil {
		job.Finish(result.Converted, result.Failed, runErr)
		e.recordJob(job)
	}
	if runErr != nil {
		return result, runErr
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestName)
	e.sendProgress(prog, manifestUpdate(manifestPath))
	if err := formatter.WriteManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("conversion completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

func (e *ChartEngine) startJob(dir string, opts BulkConvertOpts) *models.ConversionJob {
	if e.jobs == nil {
		return nil
	}
	job := models.NewConversionJob(0, dir, string(opts.To), opts.OutputDir)
	if err := e.jobs.Create(job); err != nil {
		e.logger.Warn("failed to record conversion job", "err", err)
		return nil
	}
	return job
}

// recordJob saves job state; history is best effort and never fails a conversion.
func (e *ChartEngine) recordJob(job *models.ConversionJob) {
	if err := e.jobs.Update(job); err != nil {
		e.logger.Warn("failed to update conversion job", "id", job.ID(), "err", err)
	}
}

// collectCharts lists regular, non-hidden files under dir in lexical order, skipping outputDir and manifests.
func collectCharts(dir, outputDir string) ([]string, error) {
	absOut, _ := filepath.Abs(outputDir)

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if abs, _ := filepath.Abs(path); abs == absOut {
				return filepath.SkipDir
			}
			if path != dir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || name == ManifestName || !d.Type().IsRegular() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// outputPaths maps each input to a unique output path under opts.OutputDir.
func outputPaths(dir string, files []string, opts BulkConvertOpts) []string {
	taken := make(map[string]bool, len(files))
	out := make([]string, len(files))
	for i, path := range files {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		base := strings.TrimSuffix(rel, filepath.Ext(rel))
		name := base + opts.To.Extension()
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s_%d%s", base, n, opts.To.Extension())
		}
		taken[name] = true
		out[i] = filepath.Join(opts.OutputDir, name)
	}
	return out
}

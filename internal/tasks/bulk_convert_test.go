package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/chordx/internal/formats"
	"github.com/desertthunder/chordx/internal/models"
	th "github.com/desertthunder/chordx/internal/testing"
)

func writeCharts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	th.MustWriteFile(t, dir, "ug.txt", th.UltimateGuitarChart)
	th.MustWriteFile(t, dir, "fs.txt", th.FreeShowChart)
	th.MustWriteFile(t, dir, "hymn.xml", th.OpenLyricsChart)
	th.MustWriteFile(t, dir, "broken.show", `{"not": "an array"}`)
	th.MustWriteFile(t, dir, ".DS_Store", "junk")

	sub := filepath.Join(dir, "opensong")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}
	th.MustWriteFile(t, sub, "grace.xml", th.OpenSongChart)
	return dir
}

func TestBulkConvert(t *testing.T) {
	t.Run("converts every chart", func(t *testing.T) {
		dir := writeCharts(t)
		outDir := filepath.Join(t.TempDir(), "out")
		jobs := &memJobs{}

		engine := NewChartEngine(nil, jobs, nil)
		progress := make(chan ProgressUpdate, 50)
		result, err := engine.BulkConvert(context.Background(), progress, dir, BulkConvertOpts{
			To:         formats.FormatShow,
			OutputDir:  outDir,
			NumWorkers: 2,
		})
		if err != nil {
			t.Fatalf("BulkConvert failed: %v", err)
		}

		if result.TotalFiles != 5 {
			t.Errorf("expected 5 files, got %d", result.TotalFiles)
		}
		if result.Converted != 4 || result.Failed != 1 {
			t.Errorf("converted %d, failed %d", result.Converted, result.Failed)
		}

		for _, name := range []string{"ug.show", "fs.show", "hymn.show", filepath.Join("opensong", "grace.show")} {
			th.AssertFileExists(t, filepath.Join(outDir, name))
		}
		if _, err := os.Stat(filepath.Join(outDir, "broken.show")); !os.IsNotExist(err) {
			t.Error("failed conversions should not produce output")
		}

		th.AssertFileExists(t, result.ManifestPath)
		var manifest BulkConvertResult
		if err := json.Unmarshal([]byte(th.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
			t.Fatalf("manifest is not valid JSON: %v", err)
		}
		if manifest.Converted != 4 || len(manifest.Results) != 5 {
			t.Errorf("manifest = %+v", manifest)
		}

		if result.JobID != "job-1" {
			t.Errorf("job id = %q", result.JobID)
		}
		want := []models.JobStatus{models.JobPending, models.JobRunning, models.JobCompleted}
		if len(jobs.statuses) != len(want) {
			t.Fatalf("job statuses = %v", jobs.statuses)
		}
		for i, s := range want {
			if jobs.statuses[i] != s {
				t.Errorf("status %d = %s, want %s", i, jobs.statuses[i], s)
			}
		}
		if jobs.job.Converted() != 4 || jobs.job.Failed() != 1 {
			t.Errorf("job counts = %d/%d", jobs.job.Converted(), jobs.job.Failed())
		}

		phases := map[Phase]int{}
		for _, u := range drain(progress) {
			phases[u.Phase]++
		}
		if phases[ScanFiles] != 1 || phases[ConvertChart] != 5 || phases[WriteManifest] != 1 {
			t.Errorf("phase counts = %v", phases)
		}
	})

	t.Run("results keep input order", func(t *testing.T) {
		dir := writeCharts(t)
		engine := NewChartEngine(nil, nil, nil)
		result, err := engine.BulkConvert(context.Background(), nil, dir, BulkConvertOpts{
			To:         formats.FormatFreeShow,
			OutputDir:  filepath.Join(t.TempDir(), "out"),
			NumWorkers: 8,
		})
		if err != nil {
			t.Fatalf("BulkConvert failed: %v", err)
		}
		for i := 1; i < len(result.Results); i++ {
			if result.Results[i-1].Source > result.Results[i].Source {
				t.Errorf("results out of order: %s before %s", result.Results[i-1].Source, result.Results[i].Source)
			}
		}
	})

	t.Run("output inside source is skipped", func(t *testing.T) {
		dir := writeCharts(t)
		outDir := filepath.Join(dir, "converted")
		engine := NewChartEngine(nil, nil, nil)

		if _, err := engine.BulkConvert(context.Background(), nil, dir, BulkConvertOpts{To: formats.FormatShow, OutputDir: outDir}); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		result, err := engine.BulkConvert(context.Background(), nil, dir, BulkConvertOpts{To: formats.FormatShow, OutputDir: outDir})
		if err != nil {
			t.Fatalf("second run failed: %v", err)
		}
		if result.TotalFiles != 5 {
			t.Errorf("second run should ignore its own output, got %d files", result.TotalFiles)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		dir := writeCharts(t)
		jobs := &memJobs{}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		engine := NewChartEngine(nil, jobs, nil)
		result, err := engine.BulkConvert(ctx, nil, dir, BulkConvertOpts{To: formats.FormatShow, OutputDir: filepath.Join(t.TempDir(), "out")})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if result.ManifestPath != "" {
			t.Error("canceled run should not write a manifest")
		}
		if last := jobs.statuses[len(jobs.statuses)-1]; last != models.JobFailed {
			t.Errorf("final job status = %s, want failed", last)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		engine := NewChartEngine(nil, nil, nil)
		_, err := engine.BulkConvert(context.Background(), nil, filepath.Join(t.TempDir(), "nope"), BulkConvertOpts{To: formats.FormatShow})
		if err == nil {
			t.Fatal("expected error for missing directory")
		}
	})
}

func TestOutputPaths(t *testing.T) {
	files := []string{
		filepath.Join("in", "a.txt"),
		filepath.Join("in", "a.xml"),
		filepath.Join("in", "a.show"),
		filepath.Join("in", "sub", "a.txt"),
	}
	got := outputPaths("in", files, BulkConvertOpts{To: formats.FormatShow, OutputDir: "out"})
	want := []string{
		filepath.Join("out", "a.show"),
		filepath.Join("out", "a_2.show"),
		filepath.Join("out", "a_3.show"),
		filepath.Join("out", "sub", "a.show"),
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("output %d = %s, want %s", i, got[i], want[i])
		}
	}
}

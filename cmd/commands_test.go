package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/chordx/internal/formats"
	"github.com/desertthunder/chordx/internal/formatter"
	"github.com/desertthunder/chordx/internal/models"
	"github.com/desertthunder/chordx/internal/shared"
	tu "github.com/desertthunder/chordx/internal/testing"
)

func TestChartCommands(t *testing.T) {
	dir := t.TempDir()
	ug := tu.MustWriteFile(t, dir, "grace.txt", tu.UltimateGuitarChart)

	t.Run("detect", func(t *testing.T) {
		runner, output := newLibraryRunner(t)
		if err := run(runner, "detect", ug); err != nil {
			t.Fatalf("detect failed: %v", err)
		}
		if got := strings.TrimSpace(output.String()); got != formats.FormatUltimateGuitar.String() {
			t.Errorf("detect = %q", got)
		}
	})

	t.Run("detect without a path", func(t *testing.T) {
		runner, _ := newLibraryRunner(t)
		if err := run(runner, "detect"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("convert file", func(t *testing.T) {
		runner, output := newLibraryRunner(t)
		out := filepath.Join(dir, "out", "grace.show")
		if err := run(runner, "convert", "file", ug, "--to", "show", "--output", out); err != nil {
			t.Fatalf("convert failed: %v", err)
		}
		tu.AssertFileExists(t, out)
		if !strings.Contains(output.String(), "2 sections") {
			t.Errorf("output = %s", output.String())
		}
	})

	t.Run("convert file with unknown format", func(t *testing.T) {
		runner, _ := newLibraryRunner(t)
		err := run(runner, "convert", "file", ug, "--to", "pdf")
		if !errors.Is(err, shared.ErrInvalidFlag) || !errors.Is(err, formats.ErrUnknownFormat) {
			t.Errorf("expected ErrInvalidFlag wrapping ErrUnknownFormat, got %v", err)
		}
	})

	t.Run("transpose to stdout", func(t *testing.T) {
		runner, output := newLibraryRunner(t)
		if err := run(runner, "transpose", ug, "--by", "+2", "--to", "freeshow"); err != nil {
			t.Fatalf("transpose failed: %v", err)
		}
		text := output.String()
		if !strings.Contains(text, "[A]") || strings.Contains(text, "[G]") {
			t.Errorf("output not transposed:\n%s", text)
		}
	})

	t.Run("transpose keeps the input format", func(t *testing.T) {
		runner, _ := newLibraryRunner(t)
		out := filepath.Join(dir, "grace-a.txt")
		if err := run(runner, "transpose", ug, "--by", "A", "--output", out); err != nil {
			t.Fatalf("transpose failed: %v", err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("output missing: %v", err)
		}
		if formats.Sniff(out, data) != formats.FormatUltimateGuitar {
			t.Errorf("output format changed:\n%s", data)
		}
	})

	t.Run("transpose rejects bad input", func(t *testing.T) {
		runner, _ := newLibraryRunner(t)
		if err := run(runner, "transpose", ug, "--by", "up"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("key", func(t *testing.T) {
		runner, output := newLibraryRunner(t)
		if err := run(runner, "key", ug, "--json"); err != nil {
			t.Fatalf("key failed: %v", err)
		}
		var result KeyResult
		if err := json.Unmarshal(output.Bytes(), &result); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if result.Key != "G" || result.Chords != 6 || result.Declared != "" {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("chart", func(t *testing.T) {
		runner, output := newLibraryRunner(t)
		if err := run(runner, "chart", ug, "--width", "40"); err != nil {
			t.Fatalf("chart failed: %v", err)
		}
		text := output.String()
		for _, want := range []string{"grace", "Verse 1", "Amazing grace how sweet", "Key: G"} {
			if !strings.Contains(text, want) {
				t.Errorf("chart missing %q:\n%s", want, text)
			}
		}
	})

	t.Run("chart as markdown file", func(t *testing.T) {
		runner, _ := newLibraryRunner(t)
		out := filepath.Join(dir, "grace.md")
		if err := run(runner, "chart", ug, "--markdown", "--output", out); err != nil {
			t.Fatalf("chart failed: %v", err)
		}
		if text := tu.MustReadFile(t, out); !strings.HasPrefix(text, "#") {
			t.Errorf("expected a Markdown heading:\n%s", text)
		}
	})

	t.Run("chart with color", func(t *testing.T) {
		runner, output := newLibraryRunner(t)
		if err := run(runner, "chart", ug, "--color", "--transpose", "+2"); err != nil {
			t.Fatalf("chart failed: %v", err)
		}
		if !strings.Contains(output.String(), "transposed +2 from G") {
			t.Errorf("chart = %s", output.String())
		}
	})
}

func TestConvertBatch(t *testing.T) {
	src := t.TempDir()
	tu.MustWriteFile(t, src, "ug.txt", tu.UltimateGuitarChart)
	tu.MustWriteFile(t, src, "fs.txt", tu.FreeShowChart)
	tu.MustWriteFile(t, src, "broken.show", `{"not": "an array"}`)

	runner, output := newLibraryRunner(t)
	out := filepath.Join(t.TempDir(), "converted")
	if err := run(runner, "convert", "batch", src, "--to", "openlyrics", "--output", out, "--workers", "2"); err != nil {
		t.Fatalf("batch failed: %v", err)
	}

	text := output.String()
	if !strings.Contains(text, "Converted: 2/3") || !strings.Contains(text, "broken.show") {
		t.Errorf("summary = %s", text)
	}
	tu.AssertFileExists(t, filepath.Join(out, "ug.xml"))
	tu.AssertFileExists(t, filepath.Join(out, "conversion_manifest.json"))

	output.Reset()
	if err := run(runner, "convert", "history", "--json"); err != nil {
		t.Fatalf("history failed: %v", err)
	}
	var jobs []JobSummary
	if err := json.Unmarshal(output.Bytes(), &jobs); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(jobs))
	}
	if jobs[0].Status != models.JobCompleted || jobs[0].Converted != 2 || jobs[0].Failed != 1 {
		t.Errorf("job = %+v", jobs[0])
	}

	output.Reset()
	if err := run(runner, "convert", "history", "--status", "failed"); err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(output.String(), "No conversions recorded.") {
		t.Errorf("history = %s", output.String())
	}
}

func TestLibraryCommands(t *testing.T) {
	dir := t.TempDir()
	hymn := tu.MustWriteFile(t, dir, "hymn.xml", tu.OpenLyricsChart)
	inline := tu.MustWriteFile(t, dir, "c.txt", tu.FreeShowChart)
	runner, output := newLibraryRunner(t)

	step := func(t *testing.T, args ...string) string {
		t.Helper()
		output.Reset()
		if err := run(runner, args...); err != nil {
			t.Fatalf("%s failed: %v", strings.Join(args, " "), err)
		}
		return output.String()
	}

	t.Run("import", func(t *testing.T) {
		text := step(t, "library", "import", hymn, inline)
		if !strings.Contains(text, "Imported: 2") {
			t.Errorf("import = %s", text)
		}

		text = step(t, "library", "import", hymn)
		if !strings.Contains(text, "Already in library: 1") {
			t.Errorf("re-import = %s", text)
		}
	})

	t.Run("import without files", func(t *testing.T) {
		if err := run(runner, "library", "import"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("list", func(t *testing.T) {
		var songs []formatter.SongSummary
		if err := json.Unmarshal([]byte(step(t, "library", "list", "--json")), &songs); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(songs) != 2 || songs[0].Title != "Amazing Grace" || songs[0].Sequence != 1 {
			t.Errorf("songs = %+v", songs)
		}
	})

	t.Run("search", func(t *testing.T) {
		text := step(t, "library", "search", "grace")
		if !strings.Contains(text, "1. Amazing Grace") || strings.Contains(text, "2. c") {
			t.Errorf("search = %s", text)
		}
	})

	t.Run("show", func(t *testing.T) {
		text := step(t, "library", "show", "1")
		if !strings.Contains(text, "Amazing Grace") {
			t.Errorf("show = %s", text)
		}
	})

	t.Run("transpose and reset", func(t *testing.T) {
		text := step(t, "library", "transpose", "1", "--by", "+2")
		if !strings.Contains(text, "is now in") {
			t.Errorf("transpose = %s", text)
		}

		var song models.Song
		if err := json.Unmarshal([]byte(step(t, "library", "show", "1", "--json")), &song); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if song.CurrentTranspose != "+2" || song.OriginalSections == nil {
			t.Errorf("stored transpose = %q", song.CurrentTranspose)
		}

		step(t, "library", "reset", "1")
		var reset models.Song
		if err := json.Unmarshal([]byte(step(t, "library", "show", "1", "--json")), &reset); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if reset.CurrentTranspose != "" {
			t.Errorf("transpose after reset = %q", reset.CurrentTranspose)
		}
	})

	t.Run("export", func(t *testing.T) {
		tests := []struct {
			to   string
			path string
		}{
			{"show", filepath.Join(dir, "export", "grace.show")},
			{"json", filepath.Join(dir, "grace.json")},
			{"text", filepath.Join(dir, "grace.chart.txt")},
			{"markdown", filepath.Join(dir, "grace-md")},
		}
		for _, tt := range tests {
			t.Run(tt.to, func(t *testing.T) {
				step(t, "library", "export", "1", "--to", tt.to, "--output", tt.path)
				tu.AssertFileExists(t, tt.path)
			})
		}
	})

	t.Run("delete", func(t *testing.T) {
		step(t, "library", "delete", "2")
		var songs []formatter.SongSummary
		if err := json.Unmarshal([]byte(step(t, "library", "list", "--json")), &songs); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(songs) != 1 {
			t.Errorf("expected 1 song after delete, got %d", len(songs))
		}
	})

	t.Run("unknown song", func(t *testing.T) {
		if err := run(runner, "library", "show", "99"); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}
	})
}

func TestSetupDatabase(t *testing.T) {
	wd := tu.MustGetwd(t)
	dir := t.TempDir()
	tu.MustChdir(t, dir)
	t.Cleanup(func() { tu.MustChdir(t, wd) })

	runner, output := newLibraryRunner(t)
	if err := run(runner, "setup", "--config", "config.toml"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))
	tu.AssertFileExists(t, filepath.Join(dir, "chordx.db"))
	if !strings.Contains(output.String(), "Library ready") {
		t.Errorf("output = %s", output.String())
	}

	output.Reset()
	if err := run(runner, "setup", "--rollback"); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}
	if !strings.Contains(output.String(), "Rolled back") {
		t.Errorf("output = %s", output.String())
	}
}

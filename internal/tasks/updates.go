package tasks

import (
	"fmt"

	"github.com/desertthunder/chordx/internal/formats"
	"github.com/desertthunder/chordx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ScanFiles Phase = iota
	ReadChart
	ConvertChart
	ImportSong
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case ScanFiles:
		return "scan_files"
	case ReadChart:
		return "read_chart"
	case ConvertChart:
		return "convert_chart"
	case ImportSong:
		return "import_song"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func scanningUpdate(dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanFiles,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Scanning %s for charts...", dir),
	}
}

func readingUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadChart,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Reading %s...", path),
	}
}

func convertingUpdate(step, total int, title string, to formats.Format) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ConvertChart,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Converting %s to %s...", title, to),
	}
}

func convertCompletedUpdate(step, total int, title, output string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ConvertChart,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s → %s", step, total, title, output),
		Data:    output,
	}
}

func convertFailedUpdate(step, total int, path string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ConvertChart,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, path, err),
	}
}

func importedUpdate(step, total int, song *models.PersistedSong) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportSong,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ #%d %s", step, total, song.Sequence(), song.Title()),
		Data:    song,
	}
}

func duplicateUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportSong,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] = %s (already in library)", step, total, title),
	}
}

func importFailedUpdate(step, total int, path string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportSong,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, path, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing manifest %s...", path),
	}
}

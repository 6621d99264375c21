package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/desertthunder/chordx/internal/formats"
	"github.com/desertthunder/chordx/internal/models"
	"github.com/desertthunder/chordx/internal/shared"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// FileName derives a file name from the song title, falling back to its id, with the given extension.
func FileName(song *models.Song, ext string) string {
	base := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(song.Title), "-"), "-")
	if base == "" {
		base = song.ID
	}
	if base == "" {
		base = "song"
	}
	return base + ext
}

// WriteSongExport exports a song in format to path.
//
// Defaults to the song's file name with the format's extension in the working directory.
func WriteSongExport(song *models.Song, format formats.Format, path string, opts ...formats.ExportOption) (string, error) {
	if path == "" {
		path = FileName(song, format.Extension())
	}

	data, err := formats.Export(song, format, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to export %s: %w", format, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}

// WriteTextExport writes a plain text chord chart.
//
// Defaults to {title}.chart.txt as the filename.
func WriteTextExport(song *models.Song, path string, opts ChartOptions) (string, error) {
	if path == "" {
		path = FileName(song, ".chart.txt")
	}

	textData, err := ExportToText(song, opts)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
}

// WriteMarkdownExport exports a song as Markdown in a dedicated directory.
//
// Directory name defaults to the song's file name. Creates {dir}/README.md.
func WriteMarkdownExport(song *models.Song, outputDir string, opts ChartOptions) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = FileName(song, "")
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(song, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return &MarkdownExportResult{Directory: outputDir, Files: []string{mdFile}}, nil
}

// ExportToJSON renders the canonical model of song as indented JSON.
func ExportToJSON(song *models.Song) ([]byte, error) {
	return shared.MarshalJSON(song, true)
}

// WriteJSONExport writes the canonical model of song as JSON.
//
// Defaults to {title}.json as the filename.
func WriteJSONExport(song *models.Song, path string) (string, error) {
	if path == "" {
		path = FileName(song, ".json")
	}

	data, err := ExportToJSON(song)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return path, nil
}

// WriteManifest writes a bulk operation summary as indented JSON.
func WriteManifest(manifest any, path string) error {
	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return fmt.Errorf("failed to generate manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

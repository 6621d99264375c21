// Package tasks runs file-level chord chart operations with real-time progress reporting.
//
// # Core Operations
//
// [ChartEngine] provides three operations:
//
//  1. [ChartEngine.Convert] : one file to another format
//     - Sniffs and imports the source chart
//     - Optionally transposes it
//     - Writes the export next to the working directory or to an explicit path
//
//  2. [ChartEngine.BulkConvert] : a directory tree to another format
//     - Converts files concurrently with a bounded errgroup
//     - Collects per-file failures without stopping the run
//     - Writes a JSON manifest and, when a [JobRecorder] is set, a conversion history entry
//
//  3. [ChartEngine.ImportToLibrary] : files into the song library
//     - Skips charts whose content hash is already stored
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks

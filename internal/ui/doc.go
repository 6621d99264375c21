// Package ui implements terminal rendering and an interactive chart viewer using bubbletea's Elm architecture.
//
// [ChartRenderer] colors laid out charts with per-section themes derived from the .show palette, and is used by both
// the plain "chart" command and the viewer.
//
// The viewer has two views:
//  1. [SongListView] : Browse and filter the song library
//  2. [ChartView] : Scroll a chart and transpose it a semitone at a time
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving library results via the
// Msg union type. Transposition in the viewer goes through the editing package, so saving a library song persists
// exactly what is shown.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, +/-, 0, s, q) with contextual help displayed via
// charmbracelet/bubbles/help.
package ui

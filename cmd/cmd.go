// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
}

func prettyFlag() cli.Flag {
	return &cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true}
}

func toFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "to",
		Aliases: []string{"t"},
		Usage:   "Target format (ultimate-guitar, freeshow, openlyrics, show); defaults to export.default_format",
	}
}

func transposeFlag() cli.Flag {
	return &cli.StringFlag{Name: "transpose", Usage: "Transpose before export (+N, -N or a key name)"}
}

// setupCommand initializes the configuration file and the song library.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml if missing, initialize the library database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead",
			},
		},
		Action: r.SetupDatabase,
	}
}

// detectCommand reports the format of a chart file
func detectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "detect",
		Usage:     "Detect the format of a chord chart file",
		ArgsUsage: "<file>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Detect,
	}
}

// convertCommand handles single file and directory conversions
func convertCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Convert chord charts between formats",
		Commands: []*cli.Command{
			{
				Name:      "file",
				Usage:     "Convert one chart file",
				ArgsUsage: "<file>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					toFlag(),
					transposeFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: {title}{ext} in the working directory)",
					},
					jsonFlag(),
				},
				Action: r.ConvertFile,
			},
			{
				Name:      "batch",
				Usage:     "Convert every chart under a directory concurrently",
				ArgsUsage: "<dir>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "dir"},
				},
				Flags: []cli.Flag{
					toFlag(),
					transposeFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: export.output_dir)",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Concurrent conversions (default: export.workers)",
					},
					&cli.BoolFlag{
						Name:  "no-history",
						Usage: "Do not record the run in the library",
					},
					jsonFlag(),
				},
				Action: r.ConvertBatch,
			},
			{
				Name:  "history",
				Usage: "List recorded batch conversions",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status (pending, running, completed, failed)",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Filter by target format",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 20,
					},
					jsonFlag(),
				},
				Action: r.ConvertHistory,
			},
		},
	}
}

// transposeCommand rewrites a chart file in another key
func transposeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "transpose",
		Usage:     "Transpose a chart file and print or write the result",
		ArgsUsage: "<file>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "by",
				Aliases:  []string{"b"},
				Usage:    "Semitone offset (+2, -1) or target key (A, Bb)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "to",
				Aliases: []string{"t"},
				Usage:   "Output format (default: the input format)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: stdout)",
			},
		},
		Action: r.Transpose,
	}
}

// keyCommand reports the key of a chart file
func keyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "key",
		Usage:     "Detect the key of a chart file from its chords",
		ArgsUsage: "<file>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Key,
	}
}

// chartCommand renders the chord chart text layout
func chartCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "chart",
		Usage:     "Render a chart file as a chords-over-lyrics text chart",
		ArgsUsage: "<file>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "width",
				Usage: "Wrap width in characters (default: export.chart_width)",
			},
			&cli.BoolFlag{
				Name:  "markdown",
				Usage: "Render as Markdown",
			},
			&cli.BoolFlag{
				Name:  "color",
				Usage: "Color section headers and chords",
			},
			&cli.BoolFlag{
				Name:  "no-header",
				Usage: "Omit title and metadata",
			},
			transposeFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
		},
		Action: r.Chart,
	}
}

// viewCommand returns the interactive chart viewer command.
func viewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "view",
		Aliases:   []string{"tui", "ui"},
		Usage:     "Browse the library, or one chart file, in an interactive viewer",
		ArgsUsage: "[file]",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "width",
				Usage: "Maximum wrap width in characters (default: export.chart_width)",
			},
		},
		Action: r.View,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve conversion, transposition and the library over a local HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: server.addr)",
			},
			&cli.BoolFlag{
				Name:  "no-library",
				Usage: "Serve only the chart endpoints without opening the library",
			},
		},
		Action: r.Serve,
	}
}

// libraryCommand handles the local song library
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Manage the local song library",
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import chart files, skipping songs already in the library",
				ArgsUsage: "<file>...",
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.LibraryImport,
			},
			{
				Name:  "list",
				Usage: "List songs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Filter by artist (case-insensitive)",
					},
					&cli.StringFlag{
						Name:  "key",
						Usage: "Filter by original key",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of songs to list",
					},
					jsonFlag(),
					prettyFlag(),
				},
				Action: r.LibraryList,
			},
			{
				Name:      "search",
				Usage:     "Fuzzy search titles and artists",
				ArgsUsage: "<query>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
					jsonFlag(),
					prettyFlag(),
				},
				Action: r.LibrarySearch,
			},
			{
				Name:      "show",
				Usage:     "Show a song as a chart, or as JSON",
				ArgsUsage: "<id|number>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "ref"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "width",
						Usage: "Wrap width in characters (default: export.chart_width)",
					},
					&cli.BoolFlag{
						Name:  "color",
						Usage: "Color section headers and chords",
					},
					jsonFlag(),
					prettyFlag(),
				},
				Action: r.LibraryShow,
			},
			{
				Name:      "transpose",
				Usage:     "Transpose a stored song",
				ArgsUsage: "<id|number>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "ref"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "by",
						Aliases:  []string{"b"},
						Usage:    "Semitone offset (+2, -1) or target key (A, Bb), relative to the original",
						Required: true,
					},
				},
				Action: r.LibraryTranspose,
			},
			{
				Name:      "reset",
				Usage:     "Restore a stored song to its original key",
				ArgsUsage: "<id|number>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "ref"},
				},
				Action: r.LibraryReset,
			},
			{
				Name:      "export",
				Usage:     "Export a stored song to a file",
				ArgsUsage: "<id|number>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "ref"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "to",
						Aliases: []string{"t"},
						Usage:   "Format: a chart format, or text, markdown, json (default: export.default_format)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (default: derived from the title)",
					},
				},
				Action: r.LibraryExport,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Remove a song from the library",
				ArgsUsage: "<id|number>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "ref"},
				},
				Action: r.LibraryDelete,
			},
		},
	}
}

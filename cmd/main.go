package main

import (
	"cmp"
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chordx/internal/shared"
	"github.com/urfave/cli/v3"
)

// configEnv names an alternate config file; config.toml in the working directory is the default.
const configEnv = "CHORDX_CONFIG"

func main() {
	logger := shared.NewLogger(nil)
	config := startupConfig(logger)
	shared.SetLogLevel(logger, config.LogLevel())

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "chordx",
		Usage:    "Convert, transpose and render chord charts",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		runner.Close()
		logger.Error(err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for bad invocations and 1 for everything else.
func exitCode(err error) int {
	if errors.Is(err, shared.ErrMissingArgument) || errors.Is(err, shared.ErrInvalidFlag) {
		return 2
	}
	return 1
}

// startupConfig reads the config named by CHORDX_CONFIG or ./config.toml. A missing file means defaults; a broken
// one is reported and ignored so `chordx setup` can still run.
func startupConfig(logger *log.Logger) *shared.Config {
	path := cmp.Or(os.Getenv(configEnv), "config.toml")
	if _, err := os.Stat(path); err != nil {
		return shared.DefaultConfig()
	}
	config, err := shared.LoadConfig(path)
	if err != nil {
		logger.Warn("ignoring config", "path", path, "error", err)
		return shared.DefaultConfig()
	}
	return config
}

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/desertthunder/chordx/internal/formats"
	"github.com/desertthunder/chordx/internal/server"
	"github.com/urfave/cli/v3"
)

// serverOptions builds router options from the [server] and [export] config tables.
func (r *Runner) serverOptions() server.Options {
	opts := server.Options{
		Logger:        r.logger,
		ChartWidth:    r.config.Export.ChartWidth,
		RateLimit:     r.config.Server.RateLimit,
		Burst:         r.config.Server.Burst,
		MaxBodyBytes:  r.config.Server.MaxBodyBytes,
		ExportOptions: r.exportOptions(),
	}
	if f, err := formats.ParseFormat(r.config.Export.DefaultFormat); err == nil {
		opts.DefaultFormat = f
	} else {
		r.logger.Warn("ignoring invalid export.default_format", "error", err)
	}
	return opts
}

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	var library server.Library
	if !cmd.Bool("no-library") {
		if err := r.openLibrary(); err != nil {
			return err
		}
		library = r.songs
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx, addr, server.NewRouter(r.serverOptions(), library), r.logger, nil)
}

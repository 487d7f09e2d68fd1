package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/ytradio/internal/server"
	"github.com/desertthunder/ytradio/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP server until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := server.Options{
		KeepAlive:     cfg.KeepAlive(),
		SweepInterval: cfg.SweepInterval(),
		Metrics:       r.metrics,
		Logger:        shared.WithLogger(r.logger, "component", "server"),
	}

	history, db, err := r.openHistory()
	if err != nil {
		r.logger.Warn("request history disabled", "error", err)
	} else if history != nil {
		defer db.Close()
		opts.History = history
	}

	r.logger.Info("starting server",
		"addr", cfg.Addr(),
		"metadata", r.metadata.Name(),
		"max_related", r.discovery.Options().MaxRelated,
		"keep_alive", opts.KeepAlive,
	)

	srv := server.New(r.registry, r.discovery, opts)
	return srv.Serve(ctx, cfg.Addr())
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scrypster/folio/internal/notify"
	"github.com/scrypster/folio/internal/server"
	"github.com/scrypster/folio/internal/source"
	"github.com/scrypster/folio/internal/storage/backend"
)

func newServeCmd(a *app) *cobra.Command {
	var watchSource bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin quality API and live report feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := backend.Open(a.cfg.Storage, a.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(a.cfg, store, a.logger)
			addr, err := srv.Start(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "folio API running at http://%s\n", addr)

			// Reports saved by CLI runs against the same data directory
			// reach websocket subscribers through event files.
			if a.cfg.Storage.Engine == "sqlite" && a.cfg.Storage.DataPath != ":memory:" {
				events := notify.NewEventWatcher(a.cfg.Storage.DataPath, a.logger,
					relayReportEvents(ctx, store, srv.Hub(), a.logger))
				if err := events.Start(); err != nil {
					a.logger.WithError(err).Warn("serve: event watcher disabled")
				} else {
					defer events.Stop()
				}
			}

			if watchSource {
				stopWatch, err := a.watchConfiguredSource(ctx, srv)
				if err != nil {
					return err
				}
				defer stopWatch()
			}

			<-ctx.Done()
			a.logger.Info("serve: shutting down")
			return nil
		},
	}

	cmd.Flags().BoolVar(&watchSource, "watch", false, "Re-validate the configured snapshot file whenever it changes")
	return cmd
}

// watchConfiguredSource validates the configured file source once and again
// on every change, broadcasting results through the server's hub.
func (a *app) watchConfiguredSource(ctx context.Context, srv *server.Server) (func(), error) {
	if a.cfg.Source.Driver != "file" {
		return nil, fmt.Errorf("--watch requires the file source driver, not %q", a.cfg.Source.Driver)
	}
	src := source.NewFileSource(a.cfg.Source.Path)
	check := func(string) {
		if _, err := srv.Checker().Run(ctx, src); err != nil {
			a.logger.WithError(err).Warn("serve: validation run failed")
		}
	}

	fw := notify.NewFileWatcher(src.Path(), notify.DefaultDebounce, a.logger, check)
	if err := fw.Start(); err != nil {
		return nil, err
	}
	check(src.Path())
	return fw.Stop, nil
}

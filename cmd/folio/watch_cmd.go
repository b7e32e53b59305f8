package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/scrypster/folio/internal/engine"
	"github.com/scrypster/folio/internal/notify"
	"github.com/scrypster/folio/internal/source"
	"github.com/scrypster/folio/internal/storage/backend"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		save     bool
		interval time.Duration
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Re-validate a snapshot whenever it changes",
		Long: "Watches a snapshot file and validates it after every change. Remote sources " +
			"(s3, http) are polled every --interval instead.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			src, err := a.openSource(ctx, args)
			if err != nil {
				return err
			}

			opts := []engine.Option{engine.WithLogger(a.logger)}
			if save {
				store, err := backend.Open(a.cfg.Storage, a.logger)
				if err != nil {
					return err
				}
				defer store.Close()
				opts = append(opts,
					engine.WithStore(store),
					engine.WithPublisher(newEventForwarder(notify.NewEventWriter(a.cfg.Storage.DataPath), a.logger)),
				)
			}
			checker := engine.NewChecker(opts...)
			out := cmd.OutOrStdout()

			check := func() { runAndPrint(ctx, checker, src, out) }

			if fs, ok := src.(*source.FileSource); ok {
				fw := notify.NewFileWatcher(fs.Path(), debounce, a.logger, func(string) { check() })
				if err := fw.Start(); err != nil {
					return err
				}
				defer fw.Stop()
				check()
				<-ctx.Done()
				return nil
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			check()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					check()
				}
			}
		},
	}

	cmd.Flags().BoolVar(&save, "save", true, "Persist reports and notify a running server")
	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "Poll interval for remote sources")
	cmd.Flags().DurationVar(&debounce, "debounce", notify.DefaultDebounce, "Quiet period after a file change")
	return cmd
}

func runAndPrint(ctx context.Context, checker *engine.Checker, src source.Source, out io.Writer) {
	record, err := checker.Run(ctx, src)
	if err != nil {
		fmt.Fprintf(out, "%s  FAILED  %v\n", time.Now().Format("15:04:05"), err)
		return
	}
	printRecord(out, record)
}

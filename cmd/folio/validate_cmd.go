package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/scrypster/folio/internal/engine"
	"github.com/scrypster/folio/internal/notify"
	"github.com/scrypster/folio/internal/schema"
	"github.com/scrypster/folio/internal/source"
	"github.com/scrypster/folio/internal/storage"
	"github.com/scrypster/folio/internal/storage/backend"
)

// validateOutput is the --json shape of the validate command.
type validateOutput struct {
	Record *storage.Record     `json:"record,omitempty"`
	Schema []schema.FieldError `json:"schemaErrors,omitempty"`
	Trace  []engine.TraceEvent `json:"trace,omitempty"`
}

func newValidateCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		save   bool
		trace  bool
	)

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a snapshot file (or the configured source)",
		Long: "Runs the schema check and the integrity passes (duplicates, missing references, " +
			"unused entities). Exits 1 when the snapshot has errors.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
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

			var tc *engine.TraceCollector
			if trace {
				tc = engine.NewTraceCollector()
				ctx = engine.WithTraceCollector(ctx, tc)
			}

			record, err := engine.NewChecker(opts...).Run(ctx, src)
			out := validateOutput{Record: record}
			if tc != nil {
				out.Trace = tc.Events()
			}

			var violation *schema.SchemaViolation
			switch {
			case errors.As(err, &violation):
				out.Schema = violation.Fields
				if asJSON {
					if werr := writeJSON(cmd.OutOrStdout(), out); werr != nil {
						return werr
					}
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "SCHEMA  %s  %d violations\n", src.Name(), len(violation.Fields))
					for _, f := range violation.Fields {
						fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", f)
					}
				}
				return errInvalidSnapshot
			case err != nil:
				return err
			}

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			} else {
				printRecord(cmd.OutOrStdout(), record)
				if tc != nil {
					printTrace(cmd.ErrOrStderr(), tc.Events())
				}
			}
			if !record.Report.IsValid {
				return errInvalidSnapshot
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "Persist the report and notify a running server")
	cmd.Flags().BoolVar(&trace, "trace", false, "Record pipeline stage timings")
	return cmd
}

func printTrace(w io.Writer, events []engine.TraceEvent) {
	if len(events) == 0 {
		return
	}
	start := events[0].At
	for _, ev := range events {
		fmt.Fprintf(w, "trace %-14s +%s\n", ev.Kind, ev.At.Sub(start).Round(time.Microsecond))
	}
}

// openSource returns a file source for args[0], or the configured source.
func (a *app) openSource(ctx context.Context, args []string) (source.Source, error) {
	if len(args) == 1 {
		return source.NewFileSource(args[0]), nil
	}
	return source.Open(ctx, a.cfg.Source)
}

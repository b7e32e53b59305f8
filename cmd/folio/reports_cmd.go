package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scrypster/folio/internal/storage"
	"github.com/scrypster/folio/internal/storage/backend"
)

func newReportsCmd(a *app) *cobra.Command {
	var (
		opts   storage.ListOptions
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List stored validation reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := backend.Open(a.cfg.Storage, a.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			page, err := store.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), page)
			}
			for _, r := range page.Items {
				status := "valid"
				if !r.Report.IsValid {
					status = "invalid"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-7s  %3d  %s\n",
					r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), status, r.Score, r.Source)
			}
			if page.HasMore {
				fmt.Fprintf(cmd.OutOrStdout(), "... %d of %d shown\n", len(page.Items), page.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "Maximum number of reports")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Number of reports to skip")
	cmd.Flags().BoolVar(&opts.ValidOnly, "valid", false, "Only reports without errors")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	cmd.AddCommand(newReportShowCmd(a))
	return cmd
}

func newReportShowCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id|latest>",
		Short: "Show one stored report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := backend.Open(a.cfg.Storage, a.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			var record *storage.Record
			if args[0] == "latest" {
				record, err = store.Latest(cmd.Context())
			} else {
				record, err = store.Get(cmd.Context(), args[0])
			}
			if err != nil {
				return fmt.Errorf("report %s: %w", args[0], err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), record)
			}
			printRecord(cmd.OutOrStdout(), record)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scrypster/folio/internal/quality"
	"github.com/scrypster/folio/pkg/types"
)

func newDedupeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dedupe <in> <out>",
		Short: "Remove duplicate ids, keeping the first occurrence",
		Long:  "Writes the deduplicated snapshot to <out> (\"-\" for stdout). References are left untouched.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := readSnapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			deduped := quality.NewEngine(quality.WithLogger(a.logger)).Deduplicate(snap)
			if err := writeSnapshot(cmd.OutOrStdout(), args[1], deduped); err != nil {
				return err
			}
			if args[1] != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d duplicate entities, wrote %s\n", snap.Len()-deduped.Len(), args[1])
				for _, kind := range types.EntityKinds {
					if n := snap.Count(kind) - deduped.Count(kind); n > 0 {
						fmt.Fprintf(cmd.OutOrStdout(), "  %-12s %d\n", kind, n)
					}
				}
			}
			return nil
		},
	}
}

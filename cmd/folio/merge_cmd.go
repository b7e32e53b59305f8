package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scrypster/folio/internal/merge"
	"github.com/scrypster/folio/pkg/types"
)

func newMergeCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "merge <base> <overlay>",
		Short: "Overlay exported records onto seed data",
		Long: "Entities in <overlay> replace entities with the same id in <base>; " +
			"new ids are appended. The result is written to --out (\"-\" for stdout).",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := readSnapshot(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("base: %w", err)
			}
			overlay, err := readSnapshot(cmd.Context(), args[1])
			if err != nil {
				return fmt.Errorf("overlay: %w", err)
			}

			merged, summary := merge.Merge(base, overlay)
			if err := writeSnapshot(cmd.OutOrStdout(), out, merged); err != nil {
				return err
			}
			a.logger.WithField("changes", summary.Total()).Debug("merge: done")
			if out != "-" {
				printSummary(cmd, summary)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file")
	return cmd
}

func printSummary(cmd *cobra.Command, s merge.Summary) {
	for _, kind := range types.EntityKinds {
		if s.Added[kind] == 0 && s.Replaced[kind] == 0 {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s +%d added, %d replaced\n", kind, s.Added[kind], s.Replaced[kind])
	}
}

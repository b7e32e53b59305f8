package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scrypster/folio/internal/archive"
	"github.com/scrypster/folio/internal/config"
	"github.com/scrypster/folio/internal/engine"
	"github.com/scrypster/folio/internal/schema"
	"github.com/scrypster/folio/internal/source"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		force  bool
		dedupe bool
	)

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Validate a snapshot and write the build artifact",
		Long: "Loads the snapshot (from [file] or the configured source), validates it and writes " +
			"data.json plus a timestamped copy into the archive directory. An invalid snapshot is " +
			"not written unless --force is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, err := a.openSource(ctx, args)
			if err != nil {
				return err
			}

			snap, err := source.LoadSnapshot(ctx, src)
			var violation *schema.SchemaViolation
			if errors.As(err, &violation) {
				fmt.Fprintf(cmd.OutOrStdout(), "SCHEMA  %s  %d violations\n", src.Name(), len(violation.Fields))
				for _, f := range violation.Fields {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", f)
				}
				return errInvalidSnapshot
			}
			if err != nil {
				return err
			}

			checker := engine.NewChecker(engine.WithLogger(a.logger))
			if dedupe {
				snap = checker.Quality().Deduplicate(snap)
			}
			record, err := checker.Check(ctx, src.Name(), snap)
			if err != nil {
				return err
			}
			printRecord(cmd.OutOrStdout(), record)
			if !record.Report.IsValid && !force {
				fmt.Fprintln(cmd.OutOrStdout(), "not exported: fix the errors above or pass --force")
				return errInvalidSnapshot
			}

			arc := newArchive(a)
			info, err := arc.Write(snap)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d entities to %s (copy %s)\n", snap.Len(), arc.ArtifactPath(), info.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Write the artifact even when the snapshot has errors")
	cmd.Flags().BoolVar(&dedupe, "dedupe", false, "Drop duplicate ids before validating and writing")
	cmd.AddCommand(newExportListCmd(a), newExportPruneCmd(a))
	return cmd
}

func newExportListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived snapshot copies, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := newArchive(a).List()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), infos)
			}
			for _, info := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %8d  %s\n", info.Timestamp.Format("2006-01-02 15:04:05"), info.Size, info.Path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newExportPruneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Apply the retention policy to archived copies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := newArchive(a).Prune()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d archived snapshots\n", len(removed))
			return nil
		},
	}
}

func newArchive(a *app) *archive.Archive {
	return archive.New(a.cfg.Archive.Dir, retentionPolicy(a.cfg.Archive), archive.WithLogger(a.logger))
}

func retentionPolicy(cfg config.ArchiveConfig) archive.RetentionPolicy {
	return archive.RetentionPolicy{
		Hourly:  cfg.Hourly,
		Daily:   cfg.Daily,
		Weekly:  cfg.Weekly,
		Monthly: cfg.Monthly,
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scrypster/folio/internal/quality"
	"github.com/scrypster/folio/pkg/types"
)

// adminDocument is the dashboard export scored by the score command.
type adminDocument struct {
	Projects []types.AdminProject `json:"projects"`
	Skills   []types.AdminSkill   `json:"skills"`
}

func newScoreCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "score <admin.json>",
		Short: "Check admin dashboard data for duplicate titles and names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var doc adminDocument
			if err := json.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			report := quality.NewEngine(quality.WithLogger(a.logger)).CheckAdmin(doc.Projects, doc.Skills)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "score %d/100 (%d projects and skills, %d duplicates)\n",
				report.Score, report.Stats.TotalEntities, report.Stats.Duplicates)
			for _, w := range report.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "  warning  %s\n", w.Message)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

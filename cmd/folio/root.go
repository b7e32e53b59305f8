package main

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scrypster/folio/internal/config"
	"github.com/scrypster/folio/internal/logging"
)

// errInvalidSnapshot is returned by commands whose input failed validation.
// The report has already been printed, so main only sets the exit code.
var errInvalidSnapshot = errors.New("snapshot is invalid")

// app carries state shared by subcommands after the root pre-run.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "folio",
		Short:         "Portfolio data quality validation and deduplication",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to YAML config (default: $FOLIO_CONFIG)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	cmd.AddCommand(
		newValidateCmd(a),
		newDedupeCmd(a),
		newMergeCmd(a),
		newScoreCmd(a),
		newExportCmd(a),
		newServeCmd(a),
		newWatchCmd(a),
		newReportsCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	// Logs go to stderr so that stdout stays clean for JSON output.
	a.logger = logging.NewWithOutput(cfg.Log, cmd.ErrOrStderr())
	return nil
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/founder-scout/internal/dedupe"
	"github.com/jonathan/founder-scout/internal/observability"
)

var dedupeCommand = &cobra.Command{
	Use:   "dedupe",
	Short: "Merge duplicate organization rows",
	Long: `Groups organizations by normalized canonical URL, then by exact name. The most
complete row of each group is kept; founders of the others are moved onto it
(fill-only merging on name collisions) and the others are deleted.`,
	RunE: runDedupeCmd,
}

var dedupeDryRun bool

func init() {
	dedupeCommand.Flags().BoolVar(&dedupeDryRun, "dry-run", false, "Show the merge plan without applying it")
	rootCmd.AddCommand(dedupeCommand)
}

func runDedupeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, closeStore, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	report, err := dedupe.Run(cmd.Context(), st, log, dedupe.Options{DryRun: dedupeDryRun})
	observability.NewPrinter(os.Stdout).PrintDedupeReport(report)
	return err
}

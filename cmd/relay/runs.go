package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/relay/internal/domain/settings"
)

var runsPrune time.Duration

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs, most recent first",
	Long: `Runs lists every stored run report, most recent first. With --prune,
reports older than the given age are removed before listing, e.g.
--prune 720h to keep thirty days.`,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().DurationVar(&runsPrune, "prune", 0,
		"remove stored runs older than this age before listing")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	cfg, err := settings.Load(settingsFile)
	if err != nil {
		return err
	}

	service := newService(cfg)

	if runsPrune > 0 {
		removed, err := service.Prune(cmd.Context(), runsPrune)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Pruned %d stored run(s) older than %s.\n",
			removed, runsPrune)
	}

	reports, err := service.Runs(cmd.Context())
	if err != nil {
		return err
	}

	newPrinter(cfg).PrintRunList(reports)
	return nil
}

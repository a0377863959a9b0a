package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/relay/internal/domain/settings"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored report of a past run",
	RunE:  runStatus,
}

var (
	statusRunID  string
	statusOutput string
)

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusRunID, "run-id", "", "run to show")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "text", "output format (text, yaml)")

	_ = statusCmd.MarkFlagRequired("run-id")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := settings.Load(settingsFile)
	if err != nil {
		return err
	}

	report, err := newService(cfg).Status(cmd.Context(), statusRunID)
	if err != nil {
		return err
	}

	if statusOutput == "yaml" {
		data, err := yaml.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, string(data))
		return nil
	}

	printer := newPrinter(cfg)
	printer.PrintReport(report)
	fmt.Fprintln(os.Stdout)
	printer.PrintSteps(report.Steps)
	return nil
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/relay/internal/domain/settings"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Statically validate a pipeline definition",
	Long: `Validate loads the definition file, checks it against the document
schema and verifies the static invariants: unique step names, known kinds
and actions, and every required key produced by an earlier step or seeded
by the environment. Nothing is executed.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	cfg, err := settings.Load(settingsFile)
	if err != nil {
		return err
	}

	doc, err := newService(cfg).Validate(cfgFile)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%s is valid. Pipelines: %s\n",
		cfgFile, strings.Join(doc.Names(), ", "))
	return nil
}

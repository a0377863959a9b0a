package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/relay/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the relay version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Fprintf(os.Stdout, "relay %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package main

import (
	"fmt"

	"github.com/aretw0/shipyard"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of shipyard",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "shipyard version %s\n", shipyard.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of jot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "jot version %s\n", strings.TrimSpace(jotter.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/agrimind"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of agrimind",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "agrimind version %s\n", strings.TrimSpace(agrimind.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

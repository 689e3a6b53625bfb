package main

import (
	"fmt"

	"github.com/cwbudde/mcsbridge/internal/config"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mcsbridge version %s\n", config.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

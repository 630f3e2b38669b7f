package main

import (
	"fmt"
	"strings"

	"github.com/halden-bio/catalyst"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of catalyst",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("catalyst version %s\n", strings.TrimSpace(catalyst.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

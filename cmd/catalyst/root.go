package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "catalyst",
	Short: "Catalyst is a guided drug discovery pipeline",
	Long:  `Catalyst walks a fixed ten-stage discovery workflow, from data assembly to the final report, delegating the science to an external analysis service.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "catalyst.yaml", "Path to the configuration file")
}

package main

import (
	"fmt"

	"github.com/halden-bio/catalyst/internal/cli"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored pipeline sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored session IDs",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		return cli.ListSessions(configPath)
	},
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset <session-id>",
	Short: "Delete the stored state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if args[0] == "" {
			return fmt.Errorf("session ID is required")
		}
		return cli.ResetSession(configPath, args[0])
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionResetCmd)
}

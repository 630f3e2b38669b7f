package main

import (
	"github.com/halden-bio/catalyst/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a pipeline session in the terminal",
	Long:  `Starts an interactive session that walks the ten pipeline steps. With --auto, every remaining step runs without prompting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		sessionID, _ := cmd.Flags().GetString("session")
		smiles, _ := cmd.Flags().GetString("smiles")
		receptor, _ := cmd.Flags().GetString("receptor")
		auto, _ := cmd.Flags().GetBool("auto")
		fresh, _ := cmd.Flags().GetBool("fresh")
		debug, _ := cmd.Flags().GetBool("debug")

		return cli.RunSession(cli.RunOptions{
			ConfigPath: configPath,
			SessionID:  sessionID,
			Smiles:     smiles,
			Receptor:   receptor,
			Auto:       auto,
			Fresh:      fresh,
			Debug:      debug,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("session", "s", "", "Session ID to resume or create (default \"default\")")
	runCmd.Flags().String("smiles", "", "Input compound as SMILES")
	runCmd.Flags().String("receptor", "", "Receptor PDB identifier")
	runCmd.Flags().Bool("auto", false, "Run every remaining step without prompting")
	runCmd.Flags().Bool("fresh", false, "Discard any existing session state first")
	runCmd.Flags().Bool("debug", false, "Enable debug logging")
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adocshq/adocs/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively create an adocs configuration",
	Run: func(cmd *cobra.Command, args []string) {
		_, err := config.RunWizard()
		exitOnError(err)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

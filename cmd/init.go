package cmd

import (
	"github.com/spf13/cobra"

	"github.com/poleguard/repeal/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize repeal configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure repeal for your project and generates a .repeal.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "repeal",
	Short: "Evaluate field infractions against specification documents",
	Long: `Repeal builds a semantic corpus from utility specification documents
and evaluates reported infractions against it. Each infraction gets a
verdict: repealable, potentially repealable, or a valid infraction,
with the matching spec passages as evidence.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".repeal.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

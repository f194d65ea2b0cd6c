package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cfg.WriteYAML(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

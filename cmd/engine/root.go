package main

import (
	"github.com/spf13/cobra"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "engine",
	Short: "Delta-neutral ETH spot/perpetual market maker",
}

// Execute runs the root command.
func Execute() error {
	rootCmd.AddCommand(runCmd, versionCmd)
	config.BindFlags(rootCmd.PersistentFlags())
	return rootCmd.Execute()
}

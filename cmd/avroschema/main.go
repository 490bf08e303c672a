package main

import (
	"os"

	"github.com/isabella232/hydrator-plugins/internal/commands"
)

func main() {
	rootCmd := commands.RootCmd()
	rootCmd.AddCommand(commands.NormalizeCmd())
	rootCmd.AddCommand(commands.TransformCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

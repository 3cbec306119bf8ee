package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCommand assembles the CLI. Errors are returned to main, which
// prints them once.
func newRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "organizer",
		Short: "Personal organizer: tasks, calendar and notes",
		Long:  "organizer is a terminal client for a task board, a calendar and a notebook kept in a remote collection service.",
		// Without a subcommand the terminal UI starts
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(configPath)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/organizer/config.yaml)")

	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newListCommand(&configPath))
	rootCmd.AddCommand(newArchiveCommand(&configPath))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the taskd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taskd",
		Short: "taskd - personal task tracking API",
		Long: `taskd serves the task management HTTP API. Configuration is read
from environment variables (PORT, JWT_SECRET, STORE_DRIVER, DATABASE_URL, ...).`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

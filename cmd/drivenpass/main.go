package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "drivenpass",
	Short: "drivenpass - a multi-tenant credential vault.",
	Long: `drivenpass stores website credentials and network passwords for each
registered account, encrypted at rest and returned only to their owner.

Configuration is read from the environment (JWT_SECRET, CRYPTR_SECRET,
DATABASE_DRIVER, DATABASE_URL, REDIS_ADDR, ...).

Usage:
  drivenpass <command> [flags]

Available Commands:
  serve      Run the HTTP API
  migrate    Apply or inspect database migrations
`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Package main provides the entry point for the staffing agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gap_agent",
	Short: "Kodely staffing and onboarding automation",
	Long:  "gap_agent matches instructor candidates to open workshop gaps on the Ops Hub sheet and automates the onboarding pipeline: background checks, welcome emails, Slack provisioning, trainer notes, training sync, and daily digests.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

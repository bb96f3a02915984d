// Package main provides the entry point for the incident test data generator CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "incidentgen",
	Short: "Synthetic IT-incident test data generator",
	Long:  "incidentgen generates synthetic IT-incident records by prompting an LLM in batches, checkpoints progress to a resumable cache, and exports the result to an XLSX spreadsheet.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

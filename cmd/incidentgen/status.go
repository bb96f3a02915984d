package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/incident-generator/internal/store"
)

var statusCommand = &cobra.Command{
	Use:   "status",
	Short: "Show cached generation progress",
	RunE:  runStatus,
}

var statusCachePath string

func init() {
	statusCommand.Flags().StringVar(&statusCachePath, "cache", "", "Intermediate cache file (default temp_incidents.json)")

	rootCmd.AddCommand(statusCommand)
}

func runStatus(_ *cobra.Command, _ []string) error {
	cache := store.New(statusCachePath)

	state, err := cache.Load()
	if err != nil {
		return err
	}
	if state == nil {
		fmt.Printf("No cache file at %s; no run in progress.\n", cache.Path)
		return nil
	}

	fmt.Printf("Run:       %s\n", state.RunID)
	fmt.Printf("Progress:  %d/%d incidents\n", state.Count(), state.Target)
	fmt.Printf("Remaining: %d\n", state.Remaining())
	if state.Count() > 0 {
		fmt.Printf("Last:      %s\n", state.Records[state.Count()-1].Number)
	}
	return nil
}

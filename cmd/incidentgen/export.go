package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/incident-generator/internal/export"
	"github.com/jonathan/incident-generator/internal/store"
)

var exportCommand = &cobra.Command{
	Use:   "export",
	Short: "Export the cached incidents to XLSX without generating",
	Long: `Reads the intermediate cache and writes the spreadsheet. Useful to retry a
failed export, or to export a partial run, without touching the LLM provider.
The cache is always retained.`,
	RunE: runExport,
}

var (
	exportCachePath string
	exportOutPath   string
)

func init() {
	exportCommand.Flags().StringVar(&exportCachePath, "cache", "", "Intermediate cache file (default temp_incidents.json)")
	exportCommand.Flags().StringVarP(&exportOutPath, "out", "o", "", "Export destination (default incidents_export.xlsx)")

	rootCmd.AddCommand(exportCommand)
}

func runExport(_ *cobra.Command, _ []string) error {
	cache := store.New(exportCachePath)

	state, err := cache.Load()
	if err != nil {
		return err
	}
	if state == nil {
		return fmt.Errorf("no cache file at %s; nothing to export", cache.Path)
	}

	out := exportOutPath
	if out == "" {
		out = export.DefaultPath
	}
	if err := export.WriteXLSX(state.Records, out); err != nil {
		return fmt.Errorf("export failed (cache %s preserved for retry): %w", cache.Path, err)
	}
	fmt.Printf("Exported %d incidents to %s\n", state.Count(), out)
	return nil
}

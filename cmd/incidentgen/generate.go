package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/incident-generator/internal/codec"
	"github.com/jonathan/incident-generator/internal/config"
	"github.com/jonathan/incident-generator/internal/export"
	"github.com/jonathan/incident-generator/internal/generator"
	"github.com/jonathan/incident-generator/internal/llm"
	"github.com/jonathan/incident-generator/internal/observability"
	"github.com/jonathan/incident-generator/internal/store"
)

var generateCommand = &cobra.Command{
	Use:   "generate",
	Short: "Generate incidents in batches and export them to XLSX",
	Long: `Drives the full pipeline: prompt the configured LLM provider in batches,
validate and accumulate records, checkpoint progress to the intermediate cache
after every batch, and export the final set to a spreadsheet.

An existing cache is resumed, never regenerated. Configuration can be loaded
from a JSON file using --config; command-line flags override config values.`,
	RunE: runGenerate,
}

var (
	genConfigPath        string
	genCount             int
	genBatchSize         int
	genWorkers           int
	genProvider          string
	genModel             string
	genAPIKey            string
	genURL               string
	genCachePath         string
	genOutPath           string
	genKeepCache         bool
	genContinueOnFailure bool
	genVerbose           bool
)

func init() {
	generateCommand.Flags().StringVar(&genConfigPath, "config", "", "Path to config.json (values can be overridden by other flags)")
	generateCommand.Flags().IntVarP(&genCount, "count", "n", 0, "Total number of incidents to generate")
	generateCommand.Flags().IntVar(&genBatchSize, "batch-size", 0, "Records requested per LLM call")
	generateCommand.Flags().IntVar(&genWorkers, "workers", 0, "Parallel in-flight batch requests (1 = sequential)")
	generateCommand.Flags().StringVar(&genProvider, "provider", "", "LLM provider: ollama, openai, or gemini")
	generateCommand.Flags().StringVar(&genModel, "model", "", "Model name for the selected provider")
	generateCommand.Flags().StringVar(&genAPIKey, "api-key", "", "API key (optional, defaults to OPENAI_API_KEY/GEMINI_API_KEY env vars)")
	generateCommand.Flags().StringVar(&genURL, "url", "", "Provider endpoint URL (required for ollama)")
	generateCommand.Flags().StringVar(&genCachePath, "cache", "", "Intermediate cache file (default temp_incidents.json)")
	generateCommand.Flags().StringVarP(&genOutPath, "out", "o", "", "Export destination (default incidents_export.xlsx)")
	generateCommand.Flags().BoolVar(&genKeepCache, "keep-cache", false, "Retain the cache file after a successful export")
	generateCommand.Flags().BoolVar(&genContinueOnFailure, "continue-on-failure", false, "Drop a batch that exhausts retries instead of halting the run")
	generateCommand.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Print prompts and detailed progress")

	rootCmd.AddCommand(generateCommand)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	cache := store.New(genCachePath)

	// Resume prior progress; a corrupt cache halts before any provider call
	// so the operator can inspect it.
	state, err := cache.Load()
	if err != nil {
		return err
	}

	target := cfg.Generation.Total
	if state == nil {
		if target <= 0 {
			return fmt.Errorf("total incident count is required (--count or generation.total)")
		}
		state = generator.NewState(target)
	} else if target > 0 {
		state.Target = target
	}

	if state.Done() {
		fmt.Printf("Cache already holds %d/%d incidents; exporting without generating.\n", state.Count(), state.Target)
		return exportAndCleanup(state, cache, cfg)
	}

	client, err := buildClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	printer.PrintRunHeader(cfg.LLMProvider, providerModel(cfg), state, cfg.Generation.BatchSize, cfg.Generation.NumWorkers)
	if genVerbose {
		printer.PrintPrompt("SYSTEM PROMPT", codec.SystemPrompt())
		printer.PrintPrompt("FIRST USER PROMPT", codec.BuildPrompt(
			min(cfg.Generation.BatchSize, state.Remaining()), state.NextSequence(), &cfg.Categories))
	}

	orch := generator.New(client, cache, generator.Options{
		BatchSize:              cfg.Generation.BatchSize,
		NumWorkers:             cfg.Generation.NumWorkers,
		MaxRetries:             cfg.Generation.MaxRetries,
		ContinueOnBatchFailure: cfg.Generation.ContinueOnBatchFailure,
		Taxonomy:               &cfg.Categories,
		OnBatch:                printer.PrintBatch,
	})

	summary, err := orch.Run(ctx, state)
	if err != nil {
		// Progress up to the last batch boundary is already checkpointed.
		if errors.Is(err, context.Canceled) {
			fmt.Printf("\nGeneration interrupted; %d/%d incidents preserved in %s\n", state.Count(), state.Target, cache.Path)
			return nil
		}
		return fmt.Errorf("generation halted (%d/%d incidents preserved in %s): %w",
			state.Count(), state.Target, cache.Path, err)
	}

	printer.PrintSummary(state, summary)
	return exportAndCleanup(state, cache, cfg)
}

// resolveConfig merges the config file, CLI flags (flags win), and env-var
// API key fallbacks, then validates the result.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	if genConfigPath != "" {
		loaded, err := config.Load(genConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("count") {
		cfg.Generation.Total = genCount
	}
	if cmd.Flags().Changed("batch-size") {
		cfg.Generation.BatchSize = genBatchSize
	}
	if cmd.Flags().Changed("workers") {
		cfg.Generation.NumWorkers = genWorkers
	}
	if cmd.Flags().Changed("keep-cache") {
		cfg.Generation.KeepCache = genKeepCache
	}
	if cmd.Flags().Changed("continue-on-failure") {
		cfg.Generation.ContinueOnBatchFailure = genContinueOnFailure
	}
	if cmd.Flags().Changed("provider") {
		cfg.LLMProvider = config.CanonicalProvider(genProvider)
	}
	applyProviderFlags(cmd, cfg)

	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyProviderFlags routes --model/--api-key/--url into the section for
// the selected provider.
func applyProviderFlags(cmd *cobra.Command, cfg *config.Config) {
	section := providerSection(cfg)
	if section == nil {
		return
	}
	if cmd.Flags().Changed("model") {
		section.Model = genModel
	}
	if cmd.Flags().Changed("api-key") {
		section.APIKey = genAPIKey
	}
	if cmd.Flags().Changed("url") {
		section.URL = genURL
	}
}

func providerSection(cfg *config.Config) *config.ProviderConfig {
	switch cfg.LLMProvider {
	case config.ProviderOllama:
		return &cfg.Ollama
	case config.ProviderOpenAI:
		return &cfg.OpenAI
	case config.ProviderGemini:
		return &cfg.Gemini
	default:
		return nil
	}
}

func providerModel(cfg *config.Config) string {
	if section := providerSection(cfg); section != nil {
		return section.Model
	}
	return ""
}

func buildClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	section := providerSection(cfg)
	if section == nil {
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
	return llm.NewClient(ctx, llm.Settings{
		Provider:     cfg.LLMProvider,
		URL:          section.URL,
		Model:        section.Model,
		APIKey:       section.APIKey,
		SystemPrompt: codec.SystemPrompt(),
	})
}

// exportAndCleanup writes the spreadsheet and clears the cache unless the
// operator asked to keep it. An export failure leaves the cache untouched so
// `incidentgen export` can retry without regenerating.
func exportAndCleanup(state *generator.State, cache *store.Store, cfg *config.Config) error {
	out := genOutPath
	if out == "" {
		out = export.DefaultPath
	}
	if err := export.WriteXLSX(state.Records, out); err != nil {
		return fmt.Errorf("export failed (cache %s preserved for retry): %w", cache.Path, err)
	}
	fmt.Printf("Exported %d incidents to %s\n", state.Count(), out)

	if cfg.Generation.KeepCache {
		return nil
	}
	if err := cache.Clear(); err != nil {
		return err
	}
	return nil
}

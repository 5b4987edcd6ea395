// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/corpus-engine/internal/generate"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate missing .corpus files from prompts.txt manifests",
	Long: `Generate scans the corpus for prompts.txt manifests, finds every listed
.corpus file that does not exist yet, and generates up to -n of them through
the generation queue. Existing files are never regenerated, so repeated runs
work through the backlog.

-n 0 is a dry run: the pending files are listed and nothing is generated.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntP("limit", "n", generate.DefaultLimit, "max number of files to generate (0 = dry run)")
	generateCmd.Flags().String("model", generate.DefaultModel, "model identifier routed by the queue")
	generateCmd.Flags().Int("concurrency", generate.DefaultConcurrency, "number of requests in flight")
	addQueueFlags(generateCmd)

	viper.SetDefault("generate.temperature", generate.DefaultTemperature)
	viper.SetDefault("generate.max_tokens", generate.DefaultMaxTokens)

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	keys := map[string]string{
		"generate.model":       "model",
		"generate.concurrency": "concurrency",
	}
	for k, v := range queueFlagKeys {
		keys[k] = v
	}
	if err := bindFlags(cmd, keys); err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	cfg := types.GenerationConfig{
		AIConfig: types.AIConfig{
			Model:        viper.GetString("generate.model"),
			SystemPrompt: generate.SystemPrompt,
			Temperature:  viper.GetFloat64("generate.temperature"),
			MaxTokens:    viper.GetInt("generate.max_tokens"),
		},
		CorpusDir:   viper.GetString("corpus_dir"),
		Limit:       limit,
		Concurrency: viper.GetInt("generate.concurrency"),
	}
	return generateCorpus(cmd, cfg, queueConfig(), os.Stdout)
}

// generateCorpus plans and runs one generation batch. The backend is only
// built, and the API key only required, when something will be generated.
func generateCorpus(cmd *cobra.Command, cfg types.GenerationConfig, qcfg types.QueueConfig, w io.Writer) error {
	plan, err := generate.PlanCorpus(cfg.CorpusDir, cfg.Limit, os.Stderr)
	if err != nil {
		return err
	}

	if len(plan.Pending) == 0 {
		fmt.Fprintln(w, "Nothing to generate - all .corpus files already exist.")
		return nil
	}
	fmt.Fprintf(w, "Found %d missing .corpus files.\n", len(plan.Pending))

	if cfg.Limit == 0 {
		fmt.Fprintln(w, "\nDry run - files that would be generated:")
		plan.PrintPending(w)
		return nil
	}

	if err := checkConcurrency(cfg.Concurrency); err != nil {
		return err
	}
	key, err := apiKey()
	if err != nil {
		return err
	}
	cfg.APIKey = key

	fmt.Fprintf(w, "Generating %d of %d missing files (model: %s, concurrency: %d)...\n\n",
		len(plan.Batch), len(plan.Pending), cfg.Model, cfg.Concurrency)

	summary := generate.Run(cmd.Context(), newGenerator(qcfg, cfg.AIConfig), plan.Jobs(),
		generate.Config{Concurrency: cfg.Concurrency, Logger: logger}, w)

	if remaining := plan.Remaining(); remaining > 0 {
		fmt.Fprintf(w, "\n%d files still remaining. Run again to continue.\n", remaining)
	} else {
		fmt.Fprintln(w, "\nAll files generated!")
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d file(s) failed generation", summary.Failed)
	}
	return nil
}

// checkConcurrency rejects values the runner would otherwise replace with
// its own default.
func checkConcurrency(n int) error {
	if n < 1 {
		return fmt.Errorf("--concurrency must be at least 1, got %d", n)
	}
	return nil
}

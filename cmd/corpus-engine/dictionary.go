// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/corpus-engine/internal/dictionary"
	"github.com/pdiddy/corpus-engine/internal/generate"
	"github.com/pdiddy/corpus-engine/internal/wordfreq"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

var dictionaryCmd = &cobra.Command{
	Use:   "dictionary",
	Short: "Generate dictionary entries for the most frequent undefined words",
	Long: `Dictionary counts word frequencies across every .corpus file (excluding
the dictionary itself), picks the most frequent words that have no entry yet,
and generates a <word>.corpus definition for each.

Counts come from an incremental SQLite index under <corpus>/.index/ so only
changed files are re-read. --no-index forces a full rescan.

-n 0 is a dry run that lists the next words without definitions.`,
	RunE: runDictionary,
}

func init() {
	dictionaryCmd.Flags().IntP("limit", "n", 1, "number of entries to generate (0 = dry run)")
	dictionaryCmd.Flags().String("model", dictionary.DefaultModel, "model identifier routed by the queue")
	dictionaryCmd.Flags().Int("concurrency", 1, "number of requests in flight")
	dictionaryCmd.Flags().String("dictionary-dir", "", "dictionary directory (default <corpus>/dictionary)")
	addIndexFlags(dictionaryCmd)
	addQueueFlags(dictionaryCmd)

	viper.SetDefault("dictionary.temperature", dictionary.DefaultTemperature)
	viper.SetDefault("dictionary.max_tokens", dictionary.DefaultMaxTokens)

	rootCmd.AddCommand(dictionaryCmd)
}

func runDictionary(cmd *cobra.Command, args []string) error {
	keys := map[string]string{
		"dictionary.model":       "model",
		"dictionary.concurrency": "concurrency",
		"dictionary.dir":         "dictionary-dir",
	}
	for k, v := range queueFlagKeys {
		keys[k] = v
	}
	for k, v := range indexFlagKeys {
		keys[k] = v
	}
	if err := bindFlags(cmd, keys); err != nil {
		return err
	}

	root := viper.GetString("corpus_dir")
	dictDir := viper.GetString("dictionary.dir")
	if dictDir == "" {
		dictDir = dictionary.DefaultDir(root)
	}
	limit, _ := cmd.Flags().GetInt("limit")

	cfg := types.DictionaryConfig{
		AIConfig: types.AIConfig{
			Model:        viper.GetString("dictionary.model"),
			SystemPrompt: dictionary.SystemPrompt,
			Temperature:  viper.GetFloat64("dictionary.temperature"),
			MaxTokens:    viper.GetInt("dictionary.max_tokens"),
		},
		CorpusDir:     root,
		DictionaryDir: dictDir,
		Limit:         limit,
		Concurrency:   viper.GetInt("dictionary.concurrency"),
	}
	return generateDictionary(cmd, cfg, indexConfig(root), queueConfig(), os.Stdout)
}

func generateDictionary(cmd *cobra.Command, cfg types.DictionaryConfig, icfg types.IndexConfig, qcfg types.QueueConfig, w io.Writer) error {
	src, closeSrc, err := openSource(cfg.CorpusDir, cfg.DictionaryDir, icfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	fmt.Fprintln(w, "Scanning corpus for word frequencies...")
	words, err := dictionary.NextWords(cmd.Context(), src, cfg.DictionaryDir, cfg.Limit)
	if err != nil {
		return err
	}

	if len(words) == 0 {
		fmt.Fprintln(w, "All frequent words already have definitions.")
		return nil
	}

	if cfg.Limit == 0 {
		fmt.Fprintf(w, "\nDry run - next %d words without definitions:\n", len(words))
		for _, word := range words {
			fmt.Fprintf(w, "  %s\n", word)
		}
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

	jobs, err := dictionary.Jobs(cfg.DictionaryDir, words)
	if err != nil {
		return err
	}

	noun := "entries"
	if len(jobs) == 1 {
		noun = "entry"
	}
	fmt.Fprintf(w, "Generating %d dictionary %s (model: %s)...\n\n", len(jobs), noun, cfg.Model)

	summary := generate.Run(cmd.Context(), newGenerator(qcfg, cfg.AIConfig), jobs,
		generate.Config{Concurrency: cfg.Concurrency, Logger: logger}, w)
	if summary.HasFailures() {
		return fmt.Errorf("%d of %d dictionary %s failed generation", summary.Failed, len(jobs), noun)
	}
	return nil
}

// openSource returns the word count source for a corpus: the SQLite index
// unless it is disabled, in which case every file is scanned.
func openSource(root, dictDir string, icfg types.IndexConfig) (wordfreq.Source, func(), error) {
	if icfg.Disabled {
		return wordfreq.Scanner{Root: root, Exclude: dictDir, Logger: logger}, func() {}, nil
	}
	ix, err := wordfreq.OpenIndex(icfg.Path, root, dictDir, logger)
	if err != nil {
		return nil, nil, err
	}
	return ix, func() { ix.Close() }, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/corpus-engine/internal/dictionary"
	"github.com/pdiddy/corpus-engine/internal/wordfreq"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Refresh the word frequency index and show or export the ranking",
	Long: `Index brings the SQLite word frequency index up to date with the corpus
(new and changed files are re-read, removed files are dropped) and prints the
most frequent words, marking those that already have dictionary entries.

Use --export to write the ranking to a YAML or JSON file.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().Int("top", 25, "number of ranked words to show (0 = all)")
	indexCmd.Flags().String("export", "", "write the ranking to this file")
	indexCmd.Flags().String("format", "yaml", "export format: yaml or json")
	addIndexFlags(indexCmd)

	rootCmd.AddCommand(indexCmd)
}

// addIndexFlags registers the word index flags on cmd.
func addIndexFlags(cmd *cobra.Command) {
	cmd.Flags().String("index-path", "", "word index database (default <corpus>/.index/wordfreq.db)")
	cmd.Flags().Bool("no-index", false, "rescan every file instead of using the word index")
}

var indexFlagKeys = map[string]string{
	"index.path":     "index-path",
	"index.disabled": "no-index",
}

// indexConfig reads the index settings after bindFlags.
func indexConfig(root string) types.IndexConfig {
	cfg := types.IndexConfig{
		Path:     viper.GetString("index.path"),
		Disabled: viper.GetBool("index.disabled"),
	}
	if cfg.Path == "" {
		cfg.Path = wordfreq.DefaultIndexPath(root)
	}
	return cfg
}

func runIndex(cmd *cobra.Command, args []string) error {
	keys := map[string]string{}
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
	top, _ := cmd.Flags().GetInt("top")
	exportPath, _ := cmd.Flags().GetString("export")
	format, _ := cmd.Flags().GetString("format")

	return showIndex(cmd, indexOptions{
		Root:    root,
		DictDir: dictDir,
		Index:   indexConfig(root),
		Top:     top,
		Export:  exportPath,
		Format:  format,
	}, os.Stdout)
}

// indexOptions collects the settings of one index run.
type indexOptions struct {
	Root    string
	DictDir string
	Index   types.IndexConfig
	Top     int
	Export  string
	Format  string
}

// showIndex ranks the corpus words and either prints the table to w or
// writes it to opts.Export.
func showIndex(cmd *cobra.Command, opts indexOptions, w io.Writer) error {
	var export func(string, []wordfreq.ExportEntry) error
	switch opts.Format {
	case "yaml", "":
		export = wordfreq.ExportYAML
	case "json":
		export = wordfreq.ExportJSON
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", opts.Format)
	}

	counter, err := countWords(cmd, opts.Root, opts.DictDir, opts.Index, w)
	if err != nil {
		return err
	}
	defined, err := wordfreq.Defined(opts.DictDir)
	if err != nil {
		return err
	}
	entries := wordfreq.ExportEntries(counter, defined, opts.Top)

	if opts.Export != "" {
		if err := export(opts.Export, entries); err != nil {
			return err
		}
		fmt.Fprintf(w, "Exported %d words to %s\n", len(entries), opts.Export)
		return nil
	}

	printRanking(w, entries, counter.Len())
	return nil
}

// countWords returns the corpus word counts. With the index enabled it is
// refreshed first and the refresh counts are written to w.
func countWords(cmd *cobra.Command, root, dictDir string, icfg types.IndexConfig, w io.Writer) (*wordfreq.Counter, error) {
	if icfg.Disabled {
		return wordfreq.Scanner{Root: root, Exclude: dictDir, Logger: logger}.Count(cmd.Context())
	}

	ix, err := wordfreq.OpenIndex(icfg.Path, root, dictDir, logger)
	if err != nil {
		return nil, err
	}
	defer ix.Close()

	stats, err := ix.Refresh(cmd.Context())
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Index: %d indexed, %d updated, %d unchanged, %d removed, %d failed (total: %d)\n",
		stats.Indexed, stats.Updated, stats.Skipped, stats.Removed, stats.Failed, stats.Total())
	return ix.Count(cmd.Context())
}

func printRanking(w io.Writer, entries []wordfreq.ExportEntry, distinct int) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No words found.")
		return
	}

	fmt.Fprintf(w, "\n%-6s  %-24s  %-10s  %s\n", "Rank", "Word", "Count", "Defined")
	fmt.Fprintln(w, strings.Repeat("-", 52))
	for _, e := range entries {
		mark := ""
		if e.Defined {
			mark = "yes"
		}
		fmt.Fprintf(w, "%-6d  %-24s  %-10d  %s\n", e.Rank, e.Word, e.Count, mark)
	}
	fmt.Fprintf(w, "\n%d of %d distinct words\n", len(entries), distinct)
}

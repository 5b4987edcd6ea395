// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/corpus-engine/internal/scaffold"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Create the corpus directory tree and prompts.txt manifests",
	Long: `Scaffold writes one prompts.txt manifest per story group and per
encyclopedia subcategory from the built-in topic tables. Manifests are
rewritten on every run; generated .corpus files are left untouched.

--topics replaces the built-in tables with a YAML file of the same shape.`,
	RunE: runScaffold,
}

func init() {
	scaffoldCmd.Flags().String("topics", "", "topic tables YAML file (default: built-in tables)")

	rootCmd.AddCommand(scaffoldCmd)
}

func runScaffold(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{"scaffold.topics": "topics"}); err != nil {
		return err
	}
	cfg := types.ScaffoldConfig{CorpusDir: viper.GetString("corpus_dir")}

	topics, err := loadTopics(viper.GetString("scaffold.topics"))
	if err != nil {
		return err
	}
	_, err = scaffold.Build(cfg.CorpusDir, topics, os.Stdout)
	return err
}

func loadTopics(path string) (*scaffold.Topics, error) {
	if path == "" {
		return scaffold.DefaultTopics()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return scaffold.ParseTopics(data)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/corpus-engine/internal/manifest"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show generation progress per corpus section",
	Long: `Status walks every prompts.txt manifest and reports, for each top-level
section of the corpus, how many files are listed, how many exist, and how
many are still pending.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().Bool("json", false, "output as JSON")
	statusCmd.Flags().Bool("yaml", false, "output as YAML")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	report, err := manifest.Status(viper.GetString("corpus_dir"))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	yamlOutput, _ := cmd.Flags().GetBool("yaml")
	switch {
	case jsonOutput:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case yamlOutput:
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(report)
	}
	printStatus(os.Stdout, report)
	return nil
}

func printStatus(w io.Writer, report manifest.Report) {
	if len(report.Sections) == 0 {
		fmt.Fprintln(w, "No manifests found. Run scaffold first.")
		return
	}

	header := fmt.Sprintf("%-16s  %9s  %8s  %8s  %8s  %8s", "Section", "Manifests", "Entries", "Existing", "Pending", "Warnings")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))
	for _, s := range report.Sections {
		printSection(w, s)
	}
	fmt.Fprintln(w, strings.Repeat("-", len(header)))
	printSection(w, report.Total)
}

func printSection(w io.Writer, s manifest.SectionStatus) {
	fmt.Fprintf(w, "%-16s  %9d  %8d  %8d  %8d  %8d\n",
		s.Section, s.Manifests, s.Entries, s.Existing, s.Pending, s.Warnings)
}

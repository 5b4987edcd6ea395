// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wordfreq

import (
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is one ranked word in an export file.
type ExportEntry struct {
	Rank    int    `json:"rank" yaml:"rank"`
	Word    string `json:"word" yaml:"word"`
	Count   int    `json:"count" yaml:"count"`
	Defined bool   `json:"defined" yaml:"defined"`
}

// ExportEntries ranks the top n words (all when n <= 0) and marks those
// that already have a dictionary entry.
func ExportEntries(c *Counter, defined map[string]bool, n int) []ExportEntry {
	top := c.Top(n)
	entries := make([]ExportEntry, len(top))
	for i, wc := range top {
		entries[i] = ExportEntry{Rank: i + 1, Word: wc.Word, Count: wc.Count, Defined: defined[wc.Word]}
	}
	return entries
}

// ExportYAML writes entries to path as YAML.
func ExportYAML(path string, entries []ExportEntry) error {
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes entries to path as indented JSON.
func ExportJSON(path string, entries []ExportEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

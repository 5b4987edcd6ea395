// Package types defines shared data structures for the corpus-engine tools.
package types

import "path/filepath"

// ManifestFile is the name of the per-directory prompt manifest.
const ManifestFile = "prompts.txt"

// CorpusExt is the extension every generated output file carries.
const CorpusExt = ".corpus"

// WorkItem is one manifest entry whose output file does not exist yet.
type WorkItem struct {
	// Dir is the directory holding the manifest and the output file.
	Dir string `json:"dir" yaml:"dir"`

	// Filename is the output file name (always ends in .corpus).
	Filename string `json:"filename" yaml:"filename"`

	// Prompt is the generation instruction for this file.
	Prompt string `json:"prompt" yaml:"prompt"`
}

// Path returns the output file path.
func (w WorkItem) Path() string {
	return filepath.Join(w.Dir, w.Filename)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dictionary picks the most frequent corpus words that have no
// dictionary entry yet and turns them into generation jobs. Each entry is
// a flat <word>.corpus file in the dictionary directory.
package dictionary

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pdiddy/corpus-engine/internal/generate"
	"github.com/pdiddy/corpus-engine/internal/wordfreq"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "qwen/qwen3-235b-a22b"

	// DefaultTemperature keeps definitions conservative.
	DefaultTemperature = 0.5

	// DefaultMaxTokens bounds the length of an entry.
	DefaultMaxTokens = 512

	// DryRunPeek is how many words a dry run lists.
	DryRunPeek = 20

	dirName = "dictionary"
)

// DefaultDir returns the dictionary directory for a corpus root.
func DefaultDir(corpusRoot string) string {
	return filepath.Join(corpusRoot, dirName)
}

// NextWords ranks the corpus words from src and returns up to n that have
// no entry in dictDir. When n is zero (dry run) it returns up to
// DryRunPeek words so the listing is useful.
func NextWords(ctx context.Context, src wordfreq.Source, dictDir string, n int) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("limit must be >= 0, got %d", n)
	}
	if n == 0 {
		n = DryRunPeek
	}

	counter, err := src.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting words: %w", err)
	}
	defined, err := wordfreq.Defined(dictDir)
	if err != nil {
		return nil, err
	}
	return wordfreq.Next(counter.Ranked(), defined, n), nil
}

// Jobs builds one generation job per word.
func Jobs(dictDir string, words []string) ([]generate.Job, error) {
	jobs := make([]generate.Job, 0, len(words))
	for _, w := range words {
		prompt, err := Prompt(w)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, generate.Job{
			Label:  w,
			Path:   filepath.Join(dictDir, w+types.CorpusExt),
			Prompt: prompt,
			Header: Header(w),
		})
	}
	return jobs, nil
}

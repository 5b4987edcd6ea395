// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wordfreq counts word frequencies across a generated corpus and
// decides which words still need dictionary entries.
package wordfreq

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

var wordPattern = regexp.MustCompile(`[a-z']+`)

// Tokenize lowercases text and returns its words. A word is a run of
// ASCII letters and apostrophes with leading and trailing apostrophes
// removed; runs of only apostrophes are dropped.
func Tokenize(text string) []string {
	matches := wordPattern.FindAllString(strings.ToLower(text), -1)
	words := matches[:0]
	for _, m := range matches {
		w := strings.Trim(m, "'")
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// WordCount is a word with its occurrence count.
type WordCount struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

// Counter accumulates word counts and remembers the order in which words
// were first seen, which breaks ties when ranking.
type Counter struct {
	counts map[string]int
	order  []string
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Add counts one occurrence of each word.
func (c *Counter) Add(words ...string) {
	for _, w := range words {
		c.AddN(w, 1)
	}
}

// AddN counts n occurrences of word.
func (c *Counter) AddN(word string, n int) {
	if _, ok := c.counts[word]; !ok {
		c.order = append(c.order, word)
	}
	c.counts[word] += n
}

// Count returns the occurrences of word.
func (c *Counter) Count(word string) int {
	return c.counts[word]
}

// Len returns the number of distinct words.
func (c *Counter) Len() int {
	return len(c.order)
}

// Top returns words by descending count; equal counts keep first-seen
// order. n <= 0 returns every word.
func (c *Counter) Top(n int) []WordCount {
	ranked := make([]WordCount, len(c.order))
	for i, w := range c.order {
		ranked[i] = WordCount{Word: w, Count: c.counts[w]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Ranked returns every word, most frequent first.
func (c *Counter) Ranked() []string {
	top := c.Top(0)
	words := make([]string, len(top))
	for i, wc := range top {
		words[i] = wc.Word
	}
	return words
}

// Source produces word counts for a corpus.
type Source interface {
	Count(ctx context.Context) (*Counter, error)
}

// Scanner counts words by reading every corpus file on each call.
type Scanner struct {
	Root    string
	Exclude string
	Logger  *zap.Logger
}

// Count walks the corpus and tokenizes every .corpus file. Unreadable
// files are skipped.
func (s Scanner) Count(ctx context.Context) (*Counter, error) {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	counter := NewCounter()
	err := walkCorpus(s.Root, s.Exclude, func(path string, _ fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable corpus file", zap.String("path", path), zap.Error(err))
			return nil
		}
		counter.Add(Tokenize(string(data))...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning corpus %s: %w", s.Root, err)
	}
	return counter, nil
}

// walkCorpus calls fn for every .corpus file under root in lexical walk
// order, skipping the exclude directory and anything beneath it. A
// missing root yields nothing.
func walkCorpus(root, exclude string, fn func(path string, d fs.DirEntry) error) error {
	excludeAbs := ""
	if exclude != "" {
		abs, err := filepath.Abs(exclude)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", exclude, err)
		}
		excludeAbs = abs
	}

	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if excludeAbs != "" {
				abs, err := filepath.Abs(path)
				if err == nil && abs == excludeAbs {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), types.CorpusExt) {
			return nil
		}
		return fn(path, d)
	})
}

// Defined returns the words that already have an entry in dictDir, i.e.
// the base names of its .corpus files. A missing directory yields an
// empty set.
func Defined(dictDir string) (map[string]bool, error) {
	entries, err := os.ReadDir(dictDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("reading dictionary directory %s: %w", dictDir, err)
	}

	defined := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), types.CorpusExt) {
			continue
		}
		defined[strings.TrimSuffix(e.Name(), types.CorpusExt)] = true
	}
	return defined, nil
}

// Next returns up to n words from ranked that are not in defined,
// preserving rank order.
func Next(ranked []string, defined map[string]bool, n int) []string {
	if n <= 0 {
		return nil
	}
	var next []string
	for _, w := range ranked {
		if defined[w] {
			continue
		}
		next = append(next, w)
		if len(next) == n {
			break
		}
	}
	return next
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest reads prompts.txt manifests and decides which corpus
// files still need to be generated. A manifest line is
// "<filename> <prompt>"; the output file lives next to the manifest.
package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

// Entry is a single well-formed manifest line.
type Entry struct {
	Filename string
	Prompt   string
	Line     int
}

// Warning describes a manifest line that was skipped.
type Warning struct {
	Path   string
	Line   int
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s:%d: %s, skipping", w.Path, w.Line, w.Reason)
}

// Parse reads manifest lines from r. Malformed lines are reported as
// warnings and never abort parsing. path is used only for warnings.
func Parse(r io.Reader, path string) ([]Entry, []Warning, error) {
	var (
		entries  []Entry
		warnings []Warning
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		filename, prompt, ok := strings.Cut(line, " ")
		if !ok {
			warnings = append(warnings, Warning{Path: path, Line: lineNo, Reason: "bad format"})
			continue
		}
		if !strings.HasSuffix(filename, types.CorpusExt) {
			warnings = append(warnings, Warning{Path: path, Line: lineNo, Reason: "filename doesn't end with " + types.CorpusExt})
			continue
		}

		entries = append(entries, Entry{Filename: filename, Prompt: prompt, Line: lineNo})
	}
	if err := sc.Err(); err != nil {
		return entries, warnings, fmt.Errorf("reading %s: %w", path, err)
	}
	return entries, warnings, nil
}

// ParseFile parses the manifest at path.
func ParseFile(path string) ([]Entry, []Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening manifest %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Manifest is a parsed prompts.txt together with its directory.
type Manifest struct {
	Dir      string
	Entries  []Entry
	Warnings []Warning
}

// Walk visits every prompts.txt under root in lexical order and calls fn
// with the parsed manifest. A missing root yields no manifests; a manifest
// that cannot be read below it is an error.
func Walk(root string, fn func(m Manifest) error) error {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != types.ManifestFile {
			return nil
		}

		entries, warnings, err := ParseFile(path)
		if err != nil {
			return err
		}
		return fn(Manifest{Dir: filepath.Dir(path), Entries: entries, Warnings: warnings})
	})
}

// FindPending returns a WorkItem for every manifest entry whose output
// file does not exist, in scan order. Skipped lines are written to w.
func FindPending(root string, w io.Writer) ([]types.WorkItem, error) {
	var pending []types.WorkItem

	err := Walk(root, func(m Manifest) error {
		for _, warn := range m.Warnings {
			fmt.Fprintf(w, "warning: %s\n", warn)
		}
		for _, e := range m.Entries {
			item := types.WorkItem{Dir: m.Dir, Filename: e.Filename, Prompt: e.Prompt}
			exists, err := fileExists(item.Path())
			if err != nil {
				return err
			}
			if !exists {
				pending = append(pending, item)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning manifests under %s: %w", root, err)
	}
	return pending, nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// Rel returns path relative to root, falling back to path itself.
func Rel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

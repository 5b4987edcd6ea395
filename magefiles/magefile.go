//go:build mage

// Package main contains Mage build targets for corpus-engine developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir    = "bin"
	binName   = "corpus-engine"
	cmdPkg    = "./cmd/corpus-engine"
	corpusDir = "corpus"
)

var binPath = filepath.Join(binDir, binName)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, _ := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if version == "" {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", binPath)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Init creates the corpus directory tree and prompts.txt manifests.
func Init() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "scaffold", "--corpus-dir", corpusDir)
}

// Generate fills up to 10 missing corpus files.
func Generate() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "generate", "--corpus-dir", corpusDir)
}

// Dictionary generates one entry for the most frequent undefined word.
func Dictionary() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "dictionary", "--corpus-dir", corpusDir)
}

// Status prints generation progress per corpus section.
func Status() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "status", "--corpus-dir", corpusDir)
}

// Stats prints project metrics: Go production/test LOC, corpus file count,
// and corpus word count.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	files, words, err := countCorpus(corpusDir)
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Corpus files:                   %d\n", files)
	fmt.Printf("Words (corpus):                 %d\n", words)
	return nil
}

// countGoLines counts non-blank lines in Go files, skipping hidden and
// underscore-prefixed directories. If testOnly is true, count only
// _test.go files; otherwise count non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			if strings.TrimSpace(sc.Text()) != "" {
				total++
			}
		}
		return sc.Err()
	})
	return total, err
}

// countCorpus counts .corpus files and the whitespace-separated words in them.
func countCorpus(root string) (files, words int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".corpus" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		files++
		words += len(strings.Fields(string(data)))
		return nil
	})
	return files, words, err
}

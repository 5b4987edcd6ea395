// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scaffold creates the corpus directory tree and its prompts.txt
// manifests from the embedded topic tables. Manifests are rewritten on
// every run; generated .corpus files are never touched.
package scaffold

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/corpus-engine/internal/manifest"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

//go:embed topics.yaml
var topicsYAML []byte

// StoryPrompt is one story file and its theme.
type StoryPrompt struct {
	File  string `yaml:"file"`
	Theme string `yaml:"theme"`
}

// StoryGroup is a directory of stories sharing a length and style.
type StoryGroup struct {
	Group      string        `yaml:"group"`
	WordTarget string        `yaml:"word_target"`
	Style      string        `yaml:"style"`
	Prompts    []StoryPrompt `yaml:"prompts"`
}

// Angle is one article perspective generated for every subcategory.
type Angle struct {
	Slug     string `yaml:"slug"`
	Template string `yaml:"template"`
}

// Category groups encyclopedia subcategories.
type Category struct {
	Category      string   `yaml:"category"`
	Subcategories []string `yaml:"subcategories"`
}

// Topics is the full set of scaffold tables.
type Topics struct {
	Stories      []StoryGroup `yaml:"stories"`
	ArticleWords string       `yaml:"article_words"`
	Angles       []Angle      `yaml:"angles"`
	Encyclopedia []Category   `yaml:"encyclopedia"`
}

// DefaultTopics parses the embedded topic tables.
func DefaultTopics() (*Topics, error) {
	return ParseTopics(topicsYAML)
}

// ParseTopics parses topic tables from YAML.
func ParseTopics(data []byte) (*Topics, error) {
	var t Topics
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing topics: %w", err)
	}
	return &t, nil
}

// Result holds the totals counted after scaffolding.
type Result struct {
	Directories int
	Prompts     int
}

// Build writes every manifest under root and reports each one to w. The
// totals are recounted from disk so they include manifests that existed
// before this run.
func Build(root string, topics *Topics, w io.Writer) (Result, error) {
	angles, err := compileAngles(topics.Angles)
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating %s: %w", root, err)
	}

	fmt.Fprintln(w, "Building story prompts...")
	for _, g := range topics.Stories {
		lines := StoryLines(g)
		rel := filepath.Join("stories", g.Group)
		if err := writeManifest(filepath.Join(root, rel), lines); err != nil {
			return Result{}, err
		}
		fmt.Fprintf(w, "  %s (%d prompts)\n", filepath.ToSlash(filepath.Join(rel, types.ManifestFile)), len(lines))
	}

	fmt.Fprintln(w, "\nBuilding encyclopedia prompts...")
	for _, c := range topics.Encyclopedia {
		for _, sub := range c.Subcategories {
			lines, err := articleLines(c.Category, sub, angles, topics.ArticleWords)
			if err != nil {
				return Result{}, err
			}
			rel := filepath.Join("encyclopedia", c.Category, sub)
			if err := writeManifest(filepath.Join(root, rel), lines); err != nil {
				return Result{}, err
			}
			fmt.Fprintf(w, "  %s (%d prompts)\n", filepath.ToSlash(filepath.Join(rel, types.ManifestFile)), len(lines))
		}
	}

	var res Result
	err = manifest.Walk(root, func(m manifest.Manifest) error {
		res.Directories++
		res.Prompts += len(m.Entries)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("counting manifests: %w", err)
	}
	fmt.Fprintf(w, "\nDone! Created %d directories with %d total prompts.\n", res.Directories, res.Prompts)
	return res, nil
}

// StoryLines renders the manifest lines for a story group.
func StoryLines(g StoryGroup) []string {
	lines := make([]string, len(g.Prompts))
	for i, p := range g.Prompts {
		lines[i] = fmt.Sprintf("%s Write a short story about %s. %s Aim for %s words.",
			p.File, p.Theme, g.Style, g.WordTarget)
	}
	return lines
}

type compiledAngle struct {
	slug string
	tmpl *template.Template
}

func compileAngles(angles []Angle) ([]compiledAngle, error) {
	out := make([]compiledAngle, len(angles))
	for i, a := range angles {
		t, err := template.New(a.Slug).Option("missingkey=error").Parse(a.Template)
		if err != nil {
			return nil, fmt.Errorf("parsing angle %q: %w", a.Slug, err)
		}
		out[i] = compiledAngle{slug: a.Slug, tmpl: t}
	}
	return out, nil
}

// articleLines renders one manifest line per angle for an encyclopedia
// subcategory.
func articleLines(category, sub string, angles []compiledAngle, words string) ([]string, error) {
	topic := fmt.Sprintf("%s (in the context of %s)", Readable(sub), Readable(category))
	lines := make([]string, 0, len(angles))
	for _, a := range angles {
		var buf bytes.Buffer
		if err := a.tmpl.Execute(&buf, struct{ Topic string }{Topic: topic}); err != nil {
			return nil, fmt.Errorf("rendering angle %q for %s: %w", a.slug, sub, err)
		}
		filename := fmt.Sprintf("%s_%s%s", Slug(sub), a.slug, types.CorpusExt)
		prompt := buf.String()
		if words != "" {
			prompt += fmt.Sprintf(" Aim for %s words.", words)
		}
		lines = append(lines, filename+" "+prompt)
	}
	return lines, nil
}

// Slug turns a hyphenated topic name into a file name stem.
func Slug(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// Readable turns a hyphenated topic name into prose.
func Readable(name string) string {
	return strings.ReplaceAll(name, "-", " ")
}

func writeManifest(dir string, lines []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	data := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, types.ManifestFile), []byte(data), 0o644); err != nil {
		return fmt.Errorf("writing manifest in %s: %w", dir, err)
	}
	return nil
}

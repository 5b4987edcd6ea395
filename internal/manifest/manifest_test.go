// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantEntries  []Entry
		wantWarnings []string
	}{
		{
			name:  "well formed lines",
			input: "a.corpus Write about apples.\nb.corpus Write about bees.\n",
			wantEntries: []Entry{
				{Filename: "a.corpus", Prompt: "Write about apples.", Line: 1},
				{Filename: "b.corpus", Prompt: "Write about bees.", Line: 2},
			},
		},
		{
			name:  "blank lines are ignored but counted",
			input: "\n   \na.corpus Prompt one\n\n",
			wantEntries: []Entry{
				{Filename: "a.corpus", Prompt: "Prompt one", Line: 3},
			},
		},
		{
			name:  "surrounding whitespace is trimmed",
			input: "  a.corpus Prompt with trailing space   \n",
			wantEntries: []Entry{
				{Filename: "a.corpus", Prompt: "Prompt with trailing space", Line: 1},
			},
		},
		{
			name:         "line without a prompt is skipped",
			input:        "lonely.corpus\nok.corpus fine\n",
			wantEntries:  []Entry{{Filename: "ok.corpus", Prompt: "fine", Line: 2}},
			wantWarnings: []string{"m.txt:1: bad format, skipping"},
		},
		{
			name:         "wrong extension is skipped",
			input:        "notes.txt Some prompt\n",
			wantWarnings: []string{"m.txt:1: filename doesn't end with .corpus, skipping"},
		},
		{
			name:  "prompt keeps inner spacing",
			input: "a.corpus one  two   three\n",
			wantEntries: []Entry{
				{Filename: "a.corpus", Prompt: "one  two   three", Line: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, warnings, err := Parse(strings.NewReader(tt.input), "m.txt")
			require.NoError(t, err)

			if diff := cmp.Diff(tt.wantEntries, entries); diff != "" {
				t.Errorf("entries mismatch (-want +got):\n%s", diff)
			}
			var got []string
			for _, w := range warnings {
				got = append(got, w.String())
			}
			assert.Equal(t, tt.wantWarnings, got)
		})
	}
}

func TestFindPending(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "stories", "short"),
		"done.corpus Already written\n",
		"todo.corpus Still to write\n",
		"broken-line\n",
	)
	writeManifest(t, filepath.Join(root, "encyclopedia", "science", "physics"),
		"physics_history.corpus History of physics\n",
	)
	writeFile(t, filepath.Join(root, "stories", "short", "done.corpus"), "text\n")

	var log bytes.Buffer
	pending, err := FindPending(root, &log)
	require.NoError(t, err)

	want := []types.WorkItem{
		{Dir: filepath.Join(root, "encyclopedia", "science", "physics"), Filename: "physics_history.corpus", Prompt: "History of physics"},
		{Dir: filepath.Join(root, "stories", "short"), Filename: "todo.corpus", Prompt: "Still to write"},
	}
	assert.Equal(t, want, pending)
	assert.Contains(t, log.String(), "prompts.txt:3: bad format")
}

func TestFindPendingMissingRoot(t *testing.T) {
	pending, err := FindPending(filepath.Join(t.TempDir(), "nope"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestFindPendingUnreadableManifest(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(root, "gone.txt"), filepath.Join(root, "a", types.ManifestFile)))
	writeManifest(t, filepath.Join(root, "b"), "x.corpus Write about x.\n")

	pending, err := FindPending(root, &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), filepath.Join("a", types.ManifestFile))
	assert.Empty(t, pending)

	_, err = Status(root)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindPendingAllPresent(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "a.corpus prompt\n")
	writeFile(t, filepath.Join(root, "a.corpus"), "x")

	pending, err := FindPending(root, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestStatus(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "stories", "a"), "one.corpus p\n", "two.corpus p\n")
	writeManifest(t, filepath.Join(root, "stories", "b"), "three.corpus p\n", "bad\n")
	writeManifest(t, filepath.Join(root, "encyclopedia", "x", "y"), "four.corpus p\n")
	writeFile(t, filepath.Join(root, "stories", "a", "one.corpus"), "x")

	report, err := Status(root)
	require.NoError(t, err)

	require.Len(t, report.Sections, 2)
	assert.Equal(t, SectionStatus{Section: "encyclopedia", Manifests: 1, Entries: 1, Pending: 1}, report.Sections[0])
	assert.Equal(t, SectionStatus{Section: "stories", Manifests: 2, Entries: 3, Existing: 1, Pending: 2, Warnings: 1}, report.Sections[1])
	assert.Equal(t, 4, report.Total.Entries)
	assert.Equal(t, 3, report.Total.Pending)
}

func TestRel(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "b.corpus"), Rel("/root/corpus", "/root/corpus/a/b.corpus"))
	assert.Equal(t, "rel/path", Rel("/abs", "rel/path"))
}

func writeManifest(t *testing.T, dir string, lines ...string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, types.ManifestFile), strings.Join(lines, ""))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

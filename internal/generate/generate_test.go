// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeBackend echoes prompts, failing those listed in fail, and records the
// peak number of concurrent calls.
type fakeBackend struct {
	delay time.Duration
	fail  map[string]bool

	inFlight atomic.Int32
	peak     atomic.Int32

	mu      sync.Mutex
	prompts []string
}

func (f *fakeBackend) Complete(ctx context.Context, prompt string) (string, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.fail[prompt] {
		return "", errors.New("backend exploded")
	}
	return "text for " + prompt, nil
}

func TestRun_WritesOutputs(t *testing.T) {
	dir := t.TempDir()
	jobs := []Job{
		{Label: "a.corpus", Path: filepath.Join(dir, "a.corpus"), Prompt: "alpha"},
		{Label: "sub/b.corpus", Path: filepath.Join(dir, "sub", "b.corpus"), Prompt: "beta", Header: "Header line.\n"},
	}

	var out bytes.Buffer
	summary := Run(context.Background(), &fakeBackend{}, jobs, Config{Concurrency: 2}, &out)

	assert.Equal(t, Summary{Generated: 2}, summary)
	assert.False(t, summary.HasFailures())

	data, err := os.ReadFile(filepath.Join(dir, "a.corpus"))
	require.NoError(t, err)
	assert.Equal(t, "text for alpha\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "sub", "b.corpus"))
	require.NoError(t, err)
	assert.Equal(t, "Header line.\ntext for beta\n", string(data))

	log := out.String()
	assert.Contains(t, log, "a.corpus OK (14 chars)")
	assert.Contains(t, log, "[2/2] sub/b.corpus ...")
	assert.Contains(t, log, "Batch summary: 2 generated, 0 failed (total: 2)")
}

func TestRun_FailuresDoNotStopOthers(t *testing.T) {
	dir := t.TempDir()
	var jobs []Job
	for _, p := range []string{"one", "two", "three", "four"} {
		jobs = append(jobs, Job{Label: p, Path: filepath.Join(dir, p+".corpus"), Prompt: p})
	}

	backend := &fakeBackend{fail: map[string]bool{"two": true, "four": true}}
	var out bytes.Buffer
	summary := Run(context.Background(), backend, jobs, Config{Concurrency: 3}, &out)

	assert.Equal(t, 2, summary.Generated)
	assert.Equal(t, 2, summary.Failed)
	assert.True(t, summary.HasFailures())
	assert.Contains(t, out.String(), "two FAILED: backend exploded")

	assert.FileExists(t, filepath.Join(dir, "one.corpus"))
	assert.NoFileExists(t, filepath.Join(dir, "two.corpus"))
	assert.FileExists(t, filepath.Join(dir, "three.corpus"))

	// No temp files linger after failures.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}
}

func TestRun_BoundsConcurrency(t *testing.T) {
	dir := t.TempDir()
	var jobs []Job
	for i := 0; i < 12; i++ {
		name := string(rune('a'+i)) + ".corpus"
		jobs = append(jobs, Job{Label: name, Path: filepath.Join(dir, name), Prompt: name})
	}

	backend := &fakeBackend{delay: 20 * time.Millisecond}
	summary := Run(context.Background(), backend, jobs, Config{Concurrency: 3}, &bytes.Buffer{})

	assert.Equal(t, 12, summary.Generated)
	assert.LessOrEqual(t, backend.peak.Load(), int32(3))
	assert.Len(t, backend.prompts, 12)
}

func TestRun_DefaultConcurrency(t *testing.T) {
	dir := t.TempDir()
	var jobs []Job
	for i := 0; i < 10; i++ {
		name := string(rune('a'+i)) + ".corpus"
		jobs = append(jobs, Job{Label: name, Path: filepath.Join(dir, name), Prompt: name})
	}

	backend := &fakeBackend{delay: 20 * time.Millisecond}
	Run(context.Background(), backend, jobs, Config{}, &bytes.Buffer{})
	assert.LessOrEqual(t, backend.peak.Load(), int32(DefaultConcurrency))
}

func TestRun_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	jobs := []Job{
		{Label: "a", Path: filepath.Join(dir, "a.corpus"), Prompt: "a"},
		{Label: "b", Path: filepath.Join(dir, "b.corpus"), Prompt: "b"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := Run(ctx, &fakeBackend{delay: time.Second}, jobs, Config{Concurrency: 2}, &bytes.Buffer{})
	assert.Equal(t, 2, summary.Failed)
	assert.NoFileExists(t, filepath.Join(dir, "a.corpus"))
}

func TestRun_NoJobs(t *testing.T) {
	var out bytes.Buffer
	summary := Run(context.Background(), &fakeBackend{}, nil, Config{}, &out)
	assert.Equal(t, 0, summary.Total())
}

func TestWriteFile_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.corpus")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, WriteFile(path, "new\n"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestPlanCorpus(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "stories", "short")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	manifest := "a.corpus Prompt A\nb.corpus Prompt B\nc.corpus Prompt C\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, types.ManifestFile), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.corpus"), []byte("done"), 0o644))

	tests := []struct {
		name          string
		limit         int
		wantBatch     []string
		wantRemaining int
	}{
		{"dry run", 0, nil, 2},
		{"limit below pending", 1, []string{"stories/short/a.corpus"}, 1},
		{"limit above pending", 10, []string{"stories/short/a.corpus", "stories/short/c.corpus"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanCorpus(root, tt.limit, &bytes.Buffer{})
			require.NoError(t, err)
			assert.Len(t, plan.Pending, 2)
			assert.Equal(t, tt.wantRemaining, plan.Remaining())

			var labels []string
			for _, j := range plan.Jobs() {
				labels = append(labels, filepath.ToSlash(j.Label))
			}
			assert.Equal(t, tt.wantBatch, labels)
		})
	}
}

func TestPlanCorpus_NegativeLimit(t *testing.T) {
	_, err := PlanCorpus(t.TempDir(), -1, &bytes.Buffer{})
	require.Error(t, err)
}

func TestPlan_PrintPending(t *testing.T) {
	root := "/corpus"
	plan := Plan{Root: root, Pending: []types.WorkItem{
		{Dir: "/corpus/stories", Filename: "x.corpus"},
	}}
	var out bytes.Buffer
	plan.PrintPending(&out)
	assert.Equal(t, "  "+filepath.Join("stories", "x.corpus")+"\n", out.String())
}

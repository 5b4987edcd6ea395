// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"fmt"
	"io"

	"github.com/pdiddy/corpus-engine/internal/manifest"
	"github.com/pdiddy/corpus-engine/pkg/types"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "qwen/qwen3.5-plus-02-15"

	// DefaultLimit is the number of files generated per run.
	DefaultLimit = 10

	DefaultTemperature = 0.8
	DefaultMaxTokens   = 4096
)

// SystemPrompt frames every corpus request.
const SystemPrompt = "You are a skilled writer producing high-quality text for a training corpus. " +
	"Write only the requested content — no meta commentary, no titles unless they fit naturally, " +
	"no markdown formatting. Output plain prose."

// Plan is the outcome of scanning a corpus: every pending item and the
// batch selected for this run.
type Plan struct {
	Root    string
	Pending []types.WorkItem
	Batch   []types.WorkItem
}

// Remaining returns how many pending items are left after the batch.
func (p Plan) Remaining() int {
	return len(p.Pending) - len(p.Batch)
}

// PlanCorpus finds every missing .corpus file under root and selects the
// first limit of them in scan order. A limit of zero selects nothing
// (dry run). Manifest warnings are written to w.
func PlanCorpus(root string, limit int, w io.Writer) (Plan, error) {
	if limit < 0 {
		return Plan{}, fmt.Errorf("limit must be >= 0, got %d", limit)
	}
	pending, err := manifest.FindPending(root, w)
	if err != nil {
		return Plan{}, err
	}

	batch := pending
	if limit < len(batch) {
		batch = batch[:limit]
	}
	return Plan{Root: root, Pending: pending, Batch: batch}, nil
}

// Jobs converts the batch into generation jobs labelled by their path
// relative to the corpus root.
func (p Plan) Jobs() []Job {
	jobs := make([]Job, len(p.Batch))
	for i, item := range p.Batch {
		jobs[i] = Job{
			Label:  manifest.Rel(p.Root, item.Path()),
			Path:   item.Path(),
			Prompt: item.Prompt,
		}
	}
	return jobs
}

// PrintPending lists every pending file relative to the corpus root.
func (p Plan) PrintPending(w io.Writer) {
	for _, item := range p.Pending {
		fmt.Fprintf(w, "  %s\n", manifest.Rel(p.Root, item.Path()))
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate fills missing corpus files by calling a text-generation
// backend for each pending item, with a bounded number of calls in flight.
// A failed item is reported and counted; it never stops the others.
package generate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of requests in flight when Config
// leaves it unset.
const DefaultConcurrency = 5

// Backend produces text for a prompt. queue.Generator is the production
// implementation; tests supply a fake.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Job is one file to generate.
type Job struct {
	// Label identifies the job in progress lines (usually a relative path).
	Label string

	// Path is where the output is written.
	Path string

	// Prompt is sent to the backend.
	Prompt string

	// Header is written before the generated text.
	Header string
}

// Config controls a Run.
type Config struct {
	Concurrency int
	Logger      *zap.Logger
}

// Summary holds counts from a Run.
type Summary struct {
	Generated int
	Failed    int
}

// Total returns the number of jobs attempted.
func (s Summary) Total() int {
	return s.Generated + s.Failed
}

// HasFailures reports whether any job failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Run generates every job with at most cfg.Concurrency backend calls in
// flight. Each job prints a start line and an OK or FAILED line to w.
// Output is written as Header + text + "\n" via a temporary file that is
// renamed into place, so a failed job never leaves a partial file.
func Run(ctx context.Context, backend Backend, jobs []Job, cfg Config, w io.Writer) Summary {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	out := &lockedWriter{w: w}
	total := len(jobs)
	var generated, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, job := range jobs {
		i, job := i, job // per-iteration copies; go directive is 1.21 (pre-loopvar)
		g.Go(func() error {
			n := i + 1
			out.printf("[%d/%d] %s ...\n", n, total, job.Label)
			start := time.Now()

			content, err := backend.Complete(gctx, job.Prompt)
			if err == nil {
				err = WriteFile(job.Path, job.Header+content+"\n")
			}
			if err != nil {
				failed.Add(1)
				out.printf("[%d/%d] %s FAILED: %v\n", n, total, job.Label, err)
				logger.Warn("generation failed", zap.String("job", job.Label), zap.Error(err))
				return nil
			}

			generated.Add(1)
			out.printf("[%d/%d] %s OK (%d chars)\n", n, total, job.Label, utf8.RuneCountInString(content))
			logger.Debug("generated",
				zap.String("job", job.Label),
				zap.String("path", job.Path),
				zap.Duration("elapsed", time.Since(start)))
			return nil
		})
	}
	// Jobs never return errors; failures are counted above.
	_ = g.Wait()

	summary := Summary{Generated: int(generated.Load()), Failed: int(failed.Load())}
	fmt.Fprintf(w, "\nBatch summary: %d generated, %d failed (total: %d)\n",
		summary.Generated, summary.Failed, summary.Total())
	return summary
}

// WriteFile writes data to path through a temporary file in the same
// directory, creating the directory if needed.
func WriteFile(path, data string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".generate-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.WriteString(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing output: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// lockedWriter serialises progress lines from concurrent jobs.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format, args...)
}

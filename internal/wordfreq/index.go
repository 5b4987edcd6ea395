// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wordfreq

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// DefaultIndexPath returns the index location for a corpus root.
func DefaultIndexPath(root string) string {
	return filepath.Join(root, ".index", "wordfreq.db")
}

// Index caches per-file word counts in SQLite so repeated frequency
// queries only re-read corpus files whose size or modification time
// changed. Counts read from the index rank exactly like a fresh Scanner.
type Index struct {
	db      *sql.DB
	root    string
	exclude string
	logger  *zap.Logger
}

// RefreshStats holds counts from an index refresh.
type RefreshStats struct {
	Indexed int
	Updated int
	Skipped int
	Removed int
	Failed  int
}

// Total returns the number of files examined.
func (s RefreshStats) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// OpenIndex opens or creates the index database at dbPath for the corpus
// rooted at root. Files under exclude are never indexed.
func OpenIndex(dbPath, root, exclude string, logger *zap.Logger) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	ix := &Index{db: db, root: root, exclude: exclude, logger: logger}
	if err := ix.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return ix, nil
}

// Close releases the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS files (
			path TEXT PRIMARY KEY,
			mod_time TEXT NOT NULL,
			size INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS words (
			path TEXT NOT NULL REFERENCES files(path) ON DELETE CASCADE,
			word TEXT NOT NULL,
			count INTEGER NOT NULL,
			first_pos INTEGER NOT NULL,
			PRIMARY KEY (path, word)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_words_word ON words(word)`,
	}
	for _, stmt := range statements {
		if _, err := ix.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Refresh brings the index in line with the corpus: new and changed files
// are re-tokenized, unchanged files are skipped, and files that no longer
// exist or can no longer be read are removed.
func (ix *Index) Refresh(ctx context.Context) (RefreshStats, error) {
	stored, err := ix.storedFiles(ctx)
	if err != nil {
		return RefreshStats{}, err
	}

	var stats RefreshStats
	seen := make(map[string]bool)

	err = walkCorpus(ix.root, ix.exclude, func(path string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := ix.key(path)

		info, err := d.Info()
		if err != nil {
			ix.logger.Warn("skipping corpus file", zap.String("path", path), zap.Error(err))
			stats.Failed++
			return nil
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		prev, known := stored[key]
		if known && prev.modTime == modTime && prev.size == info.Size() {
			seen[key] = true
			stats.Skipped++
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			ix.logger.Warn("skipping unreadable corpus file", zap.String("path", path), zap.Error(err))
			stats.Failed++
			return nil
		}
		if err := ix.indexFile(ctx, key, modTime, info.Size(), Tokenize(string(data))); err != nil {
			return fmt.Errorf("indexing %s: %w", path, err)
		}
		seen[key] = true
		if known {
			stats.Updated++
		} else {
			stats.Indexed++
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("refreshing index: %w", err)
	}

	for key := range stored {
		if seen[key] {
			continue
		}
		if _, err := ix.db.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, key); err != nil {
			return stats, fmt.Errorf("removing %s from index: %w", key, err)
		}
		stats.Removed++
	}

	ix.logger.Debug("word index refreshed",
		zap.Int("indexed", stats.Indexed),
		zap.Int("updated", stats.Updated),
		zap.Int("skipped", stats.Skipped),
		zap.Int("removed", stats.Removed),
		zap.Int("failed", stats.Failed))
	return stats, nil
}

type fileState struct {
	modTime string
	size    int64
}

func (ix *Index) storedFiles(ctx context.Context) (map[string]fileState, error) {
	rows, err := ix.db.QueryContext(ctx, `SELECT path, mod_time, size FROM files`)
	if err != nil {
		return nil, fmt.Errorf("querying indexed files: %w", err)
	}
	defer rows.Close()

	stored := make(map[string]fileState)
	for rows.Next() {
		var path string
		var st fileState
		if err := rows.Scan(&path, &st.modTime, &st.size); err != nil {
			return nil, fmt.Errorf("scanning indexed file: %w", err)
		}
		stored[path] = st
	}
	return stored, rows.Err()
}

func (ix *Index) indexFile(ctx context.Context, key, modTime string, size int64, words []string) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM words WHERE path = ?`, key); err != nil {
		return fmt.Errorf("deleting old counts: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO files (path, mod_time, size) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET mod_time=excluded.mod_time, size=excluded.size`,
		key, modTime, size,
	)
	if err != nil {
		return fmt.Errorf("upserting file: %w", err)
	}

	counter := NewCounter()
	counter.Add(words...)

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO words (path, word, count, first_pos) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for pos, w := range counter.order {
		if _, err := stmt.ExecContext(ctx, key, w, counter.counts[w], pos); err != nil {
			return fmt.Errorf("inserting word %q: %w", w, err)
		}
	}
	return tx.Commit()
}

// Count refreshes the index and returns the corpus-wide counts. Files are
// merged in the same order a Scanner walks them so ties rank identically.
func (ix *Index) Count(ctx context.Context) (*Counter, error) {
	if _, err := ix.Refresh(ctx); err != nil {
		return nil, err
	}

	rows, err := ix.db.QueryContext(ctx,
		`SELECT path, word, count FROM words ORDER BY path, first_pos`)
	if err != nil {
		return nil, fmt.Errorf("querying word counts: %w", err)
	}
	defer rows.Close()

	byPath := make(map[string][]WordCount)
	var paths []string
	for rows.Next() {
		var path string
		var wc WordCount
		if err := rows.Scan(&path, &wc.Word, &wc.Count); err != nil {
			return nil, fmt.Errorf("scanning word count: %w", err)
		}
		if _, ok := byPath[path]; !ok {
			paths = append(paths, path)
		}
		byPath[path] = append(byPath[path], wc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(paths, func(i, j int) bool {
		return walkLess(paths[i], paths[j])
	})

	counter := NewCounter()
	for _, p := range paths {
		for _, wc := range byPath[p] {
			counter.AddN(wc.Word, wc.Count)
		}
	}
	return counter, nil
}

// key stores paths relative to the corpus root with forward slashes so the
// index survives the corpus being moved.
func (ix *Index) key(path string) string {
	rel, err := filepath.Rel(ix.root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

// walkLess orders slash-separated paths the way filepath.WalkDir visits
// them: component by component, lexically.
func walkLess(a, b string) bool {
	as := strings.Split(a, "/")
	bs := strings.Split(b, "/")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}
	return len(as) < len(bs)
}

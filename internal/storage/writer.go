package storage

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/kalambet/gharvest/internal/metrics"
)

// Writer is a resumable writer session against one table. Several writers
// may share the same store handle during a run (one per repository); each
// tracks its own net-new row count: rows present in its scope at session
// start versus rows present now. A batch that only replaces existing ids
// therefore adds zero.
type Writer struct {
	store     *Store
	table     string
	repo      string // "" means the whole table
	initial   int64
	added     int64
	finalized bool
	logger    *slog.Logger
}

// NewWriter opens a writer session covering the whole table.
func (s *Store) NewWriter(table string) (*Writer, error) {
	return s.newWriter(table, "")
}

// NewRepoWriter opens a writer session scoped to one repository. The scope
// only affects counting; appends still land in the shared table.
func (s *Store) NewRepoWriter(table, repo string) (*Writer, error) {
	return s.newWriter(table, repo)
}

func (s *Store) newWriter(table, repo string) (*Writer, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}
	w := &Writer{store: s, table: table, repo: repo, logger: slog.Default()}
	initial, err := w.count()
	if err != nil {
		return nil, fmt.Errorf("counting rows at session start: %w", err)
	}
	w.initial = initial
	return w, nil
}

func (w *Writer) count() (int64, error) {
	if w.repo == "" {
		return w.store.Count(w.table)
	}
	return w.store.CountRepo(w.table, w.repo)
}

// Append upserts one batch and refreshes the session's net-new count.
func (w *Writer) Append(rows []Row) error {
	before, err := w.count()
	if err != nil {
		return err
	}
	if err := w.store.UpsertBatch(w.table, rows); err != nil {
		return err
	}
	after, err := w.count()
	if err != nil {
		return err
	}
	metrics.RowsUpserted.WithLabelValues(w.table).Add(float64(len(rows)))
	w.added = after - w.initial

	w.logger.Info("batch committed",
		"table", w.table,
		"repo", w.repo,
		"size_mib", fmt.Sprintf("%.2f", w.sizeMiB()),
		"total_rows", after,
		"added_this_batch", after-before,
		"added_this_run", w.added,
	)
	return nil
}

// Added returns net new rows this session: total now minus total at session
// start, not a per-call increment.
func (w *Writer) Added() int64 {
	return w.added
}

// Finalize ends the session. It is idempotent: calling it again, or calling
// it after zero appends, is safe and changes nothing in the table.
func (w *Writer) Finalize() error {
	if w.finalized {
		return nil
	}
	w.finalized = true
	w.logger.Info("writer session finalized",
		"table", w.table, "repo", w.repo, "added", w.added, "path", w.store.Path())
	return nil
}

func (w *Writer) sizeMiB() float64 {
	path := w.store.Path()
	if path == "" {
		return 0
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return float64(info.Size()) / (1024 * 1024)
}

package clean

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kalambet/gharvest/internal/event"
	"github.com/kalambet/gharvest/internal/metrics"
	"github.com/kalambet/gharvest/internal/storage"
)

// Counts is the cleaning run's return contract.
type Counts struct {
	Read       int64 `json:"read"`
	Duplicates int64 `json:"duplicates"`
	Written    int64 `json:"written"`
}

// Cleaner reads every raw record, deduplicates by id at read time, applies
// the workflow, and upserts survivors into the destination table.
type Cleaner struct {
	store    *storage.Store
	workflow *Workflow
	logger   *slog.Logger
}

// NewCleaner wires a Cleaner to the shared store and a workflow.
func NewCleaner(store *storage.Store, wf *Workflow) *Cleaner {
	return &Cleaner{store: store, workflow: wf, logger: slog.Default()}
}

// Run cleans source into dest. Per-record failures (undecodable payloads, a
// panicking step) drop only that record; storage failures abort the run.
// The seen-id set is a cheaper dedup than the store's replace-by-key upsert,
// applied before workflow evaluation to guard against within-run
// duplication.
func (c *Cleaner) Run(ctx context.Context, source, dest string) (Counts, error) {
	var counts Counts
	seen := make(map[string]struct{})

	for row, err := range c.store.ReadAll(source) {
		if err != nil {
			return counts, fmt.Errorf("reading %s: %w", source, err)
		}
		if err := ctx.Err(); err != nil {
			return counts, err
		}
		counts.Read++

		rec, err := event.Decode(row.EventData)
		if err != nil {
			c.logger.Warn("skipping undecodable record", "id", row.ID, "error", err)
			continue
		}

		id := string(rec.ID)
		if id != "" {
			if _, dup := seen[id]; dup {
				counts.Duplicates++
				metrics.RecordsDuplicate.Inc()
				continue
			}
			seen[id] = struct{}{}
		}

		cleaned, ok := c.runRecord(rec)
		if !ok {
			metrics.RecordsDropped.Inc()
			continue
		}

		data, err := json.Marshal(cleaned)
		if err != nil {
			c.logger.Warn("skipping unmarshallable cleaned record", "id", id, "error", err)
			continue
		}
		if err := c.store.UpsertBatch(dest, []storage.Row{storage.RowFromCleaned(cleaned, data)}); err != nil {
			return counts, fmt.Errorf("writing cleaned record %s: %w", id, err)
		}
		counts.Written++
		metrics.RecordsCleaned.Inc()
	}

	if err := c.store.SaveRunMetadata("last_cleaning", storage.RunMetadata{
		Read:       counts.Read,
		Duplicates: counts.Duplicates,
		Written:    counts.Written,
		FinishedAt: time.Now().UTC(),
	}); err != nil {
		return counts, fmt.Errorf("saving run metadata: %w", err)
	}

	c.logger.Info("cleaning complete",
		"read", counts.Read, "duplicates", counts.Duplicates, "written", counts.Written)
	return counts, nil
}

// runRecord applies the workflow to one record. A panicking step is treated
// as an implicit drop for that record only.
func (c *Cleaner) runRecord(rec event.Record) (cleaned event.Cleaned, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("workflow step panicked, dropping record", "id", string(rec.ID), "panic", r)
			ok = false
		}
	}()
	return c.workflow.Run(rec)
}

// Package extract drives the archive client over a date range and persists
// matching events into the shared store: one pass over the archive for all
// configured repositories, per-hour batches partitioned by repository into
// writer handles that share a single physical store.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/gharvest/internal/archive"
	"github.com/kalambet/gharvest/internal/config"
	"github.com/kalambet/gharvest/internal/event"
	"github.com/kalambet/gharvest/internal/storage"
)

// RepoResult names one repository and the store it was written to. All
// repositories of a run share the same path.
type RepoResult struct {
	Repo string
	Path string
}

// Orchestrator owns one extraction run.
type Orchestrator struct {
	client *archive.Client
	store  *storage.Store
	cfg    config.ExtractionConfig
	logger *slog.Logger
}

// New wires an Orchestrator. The configuration must already be validated.
func New(client *archive.Client, store *storage.Store, cfg config.ExtractionConfig) *Orchestrator {
	return &Orchestrator{client: client, store: store, cfg: cfg, logger: slog.Default()}
}

// Run scans the configured range hour by hour, filters for all repositories
// and event kinds in one pass, partitions each hour batch by repository, and
// appends sub-batches to per-repository writers. Writers are finalized on
// every exit path so partial progress is never silently lost; storage
// failures then propagate.
func (o *Orchestrator) Run(ctx context.Context) ([]RepoResult, error) {
	start, end, err := o.cfg.DateRange()
	if err != nil {
		return nil, err
	}

	writers := make(map[string]*storage.Writer, len(o.cfg.Repos))
	for _, repo := range o.cfg.Repos {
		w, err := o.store.NewRepoWriter(storage.TableEvents, repo)
		if err != nil {
			return nil, fmt.Errorf("opening writer for %s: %w", repo, err)
		}
		writers[event.RepoKey(repo)] = w
	}

	o.logger.Info("starting extraction",
		"repos", o.cfg.Repos,
		"start", o.cfg.StartDate,
		"end", o.cfg.EndDate,
		"event_types", o.cfg.EventTypes,
	)

	filter := archive.NewFilter(o.cfg.Repos, o.cfg.EventTypes)
	var read int64

	for hour, batch := range o.client.FetchRange(ctx, start, end, filter) {
		read += int64(len(batch))

		for key, sub := range partition(batch) {
			w, ok := writers[key]
			if !ok {
				// The filter already restricted repositories; an unknown
				// key here means a configured name differs only in case.
				o.logger.Warn("no writer for repository", "repo", key)
				continue
			}
			rows, err := toRows(sub)
			if err != nil {
				o.logger.Warn("skipping unserializable records", "repo", key, "error", err)
				continue
			}
			if err := w.Append(rows); err != nil {
				finalizeAll(writers, o.logger)
				return nil, fmt.Errorf("appending batch for %s: %w", key, err)
			}
		}

		o.logger.Info("hour processed", "hour", hour.Format("2006-01-02T15"), "events", len(batch))
	}
	if err := ctx.Err(); err != nil {
		finalizeAll(writers, o.logger)
		return nil, err
	}

	if err := finalizeAll(writers, o.logger); err != nil {
		return nil, err
	}

	var written int64
	for _, w := range writers {
		written += w.Added()
	}
	meta := storage.RunMetadata{
		RunID:      uuid.New().String(),
		Repos:      o.cfg.Repos,
		StartDate:  o.cfg.StartDate,
		EndDate:    o.cfg.EndDate,
		EventTypes: o.cfg.EventTypes,
		Read:       read,
		Duplicates: read - written, // records that replaced an existing id
		Written:    written,
		FinishedAt: time.Now().UTC(),
	}
	if err := o.store.SaveRunMetadata("last_extraction", meta); err != nil {
		return nil, fmt.Errorf("saving run metadata: %w", err)
	}

	o.logStats()

	results := make([]RepoResult, 0, len(o.cfg.Repos))
	for _, repo := range o.cfg.Repos {
		results = append(results, RepoResult{Repo: repo, Path: o.store.Path()})
	}
	return results, nil
}

// partition splits an hour batch by case-insensitive repository key,
// preserving in-hour source order within each sub-batch.
func partition(batch []event.Record) map[string][]event.Record {
	parts := make(map[string][]event.Record)
	for _, rec := range batch {
		key := event.RepoKey(rec.Repo.Name)
		parts[key] = append(parts[key], rec)
	}
	return parts
}

func toRows(records []event.Record) ([]storage.Row, error) {
	rows := make([]storage.Row, 0, len(records))
	for _, rec := range records {
		row, err := storage.RowFromRecord(rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func finalizeAll(writers map[string]*storage.Writer, logger *slog.Logger) error {
	var errs []error
	for repo, w := range writers {
		if err := w.Finalize(); err != nil {
			logger.Warn("finalizing writer failed", "repo", repo, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (o *Orchestrator) logStats() {
	stats, err := o.store.Stats(storage.TableEvents)
	if err != nil {
		o.logger.Warn("reading store stats failed", "error", err)
		return
	}
	o.logger.Info("store stats",
		"path", stats.Path,
		"size_mib", fmt.Sprintf("%.2f", float64(stats.SizeBytes)/(1024*1024)),
		"total_rows", stats.TotalRows,
	)
	for repo, n := range stats.ByRepo {
		o.logger.Info("repo rows", "repo", repo, "rows", n)
	}
}

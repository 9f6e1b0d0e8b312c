package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kalambet/gharvest/internal/storage"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store size, row counts, and last run metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStats()
	},
}

func showStats() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	for _, table := range []string{storage.TableEvents, storage.TableCleaned} {
		st, err := store.Stats(table)
		if err != nil {
			return fmt.Errorf("reading %s stats: %w", table, err)
		}
		printStep("Table %s", table)
		printStatus("Rows", "%d", st.TotalRows)
		if st.Path != "" {
			printStatus("Database", "%s (%.2f MiB)", st.Path, float64(st.SizeBytes)/(1024*1024))
		}

		counts, err := store.RepoCounts(table)
		if err != nil {
			return fmt.Errorf("reading %s repo counts: %w", table, err)
		}
		for _, rc := range counts {
			repo := rc.Repo
			if repo == "" {
				repo = "(no repo)"
			}
			printRepo(repo, "%d total, %d unique", rc.Total, rc.Unique)
		}
	}

	for _, key := range []string{"last_extraction", "last_cleaning"} {
		meta, err := store.LoadRunMetadata(key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("loading %s metadata: %w", key, err)
		}
		printStep("Run %s", key)
		if meta.RunID != "" {
			printStatus("Run ID", "%s", meta.RunID)
		}
		if len(meta.Repos) > 0 {
			printStatus("Repos", "%v", meta.Repos)
		}
		if meta.StartDate != "" {
			printStatus("Range", "%s to %s", meta.StartDate, meta.EndDate)
		}
		printStatus("Read", "%d", meta.Read)
		if meta.Duplicates > 0 {
			printStatus("Duplicates", "%d", meta.Duplicates)
		}
		printStatus("Written", "%d", meta.Written)
		printStatus("Finished", "%s", meta.FinishedAt.Format("2006-01-02 15:04:05 MST"))
	}

	return nil
}

package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kalambet/gharvest/internal/event"
	"github.com/kalambet/gharvest/internal/storage"
)

const importBatchSize = 500

var importCmd = &cobra.Command{
	Use:   "import <events.jsonl>",
	Short: "Import a line-delimited JSON events file into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(args[0])
	},
}

// runImport loads one NDJSON file into the events table. Blank, malformed,
// and id-less lines are skipped and counted; everything else is upserted, so
// re-importing the same file is a no-op for the row count.
func runImport(path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	writer, err := store.NewWriter(storage.TableEvents)
	if err != nil {
		return fmt.Errorf("opening writer: %w", err)
	}

	printStep("Importing %s", path)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1<<20), 16<<20)

	var read, skipped int64
	batch := make([]storage.Row, 0, importBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := writer.Append(batch); err != nil {
			return fmt.Errorf("writing batch: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		read++

		rec, err := event.Decode(line)
		if err != nil || rec.ID == "" {
			skipped++
			continue
		}
		row, err := storage.RowFromRecord(rec)
		if err != nil {
			skipped++
			continue
		}

		batch = append(batch, row)
		if len(batch) >= importBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input file: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}
	if err := writer.Finalize(); err != nil {
		return fmt.Errorf("finalizing writer: %w", err)
	}

	printStatus("Read", "%d", read)
	if skipped > 0 {
		printWarning("%d lines skipped (malformed or missing id)", skipped)
	}
	printStatus("Added", "%d", writer.Added())
	printSuccess("Import complete")
	return nil
}

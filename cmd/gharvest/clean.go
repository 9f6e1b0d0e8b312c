package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kalambet/gharvest/internal/clean"
	"github.com/kalambet/gharvest/internal/storage"
)

var cleanDropTrivial bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Run the cleaning workflow over extracted events",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClean()
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanDropTrivial, "drop-trivial", false, "also drop trivial phrases (lgtm, thanks, ...)")
}

func runClean() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cleanDropTrivial {
		cfg.Cleaning.DropTrivial = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	wf := clean.Default(clean.Options{
		MinTokens:      cfg.Cleaning.MinTokens,
		BotPatterns:    cfg.Cleaning.BotPatterns,
		TrivialPhrases: cfg.Cleaning.TrivialPhrases,
		DropTrivial:    cfg.Cleaning.DropTrivial,
	})
	printStep("Cleaning %s into %s (%d steps)", storage.TableEvents, storage.TableCleaned, wf.Len())

	cleaner := clean.NewCleaner(store, wf)
	counts, err := cleaner.Run(ctx, storage.TableEvents, storage.TableCleaned)
	if err != nil {
		printError("cleaning failed: %v", err)
		return err
	}

	printStatus("Read", "%d", counts.Read)
	printStatus("Duplicates", "%d", counts.Duplicates)
	printStatus("Written", "%d", counts.Written)
	printSuccess("Cleaning complete")
	return nil
}

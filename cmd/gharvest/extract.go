package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kalambet/gharvest/internal/archive"
	"github.com/kalambet/gharvest/internal/extract"
	"github.com/kalambet/gharvest/internal/storage"
)

var (
	extractRepos []string
	extractStart string
	extractEnd   string
	extractTypes []string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Fetch archive hours for the configured repositories into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract()
	},
}

func init() {
	extractCmd.Flags().StringSliceVar(&extractRepos, "repo", nil, "repository full name (owner/name), repeatable; overrides config")
	extractCmd.Flags().StringVar(&extractStart, "start", "", "start date (YYYY-MM-DD, inclusive); overrides config")
	extractCmd.Flags().StringVar(&extractEnd, "end", "", "end date (YYYY-MM-DD, exclusive); overrides config")
	extractCmd.Flags().StringSliceVar(&extractTypes, "type", nil, "event type to keep, repeatable; overrides config")
}

func runExtract() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(extractRepos) > 0 {
		cfg.Extraction.Repos = extractRepos
	}
	if extractStart != "" {
		cfg.Extraction.StartDate = extractStart
	}
	if extractEnd != "" {
		cfg.Extraction.EndDate = extractEnd
	}
	if len(extractTypes) > 0 {
		cfg.Extraction.EventTypes = extractTypes
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	printStep("Extracting %d repositories, %s to %s", len(cfg.Extraction.Repos), cfg.Extraction.StartDate, cfg.Extraction.EndDate)

	client := archive.New(cfg.Archive.BaseURL, &http.Client{Timeout: cfg.Archive.Timeout()})
	orch := extract.New(client, store, cfg.Extraction)

	results, err := orch.Run(ctx)
	if err != nil {
		printError("extraction failed: %v", err)
		return err
	}

	for _, res := range results {
		total, err := store.CountRepo(storage.TableEvents, res.Repo)
		if err != nil {
			return fmt.Errorf("counting rows for %s: %w", res.Repo, err)
		}
		printRepo(res.Repo, "%d events at %s", total, res.Path)
	}
	printSuccess("Extraction complete")
	return nil
}

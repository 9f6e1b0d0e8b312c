package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kalambet/gharvest/internal/sentiment"
	"github.com/kalambet/gharvest/internal/storage"
)

var classifyOutputDir string

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify cleaned records via the configured sentiment service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClassify()
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyOutputDir, "output", "./data/sentiment", "directory for results and samples")
}

func runClassify() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	printStep("Classifying cleaned records via %s", cfg.Classifier.BaseURL)

	classifier := sentiment.NewClient(cfg.Classifier.BaseURL, cfg.Classifier.BatchSize)
	runner := sentiment.NewRunner(store, classifier)

	outPath, err := runner.Run(ctx, classifyOutputDir)
	if err != nil {
		printError("classification failed: %v", err)
		return err
	}

	printStatus("Results", "%s", outPath)
	printSuccess("Classification complete")
	return nil
}

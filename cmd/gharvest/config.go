package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showConfig()
	},
}

func showConfig() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	printStep("Effective configuration")
	printStatus("Log level", "%s", cfg.LogLevel)
	printStatus("Archive URL", "%s", cfg.Archive.BaseURL)
	printStatus("Fetch timeout", "%s", cfg.Archive.Timeout())
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	printStatus("Repos", "%s", strings.Join(cfg.Extraction.Repos, ", "))
	printStatus("Date range", "%s to %s", cfg.Extraction.StartDate, cfg.Extraction.EndDate)
	printStatus("Event types", "%s", strings.Join(cfg.Extraction.EventTypes, ", "))
	printStatus("Min tokens", "%d", cfg.Cleaning.MinTokens)
	printStatus("Drop trivial", "%t", cfg.Cleaning.DropTrivial)
	printStatus("Classifier", "%s (batch %d)", cfg.Classifier.BaseURL, cfg.Classifier.BatchSize)
	printStatus("Server port", "%d", cfg.Server.Port)
	return nil
}

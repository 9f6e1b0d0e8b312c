package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kalambet/gharvest/internal/api"
	"github.com/kalambet/gharvest/internal/storage"
)

var (
	browseRepo   string
	browseOutput string
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Render cleaned records as a Markdown document",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse()
	},
}

func init() {
	browseCmd.Flags().StringVar(&browseRepo, "repo", "", "only this repository (owner/name)")
	browseCmd.Flags().StringVar(&browseOutput, "output", "", "write to file instead of stdout")
}

func runBrowse() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	md, err := api.BrowseMarkdown(store, browseRepo)
	if err != nil {
		return err
	}

	if browseOutput == "" {
		fmt.Print(md)
		return nil
	}
	if err := os.WriteFile(browseOutput, []byte(md), 0o644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	printSuccess("Wrote %s", browseOutput)
	return nil
}

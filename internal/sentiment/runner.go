package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kalambet/gharvest/internal/event"
	"github.com/kalambet/gharvest/internal/storage"
)

// Scored pairs one cleaned record with its classification.
type Scored struct {
	ID          string  `json:"id"`
	Repo        string  `json:"repo"`
	CreatedAt   string  `json:"created_at"`
	Type        string  `json:"type"`
	CleanedText string  `json:"cleaned_text"`
	Label       string  `json:"label"`
	Score       float64 `json:"score"`
}

// Runner reads the cleaned table, classifies every record, and writes the
// results as line-delimited JSON plus a Markdown samples file.
type Runner struct {
	store      *storage.Store
	classifier Classifier
	logger     *slog.Logger
}

// NewRunner wires a Runner.
func NewRunner(store *storage.Store, classifier Classifier) *Runner {
	return &Runner{store: store, classifier: classifier, logger: slog.Default()}
}

// Run classifies all cleaned records and writes results under outputDir.
// Returns the path of the results file.
func (r *Runner) Run(ctx context.Context, outputDir string) (string, error) {
	var records []event.Cleaned
	for row, err := range r.store.ReadAll(storage.TableCleaned) {
		if err != nil {
			return "", fmt.Errorf("reading cleaned records: %w", err)
		}
		c, err := event.DecodeCleaned(row.EventData)
		if err != nil {
			r.logger.Warn("skipping undecodable cleaned record", "id", row.ID, "error", err)
			continue
		}
		records = append(records, c)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	outPath := filepath.Join(outputDir, "sentiment_results.jsonl")

	if len(records) == 0 {
		r.logger.Warn("no cleaned records to classify")
		if err := os.WriteFile(outPath, nil, 0o644); err != nil {
			return "", fmt.Errorf("writing empty results: %w", err)
		}
		return outPath, nil
	}

	texts := make([]string, len(records))
	for i, c := range records {
		texts[i] = c.CleanedText
	}

	results, err := r.classifier.Classify(ctx, texts)
	if err != nil {
		return "", fmt.Errorf("classifying %d records: %w", len(records), err)
	}

	scored := make([]Scored, len(records))
	for i, c := range records {
		scored[i] = Scored{
			ID:          c.ID,
			Repo:        c.Repo,
			CreatedAt:   c.CreatedAt,
			Type:        c.Type,
			CleanedText: c.CleanedText,
			Label:       results[i].Label,
			Score:       results[i].Score,
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("creating results file: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, s := range scored {
		if err := enc.Encode(s); err != nil {
			return "", fmt.Errorf("writing result %s: %w", s.ID, err)
		}
	}

	samplesPath := filepath.Join(outputDir, "samples.md")
	if err := os.WriteFile(samplesPath, []byte(samplesMarkdown(scored)), 0o644); err != nil {
		return "", fmt.Errorf("writing samples: %w", err)
	}

	r.logger.Info("classification complete", "records", len(scored), "results", outPath, "samples", samplesPath)
	return outPath, nil
}

// samplesMarkdown renders classified records as Markdown sections for
// eyeballing model behaviour.
func samplesMarkdown(scored []Scored) string {
	var b strings.Builder
	b.WriteString("# Sentiment analysis samples\n\n")
	for i, s := range scored {
		fmt.Fprintf(&b, "## Sample %d\n\n", i+1)
		fmt.Fprintf(&b, "- **Event type:** %s\n", s.Type)
		fmt.Fprintf(&b, "- **Created:** %s\n", s.CreatedAt)
		fmt.Fprintf(&b, "- **Repo:** %s\n", s.Repo)
		fmt.Fprintf(&b, "- **Label:** %s (%.2f)\n\n", s.Label, s.Score)
		b.WriteString("**Text:**\n\n")
		b.WriteString(s.CleanedText)
		b.WriteString("\n\n---\n\n")
	}
	return b.String()
}

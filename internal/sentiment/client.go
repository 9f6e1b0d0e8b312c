// Package sentiment consumes an external text-classification service as a
// black box: a list of cleaned-text strings goes in, one label/score pair
// per input comes out. No semantics beyond that boundary belong here.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result is one classification: a label and a confidence score.
type Result struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier classifies a batch of texts, returning one Result per input in
// order.
type Classifier interface {
	Classify(ctx context.Context, texts []string) ([]Result, error)
}

// Client talks to the classification service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	batchSize  int
}

// NewClient creates a Client for the given service base URL. batchSize
// bounds texts per request (default 32).
func NewClient(baseURL string, batchSize int) *Client {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
		batchSize:  batchSize,
	}
}

type classifyRequest struct {
	Texts []string `json:"texts"`
}

type classifyResponse struct {
	Results []Result `json:"results"`
}

// Classify sends the texts in bounded-concurrency batches and reassembles
// the results in input order.
func (c *Client) Classify(ctx context.Context, texts []string) ([]Result, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([]Result, len(texts))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4) // Bound concurrency to avoid overwhelming the service.

	for offset := 0; offset < len(texts); offset += c.batchSize {
		lo := offset
		hi := min(lo+c.batchSize, len(texts))
		g.Go(func() error {
			batch, err := c.classifyBatch(gCtx, texts[lo:hi])
			if err != nil {
				return fmt.Errorf("classifying batch at %d: %w", lo, err)
			}
			copy(results[lo:hi], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) classifyBatch(ctx context.Context, texts []string) ([]Result, error) {
	body, err := json.Marshal(classifyRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting classification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var out classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(out.Results) != len(texts) {
		return nil, fmt.Errorf("got %d results for %d texts", len(out.Results), len(texts))
	}
	return out.Results, nil
}

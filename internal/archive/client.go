// Package archive fetches hour partitions of the GH Archive feed: one
// gzip-compressed line-delimited JSON resource per calendar hour.
package archive

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"time"

	"github.com/kalambet/gharvest/internal/event"
	"github.com/kalambet/gharvest/internal/metrics"
)

// maxLineBytes bounds a single archive line. Events with huge vendored-diff
// bodies show up occasionally; 16 MiB is comfortably above anything seen.
const maxLineBytes = 16 << 20

// Client fetches and decodes archive hour partitions. The HTTP transport is
// injected; its timeout is the only timeout policy the client has.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client for the given archive base URL. A nil httpClient
// falls back to a 60s-timeout default.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     slog.Default(),
	}
}

// URL returns the deterministic resource locator for one hour partition.
// Month and day are zero-padded; the hour is a plain 0-23 integer.
func (c *Client) URL(day time.Time, hour int) string {
	return fmt.Sprintf("%s/%d-%02d-%02d-%d.json.gz", c.baseURL, day.Year(), day.Month(), day.Day(), hour)
}

// FetchHour downloads, decompresses, and decodes one hour partition,
// applying the filter before each record is materialized into the batch so
// peak memory is bounded by the matching subset. Malformed and oversized
// lines are logged and skipped; transport failures are returned to the
// caller.
func (c *Client) FetchHour(ctx context.Context, day time.Time, hour int, filter Filter) ([]event.Record, error) {
	url := c.URL(day, hour)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", url, err)
	}
	defer gz.Close()

	var batch []event.Record
	reader := bufio.NewReaderSize(gz, 1<<20)
	for {
		line, tooLong, err := readLine(reader)
		if tooLong {
			metrics.LinesMalformed.Inc()
			c.logger.Warn("skipping oversized archive line", "url", url, "limit_bytes", maxLineBytes)
		} else if len(line) > 0 {
			rec, decErr := event.Decode(line)
			if decErr != nil {
				metrics.LinesMalformed.Inc()
				c.logger.Warn("skipping malformed archive line", "url", url, "error", decErr)
			} else if filter.Match(rec) {
				batch = append(batch, rec)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("reading %s: %w", url, err)
		}
	}

	metrics.HoursFetched.Inc()
	metrics.EventsMatched.Add(float64(len(batch)))
	c.logger.Info("fetched hour partition", "url", url, "matched", len(batch))
	return batch, nil
}

// readLine returns the next line of the stream. A line longer than
// maxLineBytes is discarded to its end and reported via tooLong instead of
// failing the read: one oversized record must not cost the whole hour. The
// returned error is io.EOF once the stream is exhausted.
func readLine(r *bufio.Reader) (line []byte, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return buf, false, err
		}
		if buf == nil && !isPrefix {
			return chunk, false, nil
		}
		buf = append(buf, chunk...)
		if !isPrefix {
			return buf, false, nil
		}
		if len(buf) > maxLineBytes {
			for isPrefix && err == nil {
				_, isPrefix, err = r.ReadLine()
			}
			return nil, true, err
		}
	}
}

// FetchRange yields (hour, batch) pairs for every hour from start (inclusive)
// to end (exclusive) in chronological order. A failed hour is logged and
// skipped; the scan continues with the next hour. Hours with no matching
// records are not yielded. The sequence is finite and forward-only: a
// restart means rerunning the range, which idempotent writes make safe.
func (c *Client) FetchRange(ctx context.Context, start, end time.Time, filter Filter) iter.Seq2[time.Time, []event.Record] {
	return func(yield func(time.Time, []event.Record) bool) {
		for cur := start; cur.Before(end); cur = cur.Add(time.Hour) {
			if ctx.Err() != nil {
				return
			}
			batch, err := c.FetchHour(ctx, cur, cur.Hour(), filter)
			if err != nil {
				metrics.HoursSkipped.Inc()
				c.logger.Warn("skipping hour after fetch error",
					"date", cur.Format("2006-01-02"), "hour", cur.Hour(), "error", err)
				continue
			}
			if len(batch) == 0 {
				continue
			}
			if !yield(cur, batch) {
				return
			}
		}
	}
}

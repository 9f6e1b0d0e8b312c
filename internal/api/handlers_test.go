package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/gharvest/internal/event"
	"github.com/kalambet/gharvest/internal/storage"
)

func testStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedCleaned(t *testing.T, s *storage.Store, c event.Cleaned) {
	t.Helper()
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshalling: %v", err)
	}
	if err := s.UpsertBatch(storage.TableCleaned, []storage.Row{storage.RowFromCleaned(c, data)}); err != nil {
		t.Fatalf("seeding: %v", err)
	}
}

func TestHealth(t *testing.T) {
	h := NewHandler(Deps{Store: testStore(t)})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshalling: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestStats(t *testing.T) {
	s := testStore(t)
	if err := s.UpsertBatch(storage.TableEvents, []storage.Row{
		{ID: "1", Repo: "a/b", EventData: []byte(`{"id":"1"}`)},
		{ID: "2", Repo: "a/b", EventData: []byte(`{"id":"2"}`)},
	}); err != nil {
		t.Fatalf("seeding events: %v", err)
	}
	if err := s.SaveRunMetadata("last_extraction", storage.RunMetadata{
		RunID:      "run-1",
		Read:       2,
		Written:    2,
		FinishedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("saving metadata: %v", err)
	}

	h := NewHandler(Deps{Store: s})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshalling: %v", err)
	}
	if resp.Events.TotalRows != 2 {
		t.Errorf("events total = %d, want 2", resp.Events.TotalRows)
	}
	if resp.Events.ByRepo["a/b"] != 2 {
		t.Errorf("by_repo = %v", resp.Events.ByRepo)
	}
	if resp.LastExtraction == nil || resp.LastExtraction.RunID != "run-1" {
		t.Errorf("last_extraction = %+v", resp.LastExtraction)
	}
	if resp.LastCleaning != nil {
		t.Errorf("last_cleaning = %+v, want absent", resp.LastCleaning)
	}
}

func TestBrowse(t *testing.T) {
	s := testStore(t)
	seedCleaned(t, s, event.Cleaned{
		ID:          "1",
		CleanedText: "this change needs tests",
		Repo:        "a/b",
		CreatedAt:   "2024-02-01T10:00:00Z",
		Type:        "IssueCommentEvent",
		Tokens:      []string{"this", "change", "needs", "tests"},
	})
	seedCleaned(t, s, event.Cleaned{
		ID:          "2",
		CleanedText: "unrelated repository",
		Repo:        "c/d",
		CreatedAt:   "2024-02-01T11:00:00Z",
		Type:        "IssueCommentEvent",
	})

	h := NewHandler(Deps{Store: s})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/browse", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "# Repo: a/b") || !strings.Contains(body, "# Repo: c/d") {
		t.Errorf("unfiltered browse missing repo sections:\n%s", body)
	}
	if !strings.Contains(body, "## 2024-02-01") {
		t.Error("browse missing date grouping")
	}
	if !strings.Contains(body, "this change needs tests") {
		t.Error("browse missing cleaned text")
	}

	// Repo filter is case-insensitive.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/browse?repo=A/B", nil))
	body = rec.Body.String()
	if !strings.Contains(body, "# Repo: a/b") {
		t.Error("filtered browse missing requested repo")
	}
	if strings.Contains(body, "c/d") {
		t.Error("filtered browse includes other repos")
	}
}

func TestBrowse_EmptyStore(t *testing.T) {
	h := NewHandler(Deps{Store: testStore(t)})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/browse", nil))
	if rec.Body.String() != "# No cleaned records\n" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewHandler(Deps{Store: testStore(t)})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics output missing standard collectors")
	}
}

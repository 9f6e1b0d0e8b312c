// Package api serves read-only views over a populated store: health, table
// stats, a browsable Markdown rendering of cleaned records, and Prometheus
// metrics. It never writes; the single-writer rule stays with the
// orchestrators.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kalambet/gharvest/internal/storage"
)

type Deps struct {
	Store *storage.Store
}

// NewHandler builds the read-only router.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Get("/stats", handleStats(deps))
	r.Get("/browse", handleBrowse(deps))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statsResponse struct {
	Events         tableStats           `json:"events"`
	Cleaned        tableStats           `json:"cleaned"`
	LastExtraction *storage.RunMetadata `json:"last_extraction,omitempty"`
	LastCleaning   *storage.RunMetadata `json:"last_cleaning,omitempty"`
}

type tableStats struct {
	TotalRows int64            `json:"total_rows"`
	SizeBytes int64            `json:"size_bytes"`
	ByRepo    map[string]int64 `json:"by_repo"`
}

func handleStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var resp statsResponse

		for _, t := range []struct {
			table string
			dst   *tableStats
		}{
			{storage.TableEvents, &resp.Events},
			{storage.TableCleaned, &resp.Cleaned},
		} {
			st, err := deps.Store.Stats(t.table)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			*t.dst = tableStats{TotalRows: st.TotalRows, SizeBytes: st.SizeBytes, ByRepo: st.ByRepo}
		}

		if meta, err := deps.Store.LoadRunMetadata("last_extraction"); err == nil {
			resp.LastExtraction = &meta
		} else if !errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if meta, err := deps.Store.LoadRunMetadata("last_cleaning"); err == nil {
			resp.LastCleaning = &meta
		} else if !errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func handleBrowse(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo := r.URL.Query().Get("repo")
		md, err := BrowseMarkdown(deps.Store, repo)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(md))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

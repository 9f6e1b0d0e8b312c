package storage

import (
	"errors"
	"time"

	"github.com/kalambet/gharvest/internal/event"
)

// Table names the store accepts. Everything else is rejected.
const (
	TableEvents  = "events"
	TableCleaned = "cleaned"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Row is one persisted record: the id key, the side-indexed scalar
// projections, and the full serialized record. Projections are recomputed on
// every upsert; EventData stays authoritative.
type Row struct {
	ID                string
	Repo              string
	CreatedAt         string
	Type              string
	AuthorAssociation string
	ActorLogin        string
	EventData         []byte
}

// RowFromRecord projects a raw archive event into its storable form.
func RowFromRecord(r event.Record) (Row, error) {
	data, err := r.Data()
	if err != nil {
		return Row{}, err
	}
	return Row{
		ID:                string(r.ID),
		Repo:              r.Repo.Name,
		CreatedAt:         r.CreatedAt,
		Type:              r.Type,
		AuthorAssociation: r.AuthorAssociation(),
		ActorLogin:        r.Actor.Login,
		EventData:         data,
	}, nil
}

// RowFromCleaned projects a cleaned record into the same column shape. A
// cleaned record has no actor login; the column stays empty.
func RowFromCleaned(c event.Cleaned, data []byte) Row {
	return Row{
		ID:                c.ID,
		Repo:              c.Repo,
		CreatedAt:         c.CreatedAt,
		Type:              c.Type,
		AuthorAssociation: c.AuthorAssociation,
		EventData:         data,
	}
}

// RunMetadata describes one orchestrator run. It is attached to the store
// through the run_metadata table, not to individual records.
type RunMetadata struct {
	RunID      string    `json:"run_id"`
	Repos      []string  `json:"repos"`
	StartDate  string    `json:"start_date,omitempty"`
	EndDate    string    `json:"end_date,omitempty"`
	EventTypes []string  `json:"event_types,omitempty"`
	Read       int64     `json:"read"`
	Duplicates int64     `json:"duplicates"`
	Written    int64     `json:"written"`
	FinishedAt time.Time `json:"finished_at"`
}

// Stats summarizes one table for operational logging.
type Stats struct {
	Path      string
	SizeBytes int64
	TotalRows int64
	ByRepo    map[string]int64
}

// RepoCount reports per-repository totals with unique-id and duplicate
// breakdowns.
type RepoCount struct {
	Repo       string
	Total      int64
	Unique     int64
	Duplicates int64
}

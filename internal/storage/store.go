// Package storage persists archive events and cleaned records in a single
// SQLite database. All repositories in a run share one physical store so
// cross-repository queries and dedup stay possible; writes are idempotent
// INSERT OR REPLACE by id, which is what makes re-runs over overlapping
// ranges safe.
package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DBFilename is the single database file per data directory.
const DBFilename = "events.db"

// Store wraps the SQLite database holding the events and cleaned tables.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used by
// tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, DBFilename)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db, path: dsn}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path ("" for in-memory stores).
func (s *Store) Path() string {
	if s.path == ":memory:" {
		return ""
	}
	return s.path
}

// DB exposes the underlying connection for read-only consumers.
func (s *Store) DB() *sql.DB {
	return s.db
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

func validTable(table string) error {
	if table != TableEvents && table != TableCleaned {
		return fmt.Errorf("unsupported table %q", table)
	}
	return nil
}

// UpsertBatch insert-or-replaces rows by primary key inside one transaction.
// Rows with an empty id are skipped silently: they are garbage, not errors.
// Indexed columns are rewritten alongside the payload on every upsert.
func (s *Store) UpsertBatch(table string, rows []Row) error {
	if err := validTable(table); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning upsert transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO ` + table + ` (id, repo, created_at, type, author_association, actor_login, event_data)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if r.ID == "" {
			continue
		}
		if _, err := stmt.Exec(r.ID, r.Repo, r.CreatedAt, r.Type, r.AuthorAssociation, r.ActorLogin, string(r.EventData)); err != nil {
			tx.Rollback()
			return fmt.Errorf("upserting record %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// ReadAll returns a lazy sequence over every row of the table in storage
// order. Iteration errors are yielded as the second value with a zero Row;
// the sequence ends after the first error.
func (s *Store) ReadAll(table string) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		if err := validTable(table); err != nil {
			yield(Row{}, err)
			return
		}
		rows, err := s.db.Query(`SELECT id, repo, created_at, type, author_association, actor_login, event_data FROM ` + table)
		if err != nil {
			yield(Row{}, fmt.Errorf("querying %s: %w", table, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var r Row
			var data string
			if err := rows.Scan(&r.ID, &r.Repo, &r.CreatedAt, &r.Type, &r.AuthorAssociation, &r.ActorLogin, &data); err != nil {
				yield(Row{}, fmt.Errorf("scanning %s row: %w", table, err))
				return
			}
			r.EventData = []byte(data)
			if !yield(r, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Row{}, fmt.Errorf("iterating %s rows: %w", table, err))
		}
	}
}

// Count returns the number of rows in the table.
func (s *Store) Count(table string) (int64, error) {
	if err := validTable(table); err != nil {
		return 0, err
	}
	var n int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	return n, err
}

// CountRepo returns the number of rows for one repository,
// case-insensitively.
func (s *Store) CountRepo(table, repo string) (int64, error) {
	if err := validTable(table); err != nil {
		return 0, err
	}
	var n int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE repo = ? COLLATE NOCASE", repo).Scan(&n)
	return n, err
}

// Stats reports table size and per-repository row counts.
func (s *Store) Stats(table string) (Stats, error) {
	if err := validTable(table); err != nil {
		return Stats{}, err
	}

	st := Stats{Path: s.Path(), ByRepo: make(map[string]int64)}
	if st.Path != "" {
		if info, err := os.Stat(st.Path); err == nil {
			st.SizeBytes = info.Size()
		}
	}

	rows, err := s.db.Query("SELECT repo, COUNT(*) FROM " + table + " GROUP BY repo ORDER BY repo")
	if err != nil {
		return Stats{}, fmt.Errorf("querying %s stats: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var repo string
		var n int64
		if err := rows.Scan(&repo, &n); err != nil {
			return Stats{}, fmt.Errorf("scanning stats row: %w", err)
		}
		if repo == "" {
			repo = "(no repo)"
		}
		st.ByRepo[repo] = n
		st.TotalRows += n
	}
	return st, rows.Err()
}

// RepoCounts returns per-repository totals with unique-by-id breakdowns.
// With id as primary key duplicates are always zero in practice; the column
// exists for parity with imported datasets.
func (s *Store) RepoCounts(table string) ([]RepoCount, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT repo, COUNT(*), COUNT(DISTINCT id) FROM ` + table + ` GROUP BY repo ORDER BY repo`)
	if err != nil {
		return nil, fmt.Errorf("querying %s repo counts: %w", table, err)
	}
	defer rows.Close()

	var out []RepoCount
	for rows.Next() {
		var rc RepoCount
		if err := rows.Scan(&rc.Repo, &rc.Total, &rc.Unique); err != nil {
			return nil, fmt.Errorf("scanning repo count: %w", err)
		}
		rc.Duplicates = rc.Total - rc.Unique
		out = append(out, rc)
	}
	return out, rows.Err()
}

// SaveRunMetadata persists one run's metadata under the given key,
// replacing any previous run's entry.
func (s *Store) SaveRunMetadata(key string, meta RunMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshalling run metadata: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO run_metadata (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// LoadRunMetadata returns the metadata stored under key, or ErrNotFound.
func (s *Store) LoadRunMetadata(key string) (RunMetadata, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM run_metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return RunMetadata{}, ErrNotFound
	}
	if err != nil {
		return RunMetadata{}, err
	}
	var meta RunMetadata
	if err := json.Unmarshal([]byte(value), &meta); err != nil {
		return RunMetadata{}, fmt.Errorf("parsing run metadata: %w", err)
	}
	return meta, nil
}

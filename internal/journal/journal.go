// Package journal keeps an append-only SQLite log of accepted observations.
// The JSON snapshot stays the state of record; the journal exists so a
// fleet operator can replay or inspect what the bots actually reported.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	pkgerrors "github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS observations (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    kind       TEXT NOT NULL,
    system_id  TEXT NOT NULL,
    poi_id     TEXT NOT NULL DEFAULT '',
    payload    TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_observations_system ON observations(system_id, kind);
`

// Entry is one journaled observation.
type Entry struct {
	ID        int64
	Kind      string
	SystemID  string
	POIID     string
	Payload   any
	CreatedAt time.Time
}

// Journal is an append-only observation log backed by SQLite.
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at path and applies the
// schema. WAL journal mode keeps appends cheap for the readers.
func Open(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, pkgerrors.Wrap(err, "create journal dir")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open journal")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, pkgerrors.Wrap(err, "ping journal")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, pkgerrors.Wrap(err, "migrate journal")
	}
	return &Journal{db: db}, nil
}

// Append records one observation. Payload is stored as JSON.
func (j *Journal) Append(e Entry) error {
	var payload []byte
	if e.Payload != nil {
		var err error
		payload, err = json.Marshal(e.Payload)
		if err != nil {
			return pkgerrors.Wrap(err, "marshal journal payload")
		}
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := j.db.Exec(
		`INSERT INTO observations (kind, system_id, poi_id, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.Kind, e.SystemID, e.POIID, string(payload), created.Format(time.RFC3339Nano),
	)
	if err != nil {
		return pkgerrors.Wrap(err, "append observation")
	}
	metrics.JournalAppendsTotal.Inc()
	return nil
}

// Recent returns up to limit entries, newest first. Payloads come back as
// the decoded JSON value (or nil when empty).
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.Query(
		`SELECT id, kind, system_id, poi_id, payload, created_at FROM observations ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query journal")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var payload, created string
		if err := rows.Scan(&e.ID, &e.Kind, &e.SystemID, &e.POIID, &payload, &created); err != nil {
			return nil, pkgerrors.Wrap(err, "scan journal row")
		}
		if payload != "" {
			var v any
			if err := json.Unmarshal([]byte(payload), &v); err == nil {
				e.Payload = v
			}
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

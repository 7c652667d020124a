// ABOUTME: SQLite-backed local mirror of fetched run payloads and the history listing.
// ABOUTME: A queryable cache, never the source of truth; the backend can always repopulate it.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/signalflux/fluxwatch/api"
	"github.com/signalflux/fluxwatch/model"
)

// RunCache mirrors structured run payloads fetched over REST so comparison
// views keep working across reconnects and the standalone chart view can
// serve offline.
type RunCache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path and runs the
// schema migration.
func Open(path string) (*RunCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS history (
			position INTEGER PRIMARY KEY,
			item TEXT NOT NULL
		);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &RunCache{db: db}, nil
}

// Close closes the database connection.
func (c *RunCache) Close() error {
	return c.db.Close()
}

// PutRunData stores a fetched run payload, replacing any previous copy.
func (c *RunCache) PutRunData(data *api.RunData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode run payload: %w", err)
	}
	_, err = c.db.Exec(
		`INSERT INTO runs (run_id, payload, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at`,
		data.Run.RunID,
		string(payload),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert run payload: %w", err)
	}
	return nil
}

// GetRunData loads a cached run payload. The second return is false on miss.
func (c *RunCache) GetRunData(runID string) (*api.RunData, bool, error) {
	var payload string
	err := c.db.QueryRow("SELECT payload FROM runs WHERE run_id = ?", runID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query run payload: %w", err)
	}

	var data api.RunData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, false, fmt.Errorf("decode cached run payload: %w", err)
	}
	return &data, true, nil
}

// DeleteRun removes a cached run payload, e.g. after the server confirms a
// delete request.
func (c *RunCache) DeleteRun(runID string) error {
	if _, err := c.db.Exec("DELETE FROM runs WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("delete cached run: %w", err)
	}
	return nil
}

// ReplaceHistory swaps the cached history listing wholesale, preserving the
// server's ordering.
func (c *RunCache) ReplaceHistory(items []model.HistoryItem) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin history replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM history"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	for i, item := range items {
		encoded, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encode history item: %w", err)
		}
		if _, err := tx.Exec(
			"INSERT INTO history (position, item) VALUES (?, ?)", i, string(encoded)); err != nil {
			return fmt.Errorf("insert history item: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history replace: %w", err)
	}
	return nil
}

// History returns the cached history listing in stored order.
func (c *RunCache) History() ([]model.HistoryItem, error) {
	rows, err := c.db.Query("SELECT item FROM history ORDER BY position ASC")
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.HistoryItem
	for rows.Next() {
		var encoded string
		if err := rows.Scan(&encoded); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		var item model.HistoryItem
		if err := json.Unmarshal([]byte(encoded), &item); err != nil {
			return nil, fmt.Errorf("decode history item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

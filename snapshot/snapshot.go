// ABOUTME: Static snapshot document capturing a run's signals and charts for standalone viewing.
// ABOUTME: Saved with atomic write-tmp/fsync/rename; readable independent of any live run.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/signalflux/fluxwatch/model"
	"github.com/signalflux/fluxwatch/store"
)

// Document is the interchange file format for a captured run. Count mirrors
// len(Signals) so lightweight readers can show a summary without decoding the
// signal array.
type Document struct {
	SnapshotID  string              `json:"snapshot_id"`
	GeneratedAt time.Time           `json:"generated_at"`
	RunID       string              `json:"run_id"`
	Count       int                 `json:"count"`
	Signals     []model.Signal      `json:"signals"`
	Charts      []model.ChartSeries `json:"charts"`
	Report      string              `json:"report,omitempty"`
}

// FromStore captures the store's foreground run into a document. Chart order
// follows the store's first-seen ticker order.
func FromStore(st *store.Store) *Document {
	signals := st.Signals()
	return &Document{
		SnapshotID:  ulid.Make().String(),
		GeneratedAt: time.Now().UTC(),
		RunID:       st.Run().RunID,
		Count:       len(signals),
		Signals:     signals,
		Charts:      st.Charts(),
	}
}

// Save writes the document with an atomic rename so readers never observe a
// partial file. The parent directory is created if missing.
func Save(path string, doc *Document) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmpPath := path + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write snapshot data: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("fsync snapshot: %w", err)
	}
	_ = tmpFile.Close()

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Load reads and validates a snapshot document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if doc.RunID == "" && len(doc.Signals) == 0 && len(doc.Charts) == 0 {
		return nil, fmt.Errorf("parse snapshot: empty document")
	}
	// Count may predate signal filtering in older files; trust the array.
	doc.Count = len(doc.Signals)
	return &doc, nil
}

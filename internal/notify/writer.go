// Package notify watches the filesystem for changes that should trigger a
// validation run, and carries report notifications between folio
// processes: a CLI run writes an event file into the shared data directory
// and the server picks it up and forwards it to live subscribers.
package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Event types written by EventWriter.
const (
	EventReportSaved = "report_saved"
)

// Event is the payload written to an event file.
type Event struct {
	Type     string `json:"type"`
	RecordID string `json:"record_id"`
	Time     int64  `json:"time"`
}

// EventWriter writes notification event files to a shared directory.
type EventWriter struct {
	dir string
}

// NewEventWriter creates a writer that emits events to {dataPath}/events/.
func NewEventWriter(dataPath string) *EventWriter {
	return &EventWriter{dir: filepath.Join(dataPath, "events")}
}

// Notify writes an event file with the given type.
// Safe to call concurrently.
func (w *EventWriter) Notify(eventType, recordID string) error {
	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return fmt.Errorf("notify: mkdir %s: %w", w.dir, err)
	}
	evt := Event{
		Type:     eventType,
		RecordID: recordID,
		Time:     time.Now().UnixNano(),
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("notify: marshal event: %w", err)
	}
	filename := fmt.Sprintf("%d-%s.event", evt.Time, sanitizeID(recordID))
	// Write under a temp name so the watcher never reads a partial file.
	tmp := filepath.Join(w.dir, "."+filename+".tmp")
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("notify: write event: %w", err)
	}
	return os.Rename(tmp, filepath.Join(w.dir, filename))
}

// sanitizeID replaces characters unsafe for filenames.
func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == ':' || r == '\\' {
			return '_'
		}
		return r
	}, id)
}
